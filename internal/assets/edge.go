package assets

// DepKind categorizes a dependency edge by what the reference actually
// points at (a shader, a texture, a sub-prefab, ...). The UnityYamlParser's
// (class_id, context_path) rule table decides this at extraction time.
type DepKind string

const (
	DepKindScript         DepKind = "script"
	DepKindMaterial       DepKind = "material"
	DepKindTexture        DepKind = "texture"
	DepKindMesh           DepKind = "mesh"
	DepKindAudio          DepKind = "audio"
	DepKindAnimation      DepKind = "animation"
	DepKindPrefabInstance DepKind = "prefab_instance"
	DepKindSceneInstance  DepKind = "scene_instance"
	DepKindShader         DepKind = "shader"
	DepKindScriptableObj  DepKind = "scriptable_object"
	DepKindPathReference  DepKind = "path_reference"
	DepKindIndirect       DepKind = "indirect"
)

// Strength grades how load-bearing a dependency edge is. The ordering below
// (Weak < Medium < Strong < Important < Critical) is meaningful: QueryEngine
// options filter with "min_strength", and CycleAnalyzer severity scoring
// checks "strength >= critical".
type Strength int

const (
	StrengthWeak Strength = iota
	StrengthMedium
	StrengthStrong
	StrengthImportant
	StrengthCritical
)

// String renders the strength using the lowercase names the spec and CLI
// output use.
func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "weak"
	case StrengthMedium:
		return "medium"
	case StrengthStrong:
		return "strong"
	case StrengthImportant:
		return "important"
	case StrengthCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseStrength inverts String, used when reading persisted or configured
// strength values.
func ParseStrength(s string) (Strength, bool) {
	switch s {
	case "weak":
		return StrengthWeak, true
	case "medium":
		return StrengthMedium, true
	case "strong":
		return StrengthStrong, true
	case "important":
		return StrengthImportant, true
	case "critical":
		return StrengthCritical, true
	default:
		return 0, false
	}
}

// Edge is a directed dependency from Source to Target. The tuple
// (Source, Target, DepKind, ContextPath) is the edge's identity within
// GraphStore: two edges differing only in, say, Strength or ComponentType
// are the same edge for replace_edges_from diffing purposes.
type Edge struct {
	Source        string // source GUID
	Target        string // target GUID
	DepKind       DepKind
	Strength      Strength
	ContextPath   string // e.g. "MeshRenderer.sharedMaterials[0]"
	ComponentType string // owning Unity component, e.g. "MeshRenderer"
	PropertyName  string
	SourceFileID  int64 // Unity local FileID within the source document, 0 if n/a
	Active        bool
}

// Key identifies an edge for uniqueness and diffing purposes, per spec §3:
// "(source, target, dep_kind, context_path) is unique".
type Key struct {
	Source      string
	Target      string
	DepKind     DepKind
	ContextPath string
}

// Key returns e's identity tuple.
func (e Edge) Key() Key {
	return Key{Source: e.Source, Target: e.Target, DepKind: e.DepKind, ContextPath: e.ContextPath}
}

// SameAttrs reports whether e and other carry identical non-key attributes,
// used by replace_edges_from to decide whether an edge with the same Key
// needs updating or can be left untouched.
func (e Edge) SameAttrs(other Edge) bool {
	return e.Strength == other.Strength &&
		e.ComponentType == other.ComponentType &&
		e.PropertyName == other.PropertyName &&
		e.SourceFileID == other.SourceFileID &&
		e.Active == other.Active
}
