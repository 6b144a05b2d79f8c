package assets

// Kind categorizes an asset node by the Unity importer (or heuristic) that
// produced it. It determines nothing about storage beyond the node's own
// attributes; QueryEngine filters and CycleAnalyzer severity scoring both
// read it.
type Kind string

const (
	KindTexture            Kind = "texture"
	KindModel              Kind = "model"
	KindScript             Kind = "script"
	KindScene              Kind = "scene"
	KindPrefab             Kind = "prefab"
	KindMaterial           Kind = "material"
	KindShader             Kind = "shader"
	KindAudio              Kind = "audio"
	KindAnimation          Kind = "animation"
	KindAnimatorController Kind = "animator_controller"
	KindFont               Kind = "font"
	KindVideo              Kind = "video"
	KindShaderGraph        Kind = "shader_graph"
	KindScriptableObject   Kind = "scriptable_object"
	KindNative             Kind = "native"
	KindUnknown            Kind = "unknown"
)

// KindFromImporter maps a MetaParser importer-kind key to an asset Kind. It
// never fails: an unrecognized importer key yields KindUnknown, matching the
// spec's "unknown importers yield a warning, not a failure" rule.
func KindFromImporter(importerKey string) Kind {
	switch importerKey {
	case "TextureImporter":
		return KindTexture
	case "ModelImporter", "SpeedTreeImporter":
		return KindModel
	case "MonoImporter":
		return KindScript
	case "NativeFormatImporter":
		return KindNative
	case "DefaultImporter":
		return KindNative
	case "PluginImporter":
		return KindNative
	case "AssemblyDefinitionImporter":
		return KindScript
	case "PackageManifestImporter":
		return KindNative
	case "FontImporter":
		return KindFont
	case "VideoClipImporter":
		return KindVideo
	case "ShaderImporter":
		return KindShader
	case "ComputeShaderImporter":
		return KindShader
	case "SubstanceImporter":
		return KindTexture
	default:
		return KindUnknown
	}
}

// KindFromExtension refines Kind using the companion asset's file extension,
// used for asset files whose importer key alone is ambiguous (e.g. a
// NativeFormatImporter backs both .unity scenes and .mat materials).
func KindFromExtension(ext string) (Kind, bool) {
	switch ext {
	case ".unity":
		return KindScene, true
	case ".prefab":
		return KindPrefab, true
	case ".mat":
		return KindMaterial, true
	case ".controller":
		return KindAnimatorController, true
	case ".anim":
		return KindAnimation, true
	case ".asset":
		return KindScriptableObject, true
	case ".cs":
		return KindScript, true
	case ".shadergraph":
		return KindShaderGraph, true
	default:
		return KindUnknown, false
	}
}
