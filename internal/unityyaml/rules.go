package unityyaml

import (
	"regexp"

	"github.com/unityscan/depgraph/internal/assets"
)

// Unity's well-known class IDs for the component types the rule table
// distinguishes. Values match Unity's own ClassID enumeration.
const (
	classMonoBehaviour     = 114
	classMeshRenderer      = 23
	classMeshFilter        = 33
	classSkinnedMeshRender = 137
	classAnimator          = 95
	classAnimation         = 111
	classAudioSource       = 82
	classMaterial          = 21
	classPrefabInstance    = 1001
	classTransform         = 4
	classCanvasRenderer    = 222
)

// classRule captures how strongly and by what kind a reference found on a
// given component class and field path should be recorded.
type classRule struct {
	depKind  assets.DepKind
	strength assets.Strength
}

// fieldRules maps a (classID, fieldPath) pair to its dep_kind/strength,
// per spec §4.3.1. fieldPath uses the dotted/bracketed context_path
// convention (e.g. "sharedMaterials[0]").
var fieldRules = map[int]map[string]classRule{
	classMonoBehaviour: {
		"m_Script": {assets.DepKindScript, assets.StrengthCritical},
	},
	classMeshRenderer: {
		"m_Materials":       {assets.DepKindMaterial, assets.StrengthStrong},
		"m_Materials[]":     {assets.DepKindMaterial, assets.StrengthStrong},
		"sharedMaterials":   {assets.DepKindMaterial, assets.StrengthStrong},
		"sharedMaterials[]": {assets.DepKindMaterial, assets.StrengthStrong},
	},
	classMeshFilter: {
		"m_Mesh": {assets.DepKindMesh, assets.StrengthCritical},
	},
	classSkinnedMeshRender: {
		"m_Mesh":      {assets.DepKindMesh, assets.StrengthCritical},
		"m_Materials": {assets.DepKindMaterial, assets.StrengthStrong},
	},
	classAnimator: {
		"m_Controller": {assets.DepKindAnimation, assets.StrengthImportant},
		"m_Avatar":     {assets.DepKindIndirect, assets.StrengthMedium},
	},
	classAnimation: {
		"m_Animation": {assets.DepKindAnimation, assets.StrengthImportant},
	},
	classAudioSource: {
		"m_audioClip": {assets.DepKindAudio, assets.StrengthMedium},
	},
	classMaterial: {
		"m_Shader":                    {assets.DepKindShader, assets.StrengthCritical},
		"m_SavedProperties.m_TexEnvs": {assets.DepKindTexture, assets.StrengthStrong},
	},
	classPrefabInstance: {
		"m_SourcePrefab": {assets.DepKindPrefabInstance, assets.StrengthCritical},
	},
}

// arrayIndexPattern matches a bracketed array index anywhere in a
// context_path, e.g. the "[0]" in "m_Materials[0]" or
// "m_SavedProperties.m_TexEnvs[2].second.m_Texture".
var arrayIndexPattern = regexp.MustCompile(`\[\d+\]`)

// normalizeFieldPath collapses every array index in fieldPath down to "[]"
// so rule lookups don't need one table entry per array element.
func normalizeFieldPath(fieldPath string) string {
	return arrayIndexPattern.ReplaceAllString(fieldPath, "[]")
}

// ruleFor resolves a (classID, fieldPath) pair to its dep_kind/strength,
// falling back to a generic indirect/weak classification for fields the
// table doesn't enumerate — per spec §4.3.1 every reference is still
// recorded, just with a coarser classification. fieldPath is tried as-is
// first, then with its array indices normalized to "[]", so an indexed
// path like "m_Materials[0]" still matches the table's "m_Materials[]"
// entry.
func ruleFor(classID int, fieldPath string) classRule {
	byField, ok := fieldRules[classID]
	if !ok {
		return classRule{depKind: assets.DepKindIndirect, strength: assets.StrengthWeak}
	}
	if r, ok := byField[fieldPath]; ok {
		return r
	}
	if normalized := normalizeFieldPath(fieldPath); normalized != fieldPath {
		if r, ok := byField[normalized]; ok {
			return r
		}
	}
	return classRule{depKind: assets.DepKindIndirect, strength: assets.StrengthWeak}
}
