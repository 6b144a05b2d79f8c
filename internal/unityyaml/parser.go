package unityyaml

import (
	"fmt"
	"os"
	"sort"

	"github.com/unityscan/depgraph/internal/assets"
	"github.com/unityscan/depgraph/internal/scanerr"
)

// Reference is a single {fileID, guid[, type]} or local {fileID} pointer
// found inside a document, with the context it was found at.
type Reference struct {
	TargetGUID    string // empty for a local (same-file) {fileID} reference
	TargetFileID  int64
	ContextPath   string
	ComponentType string
	DepKind       assets.DepKind
	Strength      assets.Strength
}

// AssetResult is everything UnityYamlParser extracted from one asset file.
type AssetResult struct {
	Path       string
	References []Reference
}

// ParseAsset parses a .unity/.prefab/.mat/.asset/.controller/.anim file,
// returning every outgoing reference it contains. References to fileID 0
// (Unity's "null") are skipped; local-only {fileID} references without a
// guid are kept with TargetGUID empty; they point at sibling documents in
// the same file, and the pipeline skips them when building cross-asset
// edges.
//
// The file is read through its open handle rather than os.ReadFile and
// split line by line, but splitDocuments returns every document body at
// once, so the file's document content is held in memory in full whatever
// its size.
func ParseAsset(path string) (*AssetResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &scanerr.IoError{Path: path, Cause: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &scanerr.IoError{Path: path, Cause: err}
	}

	docs, err := splitDocuments(f, info.Size())
	if err != nil {
		return nil, &scanerr.ParseError{Path: path, Kind: scanerr.ParseErrMalformedYAML, Detail: err.Error()}
	}

	res := &AssetResult{Path: path}
	for _, doc := range docs {
		componentType, body, err := decodeBody(doc.Body)
		if err != nil {
			return nil, &scanerr.ParseError{Path: path, Kind: scanerr.ParseErrMalformedYAML, Detail: err.Error()}
		}
		if body == nil {
			continue
		}
		walkReferences(body, "", doc.ClassID, componentType, &res.References)
	}

	sort.Slice(res.References, func(i, j int) bool {
		a, b := res.References[i], res.References[j]
		if a.TargetGUID != b.TargetGUID {
			return a.TargetGUID < b.TargetGUID
		}
		if a.DepKind != b.DepKind {
			return a.DepKind < b.DepKind
		}
		return a.ContextPath < b.ContextPath
	})

	return res, nil
}

// walkReferences recursively descends a decoded document body looking for
// Unity's reference grammar: a map with a "fileID" key, optionally paired
// with "guid" and "type". Everything else (scalars, nested maps/slices) is
// traversed to find references deeper in the tree.
func walkReferences(node any, path string, classID int, componentType string, out *[]Reference) {
	switch v := node.(type) {
	case map[string]any:
		if ref, ok := asReference(v); ok {
			if ref.TargetFileID != 0 || ref.TargetGUID != "" {
				rule := ruleFor(classID, path)
				ref.ContextPath = path
				ref.ComponentType = componentType
				ref.DepKind = rule.depKind
				ref.Strength = rule.strength
				*out = append(*out, ref)
			}
			return
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			walkReferences(v[k], childPath, classID, componentType, out)
		}
	case []any:
		for i, item := range v {
			childPath := fmt.Sprintf("%s[%d]", path, i)
			walkReferences(item, childPath, classID, componentType, out)
		}
	}
}

// asReference reports whether m is a Unity reference object, i.e. it has a
// "fileID" key (and no other non-reference keys besides "guid"/"type").
func asReference(m map[string]any) (Reference, bool) {
	raw, ok := m["fileID"]
	if !ok {
		return Reference{}, false
	}
	for k := range m {
		switch k {
		case "fileID", "guid", "type":
		default:
			return Reference{}, false
		}
	}

	fileID := toInt64(raw)
	ref := Reference{TargetFileID: fileID}
	if g, ok := m["guid"].(string); ok {
		if norm, ok := assets.NormalizeGUID(g); ok {
			ref.TargetGUID = norm
		}
	}
	return ref, true
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case uint64:
		return int64(n)
	default:
		return 0
	}
}
