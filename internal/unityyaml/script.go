package unityyaml

import (
	"os"
	"regexp"

	"github.com/unityscan/depgraph/internal/scanerr"
)

// createAssetMenuPattern detects a [CreateAssetMenu] attribute, which marks
// a ScriptableObject subclass the user can instantiate from Unity's Assets
// menu (spec §4.3.1's "scripts are otherwise opaque" note, with this one
// documented exception).
var createAssetMenuPattern = regexp.MustCompile(`\[CreateAssetMenu(\([^)]*\))?\]`)

// ScriptInfo is the only signal ScriptParser extracts from a .cs file.
type ScriptInfo struct {
	Path               string
	HasCreateAssetMenu bool
}

// ParseScript inspects a C# source file for [CreateAssetMenu]. Per spec
// §4.3.1, script bodies are otherwise opaque: the dependency graph learns
// about a script's role only through what other assets reference via
// MonoImporter/m_Script, not through static analysis of the script itself.
func ParseScript(path string) (*ScriptInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &scanerr.IoError{Path: path, Cause: err}
	}
	return &ScriptInfo{
		Path:               path,
		HasCreateAssetMenu: createAssetMenuPattern.Match(data),
	}, nil
}
