// Package unityyaml parses Unity's on-disk asset formats: .meta side-car
// files and the multi-document YAML used by .unity/.prefab/.mat/.asset/
// .controller/.anim files (spec §4.3).
//
// Document decoding is grounded on gopkg.in/yaml.v3, used the same way
// across the example pack (k-kohey-axe-cli's view package, among others)
// for structured YAML decode rather than hand-rolled line scanning.
package unityyaml

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/unityscan/depgraph/internal/assets"
	"github.com/unityscan/depgraph/internal/scanerr"
)

// MetaResult is what a .meta file tells us about the asset it shadows.
type MetaResult struct {
	GUID          string
	ImporterKey   string // e.g. "TextureImporter"
	ImporterProps map[string]any
}

type metaDoc struct {
	GUID         string         `yaml:"guid"`
	TimeCreated  int64          `yaml:"timeCreated"`
	ExternalMods map[string]any `yaml:",inline"`
}

var guidOnlyPattern = regexp.MustCompile(`(?m)^guid:\s*([0-9a-fA-F]{32})\s*$`)

// ParseMeta fully decodes a .meta file, classifying the importer and
// capturing its settings block.
func ParseMeta(path string) (*MetaResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &scanerr.IoError{Path: path, Cause: err}
	}

	var doc metaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &scanerr.ParseError{Path: path, Kind: scanerr.ParseErrMalformedYAML, Detail: err.Error()}
	}

	if !assets.ValidGUID(doc.GUID) {
		return nil, &scanerr.ParseError{Path: path, Kind: scanerr.ParseErrMissingGUID, Detail: "no valid guid field"}
	}
	guid, _ := assets.NormalizeGUID(doc.GUID)

	importerKey := ""
	var importerProps map[string]any
	for k, v := range doc.ExternalMods {
		if k == "guid" || k == "timeCreated" || k == "fileFormatVersion" || k == "licenseType" {
			continue
		}
		importerKey = k
		if m, ok := v.(map[string]any); ok {
			importerProps = m
		}
		break
	}

	return &MetaResult{GUID: guid, ImporterKey: importerKey, ImporterProps: importerProps}, nil
}

// ExtractGUIDOnly is a fast path for reading only a .meta file's guid
// (spec §4.3.1): it regex-matches the guid line without paying for a full
// YAML decode. The scan pipeline does not call it; every .meta file it
// parses goes through ParseMeta.
func ExtractGUIDOnly(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &scanerr.IoError{Path: path, Cause: err}
	}
	m := guidOnlyPattern.FindSubmatch(data)
	if m == nil {
		return "", &scanerr.ParseError{Path: path, Kind: scanerr.ParseErrMissingGUID, Detail: "guid line not found"}
	}
	guid, ok := assets.NormalizeGUID(string(m[1]))
	if !ok {
		return "", &scanerr.ParseError{Path: path, Kind: scanerr.ParseErrBadGUID, Detail: fmt.Sprintf("malformed guid %q", m[1])}
	}
	return guid, nil
}
