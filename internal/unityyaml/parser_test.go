package unityyaml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/unityscan/depgraph/internal/assets"
)

const samplePrefab = `%YAML 1.1
%TAG !u! tag:unity3d.com,2011:
--- !u!1 &100000
GameObject:
  m_Component:
  - component: {fileID: 400000}
  - component: {fileID: 2300000}
--- !u!4 &400000
Transform:
  m_GameObject: {fileID: 100000}
--- !u!23 &2300000
MeshRenderer:
  m_GameObject: {fileID: 100000}
  m_Materials:
  - {fileID: 2100000, guid: 11111111111111111111111111111111, type: 2}
`

func TestParseAssetExtractsDirectReferences(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cube.prefab")
	if err := os.WriteFile(path, []byte(samplePrefab), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := ParseAsset(path)
	if err != nil {
		t.Fatalf("ParseAsset: %v", err)
	}

	var found bool
	for _, ref := range res.References {
		if ref.TargetGUID == "11111111111111111111111111111111" {
			found = true
			if ref.DepKind != assets.DepKindMaterial {
				t.Errorf("expected material dep kind, got %s", ref.DepKind)
			}
			if ref.Strength != assets.StrengthStrong {
				t.Errorf("expected strong strength, got %s", ref.Strength)
			}
		}
	}
	if !found {
		t.Fatalf("expected a reference to the material guid, got %+v", res.References)
	}

	// Local fileID-only references (Transform -> GameObject) should also
	// be captured, with no guid.
	var localFound bool
	for _, ref := range res.References {
		if ref.TargetGUID == "" && ref.TargetFileID == 100000 {
			localFound = true
		}
	}
	if !localFound {
		t.Fatalf("expected a local fileID-only reference to 100000, got %+v", res.References)
	}
}
