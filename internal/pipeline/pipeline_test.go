package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unityscan/depgraph/internal/assets"
	"github.com/unityscan/depgraph/internal/changedetect"
	"github.com/unityscan/depgraph/internal/cycle"
	"github.com/unityscan/depgraph/internal/graph"
)

const texGUID = "22222222222222222222222222222222"
const matGUID = "33333333333333333333333333333333"

const texMeta = `fileFormatVersion: 2
guid: ` + texGUID + `
TextureImporter:
  mipmaps:
    enableMipMap: 1
`

const matMeta = `fileFormatVersion: 2
guid: ` + matGUID + `
NativeFormatImporter:
  mainObjectFileID: 2100000
`

const matBody = `%YAML 1.1
%TAG !u! tag:unity3d.com,2011:
--- !u!21 &2100000
Material:
  m_Name: Mat
  m_Shader: {fileID: 4800000, guid: 0000000000000000f000000000000000, type: 0}
  m_SavedProperties:
    m_TexEnvs:
    - _MainTex:
        m_Texture: {fileID: 2800000, guid: ` + texGUID + `, type: 3}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// buildTestPipeline wires a Pipeline against empty in-memory/on-disk state,
// the same way cmd/unityscan's openApp does for a fresh project.
func buildTestPipeline(t *testing.T) (*Pipeline, *graph.Store) {
	t.Helper()
	store := graph.NewStore()
	engine, err := graph.NewEngine(store, 0)
	require.NoError(t, err)
	checker := cycle.NewReachabilityChecker(cycle.NewStoreAdapter(store))
	updater := graph.NewUpdater(store, true, checker)
	cache, err := changedetect.OpenCache(filepath.Join(t.TempDir(), "sig.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	return New(store, engine, updater, cache, nil), store
}

func TestPipelineRunBuildsNodesAndEdges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Assets", "Tex.png.meta"), texMeta)
	writeFile(t, filepath.Join(root, "Assets", "Tex.png"), "fake-png-bytes")
	writeFile(t, filepath.Join(root, "Assets", "Mat.mat.meta"), matMeta)
	writeFile(t, filepath.Join(root, "Assets", "Mat.mat"), matBody)

	pl, store := buildTestPipeline(t)

	report, err := pl.Run(context.Background(), Options{
		Roots:      []string{root},
		MaxWorkers: 2,
	})
	require.NoError(t, err)
	require.Empty(t, report.ParseErrors)
	require.Equal(t, 2, report.NodesUpserted)

	texNode := store.Node(texGUID)
	require.NotNil(t, texNode)
	require.Equal(t, assets.KindTexture, texNode.Kind)

	matNode := store.Node(matGUID)
	require.NotNil(t, matNode)
	require.Equal(t, assets.KindMaterial, matNode.Kind)

	edges := store.OutEdges(matGUID)
	require.Len(t, edges, 1)
	require.Equal(t, texGUID, edges[0].Target)

	require.Len(t, report.ResolveErrors, 1)
	require.Equal(t, matGUID, report.ResolveErrors[0].SourceGUID)
	require.Equal(t, "0000000000000000f000000000000000", report.ResolveErrors[0].TargetGUID)
}

func TestPipelineRunIncrementalSkipsUnchanged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Assets", "Tex.png.meta"), texMeta)
	writeFile(t, filepath.Join(root, "Assets", "Tex.png"), "fake-png-bytes")

	pl, _ := buildTestPipeline(t)
	ctx := context.Background()

	first, err := pl.Run(ctx, Options{Roots: []string{root}})
	require.NoError(t, err)
	require.Equal(t, 1, first.NodesUpserted)

	second, err := pl.Run(ctx, Options{Roots: []string{root}, Incremental: true})
	require.NoError(t, err)
	require.Zero(t, second.NodesUpserted)
	require.Equal(t, 2, second.FilesWalked)
}
