package nlquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unityscan/depgraph/internal/assets"
)

func TestParseResponseDecodesFields(t *testing.T) {
	req, err := parseResponse(`{"operation":"all_deps","guid":"abc","min_strength":"strong","max_depth":3}`)
	require.NoError(t, err)
	assert.Equal(t, "all_deps", req.Operation)
	assert.Equal(t, "abc", req.GUID)
	assert.Equal(t, assets.StrengthStrong, req.Options.MinStrength)
	assert.Equal(t, 3, req.Options.MaxDepth)
}

func TestParseResponseIgnoresUnknownStrength(t *testing.T) {
	req, err := parseResponse(`{"operation":"unused","min_strength":"not-a-strength"}`)
	require.NoError(t, err)
	assert.Equal(t, "unused", req.Operation)
	assert.Equal(t, assets.StrengthWeak, req.Options.MinStrength)
}

func TestParseResponseRejectsMalformedJSON(t *testing.T) {
	_, err := parseResponse(`not json`)
	require.Error(t, err)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	require.Error(t, err)
}
