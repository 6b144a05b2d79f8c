// Package nlquery translates an English question about the dependency
// graph into a graph.QueryOptions plus an operation name, per spec §4.6's
// optional natural-language query surface. Disabled unless OPENAI_API_KEY
// is set.
//
// Grounded on recera-onyx-coding-agent's internal/llm/llm.go (LLMClient,
// NewLLMClient reading OPENAI_API_KEY, GenerateQuery via
// CreateChatCompletion), generalized from "question + schema -> Cypher
// string" to "question + schema summary -> parsed operation request".
package nlquery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/unityscan/depgraph/internal/assets"
	"github.com/unityscan/depgraph/internal/graph"
)

// Request is the parsed intent behind a natural-language question.
type Request struct {
	Operation  string // one of "direct_deps", "all_deps", "direct_refs", "all_refs", "path", "impact", "unused", "validate_refs"
	GUID       string
	TargetGUID string // for "path"
	Options    graph.QueryOptions
}

// Client wraps an OpenAI chat client scoped to translating questions about
// the asset graph into Request values.
type Client struct {
	client *openai.Client
}

// NewClient builds a Client, reading the API key from OPENAI_API_KEY.
// Returns an error if the key is absent so callers can treat nlquery as an
// optional feature rather than a hard dependency.
func NewClient() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set; natural-language queries are disabled")
	}
	return &Client{client: openai.NewClient(apiKey)}, nil
}

// schemaSummary describes the graph's shape for the model: known asset
// kinds, dep kinds and strengths, used so the model only ever proposes
// operations and filters this build actually supports.
const schemaSummary = `Unity asset dependency graph.
Node kinds: texture, model, script, scene, prefab, material, shader, audio, animation, animator_controller, font, video, shader_graph, scriptable_object, native, unknown.
Edge dep_kind: script, material, texture, mesh, audio, animation, prefab_instance, scene_instance, shader, scriptable_object, path_reference, indirect.
Edge strength, weakest to strongest: weak, medium, strong, important, critical.
Supported operations: direct_deps(guid), all_deps(guid), direct_refs(guid), all_refs(guid), path(guid,target_guid), impact(guid), unused(), validate_refs().`

const systemPrompt = `You translate a user's question about a Unity asset dependency graph into a
single JSON object describing which supported operation answers it.
%s

Respond with ONLY a JSON object of the form:
{"operation": "...", "guid": "...", "target_guid": "...", "min_strength": "weak|medium|strong|important|critical", "max_depth": 0}
Omit fields that don't apply. Do not include any prose.

Question: %s`

// Translate asks the model to classify question into a Request.
func (c *Client) Translate(ctx context.Context, question string) (Request, error) {
	prompt := fmt.Sprintf(systemPrompt, schemaSummary, question)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
	})
	if err != nil {
		return Request{}, fmt.Errorf("failed to translate question: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Request{}, fmt.Errorf("no choices returned for natural-language query")
	}

	return parseResponse(resp.Choices[0].Message.Content)
}

type rawResponse struct {
	Operation   string `json:"operation"`
	GUID        string `json:"guid"`
	TargetGUID  string `json:"target_guid"`
	MinStrength string `json:"min_strength"`
	MaxDepth    int    `json:"max_depth"`
}

func parseResponse(content string) (Request, error) {
	var raw rawResponse
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Request{}, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}

	req := Request{
		Operation:  raw.Operation,
		GUID:       raw.GUID,
		TargetGUID: raw.TargetGUID,
		Options:    graph.QueryOptions{MaxDepth: raw.MaxDepth},
	}
	if raw.MinStrength != "" {
		if s, ok := assets.ParseStrength(raw.MinStrength); ok {
			req.Options.MinStrength = s
		}
	}
	return req, nil
}
