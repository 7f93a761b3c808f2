package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/2beens/hyroxcoach/internal/coach"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tools []coach.Tool

func (t tools) Tools() []coach.Tool { return t }

type paceInput struct {
	TargetMinutes float64 `json:"target_minutes" validate:"required,gt=0,lte=300" jsonschema:"Target finish time"`
	FitnessLevel  string  `json:"fitness_level" validate:"required,oneof=beginner advanced" jsonschema:"Fitness level"`
}

func testRegistry(t *testing.T) *coach.Registry {
	t.Helper()
	registry, err := coach.NewRegistry(
		coach.Binding{AthleteID: uuid.New(), UserID: uuid.New()},
		nil,
		tools{
			coach.NewTool("pace", "Pacing for a target", func(_ context.Context, c coach.Call, in paceInput) coach.Result {
				return coach.Result{
					"per_km":     in.TargetMinutes / 16,
					"athlete_id": c.AthleteID.String(),
				}
			}),
			coach.NewTool("broken", "Always fails", func(_ context.Context, c coach.Call, _ struct{}) coach.Result {
				return c.ReadFailure("do the thing", assert.AnError)
			}),
		},
	)
	require.NoError(t, err)
	return registry
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestHandler_ToolHandler(t *testing.T) {
	registry := testRegistry(t)
	h := NewHandler(registry)

	t.Run("returns_json_result", func(t *testing.T) {
		res, _, err := h.ToolHandler("pace")(context.Background(), &mcp.CallToolRequest{}, map[string]any{
			"target_minutes": 80.0,
			"fitness_level":  "advanced",
		})
		require.NoError(t, err)
		assert.False(t, res.IsError)

		var out map[string]any
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &out))
		assert.Equal(t, 5.0, out["per_km"])
		assert.Equal(t, registry.Binding().AthleteID.String(), out["athlete_id"])
	})

	t.Run("validation_error_is_tool_error", func(t *testing.T) {
		res, _, err := h.ToolHandler("pace")(context.Background(), &mcp.CallToolRequest{}, map[string]any{
			"target_minutes": 80.0,
			"fitness_level":  "pro",
		})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "fitness_level must be one of")
	})

	t.Run("unknown_tool", func(t *testing.T) {
		res, _, err := h.ToolHandler("nope")(context.Background(), &mcp.CallToolRequest{}, nil)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "Unknown tool: nope", textOf(t, res))
	})

	t.Run("read_failure_is_content", func(t *testing.T) {
		res, _, err := h.ToolHandler("broken")(context.Background(), &mcp.CallToolRequest{}, nil)
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.JSONEq(t, `{"error":true,"message":"Unable to do the thing. Please try again."}`, textOf(t, res))
	})
}

func TestInputSchema(t *testing.T) {
	registry := testRegistry(t)
	tool, ok := registry.Tool("pace")
	require.True(t, ok)

	js := InputSchema(tool.Schema)
	assert.Equal(t, "object", js.Type)
	assert.ElementsMatch(t, []string{"target_minutes", "fitness_level"}, js.Required)
	require.Contains(t, js.Properties, "fitness_level")
	assert.Equal(t, []any{"beginner", "advanced"}, js.Properties["fitness_level"].Enum)
	require.NotNil(t, js.Properties["target_minutes"].Maximum)
	assert.Equal(t, 300.0, *js.Properties["target_minutes"].Maximum)
	assert.Nil(t, js.Properties["target_minutes"].Minimum)
	require.NotNil(t, js.Properties["target_minutes"].ExclusiveMinimum)
	assert.Equal(t, 0.0, *js.Properties["target_minutes"].ExclusiveMinimum)
	assert.Equal(t, "number", js.Properties["target_minutes"].Type)

	empty, ok := registry.Tool("broken")
	require.True(t, ok)
	js = InputSchema(empty.Schema)
	assert.Empty(t, js.Properties)
	assert.Empty(t, js.Required)
}

func TestNewServer_ListsAndCallsTools(t *testing.T) {
	ctx := context.Background()
	registry := testRegistry(t)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := NewServer(registry).Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	listed, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"pace", "broken"}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "pace",
		Arguments: map[string]any{"target_minutes": 96, "fitness_level": "beginner"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textOf(t, res), `"per_km":6`)
}
