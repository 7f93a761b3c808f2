package mcp

import (
	"net/http"

	"github.com/2beens/hyroxcoach/internal/coach"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

const (
	serverName    = "hyrox-coach"
	serverVersion = "1.0.0"
)

// NewServer exposes every tool of the bound registry as an MCP tool.
// Used by coachctl over stdio and by the HTTP server per session at /mcp.
func NewServer(registry toolRegistry) *mcp.Server {
	h := NewHandler(registry)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	for _, t := range registry.Tools() {
		mcp.AddTool(s, &mcp.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: InputSchema(t.Schema),
		}, h.ToolHandler(t.Name))
	}

	return s
}

// NewStreamableHandler serves MCP over streamable HTTP. bind resolves the registry of the
// athlete behind the request; requests it cannot bind get no server.
func NewStreamableHandler(bind func(r *http.Request) (*coach.Registry, error)) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		registry, err := bind(r)
		if err != nil {
			log.Debugf("mcp: cannot bind request: %s", err)
			return nil
		}
		return NewServer(registry)
	}, nil)
}

// InputSchema converts a tool schema to JSON Schema. Additional properties are rejected.
func InputSchema(s coach.Schema) *jsonschema.Schema {
	js := &jsonschema.Schema{
		Type:                 "object",
		Properties:           make(map[string]*jsonschema.Schema, len(s.Fields)),
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
	for _, f := range s.Fields {
		p := &jsonschema.Schema{
			Type:        f.Type,
			Description: f.Description,
			Format:      f.Format,
			Minimum:     f.Minimum,
			Maximum:     f.Maximum,

			ExclusiveMinimum: f.ExclusiveMinimum,
			ExclusiveMaximum: f.ExclusiveMaximum,
		}
		for _, e := range f.Enum {
			p.Enum = append(p.Enum, e)
		}
		js.Properties[f.Name] = p
		if f.Required {
			js.Required = append(js.Required, f.Name)
		}
	}
	return js
}
