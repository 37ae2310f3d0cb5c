// Package tools holds the external-action clients the agent can
// invoke: web search, page scraping, CV text extraction. Tool failures
// are data, not errors: a client that cannot reach its API returns the
// failure as tool output text so the model can route around it. The
// error return is reserved for malformed arguments.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is one callable action.
type Tool interface {
	Name() string
	Description() string
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry resolves tools by name.
type Registry struct {
	byName map[string]Tool
	order  []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, ok := r.byName[t.Name()]; ok {
			continue
		}
		r.byName[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return r
}

func (r *Registry) Lookup(name string) (Tool, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("tools: unknown tool %q", name)
	}
	return t, nil
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
