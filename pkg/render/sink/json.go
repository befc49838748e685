package sink

import (
	"encoding/json"

	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/render/tex"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	model  string
	indent bool
}

// WithJSONModel records the source model name in the output.
func WithJSONModel(name string) JSONOption { return func(r *jsonRenderer) { r.model = name } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Model   string            `json:"model,omitempty"`
	Stats   expand.Stats      `json:"stats"`
	Display map[string]string `json:"display"`
	*expand.Diagram
}

// RenderJSON serialises the diagram with its stats and the plain-text
// display label of every instance.
func RenderJSON(d *expand.Diagram, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Model:   r.model,
		Stats:   d.Stats(),
		Display: make(map[string]string, len(d.Nodes)),
		Diagram: d,
	}
	for _, n := range d.Nodes {
		out.Display[n.Instance] = tex.Parse(n.Label).String()
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

// ReadJSON decodes a diagram written by [RenderJSON].
func ReadJSON(data []byte) (*expand.Diagram, error) {
	var d expand.Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
