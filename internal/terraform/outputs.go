package terraform

import (
	"encoding/json"
	"fmt"
)

// Output is one entry of terraform output -json
type Output struct {
	Sensitive bool            `json:"sensitive"`
	Type      json.RawMessage `json:"type"`
	Value     any             `json:"value"`
}

// Outputs maps output names to their values
type Outputs map[string]Output

// ParseOutputs decodes the terraform output -json document. An empty
// document (no state, no outputs) decodes to an empty map.
func ParseOutputs(data []byte) (Outputs, error) {
	if len(data) == 0 {
		return Outputs{}, nil
	}
	var out Outputs
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse terraform outputs: %w", err)
	}
	if out == nil {
		out = Outputs{}
	}
	return out, nil
}

// String returns the named output as a string. The second return is false
// when the output is absent, null, or empty.
func (o Outputs) String(name string) (string, bool) {
	entry, ok := o[name]
	if !ok || entry.Value == nil {
		return "", false
	}
	s := fmt.Sprintf("%v", entry.Value)
	if s == "" || s == "<nil>" || s == "null" {
		return "", false
	}
	return s, true
}

// StringOr returns the named output or the fallback when absent
func (o Outputs) StringOr(name, fallback string) string {
	if v, ok := o.String(name); ok {
		return v
	}
	return fallback
}

// Strings flattens all outputs to display strings, skipping sensitive values
func (o Outputs) Strings() map[string]string {
	out := make(map[string]string, len(o))
	for name, entry := range o {
		if entry.Sensitive {
			out[name] = "(sensitive)"
			continue
		}
		if v, ok := o.String(name); ok {
			out[name] = v
		}
	}
	return out
}
