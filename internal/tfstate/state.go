// Package tfstate reads Terraform state files and extracts root module
// outputs. Only state format version 4 is supported.
package tfstate

import (
	"encoding/json"
	"fmt"
)

const supportedVersion = 4

// State is the subset of a Terraform state file needed to read outputs.
type State struct {
	Version          int               `json:"version"`
	TerraformVersion string            `json:"terraform_version"`
	Serial           uint64            `json:"serial"`
	Lineage          string            `json:"lineage"`
	Outputs          map[string]Output `json:"outputs"`
}

// Output is a single root module output.
type Output struct {
	Value     json.RawMessage `json:"value"`
	Type      json.RawMessage `json:"type"`
	Sensitive bool            `json:"sensitive"`
}

// Parse decodes raw state file contents.
func Parse(data []byte) (*State, error) {
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse terraform state: %w", err)
	}
	if state.Version != supportedVersion {
		return nil, fmt.Errorf("unsupported terraform state version %d (only version %d is supported)", state.Version, supportedVersion)
	}
	return &state, nil
}

// OutputValues returns the decoded value of every root module output.
func (s *State) OutputValues() (map[string]any, error) {
	values := make(map[string]any, len(s.Outputs))
	for name, out := range s.Outputs {
		var v any
		if err := json.Unmarshal(out.Value, &v); err != nil {
			return nil, fmt.Errorf("failed to decode output %q: %w", name, err)
		}
		values[name] = v
	}
	return values, nil
}

// OutputString returns a single output as a string, erroring when the output
// is missing or not a string.
func (s *State) OutputString(name string) (string, error) {
	out, ok := s.Outputs[name]
	if !ok {
		return "", fmt.Errorf("terraform state has no output %q", name)
	}
	var v string
	if err := json.Unmarshal(out.Value, &v); err != nil {
		return "", fmt.Errorf("output %q is not a string: %w", name, err)
	}
	return v, nil
}
