package mextract

import (
	"strings"

	"github.com/goccy/go-json"
)

// Extract is one variable-extraction rule on a step: pull a value out of the
// response (or execution context) and bind it to a variable name.
type Extract struct {
	Name   string `json:"name"`
	Range  string `json:"range,omitempty"`
	Source string `json:"source,omitempty"`
	Expr   string `json:"expr,omitempty"`
	Index  any    `json:"index,omitempty"`
}

// DecodeList decodes the backend's extract_variables field. Old rows store a
// map keyed by variable name instead of a list; both shapes are accepted.
// Malformed payloads decode to nil rather than failing the whole step.
func DecodeList(raw json.RawMessage) []Extract {
	if len(raw) == 0 {
		return nil
	}
	var list []Extract
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var byName map[string]Extract
	if err := json.Unmarshal(raw, &byName); err == nil {
		out := make([]Extract, 0, len(byName))
		for name, e := range byName {
			if e.Name == "" {
				e.Name = name
			}
			out = append(out, e)
		}
		return out
	}
	return nil
}

// Names returns the variable names declared by rules, in order, skipping
// blanks.
func Names(rules []Extract) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(r.Name))
	}
	return out
}
