package mcondition

import (
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// Condition is the comparison triple used by if steps and by loops in
// condition mode: evaluate Value (a literal or a ${var} reference), compare
// it against ExceptValue with Operation.
type Condition struct {
	Value       string `json:"value"`
	Operation   string `json:"operation"`
	ExceptValue any    `json:"except_value,omitempty"`
	Desc        string `json:"desc,omitempty"`
}

func (c Condition) IsZero() bool {
	return c.Value == "" && c.Operation == "" && c.ExceptValue == nil && c.Desc == ""
}

var pyLiteral = regexp.MustCompile(`\b(None|True|False)\b`)

func normalizePyLiterals(s string) string {
	return pyLiteral.ReplaceAllStringFunc(s, func(m string) string {
		switch m {
		case "None":
			return "null"
		case "True":
			return "true"
		default:
			return "false"
		}
	})
}

// DecodeLenient parses the backend's conditions field. The column has held
// three shapes over time: a JSON object, a single-element array of objects,
// and a string containing JSON (sometimes with Python literals inside).
// Anything unparseable degrades to the zero Condition so one bad row cannot
// fail the whole tree load.
func DecodeLenient(raw json.RawMessage) Condition {
	if len(raw) == 0 {
		return Condition{}
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return Condition{}
	}

	// String column: unwrap, then parse the embedded document.
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Condition{}
		}
		return decodeDocument(s)
	}
	return decodeDocument(trimmed)
}

func decodeDocument(doc string) Condition {
	doc = strings.TrimSpace(normalizePyLiterals(doc))
	if doc == "" {
		return Condition{}
	}
	if strings.HasPrefix(doc, "[") {
		var list []Condition
		if err := json.Unmarshal([]byte(doc), &list); err != nil || len(list) == 0 {
			return Condition{}
		}
		return list[0]
	}
	var c Condition
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return Condition{}
	}
	return c
}

// Encode renders the condition the way the save payload carries it: a
// single-element array, matching what the backend's normalizer expects.
func Encode(c Condition) json.RawMessage {
	if c.IsZero() {
		return nil
	}
	raw, err := json.Marshal([]Condition{c})
	if err != nil {
		return nil
	}
	return raw
}
