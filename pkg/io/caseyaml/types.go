// Package caseyaml converts a case and its step tree to and from a YAML
// document, so cases can be versioned in git and shared between consoles.
package caseyaml

import (
	"fmt"
)

// YamlCase is the top-level document.
type YamlCase struct {
	Name             string         `yaml:"name"`
	Desc             string         `yaml:"desc,omitempty"`
	Project          int64          `yaml:"project,omitempty"`
	Type             string         `yaml:"type,omitempty"`
	Attr             string         `yaml:"attr,omitempty"`
	Tags             []string       `yaml:"tags,omitempty"`
	SessionVariables []YamlKeyValue `yaml:"session_variables,omitempty"`
	Steps            []YamlStep     `yaml:"steps,omitempty"`
}

// YamlStep wraps exactly one step kind, the key names the kind:
//
//	- http: {name: login, method: POST, url: /login}
//	- loop: {name: retry, mode: count, maximums: 3, steps: [...]}
type YamlStep struct {
	HTTP     *YamlHTTPStep     `yaml:"http,omitempty"`
	Loop     *YamlLoopStep     `yaml:"loop,omitempty"`
	If       *YamlIfStep       `yaml:"if,omitempty"`
	Code     *YamlCodeStep     `yaml:"code,omitempty"`
	Wait     *YamlWaitStep     `yaml:"wait,omitempty"`
	Database *YamlDatabaseStep `yaml:"database,omitempty"`
	Vars     *YamlVarsStep     `yaml:"vars,omitempty"`
	Quote    *YamlQuoteStep    `yaml:"quote,omitempty"`
}

type YamlKeyValue struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value,omitempty"`
	Desc  string `yaml:"desc,omitempty"`
}

type YamlExtract struct {
	Name   string `yaml:"name"`
	Range  string `yaml:"range,omitempty"`
	Source string `yaml:"source,omitempty"`
	Expr   string `yaml:"expr,omitempty"`
	Index  any    `yaml:"index,omitempty"`
}

type YamlAssert struct {
	Name        string `yaml:"name,omitempty"`
	Expr        string `yaml:"expr"`
	Range       string `yaml:"range,omitempty"`
	Operation   string `yaml:"operation"`
	ExceptValue any    `yaml:"except_value,omitempty"`
}

type YamlCondition struct {
	Value       string `yaml:"value"`
	Operation   string `yaml:"operation"`
	ExceptValue any    `yaml:"except_value,omitempty"`
	Desc        string `yaml:"desc,omitempty"`
}

type YamlHTTPStep struct {
	Name     string         `yaml:"name"`
	Desc     string         `yaml:"desc,omitempty"`
	Method   string         `yaml:"method"`
	URL      string         `yaml:"url"`
	Headers  []YamlKeyValue `yaml:"headers,omitempty"`
	Params   []YamlKeyValue `yaml:"params,omitempty"`
	ArgsType string         `yaml:"args_type,omitempty"`
	Body     string         `yaml:"body,omitempty"`
	Form     []YamlKeyValue `yaml:"form,omitempty"`
	Files    []YamlKeyValue `yaml:"files,omitempty"`
	Defined  []YamlKeyValue `yaml:"defined,omitempty"`
	Extracts []YamlExtract  `yaml:"extracts,omitempty"`
	Asserts  []YamlAssert   `yaml:"asserts,omitempty"`
}

type YamlLoopStep struct {
	Name      string         `yaml:"name"`
	Desc      string         `yaml:"desc,omitempty"`
	Mode      string         `yaml:"mode"`
	Maximums  int            `yaml:"maximums,omitempty"`
	Target    string         `yaml:"target,omitempty"`
	Key       string         `yaml:"key,omitempty"`
	Value     string         `yaml:"value,omitempty"`
	Condition *YamlCondition `yaml:"condition,omitempty"`
	Interval  float64        `yaml:"interval,omitempty"`
	Timeout   float64        `yaml:"timeout,omitempty"`
	OnError   string         `yaml:"on_error,omitempty"`
	Steps     []YamlStep     `yaml:"steps"`
}

type YamlIfStep struct {
	Name      string         `yaml:"name"`
	Desc      string         `yaml:"desc,omitempty"`
	Condition *YamlCondition `yaml:"condition,omitempty"`
	Steps     []YamlStep     `yaml:"steps"`
}

type YamlCodeStep struct {
	Name     string        `yaml:"name"`
	Desc     string        `yaml:"desc,omitempty"`
	Code     string        `yaml:"code"`
	Extracts []YamlExtract `yaml:"extracts,omitempty"`
}

type YamlWaitStep struct {
	Name    string  `yaml:"name"`
	Desc    string  `yaml:"desc,omitempty"`
	Seconds float64 `yaml:"seconds"`
}

type YamlDatabaseStep struct {
	Name     string        `yaml:"name"`
	Desc     string        `yaml:"desc,omitempty"`
	SQL      string        `yaml:"sql"`
	Extracts []YamlExtract `yaml:"extracts,omitempty"`
}

type YamlVarsStep struct {
	Name      string         `yaml:"name"`
	Desc      string         `yaml:"desc,omitempty"`
	Variables []YamlKeyValue `yaml:"variables"`
}

type YamlQuoteStep struct {
	Name     string `yaml:"name"`
	Desc     string `yaml:"desc,omitempty"`
	CaseID   int64  `yaml:"case_id"`
	CaseName string `yaml:"case_name,omitempty"`
}

// CaseYamlError reports a malformed document with enough context to fix it.
type CaseYamlError struct {
	Message string
	Field   string
	Index   int
}

func (e *CaseYamlError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("caseyaml: %s (%s, step %d)", e.Message, e.Field, e.Index)
	}
	return "caseyaml: " + e.Message
}

func newError(message, field string, index int) *CaseYamlError {
	return &CaseYamlError{Message: message, Field: field, Index: index}
}
