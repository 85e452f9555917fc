package steptree

import "github.com/krun-tools/stepcraft/pkg/model/mstep"

// StepKind is the editor's closed set of step types.
type StepKind int8

const (
	KindHTTP StepKind = iota
	KindLoop
	KindCode
	KindIf
	KindWait
	KindDatabase
	KindUserVars
	KindQuote
)

func (k StepKind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindLoop:
		return "loop"
	case KindCode:
		return "code"
	case KindIf:
		return "if"
	case KindWait:
		return "wait"
	case KindDatabase:
		return "database"
	case KindUserVars:
		return "user_variables"
	case KindQuote:
		return "quote"
	default:
		return "unknown"
	}
}

// KindInfo is the registry row for one step kind. Every structural decision
// (can-drop-inside, serialize-children-or-not, expand toggle) goes through
// AllowsChildren here; nothing else may duplicate that predicate.
type KindInfo struct {
	Kind           StepKind
	BackendLabel   string
	DefaultName    string
	AllowsChildren bool
}

var registry = map[StepKind]KindInfo{
	KindHTTP:     {Kind: KindHTTP, BackendLabel: mstep.TypeHTTP, DefaultName: "HTTP请求"},
	KindLoop:     {Kind: KindLoop, BackendLabel: mstep.TypeLoop, DefaultName: "循环结构", AllowsChildren: true},
	KindCode:     {Kind: KindCode, BackendLabel: mstep.TypeCode, DefaultName: "执行代码"},
	KindIf:       {Kind: KindIf, BackendLabel: mstep.TypeIf, DefaultName: "条件分支", AllowsChildren: true},
	KindWait:     {Kind: KindWait, BackendLabel: mstep.TypeWait, DefaultName: "等待控制"},
	KindDatabase: {Kind: KindDatabase, BackendLabel: mstep.TypeDatabase, DefaultName: "数据库"},
	KindUserVars: {Kind: KindUserVars, BackendLabel: mstep.TypeUserVars, DefaultName: "用户变量"},
	KindQuote:    {Kind: KindQuote, BackendLabel: mstep.TypeQuote, DefaultName: "引用用例"},
}

var kindByLabel = func() map[string]StepKind {
	m := make(map[string]StepKind, len(registry))
	for kind, info := range registry {
		m[info.BackendLabel] = kind
	}
	return m
}()

// Info returns the registry row for a kind.
func Info(kind StepKind) KindInfo {
	info, ok := registry[kind]
	if !ok {
		return registry[KindCode]
	}
	return info
}

// AllowsChildren is the single child-allowance predicate.
func AllowsChildren(kind StepKind) bool {
	return Info(kind).AllowsChildren
}

// KindFromLabel maps a backend step_type label to the internal kind.
// Unknown labels map to KindCode so backend evolution degrades instead of
// failing the load.
func KindFromLabel(label string) StepKind {
	if kind, ok := kindByLabel[label]; ok {
		return kind
	}
	return KindCode
}

// LabelFromKind is the reverse lookup used on save.
func LabelFromKind(kind StepKind) string {
	return Info(kind).BackendLabel
}

// Kinds returns every registered kind in a stable order, for pickers.
func Kinds() []StepKind {
	return []StepKind{
		KindHTTP, KindLoop, KindCode, KindIf,
		KindWait, KindDatabase, KindUserVars, KindQuote,
	}
}
