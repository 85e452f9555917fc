package steptree

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/model/massert"
	"github.com/krun-tools/stepcraft/pkg/model/mcondition"
	"github.com/krun-tools/stepcraft/pkg/model/mextract"
	"github.com/krun-tools/stepcraft/pkg/model/mstep"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
)

var (
	ErrNodeNotFound      = errors.New("step node not found")
	ErrNotAContainer     = errors.New("step type does not allow children")
	ErrMoveIntoSelf      = errors.New("cannot move a step into itself or its own subtree")
	ErrHalfPersisted     = errors.New("step carries exactly one backend identifier")
	ErrUnknownKind       = errors.New("unknown step kind")
	ErrInvalidInsertSlot = errors.New("insert index out of range")
)

// HTTPConfig holds the editable fields of an HTTP request step.
type HTTPConfig struct {
	Method     string
	URL        string
	Port       string
	ArgsType   string
	Headers    []mvar.KeyValue
	Params     []mvar.KeyValue
	FormData   []mvar.KeyValue
	FormFiles  []mvar.KeyValue
	URLEncoded []mvar.KeyValue
	BodyText   string
	BodyJSON   json.RawMessage
	ProjectID  int64

	Defined  []mvar.KeyValue
	Extracts []mextract.Extract
	Asserts  []massert.Assert
}

// LoopConfig holds the loop step fields. Condition is only meaningful in
// condition mode.
type LoopConfig struct {
	Mode      string
	Maximums  int
	Interval  float64
	Iterable  string
	IterIdx   string
	IterKey   string
	IterVal   string
	OnError   string
	Timeout   float64
	Condition mcondition.Condition
}

// CodeConfig holds a code step's source. Database steps reuse the same
// backend column for their SQL text, so DatabaseConfig mirrors this.
type CodeConfig struct {
	Source   string
	Extracts []mextract.Extract
}

type DatabaseConfig struct {
	SQL      string
	Extracts []mextract.Extract
}

type IfConfig struct {
	Condition mcondition.Condition
}

type WaitConfig struct {
	Seconds float64
}

type UserVarsConfig struct {
	Variables []mvar.KeyValue
}

// QuoteConfig references another case whose steps run inline. Preview holds
// the referenced script's mapped steps, read-only; they are never part of
// this tree's save payload or traversal.
type QuoteConfig struct {
	QuoteCaseID int64
	Preview     []*StepNode
}

// Config is the per-kind payload union. Exactly the pointer matching the
// node's kind is set.
type Config struct {
	HTTP     *HTTPConfig
	Loop     *LoopConfig
	Code     *CodeConfig
	If       *IfConfig
	Wait     *WaitConfig
	Database *DatabaseConfig
	UserVars *UserVarsConfig
	Quote    *QuoteConfig
}

// StepNode is one node of the authoring tree.
//
// Children is nil for non-container kinds and non-nil (possibly empty) for
// containers; that presence/absence is load-bearing and must survive every
// transform. Original is the last-known backend record, kept whole so a save
// round trip loses no backend-only metadata.
type StepNode struct {
	ID       idwrap.IDWrap
	Kind     StepKind
	Name     string
	Desc     string
	Config   Config
	Children []*StepNode
	Original *mstep.Step
}

// NewNode builds a node with the registry defaults for kind.
func NewNode(kind StepKind) *StepNode {
	info := Info(kind)
	n := &StepNode{
		ID:     idwrap.NewNow(),
		Kind:   kind,
		Name:   info.DefaultName,
		Config: defaultConfig(kind),
	}
	if info.AllowsChildren {
		n.Children = []*StepNode{}
	}
	return n
}

func defaultConfig(kind StepKind) Config {
	switch kind {
	case KindHTTP:
		return Config{HTTP: &HTTPConfig{Method: "GET", ArgsType: mstep.ArgsTypeJSON}}
	case KindLoop:
		return Config{Loop: &LoopConfig{Mode: mstep.LoopModeCount, Maximums: 1, OnError: mstep.LoopOnErrorStop}}
	case KindCode:
		return Config{Code: &CodeConfig{}}
	case KindIf:
		return Config{If: &IfConfig{}}
	case KindWait:
		return Config{Wait: &WaitConfig{Seconds: 1}}
	case KindDatabase:
		return Config{Database: &DatabaseConfig{}}
	case KindUserVars:
		return Config{UserVars: &UserVarsConfig{}}
	case KindQuote:
		return Config{Quote: &QuoteConfig{}}
	default:
		return Config{Code: &CodeConfig{}}
	}
}

// IsContainer reports whether this node's kind owns a child list.
func (n *StepNode) IsContainer() bool {
	return AllowsChildren(n.Kind)
}

// Persisted reports whether the node maps to an update on save. The rule is
// both-or-neither: a backend primary id and a step code always travel
// together. ErrHalfPersisted flags the state where exactly one is present.
func (n *StepNode) Persisted() (bool, error) {
	if n.Original == nil {
		return false, nil
	}
	hasID := n.Original.StepID != 0
	hasCode := n.Original.StepCode != ""
	if hasID != hasCode {
		return false, fmt.Errorf("%w: step %q (id=%d code=%q)",
			ErrHalfPersisted, n.Name, n.Original.StepID, n.Original.StepCode)
	}
	return hasID, nil
}

// StripIdentity removes backend identity so the node saves as a new row.
func (n *StepNode) StripIdentity() {
	if n.Original == nil {
		return
	}
	n.Original.StepID = 0
	n.Original.StepCode = ""
}

// DisplayName derives the label shown in the tree. Loop nodes encode their
// mode so the list reads like an execution plan.
func (n *StepNode) DisplayName() string {
	if n.Kind == KindLoop && n.Config.Loop != nil && n.Config.Loop.Mode != "" {
		return fmt.Sprintf("%s(%s)", n.Name, n.Config.Loop.Mode)
	}
	return n.Name
}
