package tstep

import (
	"github.com/goccy/go-json"

	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/model/mcase"
	"github.com/krun-tools/stepcraft/pkg/model/mcondition"
	"github.com/krun-tools/stepcraft/pkg/model/mextract"
	"github.com/krun-tools/stepcraft/pkg/model/mstep"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
	"github.com/krun-tools/stepcraft/pkg/steptree"
)

// SavePayload is the body of the batch save request.
type SavePayload struct {
	Case  *mcase.Case  `json:"case"`
	Steps []mstep.Step `json:"steps"`
}

// BuildSavePayload converts the whole tree for saving. Step numbers are
// assigned in one preorder pass immediately before conversion; the case
// snapshot carries the full nested count.
func BuildSavePayload(t *steptree.Tree, c *mcase.Case) (*SavePayload, error) {
	snapshot := *c
	snapshot.CaseSteps = t.CountAll()
	numbers := t.AssignStepNumbers()

	steps := make([]mstep.Step, 0, len(t.Roots()))
	for _, root := range t.Roots() {
		rec, err := ConvertStepToBackend(root, nil, numbers, &snapshot)
		if err != nil {
			return nil, err
		}
		steps = append(steps, rec)
	}
	return &SavePayload{Case: &snapshot, Steps: steps}, nil
}

// ConvertStepToBackend converts one node and its subtree. parentID is the
// resolved backend id of the parent (nil at root level, and nil below a
// freshly created parent: the backend assigns ids for new subtrees).
//
// A node updates iff its Original carries both backend identifiers; a node
// with exactly one is rejected rather than silently treated as new.
func ConvertStepToBackend(n *steptree.StepNode, parentID *int64, numbers map[idwrap.IDWrap]int, c *mcase.Case) (mstep.Step, error) {
	persisted, err := n.Persisted()
	if err != nil {
		return mstep.Step{}, err
	}

	// Start from the last-known backend record so columns the editor never
	// touches survive the round trip.
	var rec mstep.Step
	if n.Original != nil {
		rec = *n.Original
	}

	rec.StepName = n.Name
	rec.StepDesc = n.Desc
	rec.StepType = steptree.LabelFromKind(n.Kind)
	rec.StepNo = numbers[n.ID]
	rec.CaseID = c.CaseID
	rec.ParentStepID = parentID
	rec.Case = c
	rec.Children = nil
	rec.QuoteSteps = nil
	rec.QuoteCase = nil

	// Identifiers travel together or not at all.
	if !persisted {
		rec.StepID = 0
		rec.StepCode = ""
	}

	projectConfig(&rec, n)

	if n.Children != nil {
		var childParent *int64
		if persisted {
			id := rec.StepID
			childParent = &id
		}
		children := make([]mstep.Step, 0, len(n.Children))
		for _, child := range n.Children {
			childRec, err := ConvertStepToBackend(child, childParent, numbers, c)
			if err != nil {
				return mstep.Step{}, err
			}
			children = append(children, childRec)
		}
		rec.Children = &children
	}
	return rec, nil
}

// projectConfig writes the node's editable fields back into their backend
// columns. Every key/value list is filtered through the blank-key rule on
// the way out; that is the only normalization the client applies.
func projectConfig(rec *mstep.Step, n *steptree.StepNode) {
	switch {
	case n.Config.HTTP != nil:
		cfg := n.Config.HTTP
		rec.RequestMethod = cfg.Method
		rec.RequestURL = cfg.URL
		rec.RequestPort = cfg.Port
		rec.RequestArgsType = cfg.ArgsType
		rec.RequestHeader = mvar.FilterBlankKeys(cfg.Headers)
		rec.RequestParams = mvar.FilterBlankKeys(cfg.Params)
		rec.RequestFormData = mvar.FilterBlankKeys(cfg.FormData)
		rec.RequestFormFile = mvar.FilterBlankKeys(cfg.FormFiles)
		rec.RequestFormUrlencoded = mvar.FilterBlankKeys(cfg.URLEncoded)
		rec.RequestText = cfg.BodyText
		rec.RequestBody = cfg.BodyJSON
		rec.RequestProjectID = cfg.ProjectID
		rec.DefinedVariables = mvar.FilterBlankKeys(cfg.Defined)
		rec.ExtractVariables = encodeExtracts(cfg.Extracts)
		rec.AssertValidators = cfg.Asserts
	case n.Config.Loop != nil:
		cfg := n.Config.Loop
		rec.LoopMode = cfg.Mode
		rec.LoopIterable = cfg.Iterable
		rec.LoopIterIdx = cfg.IterIdx
		rec.LoopIterKey = cfg.IterKey
		rec.LoopIterVal = cfg.IterVal
		rec.LoopOnError = cfg.OnError
		rec.LoopMaximums = nil
		if cfg.Maximums > 0 {
			v := cfg.Maximums
			rec.LoopMaximums = &v
		}
		rec.LoopInterval = floatPtr(cfg.Interval)
		rec.LoopTimeout = floatPtr(cfg.Timeout)
		rec.Conditions = nil
		if cfg.Mode == mstep.LoopModeCondition {
			rec.Conditions = mcondition.Encode(cfg.Condition)
		}
	case n.Config.If != nil:
		rec.Conditions = mcondition.Encode(n.Config.If.Condition)
	case n.Config.Wait != nil:
		v := n.Config.Wait.Seconds
		rec.Wait = &v
	case n.Config.Database != nil:
		rec.Code = n.Config.Database.SQL
		rec.ExtractVariables = encodeExtracts(n.Config.Database.Extracts)
	case n.Config.UserVars != nil:
		rec.SessionVariables = mvar.FilterBlankKeys(n.Config.UserVars.Variables)
	case n.Config.Quote != nil:
		rec.QuoteCaseID = n.Config.Quote.QuoteCaseID
	case n.Config.Code != nil:
		rec.Code = n.Config.Code.Source
		rec.ExtractVariables = encodeExtracts(n.Config.Code.Extracts)
	}
}

func encodeExtracts(rules []mextract.Extract) json.RawMessage {
	if len(rules) == 0 {
		return nil
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return nil
	}
	return raw
}

func floatPtr(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
