// Package tstep converts between the backend's flat step records and the
// editor's nested StepNode tree: load direction when a case is opened, save
// direction when the tree is pushed back.
package tstep

import (
	"github.com/krun-tools/stepcraft/pkg/idwrap"
	"github.com/krun-tools/stepcraft/pkg/model/mcondition"
	"github.com/krun-tools/stepcraft/pkg/model/mextract"
	"github.com/krun-tools/stepcraft/pkg/model/mstep"
	"github.com/krun-tools/stepcraft/pkg/steptree"
)

// MapBackendSteps maps a load response's root list into tree roots.
func MapBackendSteps(records []mstep.Step) []*steptree.StepNode {
	roots := make([]*steptree.StepNode, 0, len(records))
	for i := range records {
		roots = append(roots, MapBackendStep(records[i]))
	}
	return roots
}

// MapBackendStep maps one backend record (and recursively its children) into
// a StepNode. Unknown step_type labels land on the code kind; malformed
// embedded condition JSON degrades to an empty triple instead of failing the
// load.
func MapBackendStep(rec mstep.Step) *steptree.StepNode {
	kind := steptree.KindFromLabel(rec.StepType)

	n := &steptree.StepNode{
		Kind:   kind,
		Name:   rec.StepName,
		Desc:   rec.StepDesc,
		Config: mapConfig(kind, rec),
	}
	if rec.StepCode != "" {
		n.ID = idwrap.NewDerived(rec.StepCode)
	} else {
		n.ID = idwrap.NewNow()
	}

	if steptree.AllowsChildren(kind) {
		n.Children = make([]*steptree.StepNode, 0)
		if rec.Children != nil {
			for _, child := range *rec.Children {
				n.Children = append(n.Children, MapBackendStep(child))
			}
		}
	}

	// Keep the whole backend record for identity and for backend-only fields
	// the editor never touches. The embedded tree context is not part of
	// that: children live on the node, previews on the quote config. A
	// non-container still records an empty child list so save-side diffing
	// sees "had none" rather than "unknown".
	orig := rec
	orig.Case = nil
	orig.QuoteCase = nil
	orig.QuoteSteps = nil
	empty := make([]mstep.Step, 0)
	orig.Children = &empty
	n.Original = &orig

	return n
}

func mapConfig(kind steptree.StepKind, rec mstep.Step) steptree.Config {
	switch kind {
	case steptree.KindHTTP:
		return steptree.Config{HTTP: &steptree.HTTPConfig{
			Method:     rec.RequestMethod,
			URL:        rec.RequestURL,
			Port:       rec.RequestPort,
			ArgsType:   rec.RequestArgsType,
			Headers:    rec.RequestHeader,
			Params:     rec.RequestParams,
			FormData:   rec.RequestFormData,
			FormFiles:  rec.RequestFormFile,
			URLEncoded: rec.RequestFormUrlencoded,
			BodyText:   rec.RequestText,
			BodyJSON:   rec.RequestBody,
			ProjectID:  rec.RequestProjectID,
			Defined:    rec.DefinedVariables,
			Extracts:   mextract.DecodeList(rec.ExtractVariables),
			Asserts:    rec.AssertValidators,
		}}
	case steptree.KindLoop:
		cfg := &steptree.LoopConfig{
			Mode:     rec.LoopMode,
			Iterable: rec.LoopIterable,
			IterIdx:  rec.LoopIterIdx,
			IterKey:  rec.LoopIterKey,
			IterVal:  rec.LoopIterVal,
			OnError:  rec.LoopOnError,
		}
		if rec.LoopMaximums != nil {
			cfg.Maximums = *rec.LoopMaximums
		}
		if rec.LoopInterval != nil {
			cfg.Interval = *rec.LoopInterval
		}
		if rec.LoopTimeout != nil {
			cfg.Timeout = *rec.LoopTimeout
		}
		// The condition triple only belongs to condition mode; other modes
		// may carry stale column data which the editor must not surface.
		if rec.LoopMode == mstep.LoopModeCondition {
			cfg.Condition = mcondition.DecodeLenient(rec.Conditions)
		}
		return steptree.Config{Loop: cfg}
	case steptree.KindIf:
		return steptree.Config{If: &steptree.IfConfig{
			Condition: mcondition.DecodeLenient(rec.Conditions),
		}}
	case steptree.KindWait:
		cfg := &steptree.WaitConfig{}
		if rec.Wait != nil {
			cfg.Seconds = *rec.Wait
		}
		return steptree.Config{Wait: cfg}
	case steptree.KindDatabase:
		return steptree.Config{Database: &steptree.DatabaseConfig{
			SQL:      rec.Code,
			Extracts: mextract.DecodeList(rec.ExtractVariables),
		}}
	case steptree.KindUserVars:
		return steptree.Config{UserVars: &steptree.UserVarsConfig{
			Variables: rec.SessionVariables,
		}}
	case steptree.KindQuote:
		cfg := &steptree.QuoteConfig{QuoteCaseID: rec.QuoteCaseID}
		if len(rec.QuoteSteps) > 0 {
			cfg.Preview = MapBackendSteps(rec.QuoteSteps)
		}
		return steptree.Config{Quote: cfg}
	default:
		return steptree.Config{Code: &steptree.CodeConfig{
			Source:   rec.Code,
			Extracts: mextract.DecodeList(rec.ExtractVariables),
		}}
	}
}
