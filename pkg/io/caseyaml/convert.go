package caseyaml

import (
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/krun-tools/stepcraft/pkg/model/massert"
	"github.com/krun-tools/stepcraft/pkg/model/mcase"
	"github.com/krun-tools/stepcraft/pkg/model/mcondition"
	"github.com/krun-tools/stepcraft/pkg/model/mextract"
	"github.com/krun-tools/stepcraft/pkg/model/mstep"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
	"github.com/krun-tools/stepcraft/pkg/steptree"
)

// The document uses English tokens for loop modes and error policies; the
// backend labels stay an internal concern.
var (
	loopModeToYaml = map[string]string{
		mstep.LoopModeCount:     "count",
		mstep.LoopModeIterable:  "iterable",
		mstep.LoopModeDict:      "dict",
		mstep.LoopModeCondition: "condition",
	}
	loopModeFromYaml = map[string]string{
		"count":     mstep.LoopModeCount,
		"iterable":  mstep.LoopModeIterable,
		"dict":      mstep.LoopModeDict,
		"condition": mstep.LoopModeCondition,
	}
	onErrorToYaml = map[string]string{
		mstep.LoopOnErrorContinue: "continue",
		mstep.LoopOnErrorBreak:    "break",
		mstep.LoopOnErrorStop:     "stop",
	}
	onErrorFromYaml = map[string]string{
		"continue": mstep.LoopOnErrorContinue,
		"break":    mstep.LoopOnErrorBreak,
		"stop":     mstep.LoopOnErrorStop,
	}
)

// Export renders the case and tree as a YAML document. Backend identity
// (ids, step codes) is deliberately left out so an imported copy always
// saves as new rows.
func Export(c *mcase.Case, t *steptree.Tree) ([]byte, error) {
	doc := YamlCase{
		Name:    c.CaseName,
		Desc:    c.CaseDesc,
		Project: c.CaseProject,
		Type:    c.CaseType,
		Attr:    c.CaseAttr,
		Tags:    c.CaseTags,
	}
	for _, kv := range c.SessionVariables {
		doc.SessionVariables = append(doc.SessionVariables, YamlKeyValue{Key: kv.Key, Value: kv.Value, Desc: kv.Desc})
	}
	var err error
	doc.Steps, err = exportSteps(t.Roots())
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(&doc)
}

func exportSteps(nodes []*steptree.StepNode) ([]YamlStep, error) {
	var out []YamlStep
	for _, n := range nodes {
		step, err := exportStep(n)
		if err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	return out, nil
}

func exportStep(n *steptree.StepNode) (YamlStep, error) {
	switch n.Kind {
	case steptree.KindHTTP:
		cfg := n.Config.HTTP
		h := &YamlHTTPStep{
			Name:     n.Name,
			Desc:     n.Desc,
			Method:   cfg.Method,
			URL:      cfg.URL,
			ArgsType: cfg.ArgsType,
			Headers:  keyValuesOut(cfg.Headers),
			Params:   keyValuesOut(cfg.Params),
			Defined:  keyValuesOut(cfg.Defined),
			Extracts: extractsOut(cfg.Extracts),
			Asserts:  assertsOut(cfg.Asserts),
		}
		switch cfg.ArgsType {
		case mstep.ArgsTypeFormData:
			h.Form = keyValuesOut(cfg.FormData)
			h.Files = keyValuesOut(cfg.FormFiles)
		case mstep.ArgsTypeURLEncoded:
			h.Form = keyValuesOut(cfg.URLEncoded)
		case mstep.ArgsTypeText:
			h.Body = cfg.BodyText
		default:
			if cfg.BodyText != "" {
				h.Body = cfg.BodyText
			} else if len(cfg.BodyJSON) > 0 {
				h.Body = string(cfg.BodyJSON)
			}
		}
		return YamlStep{HTTP: h}, nil

	case steptree.KindLoop:
		cfg := n.Config.Loop
		children, err := exportSteps(n.Children)
		if err != nil {
			return YamlStep{}, err
		}
		if children == nil {
			children = []YamlStep{}
		}
		l := &YamlLoopStep{
			Name:     n.Name,
			Desc:     n.Desc,
			Mode:     loopModeToYaml[cfg.Mode],
			Maximums: cfg.Maximums,
			Target:   cfg.Iterable,
			Key:      cfg.IterKey,
			Value:    cfg.IterVal,
			Interval: cfg.Interval,
			Timeout:  cfg.Timeout,
			OnError:  onErrorToYaml[cfg.OnError],
			Steps:    children,
		}
		if cfg.Mode == mstep.LoopModeCondition && !cfg.Condition.IsZero() {
			l.Condition = conditionOut(cfg.Condition)
		}
		return YamlStep{Loop: l}, nil

	case steptree.KindIf:
		children, err := exportSteps(n.Children)
		if err != nil {
			return YamlStep{}, err
		}
		if children == nil {
			children = []YamlStep{}
		}
		i := &YamlIfStep{Name: n.Name, Desc: n.Desc, Steps: children}
		if !n.Config.If.Condition.IsZero() {
			i.Condition = conditionOut(n.Config.If.Condition)
		}
		return YamlStep{If: i}, nil

	case steptree.KindCode:
		return YamlStep{Code: &YamlCodeStep{
			Name:     n.Name,
			Desc:     n.Desc,
			Code:     n.Config.Code.Source,
			Extracts: extractsOut(n.Config.Code.Extracts),
		}}, nil

	case steptree.KindWait:
		return YamlStep{Wait: &YamlWaitStep{Name: n.Name, Desc: n.Desc, Seconds: n.Config.Wait.Seconds}}, nil

	case steptree.KindDatabase:
		return YamlStep{Database: &YamlDatabaseStep{
			Name:     n.Name,
			Desc:     n.Desc,
			SQL:      n.Config.Database.SQL,
			Extracts: extractsOut(n.Config.Database.Extracts),
		}}, nil

	case steptree.KindUserVars:
		return YamlStep{Vars: &YamlVarsStep{
			Name:      n.Name,
			Desc:      n.Desc,
			Variables: keyValuesOut(n.Config.UserVars.Variables),
		}}, nil

	case steptree.KindQuote:
		return YamlStep{Quote: &YamlQuoteStep{
			Name:   n.Name,
			Desc:   n.Desc,
			CaseID: n.Config.Quote.QuoteCaseID,
		}}, nil
	}
	return YamlStep{}, newError("unsupported step kind "+n.Kind.String(), n.Name, 0)
}

// Import parses a YAML document into a fresh case and tree. Every node is
// unpersisted; the first save creates all rows.
func Import(data []byte) (*mcase.Case, *steptree.Tree, error) {
	var doc YamlCase
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, newError("parse: "+err.Error(), "", 0)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, nil, newError("missing case name", "name", 0)
	}

	c := &mcase.Case{
		CaseName:    doc.Name,
		CaseDesc:    doc.Desc,
		CaseProject: doc.Project,
		CaseType:    doc.Type,
		CaseAttr:    doc.Attr,
		CaseTags:    doc.Tags,
	}
	if c.CaseType == "" {
		c.CaseType = mcase.TypeNormalCase
	}
	for _, kv := range doc.SessionVariables {
		c.SessionVariables = append(c.SessionVariables, mvar.KeyValue{Key: kv.Key, Value: kv.Value, Desc: kv.Desc})
	}

	roots, err := importSteps(doc.Steps)
	if err != nil {
		return nil, nil, err
	}
	t := steptree.NewTree(roots)
	t.SetSessionVariables(c.SessionVariables)
	return c, t, nil
}

func importSteps(steps []YamlStep) ([]*steptree.StepNode, error) {
	nodes := make([]*steptree.StepNode, 0, len(steps))
	for i, s := range steps {
		n, err := importStep(s, i)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func importStep(s YamlStep, index int) (*steptree.StepNode, error) {
	switch {
	case s.HTTP != nil:
		if s.HTTP.Name == "" {
			return nil, newError("missing step name", "http", index)
		}
		n := steptree.NewNode(steptree.KindHTTP)
		n.Name, n.Desc = s.HTTP.Name, s.HTTP.Desc
		cfg := n.Config.HTTP
		cfg.Method = s.HTTP.Method
		cfg.URL = s.HTTP.URL
		if s.HTTP.ArgsType != "" {
			cfg.ArgsType = s.HTTP.ArgsType
		}
		cfg.Headers = keyValuesIn(s.HTTP.Headers)
		cfg.Params = keyValuesIn(s.HTTP.Params)
		cfg.Defined = keyValuesIn(s.HTTP.Defined)
		cfg.Extracts = extractsIn(s.HTTP.Extracts)
		cfg.Asserts = assertsIn(s.HTTP.Asserts)
		switch cfg.ArgsType {
		case mstep.ArgsTypeFormData:
			cfg.FormData = keyValuesIn(s.HTTP.Form)
			cfg.FormFiles = keyValuesIn(s.HTTP.Files)
		case mstep.ArgsTypeURLEncoded:
			cfg.URLEncoded = keyValuesIn(s.HTTP.Form)
		case mstep.ArgsTypeText:
			cfg.BodyText = s.HTTP.Body
		default:
			if s.HTTP.Body != "" {
				cfg.BodyText = s.HTTP.Body
				cfg.BodyJSON = json.RawMessage(s.HTTP.Body)
			}
		}
		return n, nil

	case s.Loop != nil:
		if s.Loop.Name == "" {
			return nil, newError("missing step name", "loop", index)
		}
		mode, ok := loopModeFromYaml[s.Loop.Mode]
		if !ok {
			return nil, newError("unknown loop mode "+s.Loop.Mode, "loop", index)
		}
		n := steptree.NewNode(steptree.KindLoop)
		n.Name, n.Desc = s.Loop.Name, s.Loop.Desc
		cfg := n.Config.Loop
		cfg.Mode = mode
		if s.Loop.Maximums > 0 {
			cfg.Maximums = s.Loop.Maximums
		}
		cfg.Iterable = s.Loop.Target
		cfg.IterKey = s.Loop.Key
		cfg.IterVal = s.Loop.Value
		cfg.Interval = s.Loop.Interval
		cfg.Timeout = s.Loop.Timeout
		if s.Loop.OnError != "" {
			onErr, ok := onErrorFromYaml[s.Loop.OnError]
			if !ok {
				return nil, newError("unknown on_error "+s.Loop.OnError, "loop", index)
			}
			cfg.OnError = onErr
		}
		if s.Loop.Condition != nil {
			cfg.Condition = conditionIn(*s.Loop.Condition)
		}
		children, err := importSteps(s.Loop.Steps)
		if err != nil {
			return nil, err
		}
		n.Children = children
		if n.Children == nil {
			n.Children = []*steptree.StepNode{}
		}
		return n, nil

	case s.If != nil:
		if s.If.Name == "" {
			return nil, newError("missing step name", "if", index)
		}
		n := steptree.NewNode(steptree.KindIf)
		n.Name, n.Desc = s.If.Name, s.If.Desc
		if s.If.Condition != nil {
			n.Config.If.Condition = conditionIn(*s.If.Condition)
		}
		children, err := importSteps(s.If.Steps)
		if err != nil {
			return nil, err
		}
		n.Children = children
		if n.Children == nil {
			n.Children = []*steptree.StepNode{}
		}
		return n, nil

	case s.Code != nil:
		if s.Code.Name == "" {
			return nil, newError("missing step name", "code", index)
		}
		if strings.TrimSpace(s.Code.Code) == "" {
			return nil, newError("missing required code", "code", index)
		}
		n := steptree.NewNode(steptree.KindCode)
		n.Name, n.Desc = s.Code.Name, s.Code.Desc
		n.Config.Code.Source = s.Code.Code
		n.Config.Code.Extracts = extractsIn(s.Code.Extracts)
		return n, nil

	case s.Wait != nil:
		if s.Wait.Name == "" {
			return nil, newError("missing step name", "wait", index)
		}
		n := steptree.NewNode(steptree.KindWait)
		n.Name, n.Desc = s.Wait.Name, s.Wait.Desc
		if s.Wait.Seconds > 0 {
			n.Config.Wait.Seconds = s.Wait.Seconds
		}
		return n, nil

	case s.Database != nil:
		if s.Database.Name == "" {
			return nil, newError("missing step name", "database", index)
		}
		n := steptree.NewNode(steptree.KindDatabase)
		n.Name, n.Desc = s.Database.Name, s.Database.Desc
		n.Config.Database.SQL = s.Database.SQL
		n.Config.Database.Extracts = extractsIn(s.Database.Extracts)
		return n, nil

	case s.Vars != nil:
		if s.Vars.Name == "" {
			return nil, newError("missing step name", "vars", index)
		}
		n := steptree.NewNode(steptree.KindUserVars)
		n.Name, n.Desc = s.Vars.Name, s.Vars.Desc
		n.Config.UserVars.Variables = keyValuesIn(s.Vars.Variables)
		return n, nil

	case s.Quote != nil:
		if s.Quote.Name == "" {
			return nil, newError("missing step name", "quote", index)
		}
		if s.Quote.CaseID == 0 {
			return nil, newError("missing quoted case id", "quote", index)
		}
		n := steptree.NewNode(steptree.KindQuote)
		n.Name, n.Desc = s.Quote.Name, s.Quote.Desc
		n.Config.Quote.QuoteCaseID = s.Quote.CaseID
		return n, nil
	}
	return nil, newError("empty step definition", "step", index)
}

func keyValuesOut(list []mvar.KeyValue) []YamlKeyValue {
	var out []YamlKeyValue
	for _, kv := range list {
		out = append(out, YamlKeyValue{Key: kv.Key, Value: kv.Value, Desc: kv.Desc})
	}
	return out
}

func keyValuesIn(list []YamlKeyValue) []mvar.KeyValue {
	var out []mvar.KeyValue
	for _, kv := range list {
		out = append(out, mvar.KeyValue{Key: kv.Key, Value: kv.Value, Desc: kv.Desc})
	}
	return out
}

func extractsOut(list []mextract.Extract) []YamlExtract {
	var out []YamlExtract
	for _, e := range list {
		out = append(out, YamlExtract{Name: e.Name, Range: e.Range, Source: e.Source, Expr: e.Expr, Index: e.Index})
	}
	return out
}

func extractsIn(list []YamlExtract) []mextract.Extract {
	var out []mextract.Extract
	for _, e := range list {
		out = append(out, mextract.Extract{Name: e.Name, Range: e.Range, Source: e.Source, Expr: e.Expr, Index: e.Index})
	}
	return out
}

func assertsOut(list []massert.Assert) []YamlAssert {
	var out []YamlAssert
	for _, a := range list {
		out = append(out, YamlAssert{Name: a.Name, Expr: a.Expr, Range: a.Range, Operation: a.Operation, ExceptValue: a.ExceptValue})
	}
	return out
}

func assertsIn(list []YamlAssert) []massert.Assert {
	var out []massert.Assert
	for _, a := range list {
		out = append(out, massert.Assert{Name: a.Name, Expr: a.Expr, Range: a.Range, Operation: a.Operation, ExceptValue: a.ExceptValue})
	}
	return out
}

func conditionOut(c mcondition.Condition) *YamlCondition {
	return &YamlCondition{Value: c.Value, Operation: c.Operation, ExceptValue: c.ExceptValue, Desc: c.Desc}
}

func conditionIn(y YamlCondition) mcondition.Condition {
	return mcondition.Condition{Value: y.Value, Operation: y.Operation, ExceptValue: y.ExceptValue, Desc: y.Desc}
}
