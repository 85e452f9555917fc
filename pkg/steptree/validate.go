package steptree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/krun-tools/stepcraft/pkg/model/mcase"
	"github.com/krun-tools/stepcraft/pkg/model/mstep"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
)

var ErrValidation = errors.New("validation failed")

// ValidationError names the offending case field or step so the message can
// surface to the user as-is.
type ValidationError struct {
	StepName string
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.StepName == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("步骤[%s] %s: %s", e.StepName, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validate is the pre-save gate. Checks run in a fixed order and the first
// failure aborts; no save request may be issued after a non-nil return.
func (t *Tree) Validate(c *mcase.Case) error {
	if err := validateCase(c); err != nil {
		return err
	}
	for _, n := range t.FlattenPreorder() {
		if err := validateRawBody(n); err != nil {
			return err
		}
	}
	for _, n := range t.FlattenPreorder() {
		if err := validateKeyValueLists(n); err != nil {
			return err
		}
	}
	return nil
}

func validateCase(c *mcase.Case) error {
	switch {
	case c == nil || c.CaseProject == 0:
		return &ValidationError{Field: "所属应用", Message: "不允许为空"}
	case strings.TrimSpace(c.CaseName) == "":
		return &ValidationError{Field: "用例名称", Message: "不允许为空"}
	case len(c.CaseTags) == 0:
		return &ValidationError{Field: "用例标签", Message: "至少选择一个"}
	case strings.TrimSpace(c.CaseAttr) == "":
		return &ValidationError{Field: "用例属性", Message: "不允许为空"}
	case strings.TrimSpace(c.CaseType) == "":
		return &ValidationError{Field: "用例类型", Message: "不允许为空"}
	}
	return nil
}

// validateRawBody checks that an HTTP step in raw-JSON body mode carries
// syntactically valid JSON. Blank bodies pass.
func validateRawBody(n *StepNode) error {
	cfg := n.Config.HTTP
	if cfg == nil || cfg.ArgsType != mstep.ArgsTypeJSON {
		return nil
	}
	body := strings.TrimSpace(cfg.BodyText)
	if body == "" {
		return nil
	}
	if !json.Valid([]byte(body)) {
		return &ValidationError{StepName: n.Name, Field: "请求体", Message: "不是合法的JSON文本"}
	}
	return nil
}

// validateKeyValueLists rejects rows pairing a blank key with a non-blank
// value, on every key/value list the node carries. Fully blank rows are
// legal; they get dropped silently on save.
func validateKeyValueLists(n *StepNode) error {
	check := func(field string, list []mvar.KeyValue) error {
		for _, kv := range list {
			if kv.BlankKey() && !kv.BlankValue() {
				return &ValidationError{StepName: n.Name, Field: field, Message: "存在键为空但值不为空的行"}
			}
		}
		return nil
	}

	switch {
	case n.Config.HTTP != nil:
		cfg := n.Config.HTTP
		for _, pair := range []struct {
			field string
			list  []mvar.KeyValue
		}{
			{"请求头", cfg.Headers},
			{"请求参数", cfg.Params},
			{"表单数据", cfg.FormData},
			{"表单文件", cfg.FormFiles},
			{"键值对数据", cfg.URLEncoded},
			{"定义变量", cfg.Defined},
		} {
			if err := check(pair.field, pair.list); err != nil {
				return err
			}
		}
	case n.Config.UserVars != nil:
		return check("用户变量", n.Config.UserVars.Variables)
	}
	return nil
}
