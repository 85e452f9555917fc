package mstep

import (
	"github.com/goccy/go-json"

	"github.com/krun-tools/stepcraft/pkg/model/massert"
	"github.com/krun-tools/stepcraft/pkg/model/mcase"
	"github.com/krun-tools/stepcraft/pkg/model/mvar"
)

// Step-type labels as the backend stores them. The step_type column is free
// text from this closed set; mapping to the editor's internal kinds lives in
// the steptree registry.
const (
	TypeHTTP     = "HTTP请求"
	TypeLoop     = "循环结构"
	TypeIf       = "条件分支"
	TypeCode     = "执行代码"
	TypeWait     = "等待控制"
	TypeDatabase = "数据库"
	TypeUserVars = "用户变量"
	TypeQuote    = "引用用例"
)

// Loop modes.
const (
	LoopModeCount     = "次数循环"
	LoopModeIterable  = "对象循环"
	LoopModeDict      = "字典循环"
	LoopModeCondition = "条件循环"
)

// Loop on-error strategies.
const (
	LoopOnErrorContinue = "继续"
	LoopOnErrorBreak    = "中断"
	LoopOnErrorStop     = "停止"
)

// Request body/argument modes.
const (
	ArgsTypeJSON       = "json"
	ArgsTypeFormData   = "form_data"
	ArgsTypeURLEncoded = "urlencoded"
	ArgsTypeText       = "text"
)

// Step is the flat backend step record (krun_autotest_api_step). Load
// responses nest these through the children array; the primary key comes
// back as step_id, never as id.
type Step struct {
	StepID   int64  `json:"step_id,omitempty"`
	StepNo   int    `json:"step_no,omitempty"`
	StepName string `json:"step_name,omitempty"`
	StepDesc string `json:"step_desc,omitempty"`
	StepCode string `json:"step_code,omitempty"`
	StepType string `json:"step_type,omitempty"`

	CaseID       int64  `json:"case_id,omitempty"`
	ParentStepID *int64 `json:"parent_step_id,omitempty"`
	QuoteCaseID  int64  `json:"quote_case_id,omitempty"`

	RequestURL            string          `json:"request_url,omitempty"`
	RequestPort           string          `json:"request_port,omitempty"`
	RequestMethod         string          `json:"request_method,omitempty"`
	RequestHeader         []mvar.KeyValue `json:"request_header,omitempty"`
	RequestText           string          `json:"request_text,omitempty"`
	RequestBody           json.RawMessage `json:"request_body,omitempty"`
	RequestParams         []mvar.KeyValue `json:"request_params,omitempty"`
	RequestFormData       []mvar.KeyValue `json:"request_form_data,omitempty"`
	RequestFormFile       []mvar.KeyValue `json:"request_form_file,omitempty"`
	RequestFormUrlencoded []mvar.KeyValue `json:"request_form_urlencoded,omitempty"`
	RequestProjectID      int64           `json:"request_project_id,omitempty"`
	RequestArgsType       string          `json:"request_args_type,omitempty"`

	Code string   `json:"code,omitempty"`
	Wait *float64 `json:"wait,omitempty"`

	LoopMode     string          `json:"loop_mode,omitempty"`
	LoopMaximums *int            `json:"loop_maximums,omitempty"`
	LoopInterval *float64        `json:"loop_interval,omitempty"`
	LoopIterable string          `json:"loop_iterable,omitempty"`
	LoopIterIdx  string          `json:"loop_iter_idx,omitempty"`
	LoopIterKey  string          `json:"loop_iter_key,omitempty"`
	LoopIterVal  string          `json:"loop_iter_val,omitempty"`
	LoopOnError  string          `json:"loop_on_error,omitempty"`
	LoopTimeout  *float64        `json:"loop_timeout,omitempty"`
	Conditions   json.RawMessage `json:"conditions,omitempty"`

	SessionVariables []mvar.KeyValue  `json:"session_variables,omitempty"`
	DefinedVariables []mvar.KeyValue  `json:"defined_variables,omitempty"`
	ExtractVariables json.RawMessage  `json:"extract_variables,omitempty"`
	AssertValidators []massert.Assert `json:"assert_validators,omitempty"`

	// Nested context the load endpoint embeds per record. Children is a
	// slice pointer because presence of the field (even empty) is what tells
	// the backend a record is a container; omitempty on a plain slice would
	// erase that distinction for childless containers.
	Case       *mcase.Case `json:"case,omitempty"`
	Children   *[]Step     `json:"children,omitempty"`
	QuoteSteps []Step      `json:"quote_steps,omitempty"`
	QuoteCase  *mcase.Case `json:"quote_case,omitempty"`
}

// Counter is the summary record the load endpoint appends after the last
// root step.
type Counter struct {
	DirectSteps int `json:"direct_steps"`
	ChildSteps  int `json:"child_steps"`
	QuoteSteps  int `json:"quote_steps"`
	TotalSteps  int `json:"total_steps"`
}

// SaveDetail is one row of the save response's success_detail list,
// preorder-aligned with the submitted tree.
type SaveDetail struct {
	StepID   int64  `json:"step_id"`
	StepNo   int    `json:"step_no"`
	StepCode string `json:"step_code"`
	StepName string `json:"step_name"`
	Created  bool   `json:"created"`
}

// SaveResult is the save response envelope.
type SaveResult struct {
	CreatedCount  int          `json:"created_count"`
	UpdatedCount  int          `json:"updated_count"`
	SuccessDetail []SaveDetail `json:"success_detail"`
}

// ExecuteSummary is the run-mode execution response.
type ExecuteSummary struct {
	Success      bool    `json:"success"`
	TotalSteps   int     `json:"total_steps"`
	SuccessSteps int     `json:"success_steps"`
	FailedSteps  int     `json:"failed_steps"`
	PassRatio    float64 `json:"pass_ratio"`
	ReportCode   string  `json:"report_code,omitempty"`
	CaseID       int64   `json:"case_id,omitempty"`
	CaseCode     string  `json:"case_code,omitempty"`
	CaseName     string  `json:"case_name,omitempty"`
}
