package mcase

import "github.com/krun-tools/stepcraft/pkg/model/mvar"

// Case attribute / type labels used by the console. The backend stores these
// as free text; the editor only needs the ones it writes.
const (
	TypeNormalCase    = "常规用例"
	TypePrivateScript = "用户脚本"
)

// Case is the backend case record. The API exposes the primary key as
// case_id, not id.
type Case struct {
	CaseID           int64           `json:"case_id,omitempty"`
	CaseCode         string          `json:"case_code,omitempty"`
	CaseName         string          `json:"case_name,omitempty"`
	CaseDesc         string          `json:"case_desc,omitempty"`
	CaseTags         []string        `json:"case_tags,omitempty"`
	CaseType         string          `json:"case_type,omitempty"`
	CaseAttr         string          `json:"case_attr,omitempty"`
	CaseProject      int64           `json:"case_project,omitempty"`
	CaseSteps        int             `json:"case_steps,omitempty"`
	CaseState        *bool           `json:"case_state,omitempty"`
	CaseVersion      int             `json:"case_version,omitempty"`
	CaseLastTime     string          `json:"case_last_time,omitempty"`
	SessionVariables []mvar.KeyValue `json:"session_variables,omitempty"`
}

// Persisted reports whether the case exists server side. Same both-or-neither
// rule as steps: a real case always carries both identifiers.
func (c *Case) Persisted() bool {
	return c != nil && c.CaseID != 0 && c.CaseCode != ""
}
