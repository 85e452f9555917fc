package massert

// Assert is one assertion rule on a step. Evaluation happens server side;
// the client only edits and round-trips these rows.
type Assert struct {
	Name        string `json:"name,omitempty"`
	Expr        string `json:"expr"`
	Range       string `json:"range,omitempty"`
	Operation   string `json:"operation"`
	ExceptValue any    `json:"except_value,omitempty"`
}

// Operations the backend comparator supports, used to populate the rule
// editor's operator dropdown.
var Operations = []string{
	"等于", "不等于",
	"大于", "大于等于", "小于", "小于等于",
	"长度等于",
	"包含", "不包含",
	"以...开始", "以...结束",
	"非空", "为空",
}
