package mcondition

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

func TestDecodeLenientShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Condition
	}{
		{
			name: "object",
			raw:  `{"value":"${code}","operation":"等于","except_value":200}`,
			want: Condition{Value: "${code}", Operation: "等于", ExceptValue: float64(200)},
		},
		{
			name: "single element array",
			raw:  `[{"value":"${done}","operation":"等于","except_value":"yes"}]`,
			want: Condition{Value: "${done}", Operation: "等于", ExceptValue: "yes"},
		},
		{
			name: "string wrapped object",
			raw:  `"{\"value\":\"${code}\",\"operation\":\"不等于\"}"`,
			want: Condition{Value: "${code}", Operation: "不等于"},
		},
		{
			name: "python literals inside string column",
			raw:  `"{\"value\":\"${flag}\",\"operation\":\"等于\",\"except_value\":True}"`,
			want: Condition{Value: "${flag}", Operation: "等于", ExceptValue: true},
		},
		{
			name: "python none",
			raw:  `"{\"value\":\"${v}\",\"operation\":\"为空\",\"except_value\":None}"`,
			want: Condition{Value: "${v}", Operation: "为空"},
		},
		{name: "empty", raw: ``, want: Condition{}},
		{name: "null", raw: `null`, want: Condition{}},
		{name: "empty array", raw: `[]`, want: Condition{}},
		{name: "garbage", raw: `{{not json`, want: Condition{}},
		{name: "garbage string", raw: `"{{not json"`, want: Condition{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodeLenient(json.RawMessage(tc.raw))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPyLiteralsOnlyReplacedAsWords(t *testing.T) {
	// "NoneSuch" must survive; only the bare literal is rewritten.
	got := DecodeLenient(json.RawMessage(`{"value":"NoneSuch","operation":"等于"}`))
	assert.Equal(t, "NoneSuch", got.Value)
}

func TestEncodeSingleElementArray(t *testing.T) {
	raw := Encode(Condition{Value: "${code}", Operation: "等于", ExceptValue: "200"})
	var list []Condition
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("encode output is not a JSON array: %v", err)
	}
	assert.Len(t, list, 1)
	assert.Equal(t, "${code}", list[0].Value)

	assert.Nil(t, Encode(Condition{}), "zero condition encodes to nothing")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Condition{Value: "${status}", Operation: "大于", ExceptValue: "0", Desc: "轮询退出条件"}
	out := DecodeLenient(Encode(in))
	assert.Equal(t, in, out)
}
