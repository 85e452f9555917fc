package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	lastReq *http.Request
	status  int
	body    string
	err     error
}

func (s *stubClient) Do(req *http.Request) (*http.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(s.body))),
		Header:     http.Header{},
	}, nil
}

func TestSendJSONDecodesBody(t *testing.T) {
	stub := &stubClient{status: 200, body: `{"message":"成功","data":{"n":1}}`}

	var out struct {
		Message string `json:"message"`
		Data    struct {
			N int `json:"n"`
		} `json:"data"`
	}
	err := SendJSON(context.Background(), stub, "POST", "http://backend/x", map[string]int{"a": 1}, &out)
	require.NoError(t, err)
	assert.Equal(t, "成功", out.Message)
	assert.Equal(t, 1, out.Data.N)
	assert.Equal(t, "application/json", stub.lastReq.Header.Get("Content-Type"))

	sent, _ := io.ReadAll(stub.lastReq.Body)
	assert.JSONEq(t, `{"a":1}`, string(sent))
}

func TestSendJSONStatusError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message envelope", `{"message":"用例不存在"}`, "用例不存在"},
		{"detail envelope", `{"detail":"not found"}`, "not found"},
		{"opaque body", `<html>oops</html>`, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubClient{status: 404, body: tc.body}
			err := SendJSON(context.Background(), stub, "GET", "http://backend/x", nil, nil)
			require.Error(t, err)
			var serr *StatusError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, 404, serr.StatusCode)
			assert.Equal(t, tc.want, serr.Message)
		})
	}
}

func TestSendRequestMergesQueries(t *testing.T) {
	stub := &stubClient{status: 200, body: `{}`}
	_, err := SendRequestWithContext(context.Background(), stub, &Request{
		Method:  "GET",
		URL:     "http://backend/tree?case_id=5",
		Queries: []Query{{QueryKey: "case_code", Value: "C5"}},
	})
	require.NoError(t, err)
	q := stub.lastReq.URL.Query()
	assert.Equal(t, "5", q.Get("case_id"))
	assert.Equal(t, "C5", q.Get("case_code"))
}
