package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// HttpClient is the transport seam; tests swap in a fake.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const TimeoutRequest = 60 * time.Second

func New() HttpClient {
	return &http.Client{
		Timeout: TimeoutRequest,
	}
}

type Header struct {
	HeaderKey string
	Value     string
}

type Query struct {
	QueryKey string
	Value    string
}

type Request struct {
	Method  string
	URL     string
	Queries []Query
	Headers []Header
	Body    []byte
}

type Response struct {
	StatusCode int
	Body       []byte
	Headers    []Header
}

func SendRequestWithContext(ctx context.Context, client HttpClient, req *Request) (*http.Response, error) {
	raw, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	raw.URL.RawQuery = convertQueries(req.Queries, raw.URL.Query()).Encode()
	raw.Header = convertHeaders(req.Headers)
	return client.Do(raw)
}

// SendRequestAndRead performs the request and drains the body.
func SendRequestAndRead(ctx context.Context, client HttpClient, req *Request) (Response, error) {
	resp, err := SendRequestWithContext(ctx, client, req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}
	headers := make([]Header, 0, len(resp.Header))
	for key, values := range resp.Header {
		for _, v := range values {
			headers = append(headers, Header{HeaderKey: key, Value: v})
		}
	}
	return Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    headers,
	}, nil
}

// SendJSON marshals payload, performs the request and decodes the JSON
// response into out. Non-2xx statuses surface the backend's message when
// the body carries one.
func SendJSON(ctx context.Context, client HttpClient, method, rawURL string, payload, out any) error {
	req := &Request{
		Method:  method,
		URL:     rawURL,
		Headers: []Header{{HeaderKey: "Content-Type", Value: "application/json"}},
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		req.Body = body
	}

	resp, err := SendRequestAndRead(ctx, client, req)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Message: extractMessage(resp.Body)}
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Body, out)
}

// StatusError is a non-2xx backend reply with its best-available message.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

func extractMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Detail
}

func convertQueries(queries []Query, base url.Values) url.Values {
	for _, q := range queries {
		base.Add(q.QueryKey, q.Value)
	}
	return base
}

func convertHeaders(headers []Header) http.Header {
	out := make(http.Header, len(headers))
	for _, h := range headers {
		out.Add(h.HeaderKey, h.Value)
	}
	return out
}
