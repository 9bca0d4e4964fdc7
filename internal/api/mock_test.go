package api

import (
	"bytes"
	"io"
	"sync"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"
)

// MockHttpClient records requests and replays a canned response
type MockHttpClient struct {
	mu       sync.Mutex
	Status   int
	Body     string
	Err      error
	Requests []*fhttp.Request
	Bodies   [][]byte
}

// Do implements HTTPDoer
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		m.Bodies = append(m.Bodies, data)
	} else {
		m.Bodies = append(m.Bodies, nil)
	}

	if m.Err != nil {
		return nil, m.Err
	}

	status := m.Status
	if status == 0 {
		status = 200
	}
	return &fhttp.Response{
		StatusCode: status,
		Header:     make(fhttp.Header),
		Body:       io.NopCloser(bytes.NewReader([]byte(m.Body))),
		Request:    req,
	}, nil
}

// Calls returns how many requests were made
func (m *MockHttpClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

func newMockClient(t testing.TB, mock *MockHttpClient) *GeminiClient {
	t.Helper()
	client, err := NewClient(WithHTTPClient(mock), WithBaseURL("https://api.test/v1beta"))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return client
}
