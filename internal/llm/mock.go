package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockReply is one scripted outcome for Mock.
type MockReply struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// Mock replays scripted replies in order and records every request.
// Schema checks run as they would for a real provider.
type Mock struct {
	mu       sync.Mutex
	replies  []MockReply
	requests []Request
}

func NewMock(replies ...MockReply) *Mock {
	return &Mock{replies: replies}
}

func (m *Mock) Name() string  { return ProviderMock }
func (m *Mock) Model() string { return "mock" }

// Generate pops the next reply. An empty script yields *UnavailableError.
func (m *Mock) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.replies) == 0 {
		return nil, &UnavailableError{}
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return finish(req, &Response{Content: r.Content, Usage: r.Usage, Model: "mock", Stop: StopEnd})
}

// Push appends replies to the script.
func (m *Mock) Push(replies ...MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

// Requests returns a copy of the requests seen so far.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
