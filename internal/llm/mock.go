package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	Err      error
	// Responder, si está seteado, tiene prioridad sobre Response/Err.
	Responder func(systemPrompt, userPrompt string) (string, error)

	mu    sync.Mutex
	calls int
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Responder != nil {
		return m.Responder(systemPrompt, userPrompt)
	}
	return m.Response, m.Err
}

// Calls devuelve cuántas veces se invocó Generate.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
