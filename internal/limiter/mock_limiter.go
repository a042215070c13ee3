package limiter

import "sync"

// MockLimiter is a Limiter test double with a fixed answer that records
// every key it is asked about.
type MockLimiter struct {
	mu sync.Mutex

	AllowResult bool
	AllowCalls  []string
	CloseCalled bool
	CloseError  error
}

// NewMockLimiter creates a mock that answers every Allow with allowResult
func NewMockLimiter(allowResult bool) *MockLimiter {
	return &MockLimiter{
		AllowResult: allowResult,
		AllowCalls:  []string{},
	}
}

func (m *MockLimiter) Allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AllowCalls = append(m.AllowCalls, key)
	return m.AllowResult
}

// SetAllow changes the answer for later calls
func (m *MockLimiter) SetAllow(allow bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AllowResult = allow
}

// Calls returns a copy of the recorded keys
func (m *MockLimiter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.AllowCalls...)
}

func (m *MockLimiter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return m.CloseError
}
