package geo

import (
	"context"

	"github.com/evyataryagoni/voterlocation/internal/models"
)

// MockProvider is a test double for the Provider interface
// It allows tests to control lookups and verify interactions
type MockProvider struct {
	// Data holds the mock data (IP address -> location)
	Data map[string]*models.LocationRecord

	// Track method calls for verification in tests
	LookupCalls []string
	CloseCalled bool

	// Control behavior for error scenarios
	LookupError error
	CloseError  error
}

// NewMockProvider creates a mock provider with the records used across the
// test suite: 69.181.21.132 resolves to San Francisco, CA 94108
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Data: map[string]*models.LocationRecord{
			"69.181.21.132": {
				IP:         "69.181.21.132",
				City:       "San Francisco",
				State:      "CA",
				PostalCode: "94108",
			},
			"8.8.8.8": {
				IP:         "8.8.8.8",
				City:       "Mountain View",
				State:      "CA",
				PostalCode: "94043",
			},
		},
		LookupCalls: []string{},
	}
}

// NewEmptyMockProvider creates a mock provider with no data
func NewEmptyMockProvider() *MockProvider {
	return &MockProvider{
		Data:        map[string]*models.LocationRecord{},
		LookupCalls: []string{},
	}
}

// Lookup implements Provider.
func (m *MockProvider) Lookup(_ context.Context, ip string) (*models.LocationRecord, error) {
	m.LookupCalls = append(m.LookupCalls, ip)

	if m.LookupError != nil {
		return nil, m.LookupError
	}

	location, exists := m.Data[ip]
	if !exists {
		return nil, ErrNotFound
	}
	return location, nil
}

// Name implements Provider.
func (m *MockProvider) Name() string {
	return "mock"
}

// Close implements Provider.
func (m *MockProvider) Close() error {
	m.CloseCalled = true
	return m.CloseError
}
