package mock

import (
	"context"
	"sync"

	"github.com/poiesic/kindred/storage"
)

// MockTranslator is a test double for storage.IdentifierTranslator.
type MockTranslator struct {
	// TranslateFunc is called by TranslateToLegacyIDs if set.
	// If nil, every id maps to itself.
	TranslateFunc func(ctx context.Context, annotationID string) ([]string, error)

	mu        sync.Mutex
	callCount int
}

var _ storage.IdentifierTranslator = (*MockTranslator)(nil)

// NewMockTranslator creates a translator that maps ids to themselves.
func NewMockTranslator() *MockTranslator {
	return &MockTranslator{}
}

// WithTranslateFunc sets custom translation behavior.
func (m *MockTranslator) WithTranslateFunc(fn func(ctx context.Context, annotationID string) ([]string, error)) *MockTranslator {
	m.TranslateFunc = fn
	return m
}

// TranslateToLegacyIDs translates one annotation id.
func (m *MockTranslator) TranslateToLegacyIDs(ctx context.Context, annotationID string) ([]string, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, annotationID)
	}
	return []string{annotationID}, nil
}

// CallCount returns the number of times TranslateToLegacyIDs was called.
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset resets the call count to zero.
func (m *MockTranslator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
}
