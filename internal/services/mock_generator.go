package services

import (
	"context"
	"sync"

	"github.com/taleloom/tale-engine/pkg/engine"
	"github.com/taleloom/tale-engine/pkg/story"
)

// MockGenerator is a mock implementation of engine.Generator for testing.
type MockGenerator struct {
	GenerateFunc      func(ctx context.Context, input story.GenerationInput) (*story.GenerationResult, error)
	GenerateTitleFunc func(ctx context.Context, c story.Character) (string, error)

	// Track calls for testing
	GenerateCalls      []story.GenerationInput
	GenerateTitleCalls []story.Character

	mu sync.Mutex // protects all fields above
}

var _ engine.Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a new mock generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		GenerateCalls:      make([]story.GenerationInput, 0),
		GenerateTitleCalls: make([]story.Character, 0),
	}
}

// Generate mocks a generation call. The default response is a small
// valid result so most tests need no setup.
func (m *MockGenerator) Generate(ctx context.Context, input story.GenerationInput) (*story.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, input)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, input)
	}

	return &story.GenerationResult{
		Scene: "A mock scene unfolds before you.",
		Mood:  "mysterious",
		Choices: []story.Choice{
			{Text: "Press on", Consequence: "The path narrows."},
			{Text: "Turn back", Consequence: "The village waits."},
		},
		ContextDelta: map[string]any{},
	}, nil
}

// GenerateTitle mocks title generation.
func (m *MockGenerator) GenerateTitle(ctx context.Context, c story.Character) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateTitleCalls = append(m.GenerateTitleCalls, c)

	if m.GenerateTitleFunc != nil {
		return m.GenerateTitleFunc(ctx, c)
	}
	return "A Mock Adventure", nil
}

// Reset clears all call tracking.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls = make([]story.GenerationInput, 0)
	m.GenerateTitleCalls = make([]story.Character, 0)
}

// SetGenerateError sets up the mock to fail every generation call.
func (m *MockGenerator) SetGenerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, input story.GenerationInput) (*story.GenerationResult, error) {
		return nil, err
	}
}

// SetGenerateResult sets up the mock to return a fixed result.
func (m *MockGenerator) SetGenerateResult(result *story.GenerationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, input story.GenerationInput) (*story.GenerationResult, error) {
		return result, nil
	}
}

// CallCount returns the number of Generate calls made so far.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateCalls)
}

// LastInput returns the most recent Generate input, or false when no
// call has been made.
func (m *MockGenerator) LastInput() (story.GenerationInput, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.GenerateCalls) == 0 {
		return story.GenerationInput{}, false
	}
	return m.GenerateCalls[len(m.GenerateCalls)-1], true
}
