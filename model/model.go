package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Generator is the external text-generation collaborator. maxTokens caps the
// output budget for the call; implementations may clamp it to provider
// limits. Failures surface as plain errors to the orchestrator.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)

	// Info returns metadata about the generator implementation.
	Info() Info
}

// Info contains metadata about a generator implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "anthropic", "openai", "mock", ...
}

// MockGenerator is a lightweight in-memory Generator for tests and offline
// demo runs. Responses are served per prompt substring match, falling back
// to a canned default.
type MockGenerator struct {
	mu        sync.Mutex
	Responses map[string]string // prompt substring -> response
	Default   string
	Err       error
	Calls     []MockCall
}

// MockCall records one Generate invocation.
type MockCall struct {
	Prompt    string
	MaxTokens int
}

// Generate implements Generator.
func (m *MockGenerator) Generate(_ context.Context, prompt string, maxTokens int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Prompt: prompt, MaxTokens: maxTokens})
	if m.Err != nil {
		return "", m.Err
	}
	for substr, resp := range m.Responses {
		if substr != "" && strings.Contains(prompt, substr) {
			return resp, nil
		}
	}
	if m.Default != "" {
		return m.Default, nil
	}
	return fmt.Sprintf("mock output (%d token budget)", maxTokens), nil
}

// Info implements Generator.
func (m *MockGenerator) Info() Info {
	return Info{Name: "mock", Provider: "mock"}
}
