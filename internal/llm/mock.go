package llm

import (
	"context"
	"strings"
	"sync"
)

const (
	offlineAnswer = "No language model is configured; this is a placeholder answer."
	offlineReport = `{"compliance_summary": "No language model is configured; nothing was checked.", "approvals": [], "violations": []}`
)

// MockProvider is a scripted provider for tests. It replays Responses in order,
// repeating the last one once they run out, and records every prompt it receives.
type MockProvider struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     []string
	opts      []GenerateOptions
	// Respond, when set, computes the answer from the prompt instead of the script.
	Respond func(prompt string) (string, error)
}

// NewMockProvider returns a provider that answers with responses in order.
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewOfflineProvider returns a mock that answers compliance prompts with an empty
// report and every other prompt with a fixed placeholder.
func NewOfflineProvider() *MockProvider {
	m := NewMockProvider()
	m.Respond = func(prompt string) (string, error) {
		if strings.Contains(prompt, "compliance_summary") {
			return offlineReport, nil
		}
		return offlineAnswer, nil
	}
	return m
}

// FailWith makes the provider return the given errors in order for successive calls.
// A nil entry lets that call fall through to the scripted response.
func (m *MockProvider) FailWith(errs ...error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = errs
	return m
}

// Name returns "mock".
func (m *MockProvider) Name() string { return ProviderMock }

// DefaultModel returns a fixed model name.
func (m *MockProvider) DefaultModel() string { return "mock-model" }

// Generate returns the next scripted response.
func (m *MockProvider) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	n := len(m.calls)
	m.calls = append(m.calls, prompt)
	m.opts = append(m.opts, opts)
	var err error
	if n < len(m.errs) {
		err = m.errs[n]
	}
	var resp string
	if len(m.responses) > 0 {
		resp = m.responses[min(n, len(m.responses)-1)]
	}
	respond := m.Respond
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	if respond != nil {
		return respond(prompt)
	}
	return resp, nil
}

// Calls returns the prompts received so far.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Options returns the options of every call so far.
func (m *MockProvider) Options() []GenerateOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GenerateOptions(nil), m.opts...)
}

// Close is a no-op for MockProvider.
func (m *MockProvider) Close() error {
	return nil
}
