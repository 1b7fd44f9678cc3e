package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockLLM drafts a canned post from the prompt. Useful for local dev and tests.
type MockLLM struct {
	mu    sync.Mutex
	calls int
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.calls++
	n := m.calls
	m.mu.Unlock()

	topic := lineValue(userPrompt, "LinkedIn topic: ")
	feedback := lineValue(userPrompt, "Previous human feedback: ")

	return fmt.Sprintf("Draft #%d about %q.\n\nFeedback considered: %s\n\nWhat do you think? Share below. #mock #postcraft",
		n, topic, feedback), nil
}

// Calls reports how many generations were served.
func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func lineValue(prompt, prefix string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	return ""
}
