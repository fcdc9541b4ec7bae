package llm

import (
	"context"
	"strings"
)

// NoOp is a generator that answers with a truncated echo of the prompt
// instead of calling any model. Useful for dry runs and tests where
// wiring matters but generated text does not.
type NoOp struct {
	model string
}

// NewNoOp creates a NoOp generator reporting the given model name.
func NewNoOp(model string) *NoOp {
	return &NoOp{model: model}
}

// Model returns the configured model identifier.
func (n *NoOp) Model() string {
	return n.model
}

// Generate returns the first 500 runes of the prompt with an ellipsis.
func (n *NoOp) Generate(_ context.Context, prompt string) (string, error) {
	const maxRunes = 500
	runes := []rune(strings.TrimSpace(prompt))
	if len(runes) <= maxRunes {
		return string(runes), nil
	}
	return string(runes[:maxRunes]) + "...", nil
}
