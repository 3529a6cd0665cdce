package rag

import (
	"context"
	"strings"
	"time"

	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/telemetry"
)

const (
	// FallbackAnswer replaces an empty model reply and is the user-facing
	// chat failure message.
	FallbackAnswer = "something went wrong"

	// Temperature is kept low to favour faithfulness to the context.
	Temperature float32 = 0.2

	systemInstruction = "You are NovaNote. Answer only using the provided context. " +
		"Use bracketed citations like [1] [2] that match the numbered context entries. " +
		"If the answer is not in the context, say you don't know. Be concise."
)

// Completer sends one non-streaming chat completion and returns its text.
type Completer interface {
	Complete(ctx context.Context, messages []domain.Message, temperature float32) (string, error)
}

// Synthesizer turns a question and a context block into an answer.
type Synthesizer struct {
	completer Completer
	timeout   time.Duration
}

// NewSynthesizer creates a Synthesizer. A zero timeout leaves the completion
// call unbounded.
func NewSynthesizer(completer Completer, timeout time.Duration) *Synthesizer {
	return &Synthesizer{completer: completer, timeout: timeout}
}

// Messages returns the two messages sent for question. The context block is
// carried once, in the system message.
func Messages(question, contextBlock string) []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Content: systemInstruction + "\n\nContext:\n" + contextBlock},
		{Role: domain.RoleUser, Content: "Question: " + question},
	}
}

// Synthesize asks the model to answer question from contextBlock. An empty
// reply yields FallbackAnswer rather than an error.
func (s *Synthesizer) Synthesize(ctx context.Context, question, contextBlock string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "Synthesizer.Synthesize", telemetry.SpanAttributes{
		Operation: "complete",
	})
	defer span.End()

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.completer.Complete(callCtx, Messages(question, contextBlock), Temperature)
	if err != nil {
		span.SetError(err)
		return "", remoteError(err, domain.ErrCodeSynthesisUnavailable, "completion failed")
	}

	if strings.TrimSpace(answer) == "" {
		return FallbackAnswer, nil
	}
	return answer, nil
}
