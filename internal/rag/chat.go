package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/telemetry"
)

// Stage is a step of answering one chat question.
type Stage string

const (
	StageReceived     Stage = "received"
	StageRetrieving   Stage = "retrieving"
	StageAssembling   Stage = "assembling"
	StageSynthesizing Stage = "synthesizing"
	StageCompleted    Stage = "completed"
	StageFailed       Stage = "failed"
)

// StageError reports the stage a chat request failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("chat failed while %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Retriever finds the chunks of a collection most similar to a query.
type Retriever interface {
	Search(ctx context.Context, collectionID, query string, k int) ([]domain.SearchResult, error)
}

// AnswerSynthesizer produces the answer text for a question and context block.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question, contextBlock string) (string, error)
}

// ChatOrchestrator answers questions against one collection:
// retrieve, assemble, synthesize. It never retries and never returns a
// partial answer.
type ChatOrchestrator struct {
	retriever   Retriever
	synthesizer AnswerSynthesizer
	k           int
}

// NewChatOrchestrator creates a ChatOrchestrator retrieving k chunks per
// question. k <= 0 uses DefaultSearchK.
func NewChatOrchestrator(retriever Retriever, synthesizer AnswerSynthesizer, k int) *ChatOrchestrator {
	if k <= 0 {
		k = DefaultSearchK
	}
	return &ChatOrchestrator{retriever: retriever, synthesizer: synthesizer, k: k}
}

// Answer runs the pipeline for question. On failure the returned error is a
// *StageError wrapping the domain error of the failing stage. A collection
// without matching content is answered from an empty context.
func (o *ChatOrchestrator) Answer(ctx context.Context, collectionID, question string) (*domain.ChatAnswer, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatOrchestrator.Answer", telemetry.SpanAttributes{
		CollectionID: collectionID,
		Operation:    "chat",
	})
	defer span.End()

	stage := StageReceived
	advance := func(next Stage) {
		stage = next
		telemetry.AddBreadcrumb(ctx, "chat", string(next))
	}
	fail := func(err error) error {
		span.SetTag("stage", string(stage))
		span.SetError(err)
		telemetry.AddBreadcrumb(ctx, "chat", string(StageFailed))
		return &StageError{Stage: stage, Err: err}
	}

	if strings.TrimSpace(question) == "" {
		return nil, fail(domain.ErrEmptyQuestion)
	}

	advance(StageRetrieving)
	results, err := o.retriever.Search(ctx, collectionID, question, o.k)
	if err != nil {
		return nil, fail(err)
	}

	advance(StageAssembling)
	assembled := Assemble(results)

	advance(StageSynthesizing)
	answer, err := o.synthesizer.Synthesize(ctx, question, assembled.Block)
	if err != nil {
		return nil, fail(err)
	}

	advance(StageCompleted)
	return &domain.ChatAnswer{
		Answer:     answer,
		References: assembled.References,
	}, nil
}
