package generation

import (
	"context"
	"strings"
	"time"

	"github.com/PabloGalante/postcraft/internal/domain"
	"github.com/PabloGalante/postcraft/internal/observability"
)

// Orchestrator turns a topic and feedback history into one generated Version.
// It holds no state between calls and never touches a Session.
type Orchestrator struct {
	llm domain.TextGenerator
	now func() time.Time
}

func NewOrchestrator(llm domain.TextGenerator) *Orchestrator {
	return &Orchestrator{
		llm: llm,
		now: time.Now,
	}
}

// Request is one generation. Trigger is the feedback that caused it, empty for a topic-only draft.
type Request struct {
	Topic           string
	FeedbackHistory []string
	Trigger         string
}

// Generate calls the text generator exactly once. The returned Version has no
// Index yet; it becomes part of a session only through Session.AppendVersion.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (domain.Version, error) {
	log := observability.LoggerFromContext(ctx).With(
		"feedback_count", len(req.FeedbackHistory),
		"feedback_triggered", req.Trigger != "",
	)

	prompt := BuildPrompt(req.Topic, req.FeedbackHistory)

	start := time.Now()
	log.Info("generation start")

	text, err := o.llm.Generate(ctx, prompt.System, prompt.User)
	if err != nil {
		log.Error("generation failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return domain.Version{}, &domain.GenerationFailure{Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		log.Error("generation returned empty text", "elapsed_ms", time.Since(start).Milliseconds())
		return domain.Version{}, &domain.GenerationFailure{Cause: domain.ErrEmptyCompletion}
	}

	log.Info("generation end", "elapsed_ms", time.Since(start).Milliseconds(), "chars", len(text))

	return domain.Version{
		Topic:           req.Topic,
		Text:            text,
		CreatedAt:       o.now(),
		FeedbackApplied: req.Trigger,
	}, nil
}
