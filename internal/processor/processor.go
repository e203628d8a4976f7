package processor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/scribe/internal/hermes"
	"github.com/MikeSquared-Agency/scribe/internal/review"
	"github.com/MikeSquared-Agency/scribe/internal/session"
	"github.com/MikeSquared-Agency/scribe/internal/synth"
)

const writeTimeout = 10 * time.Second

// Publisher sends events to the bus.
type Publisher interface {
	Publish(subject string, data any) error
}

// Recorder keeps the audit trail of reviews.
type Recorder interface {
	SaveSession(ctx context.Context, doc review.Document) error
	SaveReviewState(ctx context.Context, sessionID string, state review.State) error
	RecordRewrite(ctx context.Context, sessionID string, useOriginal bool, res *synth.Result) (uuid.UUID, error)
	MarkRewriteAccepted(ctx context.Context, sessionID, text string) error
}

// Processor connects review sessions to the event bus and the audit store.
// Either side may be nil. Side-effect failures are logged, never returned.
type Processor struct {
	sessions  *session.Manager
	publisher Publisher
	recorder  Recorder
	logger    *slog.Logger
}

// New wires p into sessions so every new review is recorded and observed.
func New(sessions *session.Manager, pub Publisher, rec Recorder, logger *slog.Logger) *Processor {
	p := &Processor{
		sessions:  sessions,
		publisher: pub,
		recorder:  rec,
		logger:    logger,
	}
	sessions.OnCreate(p.attach)
	return p
}

func (p *Processor) attach(o *review.Orchestrator) {
	doc := o.Document()

	if p.recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := p.recorder.SaveSession(ctx, doc); err != nil {
			p.logger.Error("failed to record session", "session_id", doc.ID, "error", err)
		}
		cancel()
	}

	o.Subscribe(func(s review.State) {
		p.stateChanged(doc.ID, s)
	})
}

func (p *Processor) stateChanged(sessionID string, s review.State) {
	if p.publisher != nil {
		evt := hermes.ReviewUpdated{
			SessionID:  sessionID,
			Phase:      string(s.CurrentPhase),
			Statements: len(s.Statements),
			IsComplete: s.IsComplete,
			UpdatedAt:  time.Now().UTC(),
		}
		if n := len(s.Messages); n > 0 {
			evt.LastMessage = s.Messages[n-1].Content
		}
		p.publish(hermes.SubjectReviewUpdated, evt)
	}

	if p.recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := p.recorder.SaveReviewState(ctx, sessionID, s); err != nil {
			p.logger.Error("failed to record review state", "session_id", sessionID, "error", err)
		}
	}
}

// HandleDocumentImproved is the NATS handler for swarm.scribe.document.improved.
func (p *Processor) HandleDocumentImproved(subject string, data []byte) {
	var evt hermes.DocumentImproved
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse document event", "subject", subject, "error", err)
		return
	}

	_, err := p.sessions.Create(review.Document{
		ID:           evt.DocumentID,
		OriginalText: evt.OriginalText,
		ImprovedText: evt.ImprovedText,
		Language:     evt.Language,
	})
	switch {
	case errors.Is(err, session.ErrExists):
		p.logger.Info("review session already exists, ignoring event", "document_id", evt.DocumentID)
	case err != nil:
		p.logger.Error("failed to create review session", "document_id", evt.DocumentID, "error", err)
	}
}

// RewriteProposed announces and records a rewrite offered to the user.
func (p *Processor) RewriteProposed(ctx context.Context, sessionID string, useOriginal bool, res *synth.Result) {
	if p.publisher != nil {
		p.publish(hermes.SubjectRewriteProposed, hermes.RewriteProposed{
			SessionID:   sessionID,
			UseOriginal: useOriginal,
			Changes:     res.Changes,
			TextLength:  len(res.NewText),
		})
	}
	if p.recorder != nil {
		if _, err := p.recorder.RecordRewrite(ctx, sessionID, useOriginal, res); err != nil {
			p.logger.Error("failed to record rewrite", "session_id", sessionID, "error", err)
		}
	}
}

// RewriteAccepted announces and records an accepted rewrite.
func (p *Processor) RewriteAccepted(ctx context.Context, sessionID, text string) {
	if p.publisher != nil {
		p.publish(hermes.SubjectRewriteAccepted, hermes.RewriteAccepted{
			SessionID:  sessionID,
			TextLength: len(text),
		})
	}
	if p.recorder != nil {
		if err := p.recorder.MarkRewriteAccepted(ctx, sessionID, text); err != nil {
			p.logger.Error("failed to record accepted rewrite", "session_id", sessionID, "error", err)
		}
	}
}

func (p *Processor) publish(subject string, evt any) {
	if err := p.publisher.Publish(subject, evt); err != nil {
		p.logger.Error("failed to publish event", "subject", subject, "error", err)
	}
}
