package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/scribe/internal/dedup"
	"github.com/MikeSquared-Agency/scribe/internal/preference"
	"github.com/MikeSquared-Agency/scribe/internal/synth"
)

// Extractor turns one phase's answers into candidate statements.
type Extractor interface {
	Extract(ctx context.Context, phase preference.Phase, responses []preference.Response) []preference.Statement
}

// Deduper drops candidates that repeat accepted statements.
type Deduper interface {
	Dedupe(ctx context.Context, existing, candidates []preference.Statement) dedup.Result
}

// Synthesizer produces a rewrite from the accepted statements.
type Synthesizer interface {
	Synthesize(ctx context.Context, req synth.Request) (*synth.Result, error)
}

// Orchestrator owns the state of one review. Operations run one at a time in
// arrival order; State never waits on an in-flight generation call.
type Orchestrator struct {
	doc       Document
	extractor Extractor
	deduper   Deduper
	synth     Synthesizer
	logger    *slog.Logger

	opMu sync.Mutex

	mu          sync.RWMutex
	store       *preference.Store
	messages    []Message
	phase       preference.Phase
	responses   map[preference.Phase][]preference.Response
	visited     map[preference.Phase]bool
	complete    bool
	currentText string
	observers   []func(State)
}

func New(doc Document, ext Extractor, dd Deduper, sy Synthesizer, logger *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		doc:         doc,
		extractor:   ext,
		deduper:     dd,
		synth:       sy,
		logger:      logger.With("session_id", doc.ID),
		store:       preference.NewStore(),
		phase:       preference.PhaseMetadata,
		responses:   make(map[preference.Phase][]preference.Response),
		visited:     map[preference.Phase]bool{preference.PhaseMetadata: true},
		currentText: doc.ImprovedText,
	}
	o.messages = append(o.messages, newMessage(RoleAssistant, greeting(doc)))
	return o
}

func greeting(doc Document) string {
	return fmt.Sprintf(`I've prepared an improved version of your notes. Let's refine it together.

Original text length: %d characters
Improved text length: %d characters

We'll go through three short rounds of questions. First up: %s.`,
		len([]rune(doc.OriginalText)), len([]rune(doc.ImprovedText)), preference.PhaseMetadata)
}

// Document returns the document under review.
func (o *Orchestrator) Document() Document {
	return o.doc
}

// Subscribe delivers the current state to fn and then a snapshot after every
// state change. Delivery is serialized with operations, so fn never sees an
// older snapshot after a newer one.
func (o *Orchestrator) Subscribe(fn func(State)) {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	o.mu.Lock()
	o.observers = append(o.observers, fn)
	s := o.snapshotLocked()
	o.mu.Unlock()

	fn(s)
}

// State returns a deep copy of the current review state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() State {
	s := State{
		Messages:       append([]Message(nil), o.messages...),
		CurrentPhase:   o.phase,
		Statements:     o.store.All(),
		PhaseResponses: make(map[preference.Phase][]preference.Response, len(o.responses)),
		IsComplete:     o.complete,
	}
	for phase, rs := range o.responses {
		s.PhaseResponses[phase] = copyResponses(rs)
	}
	for _, p := range preference.Phases {
		if o.visited[p] {
			s.Visited = append(s.Visited, p)
		}
	}
	return s
}

// notify must be called with opMu held and mu released.
func (o *Orchestrator) notify() State {
	o.mu.RLock()
	s := o.snapshotLocked()
	observers := append(([]func(State))(nil), o.observers...)
	o.mu.RUnlock()

	for _, fn := range observers {
		fn(o.State())
	}
	return s
}

// SubmitPhaseAnswers replaces the phase's stored answers, extracts statements
// from them and merges the ones that are not duplicates into the store.
func (o *Orchestrator) SubmitPhaseAnswers(ctx context.Context, phase preference.Phase, responses []preference.Response) (State, error) {
	phase, err := preference.ParsePhase(string(phase))
	if err != nil {
		return State{}, err
	}

	o.opMu.Lock()
	defer o.opMu.Unlock()

	o.mu.Lock()
	o.responses[phase] = copyResponses(responses)
	o.visited[phase] = true
	if summary := answerSummary(responses); summary != "" {
		o.messages = append(o.messages, newMessage(RoleUser, summary))
	}
	o.mu.Unlock()

	candidates := o.extractor.Extract(ctx, phase, responses)
	existing := o.store.All()
	survivors := mergeFallback(existing, candidates, o.deduper.Dedupe(ctx, existing, candidates))

	o.mu.Lock()
	added := o.store.Add(survivors...)
	skipped := len(candidates) - added
	var msg string
	if len(candidates) == 0 {
		msg = fmt.Sprintf("No new preferences from the %s answers.", phase)
	} else {
		msg = fmt.Sprintf("Added %d preference(s) from the %s answers, skipped %d duplicate(s).", added, phase, skipped)
	}
	o.messages = append(o.messages, newMessage(RoleAssistant, msg))
	o.mu.Unlock()

	o.logger.Info("phase answers processed",
		"phase", phase,
		"responses", len(responses),
		"candidates", len(candidates),
		"added", added,
		"skipped", skipped,
		"store_size", o.store.Len(),
	)

	return o.notify(), nil
}

// mergeFallback re-adds the candidates when dedup dropped every one of them
// without a model-confirmed duplicate. Candidates that repeat a stored
// statement word for word stay dropped.
func mergeFallback(existing, candidates []preference.Statement, res dedup.Result) []preference.Statement {
	if len(candidates) == 0 || len(res.Unique) > 0 || res.Confirmed > 0 {
		return res.Unique
	}
	var out []preference.Statement
	for _, c := range candidates {
		if !dedup.Repeats(c, existing) {
			out = append(out, c)
		}
	}
	return out
}

func answerSummary(responses []preference.Response) string {
	var lines []string
	for _, r := range responses {
		answer := r.Answer.Text()
		if answer == "" {
			continue
		}
		q := r.Question
		if q == "" {
			q = r.QuestionID
		}
		lines = append(lines, fmt.Sprintf("%s: %s", q, answer))
	}
	return strings.Join(lines, "\n")
}

// RemoveStatement deletes a statement. Unknown ids are logged and ignored.
func (o *Orchestrator) RemoveStatement(id uuid.UUID) State {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	o.mu.Lock()
	removed := o.store.Remove(id)
	o.mu.Unlock()

	if !removed {
		o.logger.Warn("statement not found, nothing removed", "statement_id", id)
		return o.State()
	}

	o.logger.Info("statement removed", "statement_id", id, "store_size", o.store.Len())
	return o.notify()
}

// AdvancePhase moves to the next phase. Advancing past customization
// completes the review; further calls are no-ops.
func (o *Orchestrator) AdvancePhase() State {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	o.mu.Lock()
	if o.complete {
		o.mu.Unlock()
		o.logger.Debug("review already complete, advance ignored")
		return o.State()
	}

	if next, ok := o.phase.Next(); ok {
		o.phase = next
		o.visited[next] = true
		o.messages = append(o.messages, newMessage(RoleAssistant,
			fmt.Sprintf("Moving on to the %s questions.", next)))
	} else if o.allVisitedLocked() {
		o.complete = true
		o.messages = append(o.messages, newMessage(RoleAssistant,
			"Review complete. You can still change answers or remove preferences before applying them."))
	}
	phase, complete := o.phase, o.complete
	o.mu.Unlock()

	o.logger.Info("phase advanced", "phase", phase, "complete", complete)
	return o.notify()
}

func (o *Orchestrator) allVisitedLocked() bool {
	for _, p := range preference.Phases {
		if !o.visited[p] {
			return false
		}
	}
	return true
}

// RequestSynthesis asks for a rewrite of either the original text or the
// latest accepted text. It does not change the review state.
func (o *Orchestrator) RequestSynthesis(ctx context.Context, useOriginalAsBase bool) (*synth.Result, error) {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	o.mu.RLock()
	req := synth.Request{
		BaseText:     o.currentText,
		OriginalText: o.doc.OriginalText,
		Statements:   o.store.All(),
		Responses:    make(map[preference.Phase][]preference.Response, len(o.responses)),
		Language:     o.doc.Language,
	}
	if useOriginalAsBase {
		req.BaseText = o.doc.OriginalText
	}
	for phase, rs := range o.responses {
		req.Responses[phase] = copyResponses(rs)
	}
	o.mu.RUnlock()

	res, err := o.synth.Synthesize(ctx, req)
	if err != nil {
		o.logger.Error("synthesis failed", "use_original", useOriginalAsBase, "error", err)
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	return res, nil
}

// AcceptRewrite makes text the base for incremental rewrites.
func (o *Orchestrator) AcceptRewrite(text string) State {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	o.mu.Lock()
	o.currentText = text
	o.messages = append(o.messages, newMessage(RoleAssistant, "Rewrite accepted."))
	o.mu.Unlock()

	o.logger.Info("rewrite accepted", "text_len", len(text))
	return o.notify()
}

// CurrentText returns the latest accepted text.
func (o *Orchestrator) CurrentText() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.currentText
}
