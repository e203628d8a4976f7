//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/scribe/internal/preference"
	"github.com/MikeSquared-Agency/scribe/internal/review"
	"github.com/MikeSquared-Agency/scribe/internal/synth"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func newSession(t *testing.T, s *Store) string {
	t.Helper()
	id := "integration-test-" + uuid.New().String()[:8]
	err := s.SaveSession(context.Background(), review.Document{
		ID:           id,
		OriginalText: "raw notes",
		ImprovedText: "clean notes",
		Language:     "english",
	})
	if err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	return id
}

func TestIntegration_SaveReviewState(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := newSession(t, s)

	a := preference.NewStatement(preference.PhaseMetadata, preference.CategoryStructure, "text should use bullet points", 1, "metadata_format_question")
	b := preference.NewStatement(preference.PhaseMetadata, preference.CategoryStyle, "text should use a formal tone", 0.7, "metadata_style_question")

	state := review.State{
		CurrentPhase: preference.PhaseVerification,
		Statements:   []preference.Statement{a, b},
		PhaseResponses: map[preference.Phase][]preference.Response{
			preference.PhaseMetadata: {{QuestionID: "format", Answer: preference.Answer{"bullets"}}},
		},
	}
	if err := s.SaveReviewState(ctx, id, state); err != nil {
		t.Fatalf("SaveReviewState failed: %v", err)
	}

	stmts, err := s.ListStatements(ctx, id)
	if err != nil {
		t.Fatalf("ListStatements failed: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}

	// Removal is reflected on the next save.
	state.Statements = []preference.Statement{b}
	state.IsComplete = true
	if err := s.SaveReviewState(ctx, id, state); err != nil {
		t.Fatalf("SaveReviewState failed: %v", err)
	}
	stmts, _ = s.ListStatements(ctx, id)
	if len(stmts) != 1 || stmts[0].ID != b.ID {
		t.Errorf("expected only statement b, got %+v", stmts)
	}

	row, err := s.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if row.CurrentPhase != preference.PhaseVerification || !row.IsComplete {
		t.Errorf("unexpected session row %+v", row)
	}
}

func TestIntegration_UnknownSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.GetSession(ctx, "does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.SaveReviewState(ctx, "does-not-exist", review.State{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIntegration_RewriteLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	id := newSession(t, s)

	rid, err := s.RecordRewrite(ctx, id, false, &synth.Result{NewText: "- clean notes", Changes: []string{"Bulleted"}})
	if err != nil {
		t.Fatalf("RecordRewrite failed: %v", err)
	}

	if err := s.MarkRewriteAccepted(ctx, id, "- clean notes"); err != nil {
		t.Fatalf("MarkRewriteAccepted failed: %v", err)
	}
	status, err := s.RewriteStatus(ctx, rid)
	if err != nil {
		t.Fatalf("RewriteStatus failed: %v", err)
	}
	if status != RewriteAccepted {
		t.Errorf("expected accepted, got %q", status)
	}

	// Text edited by hand before accepting has no matching proposal.
	if err := s.MarkRewriteAccepted(ctx, id, "hand edited"); err != nil {
		t.Fatalf("MarkRewriteAccepted without proposal failed: %v", err)
	}
}
