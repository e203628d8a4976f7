package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/scribe/internal/preference"
	"github.com/MikeSquared-Agency/scribe/internal/review"
)

// ErrNotFound is returned when a session row does not exist.
var ErrNotFound = errors.New("not found")

// SessionRow is the stored summary of a review session.
type SessionRow struct {
	ID           string
	Language     string
	CurrentPhase preference.Phase
	IsComplete   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SaveSession records a new review session.
func (s *Store) SaveSession(ctx context.Context, doc review.Document) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO review_sessions (id, language, original_text, improved_text)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`,
		doc.ID, doc.Language, doc.OriginalText, doc.ImprovedText,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SaveReviewState replaces the stored statements of a session with the
// snapshot's and updates its phase, completion and answers.
func (s *Store) SaveReviewState(ctx context.Context, sessionID string, state review.State) error {
	responses, err := json.Marshal(state.PhaseResponses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE review_sessions
		SET current_phase = $1, is_complete = $2, phase_responses = $3, updated_at = now()
		WHERE id = $4`,
		string(state.CurrentPhase), state.IsComplete, responses, sessionID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update session %s: %w", sessionID, ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM preference_statements WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear statements: %w", err)
	}

	for _, st := range state.Statements {
		_, err = tx.Exec(ctx, `
			INSERT INTO preference_statements (id, session_id, phase, category, statement, confidence, source, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			st.ID, sessionID, string(st.Phase), st.Category, st.Statement, st.Confidence, st.Source, st.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert statement: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetSession returns the stored summary of a session.
func (s *Store) GetSession(ctx context.Context, id string) (*SessionRow, error) {
	var row SessionRow
	var phase string
	err := s.pool.QueryRow(ctx, `
		SELECT id, language, current_phase, is_complete, created_at, updated_at
		FROM review_sessions WHERE id = $1`, id,
	).Scan(&row.ID, &row.Language, &phase, &row.IsComplete, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	row.CurrentPhase = preference.Phase(phase)
	return &row, nil
}

// ListStatements returns the stored statements of a session, oldest first.
func (s *Store) ListStatements(ctx context.Context, sessionID string) ([]preference.Statement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, phase, category, statement, confidence, source, created_at
		FROM preference_statements
		WHERE session_id = $1
		ORDER BY created_at, id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	var out []preference.Statement
	for rows.Next() {
		var st preference.Statement
		var id uuid.UUID
		var phase string
		if err := rows.Scan(&id, &phase, &st.Category, &st.Statement, &st.Confidence, &st.Source, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		st.ID = id
		st.Phase = preference.Phase(phase)
		out = append(out, st)
	}
	return out, rows.Err()
}
