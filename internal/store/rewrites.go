package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/scribe/internal/synth"
)

const (
	RewriteProposed = "proposed"
	RewriteAccepted = "accepted"
)

// RecordRewrite stores a proposed rewrite.
func (s *Store) RecordRewrite(ctx context.Context, sessionID string, useOriginal bool, res *synth.Result) (uuid.UUID, error) {
	changes := res.Changes
	if changes == nil {
		changes = []string{}
	}

	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rewrite_proposals (id, session_id, use_original, new_text, changes, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, sessionID, useOriginal, res.NewText, changes, RewriteProposed,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert rewrite: %w", err)
	}
	return id, nil
}

// MarkRewriteAccepted flags the proposal with the same text as accepted, or
// records the text as an accepted rewrite when no proposal matches.
func (s *Store) MarkRewriteAccepted(ctx context.Context, sessionID, text string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rewrite_proposals SET status = $1, accepted_at = now()
		WHERE id = (
			SELECT id FROM rewrite_proposals
			WHERE session_id = $2 AND new_text = $3 AND status = $4
			ORDER BY created_at DESC LIMIT 1
		)`,
		RewriteAccepted, sessionID, text, RewriteProposed,
	)
	if err != nil {
		return fmt.Errorf("accept rewrite: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO rewrite_proposals (id, session_id, new_text, status, accepted_at)
		VALUES ($1, $2, $3, $4, now())`,
		uuid.New(), sessionID, text, RewriteAccepted,
	)
	if err != nil {
		return fmt.Errorf("insert accepted rewrite: %w", err)
	}
	return nil
}

// RewriteStatus returns the status of a stored rewrite.
func (s *Store) RewriteStatus(ctx context.Context, id uuid.UUID) (string, error) {
	var status string
	if err := s.pool.QueryRow(ctx, `SELECT status FROM rewrite_proposals WHERE id = $1`, id).Scan(&status); err != nil {
		return "", fmt.Errorf("get rewrite status: %w", err)
	}
	return status, nil
}
