package review

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/scribe/internal/preference"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the review log.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func newMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// State is a snapshot of a review. Callers own the copy they receive.
type State struct {
	Messages       []Message                                  `json:"messages"`
	CurrentPhase   preference.Phase                           `json:"current_phase"`
	Statements     []preference.Statement                     `json:"statements"`
	PhaseResponses map[preference.Phase][]preference.Response `json:"phase_responses"`
	IsComplete     bool                                       `json:"is_complete"`
	Visited        []preference.Phase                         `json:"visited"`
}

// Document is the text under review.
type Document struct {
	ID           string `json:"id"`
	OriginalText string `json:"original_text"`
	ImprovedText string `json:"improved_text"`
	Language     string `json:"language"`
}

func copyResponses(in []preference.Response) []preference.Response {
	out := make([]preference.Response, len(in))
	for i, r := range in {
		out[i] = r
		out[i].Answer = append(preference.Answer(nil), r.Answer...)
	}
	return out
}
