package hermes

import "time"

const (
	SubjectDocumentImproved = "swarm.scribe.document.improved"
	SubjectReviewUpdated    = "swarm.scribe.review.updated"
	SubjectRewriteProposed  = "swarm.scribe.rewrite.proposed"
	SubjectRewriteAccepted  = "swarm.scribe.rewrite.accepted"
	SubjectAgentRegistered  = "swarm.agent.scribe.registered"
)

// DocumentImproved arrives when the first AI-improved version of a document is ready.
type DocumentImproved struct {
	DocumentID   string `json:"document_id"`
	OriginalText string `json:"original_text"`
	ImprovedText string `json:"improved_text"`
	Language     string `json:"language"`
}

// ReviewUpdated summarises a review after every state change.
type ReviewUpdated struct {
	SessionID   string    `json:"session_id"`
	Phase       string    `json:"phase"`
	Statements  int       `json:"statements"`
	IsComplete  bool      `json:"is_complete"`
	LastMessage string    `json:"last_message,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RewriteProposed is emitted when a rewrite is offered to the user.
type RewriteProposed struct {
	SessionID   string   `json:"session_id"`
	UseOriginal bool     `json:"use_original"`
	Changes     []string `json:"changes"`
	TextLength  int      `json:"text_length"`
}

// RewriteAccepted is emitted when the user accepts a rewrite.
type RewriteAccepted struct {
	SessionID  string `json:"session_id"`
	TextLength int    `json:"text_length"`
}

// AgentRegistered announces the service on startup.
type AgentRegistered struct {
	AgentID      string   `json:"agent_id"`
	Name         string   `json:"name"`
	Provider     string   `json:"provider"`
	Capabilities []string `json:"capabilities"`
}
