package preference

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Phase is one stage of the review questionnaire.
type Phase string

const (
	PhaseMetadata      Phase = "metadata"
	PhaseVerification  Phase = "verification"
	PhaseCustomization Phase = "customization"
)

// Phases lists the review phases in order.
var Phases = []Phase{PhaseMetadata, PhaseVerification, PhaseCustomization}

// ParsePhase validates a phase name.
func ParsePhase(s string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Phases {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown review phase %q", s)
}

// Next returns the following phase. ok is false past customization.
func (p Phase) Next() (next Phase, ok bool) {
	for i, known := range Phases {
		if known == p && i+1 < len(Phases) {
			return Phases[i+1], true
		}
	}
	return p, false
}

// Statement categories. The set is open; these are the ones prompts ask for.
const (
	CategoryStructure      = "Structure"
	CategoryContent        = "Content"
	CategoryStyle          = "Style"
	CategoryPurpose        = "Purpose"
	CategoryDetailLevel    = "Detail Level"
	CategoryOrganization   = "Organization"
	CategoryUserPreference = "User Preference"
)

// Categories lists the known statement categories.
var Categories = []string{
	CategoryStructure,
	CategoryContent,
	CategoryStyle,
	CategoryPurpose,
	CategoryDetailLevel,
	CategoryOrganization,
	CategoryUserPreference,
}

// MinConfidence is the floor below which inferred statements are discarded.
const MinConfidence = 0.5

// Statement is a positively phrased property the rewritten text should have.
type Statement struct {
	ID         uuid.UUID `json:"id"`
	Category   string    `json:"category"`
	Statement  string    `json:"statement"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	Phase      Phase     `json:"phase"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewStatement assigns a fresh id and creation time.
func NewStatement(phase Phase, category, text string, confidence float64, source string) Statement {
	return Statement{
		ID:         uuid.New(),
		Category:   category,
		Statement:  text,
		Confidence: confidence,
		Source:     source,
		Phase:      phase,
		CreatedAt:  time.Now().UTC(),
	}
}

// Answer holds a single answer or the choices of a multi-select question.
type Answer []string

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = Answer{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("answer must be a string or list of strings: %w", err)
	}
	*a = Answer(many)
	return nil
}

// MarshalJSON writes single answers back as plain strings.
func (a Answer) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// Text joins the answer parts with ", ", skipping blanks.
func (a Answer) Text() string {
	parts := make([]string, 0, len(a))
	for _, s := range a {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Response is one answered question of a phase.
type Response struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     Answer `json:"answer"`
}
