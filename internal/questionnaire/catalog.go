package questionnaire

import (
	"strings"

	"github.com/MikeSquared-Agency/scribe/internal/preference"
)

// Kind is how a question is answered.
type Kind string

const (
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multiselect"
	KindText        Kind = "text"
)

type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Kind     Kind     `json:"type"`
	Options  []Option `json:"options,omitempty"`
	Required bool     `json:"required"`
}

// PhaseQuestions is the question set shown for one review phase.
type PhaseQuestions struct {
	Phase     preference.Phase `json:"phase"`
	Title     string           `json:"title"`
	Intro     string           `json:"intro"`
	Questions []Question       `json:"questions"`
}

// DefaultLanguage is the table used when a language has no questions of its own.
const DefaultLanguage = "english"

// Catalog maps a language to its question tables.
type Catalog map[string]map[preference.Phase]PhaseQuestions

// Default returns the bundled catalog.
func Default() Catalog {
	return Catalog{DefaultLanguage: english()}
}

// Lookup returns the questions for a phase, falling back to English.
func (c Catalog) Lookup(language string, phase preference.Phase) (PhaseQuestions, bool) {
	if tables, ok := c[strings.ToLower(language)]; ok {
		if pq, ok := tables[phase]; ok {
			return pq, true
		}
	}
	pq, ok := c[DefaultLanguage][phase]
	return pq, ok
}

// Find returns one question of a phase by id.
func (c Catalog) Find(language string, phase preference.Phase, id string) (Question, bool) {
	pq, ok := c.Lookup(language, phase)
	if !ok {
		return Question{}, false
	}
	for _, q := range pq.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func opt(value, text string) Option {
	return Option{ID: value, Text: text, Value: value}
}

func english() map[preference.Phase]PhaseQuestions {
	return map[preference.Phase]PhaseQuestions{
		preference.PhaseMetadata: {
			Phase: preference.PhaseMetadata,
			Title: "Note Metadata & Format",
			Intro: "Help me understand what these notes are for and how you like them structured.",
			Questions: []Question{
				{
					ID:       "purpose",
					Question: "What is the primary purpose of these notes?",
					Kind:     KindSelect,
					Options: []Option{
						opt("study", "Study material for exam preparation"),
						opt("meeting", "Meeting minutes or discussion notes"),
						opt("research", "Research notes for a project"),
						opt("lecture", "Lecture or presentation notes"),
						opt("reference", "Reference material for future use"),
						opt("other", "Other (please specify in next question)"),
					},
					Required: true,
				},
				{
					ID:       "topic",
					Question: "What is the main topic or subject area?",
					Kind:     KindText,
					Required: true,
				},
				{
					ID:       "format",
					Question: "What format do you prefer for your notes?",
					Kind:     KindMultiSelect,
					Options: []Option{
						opt("bullets", "Bullet points for easy scanning"),
						opt("paragraphs", "Full paragraphs for detailed explanations"),
						opt("headings", "Clear headings and sections"),
						opt("numbered", "Numbered lists for ordered information"),
						opt("tables", "Tables for structured data"),
					},
					Required: true,
				},
				{
					ID:       "detail_level",
					Question: "How detailed should the notes be?",
					Kind:     KindSelect,
					Options: []Option{
						opt("concise", "Concise - just the key points"),
						opt("moderate", "Moderate - important details included"),
						opt("comprehensive", "Comprehensive - all available information"),
					},
					Required: true,
				},
			},
		},
		preference.PhaseVerification: {
			Phase: preference.PhaseVerification,
			Title: "Content Verification",
			Intro: "Let's verify that I understood your content correctly and didn't miss anything important.",
			Questions: []Question{
				{
					ID:       "accuracy_check",
					Question: "Are there any facts or details that seem incorrect or misunderstood?",
					Kind:     KindText,
				},
				{
					ID:       "missing_info",
					Question: "Is there any important information that was missed?",
					Kind:     KindText,
				},
				{
					ID:       "structure_issues",
					Question: "Are there any sections that should be reorganized?",
					Kind:     KindText,
				},
				{
					ID:       "emphasis_check",
					Question: "Are the most important points properly emphasized?",
					Kind:     KindSelect,
					Options: []Option{
						opt("yes", "Yes, the emphasis is appropriate"),
						opt("some_issues", "Some important points need more emphasis"),
						opt("major_issues", "Major emphasis problems throughout"),
					},
					Required: true,
				},
			},
		},
		preference.PhaseCustomization: {
			Phase: preference.PhaseCustomization,
			Title: "Custom Preferences",
			Intro: "Tell me about any specific changes or customizations you'd like to make.",
			Questions: []Question{
				{
					ID:       "style_preferences",
					Question: "Do you have any specific writing style preferences?",
					Kind:     KindText,
				},
				{
					ID:       "specific_changes",
					Question: "Are there any specific sections that need particular attention?",
					Kind:     KindText,
				},
				{
					ID:       "additional_requests",
					Question: "Any other improvements or changes you'd like to see?",
					Kind:     KindText,
				},
			},
		},
	}
}
