package questionnaire

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/scribe/internal/llm"
)

const (
	maxSuggestions = 5
	excerptLen     = 500
)

var (
	listMarker    = regexp.MustCompile(`^[-*•"\[\]0-9.,\s]*`)
	trailingQuote = regexp.MustCompile(`"*$`)
)

const suggestionPrompt = `Based on the document excerpt below and the question "%s", generate 4-5 relevant, specific answer options that would be appropriate for this user's notes.

DOCUMENT EXCERPT:
%s

IMPORTANT: Return ONLY a valid JSON array of strings. No additional text, no markdown formatting, no explanations.

Example format:
["Option 1 text", "Option 2 text", "Option 3 text", "Option 4 text"]

Question: %s`

// Suggester proposes answers for free-text questions.
type Suggester struct {
	llm    llm.Generator
	logger *slog.Logger
}

func NewSuggester(gen llm.Generator, logger *slog.Logger) *Suggester {
	return &Suggester{llm: gen, logger: logger}
}

// Suggest returns up to five candidate answers for a text question. Service
// and parse failures fall back to fixed suggestions chosen by keyword.
func (s *Suggester) Suggest(ctx context.Context, q Question, document string) ([]string, error) {
	if q.Kind != KindText {
		return nil, fmt.Errorf("question %q is not a free-text question", q.ID)
	}

	excerpt := []rune(document)
	if len(excerpt) > excerptLen {
		excerpt = excerpt[:excerptLen]
	}

	raw, err := s.llm.Generate(ctx, fmt.Sprintf(suggestionPrompt, q.Question, string(excerpt), q.Question))
	if err != nil {
		s.logger.Warn("suggestion generation failed, using fallback", "question_id", q.ID, "error", err)
		return FallbackSuggestions(q.Question), nil
	}

	if out := parseSuggestions(raw); len(out) > 0 {
		return out, nil
	}
	s.logger.Warn("no usable suggestions in response, using fallback", "question_id", q.ID)
	return FallbackSuggestions(q.Question), nil
}

func parseSuggestions(raw string) []string {
	body := llm.StripFences(raw)

	var items []any
	if err := json.Unmarshal([]byte(body), &items); err == nil {
		var out []string
		for _, it := range items {
			if len(out) == maxSuggestions {
				break
			}
			if s := strings.TrimSpace(fmt.Sprint(it)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > maxSuggestions {
		lines = lines[:maxSuggestions]
	}

	var out []string
	for _, line := range lines {
		line = listMarker.ReplaceAllString(line, "")
		line = strings.TrimSpace(trailingQuote.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// FallbackSuggestions picks a fixed answer set by keywords in the question.
func FallbackSuggestions(question string) []string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "purpose") || strings.Contains(q, "use"):
		return []string{
			"Study material for exam preparation",
			"Meeting notes and action items",
			"Research documentation",
			"Project reference material",
		}
	case strings.Contains(q, "topic") || strings.Contains(q, "subject"):
		return []string{
			"Business and management",
			"Technology and engineering",
			"Science and research",
			"Academic study material",
		}
	case strings.Contains(q, "incorrect") || strings.Contains(q, "wrong"):
		return []string{
			"No, everything looks accurate",
			"Some technical details need correction",
			"Dates or numbers seem off",
			"Context is misunderstood",
		}
	case strings.Contains(q, "missing") || strings.Contains(q, "left out"):
		return []string{
			"No, all important points are covered",
			"Some key details were missed",
			"Important examples are missing",
			"Context information is needed",
		}
	default:
		return []string{
			"Yes, this looks good",
			"Needs some improvements",
			"Requires significant changes",
			"Not applicable to my content",
		}
	}
}
