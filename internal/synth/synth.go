package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/scribe/internal/llm"
	"github.com/MikeSquared-Agency/scribe/internal/preference"
)

// ErrSynthesisFailed is the user-visible failure of a rewrite.
var ErrSynthesisFailed = errors.New("failed to apply preferences; try again")

const defaultChange = "Text improved based on theory"

// Request is everything a rewrite is computed from.
type Request struct {
	BaseText     string
	OriginalText string
	Statements   []preference.Statement
	Responses    map[preference.Phase][]preference.Response
	Language     string
}

// Result is a proposed rewrite.
type Result struct {
	NewText string   `json:"new_text"`
	Changes []string `json:"changes"`
}

type Synthesizer struct {
	llm    llm.Generator
	logger *slog.Logger
}

func New(gen llm.Generator, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{llm: gen, logger: logger}
}

// Synthesize produces one candidate rewrite. An empty statement set is valid.
// Every failure wraps ErrSynthesisFailed.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (*Result, error) {
	prompt := fmt.Sprintf(rewritePrompt,
		req.OriginalText,
		req.BaseText,
		formatStatements(req.Statements),
		formatResponses(req.Responses),
		LanguageName(req.Language),
	)

	s.logger.Info("synthesizing rewrite",
		"statements", len(req.Statements),
		"base_len", len(req.BaseText),
		"language", req.Language,
	)

	raw, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}

	res, err := parseRewrite(raw)
	if err != nil {
		s.logger.Error("failed to parse rewrite response", "error", err, "raw_len", len(raw))
		return nil, fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}

	s.logger.Info("rewrite complete", "new_len", len(res.NewText), "changes", len(res.Changes))
	return res, nil
}

func parseRewrite(raw string) (*Result, error) {
	i := strings.Index(raw, improvedMarker)
	if i < 0 {
		return nil, fmt.Errorf("improved text marker not found")
	}
	rest := raw[i+len(improvedMarker):]

	improved := rest
	var changesBlock string
	hasChanges := false
	if j := strings.Index(rest, changesMarker); j >= 0 {
		improved = rest[:j]
		changesBlock = rest[j+len(changesMarker):]
		hasChanges = true
	}

	improved = strings.TrimSpace(improved)
	if improved == "" {
		return nil, fmt.Errorf("improved text section is empty")
	}

	var changes []string
	if hasChanges {
		changes = parseChanges(changesBlock)
	}
	if len(changes) == 0 {
		changes = []string{defaultChange}
	}

	return &Result{NewText: improved, Changes: changes}, nil
}

func parseChanges(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "===") {
			break
		}
		for _, bullet := range []string{"-", "*", "•"} {
			if strings.HasPrefix(line, bullet) {
				if c := strings.TrimSpace(strings.TrimPrefix(line, bullet)); c != "" {
					out = append(out, c)
				}
				break
			}
		}
	}
	return out
}

func formatStatements(stmts []preference.Statement) string {
	if len(stmts) == 0 {
		return "(none recorded; improve clarity and structure only)\n"
	}
	var b strings.Builder
	for _, s := range stmts {
		fmt.Fprintf(&b, "- %s: %s (%.0f%%)\n", s.Category, s.Statement, s.Confidence*100)
	}
	return b.String()
}

func formatResponses(responses map[preference.Phase][]preference.Response) string {
	var b strings.Builder
	for _, phase := range preference.Phases {
		for _, r := range responses[phase] {
			answer := r.Answer.Text()
			if answer == "" {
				continue
			}
			q := r.Question
			if q == "" {
				q = r.QuestionID
			}
			fmt.Fprintf(&b, "- [%s] %s: %s\n", phase, q, answer)
		}
	}
	if b.Len() == 0 {
		return "(none)\n"
	}
	return b.String()
}

// LanguageName maps a language code to the name used in the output instruction.
func LanguageName(code string) string {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "", "english", "en":
		return "English"
	case "german", "de":
		return "German (Deutsch)"
	case "french", "fr":
		return "French (Français)"
	case "russian", "ru":
		return "Russian (Русский)"
	default:
		return code
	}
}
