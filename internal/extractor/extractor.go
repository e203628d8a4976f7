package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/invopop/jsonschema"

	"github.com/MikeSquared-Agency/scribe/internal/llm"
	"github.com/MikeSquared-Agency/scribe/internal/preference"
)

const (
	fallbackSource  = "fallback_generation"
	fallbackPrefix  = "text should incorporate user preference: "
	minStatementLen = 10
)

// noPreference holds answers that mean "nothing to add", in the supported output languages.
var noPreference = setOf(
	"none", "no", "no preference", "no preferences", "n/a", "na", "nothing", "-",
	"keine", "nein", "keine präferenz", "keine vorliebe",
	"aucune", "aucun", "aucune préférence", "rien",
	"нет", "ничего", "нет предпочтений",
)

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

type Extractor struct {
	llm    llm.Generator
	logger *slog.Logger
	schema string
}

func New(gen llm.Generator, logger *slog.Logger) *Extractor {
	return &Extractor{llm: gen, logger: logger, schema: candidateSchema()}
}

func candidateSchema() string {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	b, err := json.MarshalIndent(r.Reflect(&candidate{}), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Extract converts one phase's answers into preference statements. It never
// fails: service and parse errors degrade to one verbatim statement per
// valid answer.
func (e *Extractor) Extract(ctx context.Context, phase preference.Phase, responses []preference.Response) []preference.Statement {
	valid := ValidResponses(responses)
	if len(valid) == 0 {
		e.logger.Debug("no valid answers, skipping extraction", "phase", phase, "submitted", len(responses))
		return []preference.Statement{}
	}

	prompt := fmt.Sprintf(extractionPrompt, phase, formatResponses(valid), phase, e.schema)

	e.logger.Info("extracting preferences",
		"phase", phase,
		"answers", len(valid),
	)

	raw, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("llm extraction failed, using fallback statements", "phase", phase, "error", err)
		return fallbackStatements(phase, valid)
	}

	stmts, err := parseStatements(raw, phase)
	if err != nil {
		e.logger.Warn("failed to parse extraction response, using fallback statements",
			"phase", phase,
			"error", err,
			"raw", raw,
		)
		return fallbackStatements(phase, valid)
	}
	if len(stmts) == 0 {
		e.logger.Warn("all extracted statements rejected, using fallback statements", "phase", phase)
		return fallbackStatements(phase, valid)
	}

	e.logger.Info("extraction complete", "phase", phase, "statements", len(stmts))
	return stmts
}

// ValidResponses drops blank answers and "no preference" sentinels.
func ValidResponses(responses []preference.Response) []preference.Response {
	var out []preference.Response
	for _, r := range responses {
		if IsMeaningful(r.Answer.Text()) {
			out = append(out, r)
		}
	}
	return out
}

// IsMeaningful reports whether an answer carries a preference.
func IsMeaningful(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	a = strings.TrimRight(a, ".!")
	if a == "" {
		return false
	}
	return !noPreference[a]
}

func formatResponses(responses []preference.Response) string {
	var b strings.Builder
	for _, r := range responses {
		q := r.Question
		if q == "" {
			q = r.QuestionID
		}
		fmt.Fprintf(&b, "- [%s] %s\n  Answer: %s\n", r.QuestionID, q, r.Answer.Text())
	}
	return b.String()
}

// parseStatements tolerates code fences and prose around the JSON array and
// drops entries that fail shape validation.
func parseStatements(raw string, phase preference.Phase) ([]preference.Statement, error) {
	body := llm.StripFences(raw)
	start := strings.Index(body, "[")
	end := strings.LastIndex(body, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(body[start:end+1]), &entries); err != nil {
		return nil, fmt.Errorf("parse extraction: %w", err)
	}

	stmts := make([]preference.Statement, 0, len(entries))
	for _, entry := range entries {
		var c candidate
		if err := json.Unmarshal(entry, &c); err != nil {
			continue
		}
		c.Category = strings.TrimSpace(c.Category)
		c.Statement = strings.TrimSpace(c.Statement)
		if c.Category == "" || utf8.RuneCountInString(c.Statement) <= minStatementLen {
			continue
		}
		if c.Confidence < preference.MinConfidence || c.Confidence > 1.0 {
			continue
		}
		if c.Source == "" {
			c.Source = string(phase) + "_question"
		}
		stmts = append(stmts, preference.NewStatement(phase, c.Category, c.Statement, c.Confidence, c.Source))
	}
	return stmts, nil
}

func fallbackStatements(phase preference.Phase, valid []preference.Response) []preference.Statement {
	out := make([]preference.Statement, 0, len(valid))
	for _, r := range valid {
		out = append(out, preference.NewStatement(phase,
			preference.CategoryUserPreference,
			fallbackPrefix+r.Answer.Text(),
			1.0,
			fallbackSource,
		))
	}
	return out
}
