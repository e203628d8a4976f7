package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/scribe/internal/llm"
	"github.com/MikeSquared-Agency/scribe/internal/preference"
)

// Filter decides whether a new preference statement repeats one already accepted.
type Filter struct {
	llm    llm.Generator
	logger *slog.Logger
}

// New creates a new deduplication filter.
func New(gen llm.Generator, logger *slog.Logger) *Filter {
	return &Filter{llm: gen, logger: logger}
}

// Result is the outcome of filtering one batch of candidates.
type Result struct {
	Unique []preference.Statement
	// Confirmed counts candidates the model itself judged duplicates. Drops
	// decided by word overlap are not confirmed.
	Confirmed int
}

// IsDuplicate compares candidate with the existing statements of the same
// category. Statements in other categories are never duplicates.
func (f *Filter) IsDuplicate(ctx context.Context, candidate preference.Statement, existing []preference.Statement) bool {
	dup, _ := f.check(ctx, candidate, existing)
	return dup
}

func (f *Filter) check(ctx context.Context, candidate preference.Statement, existing []preference.Statement) (dup, confirmed bool) {
	same := sameCategory(candidate.Category, existing)
	if len(same) == 0 {
		return false, false
	}

	raw, err := f.llm.Generate(ctx, comparisonPrompt(candidate, same))
	if err != nil {
		dup = overlapsAny(candidate, same)
		f.logger.Warn("duplicate check failed, using word overlap",
			"category", candidate.Category,
			"duplicate", dup,
			"error", err,
		)
		return dup, false
	}

	dup = strings.Contains(strings.ToUpper(raw), "DUPLICATE")
	return dup, dup
}

// Dedupe returns the candidates that are not duplicates of existing. Candidates
// are checked against existing only, never against each other.
func (f *Filter) Dedupe(ctx context.Context, existing, candidates []preference.Statement) Result {
	res := Result{Unique: make([]preference.Statement, 0, len(candidates))}
	for _, c := range candidates {
		dup, confirmed := f.check(ctx, c, existing)
		if dup {
			if confirmed {
				res.Confirmed++
			}
			f.logger.Debug("skipping duplicate statement", "category", c.Category, "statement", c.Statement, "confirmed", confirmed)
			continue
		}
		res.Unique = append(res.Unique, c)
	}

	f.logger.Info("dedup complete",
		"candidates", len(candidates),
		"unique", len(res.Unique),
		"skipped", len(candidates)-len(res.Unique),
		"confirmed", res.Confirmed,
	)
	return res
}

// Repeats reports whether existing holds a same-category statement with the
// same normalized text as candidate.
func Repeats(candidate preference.Statement, existing []preference.Statement) bool {
	want := Normalize(candidate.Statement)
	for _, s := range existing {
		if s.Category == candidate.Category && Normalize(s.Statement) == want {
			return true
		}
	}
	return false
}

func sameCategory(category string, stmts []preference.Statement) []preference.Statement {
	var out []preference.Statement
	for _, s := range stmts {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

func comparisonPrompt(candidate preference.Statement, existing []preference.Statement) string {
	var b strings.Builder
	for i, s := range existing {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Statement)
	}
	return fmt.Sprintf(comparisonTemplate, candidate.Category, candidate.Statement, b.String())
}

const comparisonTemplate = `Decide whether a new preference about rewriting notes expresses the same wish as one already recorded.

CATEGORY: %s

NEW PREFERENCE:
%s

RECORDED PREFERENCES:
%s
Answer DUPLICATE if the new preference asks for the same thing as any recorded one, even in different words.
Answer UNIQUE if it adds something new.
Respond with exactly one word: DUPLICATE or UNIQUE.`
