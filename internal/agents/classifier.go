package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Classifier assigns one of the closed categories to an incoming question.
type Classifier struct {
	gen      Generator
	settings Settings
}

// NewClassifier creates a Classifier using the given generator.
func NewClassifier(gen Generator, settings Settings) *Classifier {
	return &Classifier{gen: gen, settings: settings}
}

// Classify returns the category for the question. It never fails: an
// unrecognized provider answer or a provider error both fall back to
// CategoryGeneral.
func (c *Classifier) Classify(ctx context.Context, question string) Category {
	ctx, cancel := context.WithTimeout(ctx, c.settings.timeout())
	defer cancel()

	prompt := fmt.Sprintf("Classify this inquiry: %s", question)
	raw, err := c.gen.Generate(ctx, c.settings.Model, classifierInstruction, prompt, c.settings.Temperature)
	if err != nil {
		slog.Warn("classifier call failed, defaulting to general", "error", err)
		return CategoryGeneral
	}

	cat, ok := ParseCategory(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		slog.Warn("classifier returned invalid category, defaulting to general", "category", raw)
		return CategoryGeneral
	}
	return cat
}
