package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deskd/deskd/internal/faq"
)

// noFAQSummary is the research summary used whenever nothing usable came
// back, either from the knowledge base or from the provider.
const noFAQSummary = "No relevant FAQs found."

// Searcher is the FAQ lookup capability the researcher depends on.
// faq.Engine satisfies it.
type Searcher interface {
	Search(query, category string, topK int) []faq.Result
}

// Research is the output of the research stage: the deterministic FAQ hits
// plus the provider's summary of them.
type Research struct {
	Summary      string
	Results      []faq.Result
	FoundAnswers bool
}

// Researcher searches the FAQ knowledge base and summarizes the hits.
type Researcher struct {
	gen      Generator
	searcher Searcher
	settings Settings
	topK     int
}

// NewResearcher creates a Researcher over the given FAQ searcher.
// topK bounds the number of FAQ hits considered (default 3 if <= 0).
func NewResearcher(gen Generator, searcher Searcher, settings Settings, topK int) *Researcher {
	if topK <= 0 {
		topK = 3
	}
	return &Researcher{gen: gen, searcher: searcher, settings: settings, topK: topK}
}

// Research looks up FAQ entries for the question in the given category and
// asks the provider for a concise summary. A provider failure degrades to
// the no-FAQ result; it is never surfaced as an error.
func (r *Researcher) Research(ctx context.Context, question string, category Category) Research {
	results := r.searcher.Search(question, string(category), r.topK)

	ctx, cancel := context.WithTimeout(ctx, r.settings.timeout())
	defer cancel()

	prompt := r.buildPrompt(question, category, results)
	summary, err := r.gen.Generate(ctx, r.settings.Model, researcherInstruction, prompt, r.settings.Temperature)
	if err != nil {
		slog.Warn("researcher call failed", "error", err)
		return Research{Summary: noFAQSummary}
	}

	return Research{
		Summary:      summary,
		Results:      results,
		FoundAnswers: len(results) > 0,
	}
}

func (r *Researcher) buildPrompt(question string, category Category, results []faq.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Find the information needed to answer this question:\nQuestion: %s\nCategory: %s\n", question, category)

	if len(results) == 0 {
		sb.WriteString("\nNo FAQ entries matched this question.\n")
	} else {
		sb.WriteString("\nFAQ entries retrieved from the knowledge base:\n")
		for i, res := range results {
			fmt.Fprintf(&sb, "\n%d. [%s] Q: %s\n   A: %s\n", i+1, res.Category, res.Question, res.Answer)
		}
	}

	sb.WriteString("\nProvide a concise summary of the relevant information found.")
	return sb.String()
}
