package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const maxDraftFAQs = 3

// Writer drafts the customer-facing response text.
type Writer struct {
	gen      Generator
	settings Settings
}

// NewWriter creates a Writer using the given generator.
func NewWriter(gen Generator, settings Settings) *Writer {
	return &Writer{gen: gen, settings: settings}
}

// Draft produces a response for the question from the research output. On
// provider failure it returns a static holding message so that every
// accepted inquiry still gets an answer.
func (w *Writer) Draft(ctx context.Context, question string, research Research) string {
	ctx, cancel := context.WithTimeout(ctx, w.settings.timeout())
	defer cancel()

	prompt := w.buildPrompt(question, research)
	text, err := w.gen.Generate(ctx, w.settings.Model, writerInstruction, prompt, w.settings.Temperature)
	if err != nil {
		slog.Warn("writer call failed, using fallback response", "error", err)
		return FallbackResponse(question)
	}
	return text
}

// FallbackResponse is the static text sent when drafting is impossible.
func FallbackResponse(question string) string {
	return fmt.Sprintf("Dear Customer,\n\n"+
		"Thank you for contacting support regarding: %s\n\n"+
		"We're looking into this and will get back to you shortly.\n\n"+
		"Best regards,\nCustomer Support Team", question)
}

func (w *Writer) buildPrompt(question string, research Research) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a customer support response for this inquiry:\n\nCustomer Question: %s\n\n", question)

	if research.FoundAnswers {
		sb.WriteString("Relevant FAQ information:\n")
		for i, res := range research.Results {
			if i >= maxDraftFAQs {
				break
			}
			fmt.Fprintf(&sb, "\n%d. Q: %s\n   A: %s\n", i+1, res.Question, res.Answer)
		}
	} else {
		sb.WriteString("No specific FAQ found. Provide general guidance.\n")
	}

	summary := research.Summary
	if summary == "" {
		summary = "N/A"
	}
	fmt.Fprintf(&sb, "\nResearch Summary: %s\n", summary)
	sb.WriteString("\nWrite a complete, professional response that addresses the customer's needs.")
	return sb.String()
}
