package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Outcome is the result of one validation attempt.
type Outcome struct {
	Approved bool
	Feedback string
	Attempt  int
}

// Validator quality-checks a drafted response before it is sent.
type Validator struct {
	gen      Generator
	settings Settings
	// MaxAttempts is included in the prompt so the provider knows how far
	// along the retry budget this attempt is.
	MaxAttempts int
}

// NewValidator creates a Validator. maxAttempts is the total attempt budget
// of the surrounding retry loop.
func NewValidator(gen Generator, settings Settings, maxAttempts int) *Validator {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Validator{gen: gen, settings: settings, MaxAttempts: maxAttempts}
}

// Validate checks the draft against the question. A provider failure fails
// open: the outcome is approved so availability wins over strict gating.
func (v *Validator) Validate(ctx context.Context, question, draft string, attempt int) Outcome {
	ctx, cancel := context.WithTimeout(ctx, v.settings.timeout())
	defer cancel()

	prompt := fmt.Sprintf("Validate this customer support response:\n\n"+
		"CUSTOMER QUESTION:\n%s\n\n"+
		"DRAFT RESPONSE:\n%s\n\n"+
		"VALIDATION ATTEMPT: %d of %d\n\n"+
		"Perform quality validation and provide your assessment.",
		question, draft, attempt, v.MaxAttempts)

	text, err := v.gen.Generate(ctx, v.settings.Model, validatorInstruction, prompt, v.settings.Temperature)
	if err != nil {
		slog.Warn("validator call failed, failing open", "attempt", attempt, "error", err)
		return Outcome{
			Approved: true,
			Feedback: fmt.Sprintf("Validation error: %v. Defaulting to approval.", err),
			Attempt:  attempt,
		}
	}

	return Outcome{
		Approved: parseVerdict(text),
		Feedback: text,
		Attempt:  attempt,
	}
}

// parseVerdict reads the validator's plain-text verdict. Approval requires
// APPROVED to be present and NEEDS_REVISION absent, case-insensitively.
func parseVerdict(text string) bool {
	upper := strings.ToUpper(text)
	return strings.Contains(upper, "APPROVED") && !strings.Contains(upper, "NEEDS_REVISION")
}
