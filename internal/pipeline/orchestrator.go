// Package pipeline sequences one customer inquiry through the fixed
// classify -> research -> draft -> validate -> log chain. Stages run
// strictly in order; each consumes the previous stage's output. The
// pipeline never rejects an accepted inquiry; every stage degrades to a
// usable fallback, so the caller always receives a final response.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/deskd/deskd/internal/agents"
)

// DefaultMaxRetries is how many validation retries follow a rejected first
// attempt, for MaxRetries+1 attempts total.
const DefaultMaxRetries = 2

// Status is the soft validation signal attached to a processed inquiry.
// Both values still result in the response being sent.
type Status string

const (
	// StatusApproved means validation passed cleanly on the first attempt.
	StatusApproved Status = "approved"
	// StatusNeedsWork means approval needed retries or was forced when the
	// attempt budget ran out; the feedback is kept for audit.
	StatusNeedsWork Status = "needs_work"
)

// Inquiry carries one request through the pipeline. Fields are filled in
// stage by stage; the struct is discarded after logging.
type Inquiry struct {
	ID            string
	Question      string
	CustomerEmail string

	Category         agents.Category
	Research         agents.Research
	DraftResponse    string
	FinalResponse    string
	Validation       agents.Outcome
	ValidationStatus Status
	Logged           bool
	Elapsed          time.Duration
}

// FAQCount returns the number of FAQ hits the research stage produced.
func (i Inquiry) FAQCount() int {
	return len(i.Research.Results)
}

// Stage interfaces. The agents package provides the production
// implementations; tests substitute mocks.
type (
	Classifier interface {
		Classify(ctx context.Context, question string) agents.Category
	}
	Researcher interface {
		Research(ctx context.Context, question string, category agents.Category) agents.Research
	}
	Writer interface {
		Draft(ctx context.Context, question string, research agents.Research) string
	}
	Validator interface {
		Validate(ctx context.Context, question, draft string, attempt int) agents.Outcome
	}
	// Sender records the final response; an empty subject selects the
	// sender's default. A false return means the response could not be
	// logged; the inquiry still counts as processed.
	Sender interface {
		Append(recipient, subject, body string) bool
	}
)

// Orchestrator wires the five stages together. All collaborators are
// injected; the orchestrator holds no global state.
type Orchestrator struct {
	classifier Classifier
	researcher Researcher
	writer     Writer
	validator  Validator
	sender     Sender
	maxRetries int
}

// New creates an Orchestrator. maxRetries < 0 selects DefaultMaxRetries;
// 0 is honored and means a single validation attempt.
func New(classifier Classifier, researcher Researcher, writer Writer, validator Validator, sender Sender, maxRetries int) *Orchestrator {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Orchestrator{
		classifier: classifier,
		researcher: researcher,
		writer:     writer,
		validator:  validator,
		sender:     sender,
		maxRetries: maxRetries,
	}
}

// Process runs the question through every stage and returns the completed
// Inquiry. It never returns an error: stage failures degrade inside the
// stages, and a logging failure is reported via Inquiry.Logged.
func (o *Orchestrator) Process(ctx context.Context, question, customerEmail string) Inquiry {
	start := time.Now()
	inq := Inquiry{
		ID:            uuid.New().String(),
		Question:      question,
		CustomerEmail: customerEmail,
	}

	log := slog.With("inquiry_id", inq.ID)
	log.Info("processing inquiry", "email", customerEmail)

	inq.Category = o.classifier.Classify(ctx, question)
	log.Debug("inquiry classified", "category", inq.Category)

	inq.Research = o.researcher.Research(ctx, question, inq.Category)
	log.Debug("research complete", "faq_matches", inq.FAQCount())

	inq.DraftResponse = o.writer.Draft(ctx, question, inq.Research)
	log.Debug("response drafted", "length", len(inq.DraftResponse))

	outcome, forced := o.validationLoop(ctx, log, question, inq.DraftResponse)
	inq.Validation = outcome
	inq.ValidationStatus = StatusApproved
	if forced || outcome.Attempt > 1 {
		inq.ValidationStatus = StatusNeedsWork
	}

	// The validated draft ships as-is. Nothing revises the text between
	// validation attempts, so draft and final are the same string.
	// TODO: feed validator feedback back into the writer between attempts.
	inq.FinalResponse = inq.DraftResponse

	inq.Logged = o.sender.Append(customerEmail, "", inq.FinalResponse)
	if !inq.Logged {
		log.Warn("response could not be logged", "email", customerEmail)
	}

	inq.Elapsed = time.Since(start)
	log.Info("inquiry complete",
		"category", inq.Category,
		"faq_matches", inq.FAQCount(),
		"validation_status", inq.ValidationStatus,
		"logged", inq.Logged,
		"duration_ms", inq.Elapsed.Milliseconds(),
	)
	return inq
}

// validationLoop runs up to maxRetries+1 validation attempts against the
// unchanged draft. It always terminates with an approved outcome: either a
// round genuinely passed, the validator failed open on a provider error, or
// the budget ran out and approval is forced (forced=true) with the
// rejecting feedback preserved for audit.
func (o *Orchestrator) validationLoop(ctx context.Context, log *slog.Logger, question, draft string) (outcome agents.Outcome, forced bool) {
	maxAttempts := o.maxRetries + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcome = o.validator.Validate(ctx, question, draft, attempt)
		if outcome.Approved {
			log.Debug("validation passed", "attempt", attempt)
			return outcome, false
		}
		log.Debug("validation rejected draft", "attempt", attempt)
	}

	log.Warn("validation attempts exhausted, approving anyway", "attempts", maxAttempts)
	outcome.Approved = true
	return outcome, true
}
