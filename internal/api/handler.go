package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/deskd/deskd/internal/faq"
	"github.com/deskd/deskd/internal/pipeline"
)

const maxRequestBodySize = 1 << 20 // 1MB

const (
	minQuestionLen = 5
	maxQuestionLen = 1000
)

// Processor runs one inquiry through the support pipeline.
type Processor interface {
	Process(ctx context.Context, question, customerEmail string) pipeline.Inquiry
}

// Searcher answers FAQ relevance queries.
type Searcher interface {
	Search(query, category string, topK int) []faq.Result
}

// ResponseReader lists recently sent responses.
type ResponseReader interface {
	Recent(count int) []string
}

// Deps holds everything the REST layer needs. Token guards the
// read-back routes; Ready reports whether the generation backend is
// configured. A nil Limiter disables rate limiting.
type Deps struct {
	Pipeline  Processor
	Search    Searcher
	Responses ResponseReader
	Stats     *Stats
	Ready     func() bool
	FAQCount  func() int
	TopK      int
	Token     string
	Limiter   *RateLimiter
}

// NewHandler returns the REST API for the support service.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	if deps.Limiter != nil {
		r.Use(deps.Limiter.Middleware)
	}

	r.Get("/", handleRoot)
	r.Route("/api/support", func(r chi.Router) {
		r.Get("/health", handleHealth(deps))
		r.Get("/stats", handleStats(deps))
		r.Post("/inquiry", handleInquiry(deps))

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(deps.Token))
			r.Get("/responses", handleResponses(deps))
			r.Get("/faq/search", handleFAQSearch(deps))
		})
	})

	return r
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "deskd",
		"status":  "running",
	})
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		if !deps.Ready() {
			status = "degraded"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":            status,
			"gemini_configured": deps.Ready(),
			"faq_entries":       deps.FAQCount(),
		})
	}
}

// inquiryRequest is the POST /api/support/inquiry payload.
type inquiryRequest struct {
	Question      string `json:"question"`
	CustomerEmail string `json:"customer_email"`
}

// inquiryResponse is what the caller gets back once the pipeline finishes.
type inquiryResponse struct {
	InquiryID        string  `json:"inquiry_id"`
	Question         string  `json:"question"`
	Category         string  `json:"category"`
	Response         string  `json:"response"`
	ValidationStatus string  `json:"validation_status"`
	FAQMatches       int     `json:"faq_matches"`
	Logged           bool    `json:"logged"`
	ElapsedMs        float64 `json:"elapsed_ms"`
}

// validateInquiry normalizes raw inquiry input and rejects it before any
// pipeline stage runs. Question bounds count characters, not bytes. Only a
// bare email address is accepted; display-name forms would otherwise leak
// into the response log's recipient line.
func validateInquiry(question, email string) (string, string, error) {
	question = strings.TrimSpace(question)
	if n := utf8.RuneCountInString(question); n < minQuestionLen || n > maxQuestionLen {
		return "", "", fmt.Errorf("question must be between %d and %d characters", minQuestionLen, maxQuestionLen)
	}

	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", "", fmt.Errorf("customer_email is not a valid address")
	}

	return question, addr.Address, nil
}

func handleInquiry(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req inquiryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		question, email, err := validateInquiry(req.Question, req.CustomerEmail)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		if !deps.Ready() {
			httpError(w, http.StatusServiceUnavailable, "api_error", "generation backend is not configured")
			return
		}

		inq := deps.Pipeline.Process(r.Context(), question, email)

		if deps.Stats != nil {
			deps.Stats.Record(string(inq.Category), len(inq.FinalResponse))
		}

		writeJSON(w, http.StatusOK, inquiryResponse{
			InquiryID:        inq.ID,
			Question:         inq.Question,
			Category:         string(inq.Category),
			Response:         inq.FinalResponse,
			ValidationStatus: string(inq.ValidationStatus),
			FAQMatches:       inq.FAQCount(),
			Logged:           inq.Logged,
			ElapsedMs:        float64(inq.Elapsed.Microseconds()) / 1000,
		})
	}
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Stats.Snapshot())
	}
}

func handleResponses(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := 5
		if raw := r.URL.Query().Get("count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "count must be a positive integer")
				return
			}
			if n > 50 {
				n = 50
			}
			count = n
		}

		responses := deps.Responses.Recent(count)
		writeJSON(w, http.StatusOK, map[string]any{
			"responses": responses,
			"count":     len(responses),
		})
	}
}

func handleFAQSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "q is required")
			return
		}

		topK := deps.TopK
		if raw := r.URL.Query().Get("top_k"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "top_k must be a positive integer")
				return
			}
			if n > 50 {
				n = 50
			}
			topK = n
		}

		results := deps.Search.Search(query, r.URL.Query().Get("category"), topK)
		if results == nil {
			results = []faq.Result{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"results": results,
			"count":   len(results),
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
