// Package agents holds the four role-specialized generation callers of the
// support pipeline: classifier, researcher, writer, and validator. Each one
// wraps a single prompt/system-instruction pair around the shared Generator
// capability and recovers locally from provider failure, so the pipeline
// above never sees a hard error from this layer.
package agents

import (
	"context"
	"time"
)

// Generator is the external text-generation capability. The gemini.Client
// satisfies it; tests substitute a mock.
type Generator interface {
	Generate(ctx context.Context, model, systemInstruction, prompt string, temperature float64) (string, error)
}

// Settings are shared across all agents of one pipeline.
type Settings struct {
	Model       string
	Temperature float64
	// CallTimeout bounds each provider call. A timeout is treated exactly
	// like a provider error: the agent falls back, it does not propagate.
	CallTimeout time.Duration
}

// DefaultSettings mirrors the provider defaults the service ships with.
func DefaultSettings() Settings {
	return Settings{
		Model:       "gemini-2.5-flash",
		Temperature: 0.2,
		CallTimeout: 30 * time.Second,
	}
}

func (s Settings) timeout() time.Duration {
	if s.CallTimeout <= 0 {
		return 30 * time.Second
	}
	return s.CallTimeout
}

// Category is the closed set of inquiry topics. Classification output that
// is not one of these falls back to CategoryGeneral.
type Category string

const (
	CategoryAccount   Category = "account"
	CategoryBilling   Category = "billing"
	CategoryTechnical Category = "technical"
	CategoryGeneral   Category = "general"
)

// Categories lists all valid categories in display order.
func Categories() []Category {
	return []Category{CategoryAccount, CategoryBilling, CategoryTechnical, CategoryGeneral}
}

// ParseCategory maps a string onto the closed category set.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryAccount, CategoryBilling, CategoryTechnical, CategoryGeneral:
		return Category(s), true
	}
	return "", false
}
