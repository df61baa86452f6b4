package faq

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is a single categorized question/answer pair. Entries are immutable
// once loaded; identity is (category, position within category).
type Entry struct {
	Category string `json:"category" yaml:"category"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Store holds FAQ entries grouped by category, preserving insertion order
// both across categories and within each category. It is read-only after
// load, so concurrent searches need no locking.
type Store struct {
	categories []string
	entries    map[string][]Entry
}

// NewStore returns an empty Store. Entries are added with Append.
func NewStore() *Store {
	return &Store{entries: make(map[string][]Entry)}
}

// Append adds an entry to its category's bucket, registering the category on
// first sight. The entry's Category field determines the bucket.
func (s *Store) Append(e Entry) {
	if _, ok := s.entries[e.Category]; !ok {
		s.categories = append(s.categories, e.Category)
	}
	s.entries[e.Category] = append(s.entries[e.Category], e)
}

// Categories returns category names in insertion order.
func (s *Store) Categories() []string {
	return s.categories
}

// Entries returns the entries of one category in insertion order.
// An unknown category yields nil.
func (s *Store) Entries(category string) []Entry {
	return s.entries[category]
}

// Len returns the total number of entries across all categories.
func (s *Store) Len() int {
	n := 0
	for _, es := range s.entries {
		n += len(es)
	}
	return n
}

// Load reads FAQ data from path and returns a populated Store. A missing or
// malformed file is not fatal: Load logs a warning and returns an empty
// store, so the service comes up with degraded search rather than crashing.
//
// Two formats are supported, chosen by file extension:
//
//	.json   {"account": {"reset_password": {"question": "...", "answer": "..."}}}
//	.yaml   account: [{question: "...", answer: "..."}, ...]
//
// JSON objects carry no order, so categories and entry keys are sorted to
// keep search tie-breaking deterministic across runs.
func Load(path string) *Store {
	s := NewStore()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("FAQ file not found, using empty store", "path", path)
		} else {
			slog.Warn("could not read FAQ file, using empty store", "path", path, "error", err)
		}
		return s
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = loadYAML(s, data)
	default:
		err = loadJSON(s, data)
	}
	if err != nil {
		slog.Warn("could not parse FAQ file, using empty store", "path", path, "error", err)
		return NewStore()
	}

	slog.Info("FAQ store loaded", "path", path, "categories", len(s.categories), "entries", s.Len())
	return s
}

type rawEntry struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

func loadJSON(s *Store, data []byte) error {
	var raw map[string]map[string]rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing FAQ JSON: %w", err)
	}

	cats := make([]string, 0, len(raw))
	for cat := range raw {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	for _, cat := range cats {
		keys := make([]string, 0, len(raw[cat]))
		for k := range raw[cat] {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			e := raw[cat][k]
			s.Append(Entry{Category: cat, Question: e.Question, Answer: e.Answer})
		}
	}
	return nil
}

func loadYAML(s *Store, data []byte) error {
	var raw map[string][]rawEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing FAQ YAML: %w", err)
	}

	cats := make([]string, 0, len(raw))
	for cat := range raw {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	for _, cat := range cats {
		for _, e := range raw[cat] {
			s.Append(Entry{Category: cat, Question: e.Question, Answer: e.Answer})
		}
	}
	return nil
}
