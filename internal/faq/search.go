package faq

import (
	"sort"
	"strings"
)

// Relevance weights. A keyword hit in the FAQ's own question text is a much
// stronger signal than an incidental hit in the answer body, and a verbatim
// phrase match beats both.
const (
	phraseBonus   = 10.0
	questionScore = 3.0
	answerScore   = 1.0
)

// stopWords are dropped during keyword extraction: articles and the common
// auxiliary/interrogative words customers open questions with.
var stopWords = map[string]struct{}{
	"how": {}, "do": {}, "i": {}, "can": {}, "what": {}, "where": {},
	"why": {}, "when": {}, "is": {}, "are": {}, "the": {}, "a": {},
	"an": {}, "to": {}, "my": {}, "me": {},
}

// ExtractKeywords lowercases the query, splits it on whitespace, and drops
// stop words and tokens of length <= 2. The result may be empty.
func ExtractKeywords(query string) []string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if len(w) <= 2 {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

// Result is one search hit with its relevance score. Results are transient;
// they carry copies of the entry text, not references into the store.
type Result struct {
	Category string  `json:"category"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// Engine ranks FAQ entries against free-text queries using substring
// relevance scoring. It is deterministic and makes no external calls, so
// search results are fully reproducible for a fixed store.
type Engine struct {
	store *Store
}

// NewEngine creates an Engine over the given store.
func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// Search scores every entry in the requested category (or all categories
// when category is empty) and returns at most topK results ordered by
// descending score. Ties preserve store order. Entries that score zero are
// excluded. An unknown category yields an empty result, not an error.
func (e *Engine) Search(query, category string, topK int) []Result {
	if topK <= 0 {
		return nil
	}

	queryLower := strings.ToLower(query)
	keywords := ExtractKeywords(query)

	categories := e.store.Categories()
	if category != "" {
		categories = []string{category}
	}

	var results []Result
	for _, cat := range categories {
		for _, entry := range e.store.Entries(cat) {
			score := relevance(queryLower, keywords, strings.ToLower(entry.Question), strings.ToLower(entry.Answer))
			if score <= 0 {
				continue
			}
			results = append(results, Result{
				Category: entry.Category,
				Question: entry.Question,
				Answer:   entry.Answer,
				Score:    score,
			})
		}
	}

	// Stable sort keeps first-seen entries ahead on equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// relevance computes the score of one entry. Inputs are pre-lowercased.
// The phrase bonus requires a non-blank query: an empty string is a
// substring of everything, which would credit every entry.
func relevance(query string, keywords []string, question, answer string) float64 {
	var score float64

	if strings.TrimSpace(query) != "" && (strings.Contains(question, query) || strings.Contains(answer, query)) {
		score += phraseBonus
	}

	// Question and answer credit are mutually exclusive per keyword; the
	// question wins.
	for _, kw := range keywords {
		if strings.Contains(question, kw) {
			score += questionScore
		} else if strings.Contains(answer, kw) {
			score += answerScore
		}
	}

	return score
}
