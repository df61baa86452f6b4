package api

import (
	"sync"
	"time"
)

// Stats tracks processed-inquiry counters for the stats endpoint.
type Stats struct {
	mu          sync.Mutex
	started     time.Time
	total       int
	byCategory  map[string]int
	totalLength int
}

func NewStats() *Stats {
	return &Stats{
		started:    time.Now(),
		byCategory: make(map[string]int),
	}
}

// Record counts one processed inquiry and the length of its final response.
func (s *Stats) Record(category string, responseLen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.byCategory[category]++
	s.totalLength += responseLen
}

// StatsSnapshot is the stats endpoint payload.
type StatsSnapshot struct {
	TotalInquiries    int            `json:"total_inquiries"`
	ByCategory        map[string]int `json:"by_category"`
	AvgResponseLength float64        `json:"avg_response_length"`
	UptimeSeconds     float64        `json:"uptime_seconds"`
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	byCategory := make(map[string]int, len(s.byCategory))
	for k, v := range s.byCategory {
		byCategory[k] = v
	}

	avg := 0.0
	if s.total > 0 {
		avg = float64(s.totalLength) / float64(s.total)
	}

	return StatsSnapshot{
		TotalInquiries:    s.total,
		ByCategory:        byCategory,
		AvgResponseLength: avg,
		UptimeSeconds:     time.Since(s.started).Seconds(),
	}
}
