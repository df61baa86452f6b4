package api

import (
	"sync"
	"testing"
)

func TestStats_Snapshot(t *testing.T) {
	s := NewStats()
	s.Record("billing", 100)
	s.Record("billing", 200)
	s.Record("account", 60)

	snap := s.Snapshot()
	if snap.TotalInquiries != 3 {
		t.Errorf("TotalInquiries = %d, want 3", snap.TotalInquiries)
	}
	if snap.ByCategory["billing"] != 2 || snap.ByCategory["account"] != 1 {
		t.Errorf("ByCategory = %v, want billing:2 account:1", snap.ByCategory)
	}
	if snap.AvgResponseLength != 120 {
		t.Errorf("AvgResponseLength = %v, want 120", snap.AvgResponseLength)
	}
}

func TestStats_EmptyAverage(t *testing.T) {
	snap := NewStats().Snapshot()
	if snap.AvgResponseLength != 0 {
		t.Errorf("AvgResponseLength = %v, want 0", snap.AvgResponseLength)
	}
}

func TestStats_Concurrent(t *testing.T) {
	s := NewStats()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Record("general", 10)
		}()
	}
	wg.Wait()

	if got := s.Snapshot().TotalInquiries; got != 50 {
		t.Errorf("TotalInquiries = %d, want 50", got)
	}
}
