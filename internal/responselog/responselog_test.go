package responselog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	l := New(filepath.Join(t.TempDir(), "response_log.txt"))
	l.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	return l
}

func TestAppend_FramesEntry(t *testing.T) {
	l := newTestLog(t)

	if ok := l.Append("customer@example.com", "", "Dear Customer,\n\nAll sorted."); !ok {
		t.Fatal("Append returned false")
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"TIMESTAMP: 2025-03-14 09:26:53",
		"TO: customer@example.com",
		"SUBJECT: " + DefaultSubject,
		"Dear Customer,\n\nAll sorted.",
		separator,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestAppend_IOFailureReturnsFalse(t *testing.T) {
	// A directory as the log path makes the open fail.
	l := New(t.TempDir())
	if ok := l.Append("a@b.com", "s", "body"); ok {
		t.Error("Append returned true on unwritable path")
	}
}

func TestRecent(t *testing.T) {
	l := newTestLog(t)
	for _, body := range []string{"first", "second", "third"} {
		if !l.Append("a@b.com", "s", body) {
			t.Fatal("Append failed")
		}
	}

	recent := l.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(recent))
	}
	if !strings.Contains(recent[0], "second") || !strings.Contains(recent[1], "third") {
		t.Errorf("Recent returned wrong entries: %v", recent)
	}
}

func TestRecent_MissingFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "never-written.txt"))
	if got := l.Recent(5); got != nil {
		t.Errorf("Recent on missing file = %v, want nil", got)
	}
}

func TestRecent_ZeroCount(t *testing.T) {
	l := newTestLog(t)
	l.Append("a@b.com", "s", "body")
	if got := l.Recent(0); got != nil {
		t.Errorf("Recent(0) = %v, want nil", got)
	}
}

func TestAppend_ConcurrentWritesDoNotInterleave(t *testing.T) {
	l := newTestLog(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append("a@b.com", "s", "concurrent body line")
		}()
	}
	wg.Wait()

	entries := l.Recent(100)
	if len(entries) != 20 {
		t.Fatalf("got %d entries, want 20", len(entries))
	}
	for _, e := range entries {
		if !strings.Contains(e, "concurrent body line") {
			t.Errorf("corrupted entry: %q", e)
		}
	}
}
