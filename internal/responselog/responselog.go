// Package responselog keeps the append-only record of sent responses. The
// log file is the only durable state the service owns: delivery here means
// a framed entry was appended, nothing more.
package responselog

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultSubject is used when the caller supplies no subject line.
const DefaultSubject = "Customer Support Response"

// separator frames each entry in the log file.
var separator = strings.Repeat("=", 80)

// Log appends timestamped, delimiter-framed response records to a file.
// Appends from concurrent inquiries are serialized by a mutex so entries
// never interleave.
type Log struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// New creates a Log writing to path. The file is created on first append.
func New(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Append writes one framed entry. It reports success as a bool and never
// returns an error: an I/O failure is logged for the operator, and the
// inquiry that produced the response is still considered processed.
func (l *Log) Append(recipient, subject, body string) bool {
	if subject == "" {
		subject = DefaultSubject
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := fmt.Sprintf("\n%s\nTIMESTAMP: %s\nTO: %s\nSUBJECT: %s\n%s\n%s\n%s\n\n",
		separator,
		l.now().Format("2006-01-02 15:04:05"),
		recipient,
		subject,
		separator,
		body,
		separator,
	)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("could not open response log", "path", l.path, "error", err)
		return false
	}
	defer f.Close()

	if _, err := f.WriteString(entry); err != nil {
		slog.Error("could not append to response log", "path", l.path, "error", err)
		return false
	}
	return true
}

// Recent returns up to count most recent entries, oldest first. Entries are
// recovered by splitting on the frame delimiter; a missing log file yields
// an empty slice.
func (l *Log) Recent(count int) []string {
	if count <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not read response log", "path", l.path, "error", err)
		}
		return nil
	}

	var parts []string
	for _, part := range strings.Split(string(data), separator) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	// Each record splits into a header chunk and a body chunk; rejoin them.
	var entries []string
	for i := 0; i < len(parts); i++ {
		if strings.HasPrefix(parts[i], "TIMESTAMP:") && i+1 < len(parts) && !strings.HasPrefix(parts[i+1], "TIMESTAMP:") {
			entries = append(entries, parts[i]+"\n"+parts[i+1])
			i++
			continue
		}
		entries = append(entries, parts[i])
	}

	if len(entries) > count {
		entries = entries[len(entries)-count:]
	}
	return entries
}
