package status

import (
	"sync"
	"time"
)

// LogCategory classifies a debug log entry.
type LogCategory string

const (
	CategorySystem   LogCategory = "system"
	CategorySync     LogCategory = "sync"
	CategoryOCR      LogCategory = "ocr"
	CategoryLanguage LogCategory = "language"
	CategoryAnalysis LogCategory = "analysis"
	CategoryAction   LogCategory = "action"
	CategoryWarning  LogCategory = "warning"
	CategoryError    LogCategory = "error"
)

// DebugEntry is one line of the in-memory forensic log explaining why a
// status or timer decision happened.
type DebugEntry struct {
	Timestamp time.Time   `json:"timestamp"`
	Category  LogCategory `json:"category"`
	Message   string      `json:"message"`
	Details   string      `json:"details,omitempty"`
}

// DefaultDebugLogSize bounds the debug ring; oldest entries are dropped.
const DefaultDebugLogSize = 50

// DebugLog is a bounded, newest-first ring of DebugEntry values. In-memory
// only; reset on process restart.
type DebugLog struct {
	mu      sync.Mutex
	entries []DebugEntry
	max     int
}

// NewDebugLog creates a debug log bounded to max entries (DefaultDebugLogSize
// if max <= 0).
func NewDebugLog(max int) *DebugLog {
	if max <= 0 {
		max = DefaultDebugLogSize
	}
	return &DebugLog{max: max}
}

// Append adds an entry at the head of the ring, evicting the oldest entry
// beyond the bound.
func (l *DebugLog) Append(category LogCategory, message, details string) {
	l.AppendAt(time.Now(), category, message, details)
}

// AppendAt is Append with an explicit timestamp, for callers that already
// hold a clock reading.
func (l *DebugLog) AppendAt(ts time.Time, category LogCategory, message, details string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]DebugEntry{{
		Timestamp: ts,
		Category:  category,
		Message:   message,
		Details:   details,
	}}, l.entries...)
	if len(l.entries) > l.max {
		l.entries = l.entries[:l.max]
	}
}

// Snapshot returns a newest-first copy of the current entries.
func (l *DebugLog) Snapshot() []DebugEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]DebugEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear empties the ring.
func (l *DebugLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Len returns the current entry count.
func (l *DebugLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
