// Package status reconciles classified observations from the screen and
// notification channels into a single canonical online/offline signal.
package status

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bandarsiri8/ubertimetracker/internal/detect"
	"github.com/bandarsiri8/ubertimetracker/internal/privacy"
	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// DefaultDebounce is the minimum interval between two committed status
// changes. Transient screens during UI transitions flicker faster than this.
const DefaultDebounce = time.Second

// Aggregator holds the canonical status and applies the commit rules:
// UNKNOWN never commits, identical statuses never commit twice, and a change
// inside the debounce window is discarded. Both observation channels call
// Observe concurrently; a single mutex keeps the debounce and idempotence
// invariants intact.
//
// Across the two sources the policy is last-writer-wins: either source can
// unilaterally move the canonical status. commitPolicy isolates that rule so
// a voting scheme could replace it without touching the rest of the core.
type Aggregator struct {
	mu         sync.Mutex
	canonical  models.Status
	language   string
	lastChange time.Time
	debounce   time.Duration

	debugLog *DebugLog
	events   chan models.ChangeEvent
}

// NewAggregator creates an aggregator with the default debounce window and a
// bounded debug ring. Committed changes are delivered on Events.
func NewAggregator() *Aggregator {
	return &Aggregator{
		canonical: models.StatusUnknown,
		debounce:  DefaultDebounce,
		debugLog:  NewDebugLog(DefaultDebugLogSize),
		events:    make(chan models.ChangeEvent, 16),
	}
}

// SetDebounce overrides the debounce window. Intended for tests.
func (a *Aggregator) SetDebounce(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.debounce = d
}

// Events is the committed change stream consumed by the bridge. The channel
// is buffered; the aggregator drops an event (with a warning entry) rather
// than block the observation channel that produced it.
func (a *Aggregator) Events() <-chan models.ChangeEvent {
	return a.events
}

// DebugLog exposes the forensic ring for the API layer.
func (a *Aggregator) DebugLog() *DebugLog {
	return a.debugLog
}

// Canonical returns the current committed status.
func (a *Aggregator) Canonical() models.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.canonical
}

// Language returns the language code of the last text that classified to a
// definite status, or "" before the first one.
func (a *Aggregator) Language() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.language
}

// Observe classifies raw text from one source and commits a status change if
// the commit rules allow it. The returned event is non-nil only on commit.
// The decision itself is synchronous and non-blocking; downstream side
// effects run on the bridge goroutine.
func (a *Aggregator) Observe(source models.Source, text string, now time.Time) (*models.ChangeEvent, bool) {
	candidate := detect.Classify(text)
	a.debugLog.AppendAt(now, CategoryOCR, "text observed", excerpt(privacy.Scrub(text)))
	if candidate != models.StatusUnknown {
		if code, _ := detect.DetectLanguage(text); code != "" {
			a.mu.Lock()
			a.language = code
			a.mu.Unlock()
		}
	}
	return a.ObserveStatus(source, candidate, now)
}

// ObserveStatus is Observe for callers that already hold a classified status
// (the notification channel's absence inference produces OFFLINE directly).
func (a *Aggregator) ObserveStatus(source models.Source, candidate models.Status, now time.Time) (*models.ChangeEvent, bool) {
	if candidate == models.StatusUnknown {
		return nil, false
	}

	a.mu.Lock()
	if !a.commitPolicy(candidate, now) {
		a.mu.Unlock()
		return nil, false
	}
	a.canonical = candidate
	a.lastChange = now
	a.mu.Unlock()

	a.debugLog.AppendAt(now, CategoryAnalysis, string(candidate), "source="+string(source))
	log.Debug().
		Str("source", string(source)).
		Str("status", string(candidate)).
		Msg("Status change committed")

	event := models.ChangeEvent{Status: candidate, Source: source, Timestamp: now}
	select {
	case a.events <- event:
	default:
		a.debugLog.AppendAt(now, CategoryWarning, "event dropped", "bridge backlog full")
		log.Warn().Str("status", string(candidate)).Msg("Status event dropped, consumer backlog full")
	}
	return &event, true
}

// excerpt bounds a debug detail to one short line.
func excerpt(text string) string {
	const max = 80
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}

// commitPolicy decides whether a differing candidate may commit now. Called
// with the mutex held. Last-writer-wins across sources: the debounce race is
// the only arbitration between the screen and notification channels.
func (a *Aggregator) commitPolicy(candidate models.Status, now time.Time) bool {
	if candidate == a.canonical {
		return false
	}
	if !a.lastChange.IsZero() && now.Sub(a.lastChange) < a.debounce {
		return false
	}
	return true
}
