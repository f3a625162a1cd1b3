package source

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bandarsiri8/ubertimetracker/internal/detect"
	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// NotificationEvent is one posted or removed platform notification.
type NotificationEvent struct {
	Package string `json:"package"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Removed bool   `json:"removed,omitempty"`
}

func (e NotificationEvent) key() string {
	return e.Package + "|" + e.Title
}

// StatusSink accepts pre-classified observations. Implemented by
// status.Aggregator.
type StatusSink interface {
	Observe(source models.Source, text string, now time.Time) (*models.ChangeEvent, bool)
	ObserveStatus(source models.Source, status models.Status, now time.Time) (*models.ChangeEvent, bool)
}

// NotificationIngest interprets the driver app's notification stream. Posted
// notifications are classified from their title and text. Removals carry no
// text, so the signal is inferred from absence: when the last notification
// that had classified ONLINE disappears, the driver has gone offline.
type NotificationIngest struct {
	sink  StatusSink
	clock func() time.Time

	mu     sync.Mutex
	online map[string]struct{} // keys of live notifications that classified ONLINE
}

// NewNotificationIngest creates an ingest feeding the given sink.
func NewNotificationIngest(sink StatusSink) *NotificationIngest {
	return &NotificationIngest{
		sink:   sink,
		clock:  time.Now,
		online: make(map[string]struct{}),
	}
}

// Ingest processes one notification event. Returns true when the event
// produced a committed status change.
func (n *NotificationIngest) Ingest(ev NotificationEvent) bool {
	if !detect.IsDriverApp(ev.Package) {
		return false
	}

	if ev.Removed {
		return n.ingestRemoval(ev)
	}

	text := strings.TrimSpace(ev.Title + " " + ev.Text)
	candidate := detect.Classify(text)

	n.mu.Lock()
	switch candidate {
	case models.StatusOnline:
		n.online[ev.key()] = struct{}{}
	case models.StatusOffline:
		delete(n.online, ev.key())
	}
	n.mu.Unlock()

	_, committed := n.sink.ObserveStatus(models.SourceNotification, candidate, n.clock())
	return committed
}

func (n *NotificationIngest) ingestRemoval(ev NotificationEvent) bool {
	n.mu.Lock()
	_, wasOnline := n.online[ev.key()]
	delete(n.online, ev.key())
	surviving := len(n.online)
	n.mu.Unlock()

	if !wasOnline || surviving > 0 {
		return false
	}

	log.Debug().Str("package", ev.Package).Msg("Last online notification removed, inferring offline")
	_, committed := n.sink.ObserveStatus(models.SourceNotification, models.StatusOffline, n.clock())
	return committed
}
