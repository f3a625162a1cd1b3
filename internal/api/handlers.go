package api

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/bandarsiri8/ubertimetracker/internal/source"
	"github.com/bandarsiri8/ubertimetracker/internal/timer"
	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   s.aggregator.Canonical(),
		"language": s.aggregator.Language(),
		"timer":    timerView(s.machine.Snapshot()),
	})
}

// timerView flattens a snapshot for the wire; elapsed goes out in whole
// seconds rather than nanoseconds.
func timerView(snap timer.Snapshot) map[string]interface{} {
	view := map[string]interface{}{
		"state":           snap.State,
		"elapsed_seconds": int64(snap.Elapsed.Seconds()),
	}
	if snap.SessionID != 0 {
		view["session_id"] = snap.SessionID
		view["started_at"] = snap.StartedAt.Format(time.RFC3339)
	}
	return view
}

func (s *Service) handleDebugLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": s.aggregator.DebugLog().Snapshot(),
	})
}

func (s *Service) handleScreenObservation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if body.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	_, committed := s.aggregator.Observe(models.SourceScreen, body.Text, time.Now())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"committed": committed,
		"status":    s.aggregator.Canonical(),
	})
}

func (s *Service) handleNotificationObservation(w http.ResponseWriter, r *http.Request) {
	var event source.NotificationEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if event.Package == "" {
		writeError(w, http.StatusBadRequest, "package is required")
		return
	}

	committed := s.ingest.Ingest(event)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"committed": committed,
		"status":    s.aggregator.Canonical(),
	})
}

// timerHandler adapts one machine transition into a handler. Transitions are
// no-ops from the wrong state, so the response is always the state after.
func (s *Service) timerHandler(op func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := op(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, timerView(s.machine.Snapshot()))
	}
}

func (s *Service) handleSessionsRange(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	for _, date := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			writeError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
			return
		}
	}

	sessions, err := s.sessions.GetSessionsInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.sessions.TotalHoursInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":    sessions,
		"total_hours": total,
	})
}

func (s *Service) handleSessionsMonth(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if !monthPattern.MatchString(month) {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	sessions, err := s.sessions.GetSessionsByMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}

func (s *Service) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsView(settings))
}

// handlePatchSettings applies single-field updates. Each known key maps to
// one store update; dark_mode additionally accepts null to fall back to the
// system theme.
func (s *Service) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	ctx := r.Context()
	for key, raw := range patch {
		var err error
		switch key {
		case "auto_sync":
			err = patchBool(ctx, raw, s.settings.UpdateAutoSync)
		case "cloud_sync":
			err = patchBool(ctx, raw, s.settings.UpdateCloudSync)
		case "offline_cache":
			err = patchBool(ctx, raw, s.settings.UpdateOfflineCache)
		case "notifications":
			err = patchBool(ctx, raw, s.settings.UpdateNotifications)
		case "language":
			var lang string
			if err = json.Unmarshal(raw, &lang); err == nil {
				err = s.settings.UpdateLanguage(ctx, lang)
			}
		case "dark_mode":
			var mode *bool
			if err = json.Unmarshal(raw, &mode); err == nil {
				err = s.settings.UpdateDarkMode(ctx, mode)
			}
		default:
			writeError(w, http.StatusBadRequest, "unknown setting: "+key)
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, key+": "+err.Error())
			return
		}
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsView(settings))
}

func patchBool(ctx context.Context, raw json.RawMessage, update func(context.Context, bool) error) error {
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	return update(ctx, value)
}

// settingsView hides the sql null wrapper; dark_mode serializes as true,
// false or null.
func settingsView(settings *models.AppSettings) map[string]interface{} {
	var darkMode interface{}
	if settings.DarkMode.Valid {
		darkMode = settings.DarkMode.Bool
	}
	return map[string]interface{}{
		"auto_sync":     settings.AutoSyncEnabled,
		"cloud_sync":    settings.CloudSyncEnabled,
		"offline_cache": settings.OfflineCacheEnabled,
		"notifications": settings.NotificationsEnabled,
		"language":      settings.Language,
		"dark_mode":     darkMode,
	}
}

func (s *Service) handleExport(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if !monthPattern.MatchString(month) {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}
	upload := r.URL.Query().Get("upload") == "true"

	result, err := s.exporter.ExportMonth(r.Context(), month, upload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
