// Package export renders the monthly Arbeitszeitliste from persisted
// sessions and pauses, in PDF, CSV and plain-text form.
package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// SessionReader is the slice of the session store the builder needs.
type SessionReader interface {
	GetSessionsByMonth(ctx context.Context, yearMonth string) ([]*models.Session, error)
}

// PauseReader is the slice of the pause store the builder needs.
type PauseReader interface {
	ListForSession(ctx context.Context, sessionID int64) ([]*models.Pause, error)
}

// Timesheet is one fully derived month, ready for any renderer.
type Timesheet struct {
	Year         int
	Month        time.Month
	Entries      []models.TimesheetEntry
	WeeklyTotals map[int]string // ISO week number -> HH:MM
	MonthlyTotal string         // HH:MM
}

// MonthName returns the German month name for the sheet title.
func (t *Timesheet) MonthName() string {
	return germanMonths[t.Month-1]
}

// BuildTimesheet derives the month's entries from the stores. Work segments
// are the session legs split at the recorded pauses; daily, weekly and
// monthly totals count work time only.
func BuildTimesheet(ctx context.Context, sessions SessionReader, pauses PauseReader, yearMonth string) (*Timesheet, error) {
	start, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return nil, fmt.Errorf("parse month %q: %w", yearMonth, err)
	}

	rows, err := sessions.GetSessionsByMonth(ctx, yearMonth)
	if err != nil {
		return nil, fmt.Errorf("load sessions for %s: %w", yearMonth, err)
	}

	sheet := &Timesheet{
		Year:         start.Year(),
		Month:        start.Month(),
		WeeklyTotals: make(map[int]string),
	}

	weekly := make(map[int]time.Duration)
	var monthly time.Duration

	for _, row := range rows {
		pauseRows, err := pauses.ListForSession(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("load pauses for session %d: %w", row.ID, err)
		}

		entry, worked := buildEntry(row, pauseRows)
		if entry == nil {
			continue
		}

		sheet.Entries = append(sheet.Entries, *entry)
		weekly[entry.WeekNumber] += worked
		monthly += worked
	}

	sort.Slice(sheet.Entries, func(a, b int) bool {
		return sheet.Entries[a].Date.Before(sheet.Entries[b].Date)
	})

	for week, total := range weekly {
		sheet.WeeklyTotals[week] = formatDuration(total)
	}
	sheet.MonthlyTotal = formatDuration(monthly)
	return sheet, nil
}

// buildEntry turns one session row and its pauses into a day entry. Returns
// nil for a row that never started.
func buildEntry(row *models.Session, pauseRows []*models.Pause) (*models.TimesheetEntry, time.Duration) {
	date, err := time.Parse("2006-01-02", row.Date)
	if err != nil {
		return nil, 0
	}

	var legs [][2]time.Time
	for _, leg := range [][2]int64{
		legBounds(row.Start1Epoch.Int64, row.Stop1Epoch.Int64, row.Start1Epoch.Valid, row.Stop1Epoch.Valid),
		legBounds(row.Start2Epoch.Int64, row.Stop2Epoch.Int64, row.Start2Epoch.Valid, row.Stop2Epoch.Valid),
	} {
		if leg[0] == 0 {
			continue
		}
		legs = append(legs, [2]time.Time{time.UnixMilli(leg[0]), time.UnixMilli(leg[1])})
	}
	if len(legs) == 0 {
		return nil, 0
	}

	sort.Slice(pauseRows, func(a, b int) bool {
		return pauseRows[a].StartEpoch < pauseRows[b].StartEpoch
	})

	var segments []models.WorkSegment
	var worked time.Duration

	for _, leg := range legs {
		cursor := leg[0]
		for _, p := range pauseRows {
			if !p.EndEpoch.Valid {
				continue
			}
			pStart := time.UnixMilli(p.StartEpoch)
			pEnd := time.UnixMilli(p.EndEpoch.Int64)
			if pStart.Before(cursor) || !pStart.Before(leg[1]) {
				continue
			}
			if pStart.After(cursor) {
				segments = append(segments, workSegment(cursor, pStart))
				worked += pStart.Sub(cursor)
			}
			segments = append(segments, pauseSegment(pStart, pEnd))
			cursor = pEnd
		}
		if cursor.Before(leg[1]) {
			segments = append(segments, workSegment(cursor, leg[1]))
			worked += leg[1].Sub(cursor)
		}
	}

	_, week := date.ISOWeek()
	return &models.TimesheetEntry{
		Date:        date,
		WeekNumber:  week,
		Segments:    segments,
		TotalWork:   formatDuration(worked),
		HasConflict: row.HasConflict,
	}, worked
}

// legBounds normalizes one leg; a leg with no start is zeroed, a leg with no
// stop ends where it started so an open session renders as a zero-length day
// rather than a negative one.
func legBounds(start, stop int64, startValid, stopValid bool) [2]int64 {
	if !startValid {
		return [2]int64{}
	}
	if !stopValid || stop < start {
		stop = start
	}
	return [2]int64{start, stop}
}

func workSegment(start, end time.Time) models.WorkSegment {
	return models.WorkSegment{
		Kind:     models.SegmentWork,
		Start:    start.Format("15:04"),
		End:      end.Format("15:04"),
		Duration: formatDuration(end.Sub(start)),
	}
}

func pauseSegment(start, end time.Time) models.WorkSegment {
	return models.WorkSegment{
		Kind:     models.SegmentPause,
		Start:    start.Format("15:04"),
		End:      end.Format("15:04"),
		Duration: formatDuration(end.Sub(start)),
	}
}

// formatDuration renders HH:MM, truncating seconds.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
