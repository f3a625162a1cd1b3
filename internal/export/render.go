package export

import (
	"fmt"
	"time"

	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

var germanMonths = [12]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

var germanDays = map[time.Weekday]string{
	time.Monday:    "Mo",
	time.Tuesday:   "Di",
	time.Wednesday: "Mi",
	time.Thursday:  "Do",
	time.Friday:    "Fr",
	time.Saturday:  "Sa",
	time.Sunday:    "So",
}

// tableHeaders is the 9-column sheet layout shared by all renderers.
var tableHeaders = []string{
	"Datum", "Tag", "Start 1", "Stop 1", "Pause", "Gesamtp.", "Start 2", "Stop 2", "Gesamt",
}

// FileName builds the sheet's file name, Arbeitszeitliste_YYYY_MM.ext.
func FileName(year int, month time.Month, ext string) string {
	return fmt.Sprintf("Arbeitszeitliste_%d_%02d.%s", year, month, ext)
}

// entryRow flattens one day into the 9-column layout. Up to two work
// segments fill the Start/Stop pairs; the Pause column shows the first pause
// range and Gesamtp. the summed pause time.
func entryRow(entry *models.TimesheetEntry) []string {
	work := entry.WorkSegments()
	pauses := entry.PauseSegments()

	row := []string{
		entry.Date.Format("02.01"),
		germanDays[entry.Date.Weekday()],
		"-", "-", "-", "-", "-", "-",
		entry.TotalWork,
	}

	if len(work) > 0 {
		row[2], row[3] = work[0].Start, work[0].End
	}
	if len(work) > 1 {
		row[6], row[7] = work[1].Start, work[1].End
	}
	if len(pauses) > 0 {
		row[4] = pauses[0].Start + "-" + pauses[0].End
		row[5] = totalPause(pauses)
	}
	if entry.HasConflict {
		row[8] = "! " + row[8]
	}
	return row
}

func totalPause(pauses []models.WorkSegment) string {
	var minutes int
	for _, p := range pauses {
		var h, m int
		if _, err := fmt.Sscanf(p.Duration, "%d:%d", &h, &m); err == nil {
			minutes += h*60 + m
		}
	}
	if minutes == 0 {
		return "-"
	}
	return fmt.Sprintf("%02d:%02dh", minutes/60, minutes%60)
}
