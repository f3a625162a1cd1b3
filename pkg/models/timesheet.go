package models

import "time"

// SegmentKind distinguishes work and pause spans within a day.
type SegmentKind string

const (
	SegmentWork  SegmentKind = "work"
	SegmentPause SegmentKind = "pause"
)

// WorkSegment is one contiguous span inside a timesheet day. Times are
// rendered "HH:MM"; End is empty while the span is still open.
type WorkSegment struct {
	Kind     SegmentKind `json:"kind"`
	Start    string      `json:"start"`
	End      string      `json:"end,omitempty"`
	Duration string      `json:"duration,omitempty"` // HH:MM
}

// TimesheetEntry is one rendered day of the monthly timesheet.
type TimesheetEntry struct {
	Date        time.Time     `json:"date"`
	WeekNumber  int           `json:"week_number"`
	Segments    []WorkSegment `json:"segments"`
	TotalWork   string        `json:"total_work"` // HH:MM
	HasConflict bool          `json:"has_conflict,omitempty"`
}

// WorkSegments returns only the work spans, in order.
func (e *TimesheetEntry) WorkSegments() []WorkSegment {
	return e.filter(SegmentWork)
}

// PauseSegments returns only the pause spans, in order.
func (e *TimesheetEntry) PauseSegments() []WorkSegment {
	return e.filter(SegmentPause)
}

func (e *TimesheetEntry) filter(kind SegmentKind) []WorkSegment {
	var out []WorkSegment
	for _, seg := range e.Segments {
		if seg.Kind == kind {
			out = append(out, seg)
		}
	}
	return out
}
