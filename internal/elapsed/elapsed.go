// Package elapsed turns a record's report instant into the live "time in bad
// state" string shown on the damaged-device, workshop, yard and history views.
package elapsed

import (
	"fmt"
	"time"
)

// StartFields carries every field name the backend has used for the report
// instant across its revisions. Candidates are tried in a fixed priority
// order; the first one that parses wins.
type StartFields struct {
	ReportDate      string `json:"reportDate,omitempty"`
	ReportHour      string `json:"reportHour,omitempty"`
	Date            string `json:"date,omitempty"`
	Hour            string `json:"hour,omitempty"`
	ReportedAt      string `json:"reportedAt,omitempty"`
	ReportTimestamp *int64 `json:"reportTimestamp,omitempty"`
}

// Timed is a list record that owns an elapsed timer.
type Timed interface {
	TimerID() string
	Start() StartFields
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ResolveStart picks the report instant out of the field variants. A record
// with nothing parseable gets now, so it always renders a timer (reading
// near zero) instead of an error.
func ResolveStart(f StartFields, now time.Time) time.Time {
	if f.ReportDate != "" && f.ReportHour != "" {
		if t, ok := parseInstant(f.ReportDate + "T" + f.ReportHour); ok {
			return t
		}
	}
	if f.ReportDate != "" {
		if t, ok := parseInstant(f.ReportDate); ok {
			return t
		}
	}
	if f.Date != "" && f.Hour != "" {
		if t, ok := parseInstant(f.Date + "T" + f.Hour); ok {
			return t
		}
	}
	if f.ReportedAt != "" {
		if t, ok := parseInstant(f.ReportedAt); ok {
			return t
		}
	}
	if f.ReportTimestamp != nil {
		return time.UnixMilli(*f.ReportTimestamp)
	}
	return now
}

func parseInstant(s string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Seconds is the clamped elapsed reading: never negative, even when clock
// skew puts the start in the future.
func Seconds(start, now time.Time) int64 {
	secs := now.Unix() - start.Unix()
	if secs < 0 {
		return 0
	}
	return secs
}

// Format renders total seconds as "HH:MM:SS", or "Nd HH:MM:SS" once a full
// day has passed. The layout is user-facing and fixed.
func Format(totalSeconds int64) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	d := totalSeconds / 86400
	h := (totalSeconds % 86400) / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	if d > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", d, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Tick computes the elapsed string for every record at the given instant.
// Pure given now; the 1-second cadence lives in Ticker.
func Tick[T Timed](records []T, now time.Time) map[string]string {
	out := make(map[string]string, len(records))
	for _, rec := range records {
		start := ResolveStart(rec.Start(), now)
		out[rec.TimerID()] = Format(Seconds(start, now))
	}
	return out
}
