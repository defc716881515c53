package executor

import (
	"strings"
	"time"
)

// layouts the classifier is known to produce, tried in order.
var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseWhen interprets a classifier-supplied datetime string.
//
// Quirk, preserved deliberately: the classifier labels local wall-clock
// times with a trailing "Z" even though no UTC conversion happened
// upstream. A string ending in that marker with no numeric offset is
// therefore read as LOCAL time by stripping the marker before parsing.
// This compensates for an upstream defect and should be revisited if the
// classifier is ever fixed.
//
// A parsed time of exactly midnight means the user gave a date with no
// explicit time, so timed is false. A malformed string falls back to
// 09:00 local on the following day rather than failing the add; the
// substitute is a guess the user never stated, so it is not timed and
// never drives a notification.
func ParseWhen(raw string, now time.Time) (when *time.Time, timed bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	if stripped, ok := strings.CutSuffix(raw, "Z"); ok && !hasNumericOffset(stripped) {
		raw = stripped
	}

	var parsed time.Time
	var err error
	for _, layout := range whenLayouts {
		parsed, err = time.ParseInLocation(layout, raw, time.Local)
		if err == nil {
			break
		}
	}
	if err != nil {
		fallback := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, time.Local).AddDate(0, 0, 1)
		return &fallback, false
	}

	parsed = parsed.In(time.Local)
	if parsed.Hour() == 0 && parsed.Minute() == 0 && parsed.Second() == 0 {
		return &parsed, false
	}
	return &parsed, true
}

// hasNumericOffset reports whether the string already carries an
// explicit +hh:mm / -hh:mm style offset before the trailing marker.
func hasNumericOffset(s string) bool {
	if len(s) < 6 {
		return false
	}
	tail := s[len(s)-6:]
	return (tail[0] == '+' || tail[0] == '-') && tail[3] == ':'
}
