package models

import "time"

// TimeSlot is a candidate [StartTime, EndTime) interval a customer could book.
// It is computed on every availability query and never stored.
type TimeSlot struct {
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Available  bool      `json:"available"`
	Locked     bool      `json:"locked"`
	Conflicted bool      `json:"conflicted"`
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
