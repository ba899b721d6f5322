package descriptor

import (
	"strconv"
	"time"
)

// maxCalendarSeconds is 9999-12-31T23:59:59Z, the last instant with a four digit year.
const maxCalendarSeconds = 253402300799

// RawDateFormatter renders the timestamp as its decimal integer string. It is the
// default and keeps descriptors free of calendar conversion.
type RawDateFormatter struct{}

// FormatDate implements interfaces.DateFormatter.
func (RawDateFormatter) FormatDate(unixSeconds uint64) string {
	return strconv.FormatUint(unixSeconds, 10)
}

// CalendarDateFormatter renders the timestamp as a UTC calendar date.
type CalendarDateFormatter struct {
	// Layout is a time.Format layout; empty means "2006-01-02".
	Layout string
}

// FormatDate implements interfaces.DateFormatter. Timestamps after year 9999 are
// rendered as raw seconds.
func (f CalendarDateFormatter) FormatDate(unixSeconds uint64) string {
	if unixSeconds > maxCalendarSeconds {
		return RawDateFormatter{}.FormatDate(unixSeconds)
	}

	layout := f.Layout
	if layout == "" {
		layout = time.DateOnly
	}
	return time.Unix(int64(unixSeconds), 0).UTC().Format(layout)
}
