package units

import (
	"fmt"
	"time"
)

// TimestampLayout is the layout used for group timestamps in reports.
const TimestampLayout = "2006-01-02 15:04:05 MST"

// IsTimezoneValid checks the timezone against the system tz database.
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// ConvertTime converts a UTC time to the specified timezone.
// The database stores all times in UTC.
func ConvertTime(utcTime time.Time, targetTimezone string) (time.Time, error) {
	if targetTimezone == "" || targetTimezone == "UTC" {
		return utcTime.UTC(), nil
	}
	loc, err := time.LoadLocation(targetTimezone)
	if err != nil {
		return utcTime, fmt.Errorf("failed to load timezone %s: %w", targetTimezone, err)
	}
	return utcTime.In(loc), nil
}

// FormatTimestamp renders a UTC time in the target timezone. Unknown zones
// render in UTC.
func FormatTimestamp(utcTime time.Time, targetTimezone string) string {
	t, err := ConvertTime(utcTime, targetTimezone)
	if err != nil {
		t = utcTime.UTC()
	}
	return t.Format(TimestampLayout)
}
