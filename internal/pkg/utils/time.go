package utils

import "time"

var messageTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"20060102150405-0700",
	"20060102150405",
	"200601021504",
	"20060102",
	"2006-01-02",
}

// ConvertDateTimeToUTC normalizes a message timestamp to RFC3339 in UTC.
// Timestamps without an offset are treated as already being UTC. Unparseable
// input is returned verbatim so a malformed field never aborts a build.
func ConvertDateTimeToUTC(value string) string {
	for _, layout := range messageTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return value
}

// FormatDateOnly renders a timestamp as the date-only form the store expects
// for birth and expiration dates, falling back to the raw value when it
// cannot be parsed.
func FormatDateOnly(value string) string {
	for _, layout := range messageTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return value
}
