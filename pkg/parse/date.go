package parse

import (
	"fmt"
	"strings"
	"time"
)

var dateFormats []string

func init() {
	// RFC 822 with all the deviations met in the wild: two-digit years,
	// single-digit days, missing day of week, timezone as name or offset.
	for _, tz := range []string{"MST", "-0700"} {
		for _, year := range []string{"2006", "06"} {
			for _, day := range []string{"02", "2"} {
				for _, dayOfWeek := range []string{"Mon, ", ""} {
					dateFormats = append(dateFormats, fmt.Sprintf(
						"%s%s Jan %s 15:04:05 %s", dayOfWeek, day, year, tz))
				}
			}
		}
	}

	dateFormats = append(dateFormats,
		time.RFC3339,
		"2006-01-02T15:04:05.000-07:00",
		"2006-01-02 15:04:05 -0700",
		"2006-01-02",
	)
}

// Date parses an item publication date in any of the formats feeds actually
// use. It's a fallback for documents whose dates the feed parser gives up on.
func Date(value string) (time.Time, error) {
	value = TrimText(value)

	for _, format := range dateFormats {
		if date, err := time.Parse(format, value); err == nil {
			return date, nil
		}
	}

	// A handful of feeds append the timezone name after the offset.
	if index := strings.LastIndexByte(value, '('); index > 0 {
		return Date(value[:index])
	}

	return time.Time{}, fmt.Errorf("can't parse date: %q", value)
}
