package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration parses an itunes:duration value. The tag is specified as a plain
// number of seconds, but HH:MM:SS and MM:SS forms are at least as common.
func Duration(value string) (time.Duration, error) {
	value = TrimText(value)
	if value == "" {
		return 0, errors.New("empty duration")
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("can't parse duration: %q", value)
	}

	if len(parts) == 1 {
		seconds, err := strconv.ParseFloat(parts[0], 64)
		if err != nil || seconds < 0 {
			return 0, fmt.Errorf("can't parse duration: %q", value)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}

	var duration time.Duration
	for _, part := range parts {
		section, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("can't parse duration: %q", value)
		}
		duration = duration*60 + time.Duration(section)*time.Second
	}

	return duration, nil
}
