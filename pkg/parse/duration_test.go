package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	t.Parallel()

	for value, expected := range map[string]time.Duration{
		"3123":     3123 * time.Second,
		"52:04":    52*time.Minute + 4*time.Second,
		"1:02:03":  time.Hour + 2*time.Minute + 3*time.Second,
		"01:02:03": time.Hour + 2*time.Minute + 3*time.Second,
		" 1830.5 ": 1830*time.Second + 500*time.Millisecond,
	} {
		duration, err := Duration(value)
		require.NoError(t, err, value)
		require.Equal(t, expected, duration, value)
	}

	for _, value := range []string{"", "1:2:3:4", "-15", "an hour"} {
		_, err := Duration(value)
		require.Error(t, err, value)
	}
}
