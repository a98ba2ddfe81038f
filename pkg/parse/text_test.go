package parse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrimText(t *testing.T) {
	const nbsp = " "
	const softHyphen = "­"

	require.Equal(t, "some text with hyphened word", TrimText(fmt.Sprintf(
		" \t\nsome%s text with hyp%shened word \r\n", nbsp, softHyphen,
	)))
}
