package styles

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"fits", "Hello", 10, "Hello"},
		{"exact", "Hello", 5, "Hello"},
		{"truncate", "Hello World", 8, "Hello W…"},
		{"zero width", "Hello", 0, ""},
		{"wide runes", "水道料金", 5, "水道…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Truncate(tt.input, tt.maxWidth))
		})
	}
}

func TestPad(t *testing.T) {
	require.Equal(t, "ab   ", PadRight("ab", 5))
	require.Equal(t, "   ab", PadLeft("ab", 5))
	require.Equal(t, "abcd…", PadRight("abcdefgh", 5))
}

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "$120.00", FormatMoney("$", decimal.RequireFromString("120")))
	require.Equal(t, "$0.50", FormatMoney("$", decimal.RequireFromString("0.5")))
	require.Equal(t, "-$35.25", FormatMoney("$", decimal.RequireFromString("-35.25")))
}
