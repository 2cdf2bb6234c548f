package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseMinor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
		err   error
	}{
		{"plain", "3.50", 350, nil},
		{"integer", "12", 1200, nil},
		{"whitespace", "  2.00 ", 200, nil},
		{"one decimal", "12.3", 1230, nil},
		{"rounds half up", "0.125", 13, nil},
		{"rounds down", "0.124", 12, nil},
		{"exponent", "1e2", 10000, nil},
		{"rounds to zero", "0.004", 0, ErrNonPositiveAmount},
		{"zero", "0", 0, ErrNonPositiveAmount},
		{"negative", "-5", 0, ErrNonPositiveAmount},
		{"comma", "3,50", 0, ErrInvalidAmount},
		{"empty", "", 0, ErrInvalidAmount},
		{"text", "abc", 0, ErrInvalidAmount},
		{"nan", "NaN", 0, ErrInvalidAmount},
		{"huge", "100000000000000000", 0, ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMinor(tt.input)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestToMinor_RoundsHalfAwayFromZero(t *testing.T) {
	require.Equal(t, int64(-13), ToMinor(decimal.RequireFromString("-0.125")))
	require.Equal(t, int64(13), ToMinor(decimal.RequireFromString("0.125")))
	require.Equal(t, int64(1), ToMinor(decimal.RequireFromString("0.005")))
}

func TestFromMinor(t *testing.T) {
	require.Equal(t, "45.00", FromMinor(4500).StringFixed(2))
	require.Equal(t, "0.01", FromMinor(1).StringFixed(2))
	require.True(t, FromMinor(0).IsZero())
}

func TestFormat(t *testing.T) {
	require.Equal(t, "5.00 €", Format(decimal.NewFromInt(5), "€"))
	require.Equal(t, "5.13", Format(decimal.RequireFromString("5.125"), ""))
}

func TestMinorRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		minor := rapid.Int64Range(1, 1_000_000_000_00).Draw(t, "minor")

		got, err := ParseMinor(FromMinor(minor).StringFixed(2))
		if err != nil {
			t.Fatalf("ParseMinor failed for %d: %v", minor, err)
		}
		if got != minor {
			t.Fatalf("round trip %d -> %d", minor, got)
		}
	})
}

func FuzzParseMinor(f *testing.F) {
	f.Add("3.50")
	f.Add("0.005")
	f.Add("-1")
	f.Add("1e10")
	f.Add("NaN")
	f.Add("")
	f.Add("  7 ")

	f.Fuzz(func(t *testing.T, input string) {
		minor, err := ParseMinor(input)
		if err == nil && minor <= 0 {
			t.Errorf("ParseMinor(%q) returned non-positive %d without error", input, minor)
		}
		if err != nil && minor != 0 {
			t.Errorf("ParseMinor(%q) returned %d with error %v", input, minor, err)
		}
	})
}
