package unlock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSplitEarnings(t *testing.T) {
	tests := []struct {
		name    string
		credits int64
		rate    string
		pct     string
		gross   string
		fee     string
		net     string
	}{
		{"round numbers", 40, "0.01", "30", "0.4", "0.12", "0.28"},
		{"no commission", 100, "0.01", "0", "1", "0", "1"},
		{"full commission", 100, "0.01", "100", "1", "1", "0"},
		{"rate rounds to four places", 3, "0.003333333333", "30", "0.01", "0.003", "0.007"},
		{"fee rounds half up", 1, "0.0005", "10", "0.0005", "0.0001", "0.0004"},
		{"fractional percent", 250, "0.0099", "12.5", "2.475", "0.3094", "2.1656"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SplitEarnings(tt.credits, d(tt.rate), d(tt.pct))
			assert.True(t, d(tt.gross).Equal(s.Gross), "gross %s", s.Gross)
			assert.True(t, d(tt.fee).Equal(s.Fee), "fee %s", s.Fee)
			assert.True(t, d(tt.net).Equal(s.Net), "net %s", s.Net)
			assert.True(t, s.Gross.Equal(s.Fee.Add(s.Net)))
			assert.True(t, d(tt.pct).Equal(s.FeePercent))
		})
	}
}
