package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPayoutFrequencyNextDue(t *testing.T) {
	last := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		freq    PayoutFrequency
		last    time.Time
		want    time.Time
		wantDue bool
	}{
		{"weekly", FrequencyWeekly, last, last.AddDate(0, 0, 7), true},
		{"biweekly", FrequencyBiweekly, last, last.AddDate(0, 0, 14), true},
		{"monthly", FrequencyMonthly, last, last.AddDate(0, 1, 0), true},
		{"never paid", FrequencyMonthly, time.Time{}, time.Time{}, true},
		{"manual", FrequencyManual, last, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.freq.NextDue(tt.last)
			assert.Equal(t, tt.wantDue, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPayoutStatus(t *testing.T) {
	assert.True(t, PayoutCompleted.Terminal())
	assert.True(t, PayoutFailed.Terminal())
	assert.False(t, PayoutProcessing.Terminal())
	assert.False(t, PayoutStatus("DONE").Valid())
	assert.True(t, PayoutPending.Valid())
}

func TestPageBounds(t *testing.T) {
	off, lim := Page{}.Bounds()
	assert.Equal(t, 0, off)
	assert.Equal(t, 20, lim)

	off, lim = Page{Number: 3, Size: 10}.Bounds()
	assert.Equal(t, 20, off)
	assert.Equal(t, 10, lim)

	_, lim = Page{Number: 1, Size: 1000}.Bounds()
	assert.Equal(t, 100, lim)
}
