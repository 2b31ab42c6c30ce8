package utils_test

import (
	"testing"
	"time"

	"github.com/storeops/shiftdesk_backend/utils"
	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"nope", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := utils.ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:30", utils.FormatClock(570))
	assert.Equal(t, "00:00", utils.FormatClock(0))
	assert.Equal(t, "23:59", utils.FormatClock(1439))
	// Cross-midnight minutes wrap around.
	assert.Equal(t, "00:15", utils.FormatClock(24*60 + 15))
	assert.Equal(t, "23:30", utils.FormatClock(-30))
}

func TestRoundToHalfHour(t *testing.T) {
	base := time.Date(2026, time.August, 26, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"rounds down before the midpoint", base.Add(12 * time.Minute), base},
		{"rounds up past the midpoint", base.Add(20 * time.Minute), base.Add(30 * time.Minute)},
		{"already on the half hour", base.Add(30 * time.Minute), base.Add(30 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.RoundToHalfHour(tt.in))
		})
	}
}
