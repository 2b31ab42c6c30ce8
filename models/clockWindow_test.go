package models_test

import (
	"testing"
	"time"

	"github.com/storeops/shiftdesk_backend/models"
	"github.com/stretchr/testify/assert"
)

func localTime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestResolveClockWindow(t *testing.T) {
	tests := []struct {
		name      string
		t         time.Time
		class     models.StoreClass
		matched   bool
		shiftType models.ShiftType
		label     string
	}{
		{
			name:      "weekday morning inside the open window",
			t:         localTime(2026, time.August, 26, 7, 30), // Wednesday
			class:     models.StoreClassStandard,
			matched:   true,
			shiftType: models.ShiftTypeOpen,
			label:     "morning open",
		},
		{
			name:      "window start boundary matches",
			t:         localTime(2026, time.August, 26, 5, 0),
			class:     models.StoreClassStandard,
			matched:   true,
			shiftType: models.ShiftTypeOpen,
			label:     "morning open",
		},
		{
			name:      "midday gap resolves to the nearest window label",
			t:         localTime(2026, time.August, 26, 12, 0),
			class:     models.StoreClassStandard,
			matched:   false,
			shiftType: models.ShiftTypeClose,
			label:     "evening close",
		},
		{
			name:      "late friday close is outside the standard window",
			t:         localTime(2026, time.August, 21, 23, 45), // Friday
			class:     models.StoreClassStandard,
			matched:   false,
			shiftType: models.ShiftTypeClose,
			label:     "evening close",
		},
		{
			name:      "late friday close matches for late-close stores",
			t:         localTime(2026, time.August, 21, 23, 45),
			class:     models.StoreClassLateClose,
			matched:   true,
			shiftType: models.ShiftTypeClose,
			label:     "late close",
		},
		{
			name:      "saturday small hours attribute back to friday close",
			t:         localTime(2026, time.August, 22, 0, 10), // Saturday 00:10
			class:     models.StoreClassLateClose,
			matched:   true,
			shiftType: models.ShiftTypeClose,
			label:     "late close",
		},
		{
			name:      "spill window closes at fifteen past",
			t:         localTime(2026, time.August, 22, 0, 16),
			class:     models.StoreClassLateClose,
			matched:   false,
			shiftType: models.ShiftTypeOpen,
			label:     "morning open",
		},
		{
			name:      "standard stores never match small hours",
			t:         localTime(2026, time.August, 22, 0, 10),
			class:     models.StoreClassStandard,
			matched:   false,
			shiftType: models.ShiftTypeOpen,
			label:     "morning open",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := models.ResolveClockWindow(tt.t, tt.class)
			assert.Equal(t, tt.matched, got.Matched)
			assert.Equal(t, tt.shiftType, got.ShiftType)
			assert.Equal(t, tt.label, got.Label)
		})
	}
}
