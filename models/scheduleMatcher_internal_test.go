package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateCandidates(t *testing.T) {
	openRow := &ScheduledShift{ID: 1, ShiftType: ShiftTypeOpen, ShiftMode: ShiftModeStandard, StartClock: "09:00"}
	closeRow := &ScheduledShift{ID: 2, ShiftType: ShiftTypeClose, ShiftMode: ShiftModeStandard, StartClock: "17:00"}
	doubleRow := &ScheduledShift{ID: 3, ShiftType: ShiftTypeOpen, ShiftMode: ShiftModeDouble, StartClock: "09:00"}

	tests := []struct {
		name       string
		rows       []*ScheduledShift
		enteredMin int
		wantId     int
		wantType   ShiftType
		wantExact  bool
		wantDiff   int
	}{
		{
			name:       "twelve minutes late is still an exact match",
			rows:       []*ScheduledShift{openRow, closeRow},
			enteredMin: 9*60 + 12,
			wantId:     1,
			wantType:   ShiftTypeOpen,
			wantExact:  true,
			wantDiff:   12,
		},
		{
			name:       "five minutes early is exact",
			rows:       []*ScheduledShift{openRow, closeRow},
			enteredMin: 8*60 + 55,
			wantId:     1,
			wantType:   ShiftTypeOpen,
			wantExact:  true,
			wantDiff:   -5,
		},
		{
			name:       "six minutes early falls out of the window to nearest",
			rows:       []*ScheduledShift{openRow, closeRow},
			enteredMin: 8*60 + 54,
			wantId:     1,
			wantType:   ShiftTypeOpen,
			wantExact:  false,
			wantDiff:   -6,
		},
		{
			name:       "sixteen minutes late falls out of the window to nearest",
			rows:       []*ScheduledShift{openRow, closeRow},
			enteredMin: 9*60 + 16,
			wantId:     1,
			wantType:   ShiftTypeOpen,
			wantExact:  false,
			wantDiff:   16,
		},
		{
			name:       "exact window on the second row",
			rows:       []*ScheduledShift{openRow, closeRow},
			enteredMin: 17*60 + 10,
			wantId:     2,
			wantType:   ShiftTypeClose,
			wantExact:  true,
			wantDiff:   10,
		},
		{
			name:       "double-mode row collapses to the double type",
			rows:       []*ScheduledShift{doubleRow, closeRow},
			enteredMin: 9*60 + 5,
			wantId:     3,
			wantType:   ShiftTypeDouble,
			wantExact:  true,
			wantDiff:   5,
		},
		{
			name:       "double coverage beats the nearest candidate",
			rows:       []*ScheduledShift{closeRow, doubleRow},
			enteredMin: 13 * 60,
			wantId:     3,
			wantType:   ShiftTypeDouble,
			wantExact:  false,
			wantDiff:   4 * 60,
		},
		{
			name: "equidistant candidates resolve to the first row",
			rows: []*ScheduledShift{
				{ID: 7, ShiftType: ShiftTypeOpen, ShiftMode: ShiftModeStandard, StartClock: "08:00"},
				{ID: 8, ShiftType: ShiftTypeClose, ShiftMode: ShiftModeStandard, StartClock: "16:00"},
			},
			enteredMin: 12 * 60,
			wantId:     7,
			wantType:   ShiftTypeOpen,
			wantExact:  false,
			wantDiff:   4 * 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluateCandidates(tt.rows, tt.enteredMin)
			assert.Equal(t, tt.wantId, got.ScheduledShiftId)
			assert.Equal(t, tt.wantType, got.ResolvedType)
			assert.Equal(t, tt.wantExact, got.Exact)
			assert.Equal(t, tt.wantDiff, got.DiffMinutes)
		})
	}
}

// Identical rows and entered time must resolve identically no matter how
// many times the scan runs.
func TestEvaluateCandidatesIsDeterministic(t *testing.T) {
	rows := []*ScheduledShift{
		{ID: 1, ShiftType: ShiftTypeOpen, ShiftMode: ShiftModeStandard, StartClock: "09:00"},
		{ID: 2, ShiftType: ShiftTypeClose, ShiftMode: ShiftModeStandard, StartClock: "15:00"},
		{ID: 3, ShiftType: ShiftTypeClose, ShiftMode: ShiftModeStandard, StartClock: "17:00"},
	}

	first := evaluateCandidates(rows, 12*60)
	for i := 0; i < 50; i++ {
		got := evaluateCandidates(rows, 12*60)
		assert.Equal(t, first, got)
	}
}

func TestResolveRowType(t *testing.T) {
	assert.Equal(t, ShiftTypeClose, resolveRowType(&ScheduledShift{ShiftType: ShiftTypeClose, ShiftMode: ShiftModeStandard}))
	assert.Equal(t, ShiftTypeDouble, resolveRowType(&ScheduledShift{ShiftType: ShiftTypeOpen, ShiftMode: ShiftModeDouble}))
}
