package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64p(v int64) *int64 { return &v }

func TestApplyCheckpointOverlay(t *testing.T) {
	record := DailySalesRecord{
		OpenXReportCents:       250_00,
		PriorXReportCents:      200_00,
		BeginningRolloverCents: 70_00,
	}

	// A partial payload must not reset earlier reads.
	input := NewSalesCheckpoint{CloseSalesCents: int64p(800_63)}
	input.applyTo(&record)
	assert.Equal(t, int64(250_00), record.OpenXReportCents)
	assert.Equal(t, int64(200_00), record.PriorXReportCents)
	assert.Equal(t, int64(70_00), record.BeginningRolloverCents)
	assert.Equal(t, int64(800_63), *record.CloseSalesCents)
	assert.Nil(t, record.ZReportCents)

	input = NewSalesCheckpoint{
		OpenXReportCents: int64p(260_00),
		ZReportCents:     int64p(1000_63),
	}
	input.applyTo(&record)
	assert.Equal(t, int64(260_00), record.OpenXReportCents)
	assert.Equal(t, int64(800_63), *record.CloseSalesCents)
	assert.Equal(t, int64(1000_63), *record.ZReportCents)
}

func TestZVariance(t *testing.T) {
	tests := []struct {
		name   string
		record DailySalesRecord
		want   int64
	}{
		{
			name: "entered close sales reconcile exactly",
			record: DailySalesRecord{
				PriorXReportCents: 500_00,
				CloseSalesCents:   int64p(300_00),
				ZReportCents:      int64p(800_00),
			},
			want: 0,
		},
		{
			name: "z short of prior x plus close sales",
			record: DailySalesRecord{
				PriorXReportCents: 500_00,
				CloseSalesCents:   int64p(300_00),
				ZReportCents:      int64p(790_00),
			},
			want: -10_00,
		},
		{
			name: "no close sales derives from z and never mismatches above the last x",
			record: DailySalesRecord{
				PriorXReportCents: 500_00,
				ZReportCents:      int64p(800_00),
			},
			want: 0,
		},
		{
			name: "z below the last x read is impossible",
			record: DailySalesRecord{
				PriorXReportCents: 500_00,
				ZReportCents:      int64p(400_00),
			},
			want: -100_00,
		},
		{
			name: "falls back to the open x when no mid-day read exists",
			record: DailySalesRecord{
				OpenXReportCents: 300_00,
				CloseSalesCents:  int64p(100_00),
				ZReportCents:     int64p(400_00),
			},
			want: 0,
		},
		{
			name:   "no z report no variance",
			record: DailySalesRecord{PriorXReportCents: 500_00},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, zVariance(&tt.record))
		})
	}
}

func TestAttributableSales(t *testing.T) {
	record := DailySalesRecord{
		OpenXReportCents:       300_00,
		PriorXReportCents:      500_00,
		BeginningRolloverCents: 50_00,
		RolloverCarryCents:     20_00,
		ZReportCents:           int64p(800_00),
	}

	openShift := &Shift{ShiftType: ShiftTypeOpen}
	closeShift := &Shift{ShiftType: ShiftTypeClose}
	doubleShift := &Shift{ShiftType: ShiftTypeDouble}
	otherShift := &Shift{ShiftType: ShiftTypeOther}

	t.Run("open shift takes the morning x net of beginning rollover", func(t *testing.T) {
		assert.Equal(t, int64(250_00), AttributableSales(openShift, &record, false))
	})

	t.Run("close shift derives from z minus prior x", func(t *testing.T) {
		assert.Equal(t, int64(300_00), AttributableSales(closeShift, &record, false))
	})

	t.Run("rollover night adds the carry", func(t *testing.T) {
		assert.Equal(t, int64(320_00), AttributableSales(closeShift, &record, true))
	})

	t.Run("entered close sales win over the z derivation", func(t *testing.T) {
		withClose := record
		withClose.CloseSalesCents = int64p(280_00)
		assert.Equal(t, int64(280_00), AttributableSales(doubleShift, &withClose, false))
	})

	t.Run("other shifts attribute nothing", func(t *testing.T) {
		assert.Equal(t, int64(0), AttributableSales(otherShift, &record, true))
	})
}
