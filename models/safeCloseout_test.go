package models_test

import (
	"testing"

	"github.com/storeops/shiftdesk_backend/models"
	"github.com/stretchr/testify/assert"
)

func TestExpectedDepositCents(t *testing.T) {
	tests := []struct {
		name          string
		cashCents     int64
		expensesCents int64
		want          int64
	}{
		{"rounds up to the next dollar", 1000_00, 37_63, 963_00},
		{"whole dollars stay put", 1000_00, 37_00, 963_00},
		{"expenses above cash clamp to zero", 50_00, 100_00, 0},
		{"zero cash", 0, 0, 0},
		{"one cent rounds to a dollar", 1, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.ExpectedDepositCents(tt.cashCents, tt.expensesCents))
		})
	}
}

func TestDenomTotalCentsOf(t *testing.T) {
	// counts ordered {100, 50, 20, 10, 5, 2, 1}
	assert.Equal(t, int64(223_00), models.DenomTotalCentsOf([7]int{2, 0, 1, 0, 0, 1, 1}))
	assert.Equal(t, int64(0), models.DenomTotalCentsOf([7]int{}))
	assert.Equal(t, int64(188_00), models.DenomTotalCentsOf([7]int{1, 1, 1, 1, 1, 1, 1}))
}
