package utils_test

import (
	"testing"

	"github.com/storeops/shiftdesk_backend/utils"
	"github.com/stretchr/testify/assert"
)

func TestParseDollarsToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"104.35", 10435, false},
		{"0", 0, false},
		{"7", 700, false},
		{"0.01", 1, false},
		{"12.345", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := utils.ParseDollarsToCents(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCentsToDollarString(t *testing.T) {
	assert.Equal(t, "104.35", utils.CentsToDollarString(10435))
	assert.Equal(t, "0.00", utils.CentsToDollarString(0))
	assert.Equal(t, "9.63", utils.CentsToDollarString(963))
}

func TestRoundUpToDollarCents(t *testing.T) {
	assert.Equal(t, int64(1000), utils.RoundUpToDollarCents(963))
	assert.Equal(t, int64(1000), utils.RoundUpToDollarCents(1000))
	assert.Equal(t, int64(100), utils.RoundUpToDollarCents(1))
	assert.Equal(t, int64(0), utils.RoundUpToDollarCents(0))
	assert.Equal(t, int64(0), utils.RoundUpToDollarCents(-250))
}
