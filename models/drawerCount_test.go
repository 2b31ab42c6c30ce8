package models_test

import (
	"testing"

	"github.com/storeops/shiftdesk_backend/models"
	"github.com/stretchr/testify/assert"
)

func TestIsOutOfThreshold(t *testing.T) {
	const expected int64 = 15000 // $150 float

	tests := []struct {
		name   string
		actual int64
		want   bool
	}{
		{"exactly on the float", 15000, false},
		{"under boundary is still in threshold", 14500, false},
		{"one cent past the under boundary", 14499, true},
		{"over boundary is still in threshold", 16500, false},
		{"one cent past the over boundary", 16501, true},
		{"well under", 10000, true},
		{"well over", 20000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.IsOutOfThreshold(tt.actual, expected))
		})
	}
}
