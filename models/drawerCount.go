package models

import (
	"context"
	"errors"
	"time"

	"github.com/storeops/shiftdesk_backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Drawer variance thresholds, in cents. Asymmetric: an under-count smells
// like a shortage, an over-count is usually a late deposit.
const (
	DrawerUnderThresholdCents int64 = 500
	DrawerOverThresholdCents  int64 = 1500
)

type DrawerCount struct {
	ID        int             `gorm:"primary_key" json:"id"`
	ShiftId   int             `gorm:"not null;uniqueIndex:uq_shift_count_type,priority:1" json:"shift_id"`
	CountType DrawerCountType `gorm:"size:16;not null;uniqueIndex:uq_shift_count_type,priority:2" json:"count_type"`

	DrawerCents     int64 `gorm:"not null" json:"drawer_cents"`
	ChangeFundCents int64 `gorm:"not null;default:0" json:"change_fund_cents"`

	Confirmed       bool   `gorm:"not null;default:false" json:"confirmed"`
	NotifiedManager bool   `gorm:"not null;default:false" json:"notified_manager"`
	Note            string `gorm:"type:text" json:"note"`

	// OutOfThreshold is derived at write time against the store float.
	OutOfThreshold bool `gorm:"not null;default:false" json:"out_of_threshold"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDrawerCount struct {
	CountType       string `json:"count_type" binding:"required"`
	DrawerCents     int64  `json:"drawer_cents"`
	ChangeFundCents int64  `json:"change_fund_cents"`
	Confirmed       bool   `json:"confirmed"`
	NotifiedManager bool   `json:"notified_manager"`
	Note            string `json:"note"`
}

// DrawerCountResult distinguishes the confirmation-required outcome from
// success; it is not an error. Callers re-prompt and resubmit with both
// flags set.
type DrawerCountResult struct {
	RequiresConfirm bool         `json:"requires_confirm"`
	OutOfThreshold  bool         `json:"out_of_threshold"`
	Count           *DrawerCount `json:"count,omitempty"`
}

// IsOutOfThreshold classifies a counted amount against the expected float.
// Boundary values (expected-500, expected+1500) are within threshold.
func IsOutOfThreshold(actualCents, expectedCents int64) bool {
	return actualCents < expectedCents-DrawerUnderThresholdCents ||
		actualCents > expectedCents+DrawerOverThresholdCents
}

func (input *NewDrawerCount) validate() error {
	if _, err := ParseDrawerCountType(input.CountType); err != nil {
		return err
	}
	if input.DrawerCents < 0 {
		return errors.New("drawer_cents must not be negative")
	}
	if input.ChangeFundCents < 0 {
		return errors.New("change_fund_cents must not be negative")
	}
	return nil
}

// SaveDrawerCount upserts the (shift, count_type) row. An out-of-threshold
// amount is persisted only when the submitter has confirmed it AND notified
// a manager; otherwise nothing is written and RequiresConfirm is returned.
func SaveDrawerCount(ctx context.Context, tx *gorm.DB, shiftId int, expectedFloatCents int64, input *NewDrawerCount) (*DrawerCountResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	outOfThreshold := IsOutOfThreshold(input.DrawerCents, expectedFloatCents)
	if outOfThreshold && (!input.Confirmed || !input.NotifiedManager) {
		return &DrawerCountResult{RequiresConfirm: true, OutOfThreshold: true}, nil
	}

	count := DrawerCount{
		ShiftId:         shiftId,
		CountType:       DrawerCountType(input.CountType),
		DrawerCents:     input.DrawerCents,
		ChangeFundCents: input.ChangeFundCents,
		Confirmed:       input.Confirmed,
		NotifiedManager: input.NotifiedManager,
		Note:            input.Note,
		OutOfThreshold:  outOfThreshold,
	}

	if tx == nil {
		tx = config.GetDB()
	}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shift_id"}, {Name: "count_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"drawer_cents", "change_fund_cents", "confirmed",
			"notified_manager", "note", "out_of_threshold", "updated_at",
		}),
	}).Create(&count).Error
	if err != nil {
		return nil, err
	}

	return &DrawerCountResult{OutOfThreshold: outOfThreshold, Count: &count}, nil
}

// RecordShiftDrawerCount is the standalone-count entry point. Ownership is
// re-checked like every other shift mutation; employees may only count
// their own shift's drawer.
func RecordShiftDrawerCount(ctx context.Context, shiftId int, input *NewDrawerCount) (*DrawerCountResult, error) {
	shift, err := getAuthorizedShift(ctx, shiftId)
	if err != nil {
		return nil, err
	}
	store, err := GetStoreById(ctx, shift.StoreId)
	if err != nil {
		return nil, err
	}
	return SaveDrawerCount(ctx, nil, shift.ID, store.ExpectedFloatCents, input)
}

func GetDrawerCounts(ctx context.Context, shiftId int) ([]*DrawerCount, error) {
	db := config.GetDB()
	var rows []*DrawerCount
	if err := db.WithContext(ctx).Where("shift_id = ?", shiftId).
		Order("count_type").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
