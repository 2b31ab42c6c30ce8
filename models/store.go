package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storeops/shiftdesk_backend/config"
	"github.com/storeops/shiftdesk_backend/utils"
)

type Store struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Name string `gorm:"size:255;not null" json:"name" binding:"required"`

	// ExpectedFloatCents is the fixed starting cash expected in a drawer.
	ExpectedFloatCents int64 `gorm:"not null;default:0" json:"expected_float_cents"`

	// Kiosk terminals bind to a store by scanning this token.
	KioskToken string `gorm:"size:64;uniqueIndex;not null" json:"kiosk_token"`

	// Weather context only; never load-bearing.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Timezone string `gorm:"size:64" json:"timezone"`

	// Class selects the store's clock-window rule set.
	Class StoreClass `gorm:"size:16;not null;default:'standard'" json:"class"`

	// RolloverEnabled turns on closer-night carry for the weekdays listed in
	// StoreRolloverDay rows.
	RolloverEnabled bool `gorm:"not null;default:false" json:"rollover_enabled"`

	// DenomToleranceCents is the allowed gap between the physical bill count
	// and the expected deposit before a variance reason is required.
	DenomToleranceCents int64 `gorm:"not null;default:0" json:"denom_tolerance_cents"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StoreRolloverDay marks a weekday (time.Weekday numbering, Sunday=0) as a
// rollover (closer) night for the store.
type StoreRolloverDay struct {
	ID      int `gorm:"primary_key" json:"id"`
	StoreId int `gorm:"not null;uniqueIndex:uq_store_weekday,priority:1" json:"store_id"`
	Weekday int `gorm:"not null;uniqueIndex:uq_store_weekday,priority:2" json:"weekday"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// StoreShiftTemplate is the recurring default open/close window for a store,
// used only by the matcher's last-resort inference when no schedule row
// exists for the date.
type StoreShiftTemplate struct {
	ID         int       `gorm:"primary_key" json:"id"`
	StoreId    int       `gorm:"not null;uniqueIndex:uq_store_shift_type,priority:1" json:"store_id"`
	ShiftType  ShiftType `gorm:"size:16;not null;uniqueIndex:uq_store_shift_type,priority:2" json:"shift_type"`
	StartClock string    `gorm:"size:5;not null" json:"start_clock"`
	EndClock   string    `gorm:"size:5;not null" json:"end_clock"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStore struct {
	Name                string  `json:"name" binding:"required"`
	ExpectedFloatCents  int64   `json:"expected_float_cents"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	Timezone            string  `json:"timezone"`
	Class               string  `json:"class"`
	RolloverEnabled     bool    `json:"rollover_enabled"`
	RolloverWeekdays    []int   `json:"rollover_weekdays"`
	DenomToleranceCents int64   `json:"denom_tolerance_cents"`
}

func (input *NewStore) validate() error {
	if input.ExpectedFloatCents < 0 {
		return errors.New("expected_float_cents must not be negative")
	}
	if input.DenomToleranceCents < 0 {
		return errors.New("denom_tolerance_cents must not be negative")
	}
	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return errors.New("invalid timezone")
		}
	}
	switch StoreClass(input.Class) {
	case "", StoreClassStandard, StoreClassLateClose:
	default:
		return errors.New("class must be standard or late_close")
	}
	for _, wd := range input.RolloverWeekdays {
		if wd < 0 || wd > 6 {
			return errors.New("rollover_weekdays values must be 0-6")
		}
	}
	return nil
}

func CreateStore(ctx context.Context, input *NewStore) (*Store, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	class := StoreClass(input.Class)
	if class == "" {
		class = StoreClassStandard
	}
	store := Store{
		Name:                input.Name,
		ExpectedFloatCents:  input.ExpectedFloatCents,
		KioskToken:          uuid.NewString(),
		Latitude:            input.Latitude,
		Longitude:           input.Longitude,
		Timezone:            input.Timezone,
		Class:               class,
		RolloverEnabled:     input.RolloverEnabled,
		DenomToleranceCents: input.DenomToleranceCents,
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&store).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, wd := range input.RolloverWeekdays {
		row := StoreRolloverDay{StoreId: store.ID, Weekday: wd}
		if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func GetStoreById(ctx context.Context, storeId int) (*Store, error) {
	var cached *Store
	cacheKey := "Store:" + fmt.Sprint(storeId)
	exists, err := config.GetRedisObject(cacheKey, &cached)
	if err == nil && exists && cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	var store Store
	if err := db.WithContext(ctx).Where("id = ?", storeId).First(&store).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := config.SetRedisObject(cacheKey, &store, 0); err != nil {
		config.LogWarn(config.GetLogger(), "store.go", "GetStoreById", "SetRedisObject", err)
	}
	return &store, nil
}

// GetStoreByKioskToken resolves a kiosk binding. Cached: kiosk terminals hit
// this on every session and the token never changes after creation.
func GetStoreByKioskToken(ctx context.Context, token string) (*Store, error) {
	cacheKey := "StoreKiosk:" + token
	val, found, err := config.GetRedisValue(cacheKey)
	if err == nil && found {
		var storeId int
		if _, scanErr := fmt.Sscanf(val, "%d", &storeId); scanErr == nil {
			return GetStoreById(ctx, storeId)
		}
	}

	db := config.GetDB()
	var store Store
	if err := db.WithContext(ctx).Where("kiosk_token = ?", token).First(&store).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := config.SetRedisValue(cacheKey, fmt.Sprint(store.ID), 0); err != nil {
		config.LogWarn(config.GetLogger(), "store.go", "GetStoreByKioskToken", "SetRedisValue", err)
	}
	return &store, nil
}

// rolloverWeekdays returns the store's weekday set, redis first then db.
func rolloverWeekdays(ctx context.Context, storeId int) (map[int]bool, error) {
	weekdays := make(map[int]bool)
	redisKey := "rolloverDays:" + fmt.Sprint(storeId)
	exists, err := config.GetRedisObject(redisKey, &weekdays)
	if err != nil {
		return nil, err
	}
	if !exists {
		db := config.GetDB()
		var rows []*StoreRolloverDay
		if err := db.WithContext(ctx).Where("store_id = ?", storeId).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			weekdays[row.Weekday] = true
		}
		if err := config.SetRedisObject(redisKey, &weekdays, 0); err != nil {
			return nil, err
		}
	}
	return weekdays, nil
}

// IsRolloverNight reports whether the business date falls on a configured
// closer night for the store. Requires both the store-level enable flag and a
// weekday row.
func IsRolloverNight(ctx context.Context, store *Store, businessDate time.Time) (bool, error) {
	if store == nil || !store.RolloverEnabled {
		return false, nil
	}
	local := utils.ConvertToLocalTime(businessDate, store.Timezone)
	weekdays, err := rolloverWeekdays(ctx, store.ID)
	if err != nil {
		return false, err
	}
	return weekdays[int(local.Weekday())], nil
}

func GetShiftTemplates(ctx context.Context, storeId int) ([]*StoreShiftTemplate, error) {
	db := config.GetDB()
	var rows []*StoreShiftTemplate
	if err := db.WithContext(ctx).Where("store_id = ?", storeId).
		Order("shift_type").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
