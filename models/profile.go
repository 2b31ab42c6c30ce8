package models

import (
	"context"
	"errors"
	"time"

	"github.com/storeops/shiftdesk_backend/config"
	"github.com/storeops/shiftdesk_backend/utils"
)

type Profile struct {
	ID          int    `gorm:"primary_key" json:"id"`
	DisplayName string `gorm:"size:255;not null" json:"display_name" binding:"required"`
	Phone       string `gorm:"size:32" json:"phone"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`

	// PinHash authenticates kiosk sessions. Managers additionally hold a
	// password hash for the manager surface.
	PinHash      string `gorm:"size:128" json:"-"`
	PasswordHash string `gorm:"size:128" json:"-"`
	IsManager    bool   `gorm:"not null;default:false" json:"is_manager"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StoreMembership links a profile to a store it may clock in at. For
// managers the same rows define the managed-store scope.
type StoreMembership struct {
	ID        int `gorm:"primary_key" json:"id"`
	ProfileId int `gorm:"not null;uniqueIndex:uq_profile_store,priority:1" json:"profile_id"`
	StoreId   int `gorm:"not null;uniqueIndex:uq_profile_store,priority:2" json:"store_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewProfile struct {
	DisplayName string `json:"display_name" binding:"required"`
	Phone       string `json:"phone"`
	Pin         string `json:"pin"`
	Password    string `json:"password"`
	IsManager   bool   `json:"is_manager"`
	StoreIds    []int  `json:"store_ids"`
}

func (input *NewProfile) validate(ctx context.Context) error {
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	if input.Pin != "" && len(input.Pin) < 4 {
		return errors.New("pin must be at least 4 digits")
	}
	for _, storeId := range input.StoreIds {
		if err := utils.ValidateResourceId[Store](ctx, 0, storeId); err != nil {
			return errors.New("store not found")
		}
	}
	return nil
}

func CreateProfile(ctx context.Context, input *NewProfile) (*Profile, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	profile := Profile{
		DisplayName: input.DisplayName,
		IsActive:    true,
		IsManager:   input.IsManager,
	}

	if input.Phone != "" {
		normalized, err := utils.NormalizePhoneNumber(input.Phone, utils.CountryCode)
		if err != nil {
			return nil, errors.New("invalid phone number")
		}
		profile.Phone = normalized
	}
	if input.Pin != "" {
		hash, err := utils.HashPin(input.Pin)
		if err != nil {
			return nil, err
		}
		profile.PinHash = string(hash)
	}
	if input.Password != "" {
		hash, err := utils.HashPin(input.Password)
		if err != nil {
			return nil, err
		}
		profile.PasswordHash = string(hash)
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&profile).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, storeId := range input.StoreIds {
		membership := StoreMembership{ProfileId: profile.ID, StoreId: storeId}
		if err := tx.WithContext(ctx).Create(&membership).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func GetProfileById(ctx context.Context, profileId int) (*Profile, error) {
	db := config.GetDB()
	var profile Profile
	if err := db.WithContext(ctx).Where("id = ?", profileId).First(&profile).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &profile, nil
}

// IsMemberOfStore checks the membership link required for clock-in.
func IsMemberOfStore(ctx context.Context, profileId int, storeId int) (bool, error) {
	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&StoreMembership{}).
		Where("profile_id = ? AND store_id = ?", profileId, storeId).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ManagedStoreIds lists the stores a manager profile controls.
func ManagedStoreIds(ctx context.Context, profileId int) ([]int, error) {
	db := config.GetDB()
	var ids []int
	if err := db.WithContext(ctx).Model(&StoreMembership{}).
		Where("profile_id = ?", profileId).
		Pluck("store_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// AuthenticateKiosk resolves a kiosk token + profile PIN into an employee
// identity bound to the kiosk's store.
func AuthenticateKiosk(ctx context.Context, kioskToken string, profileId int, pin string) (*Profile, *Store, error) {
	store, err := GetStoreByKioskToken(ctx, kioskToken)
	if err != nil {
		return nil, nil, errors.New("unknown kiosk")
	}

	profile, err := GetProfileById(ctx, profileId)
	if err != nil {
		return nil, nil, errors.New("profile not found")
	}
	if !profile.IsActive {
		return nil, nil, errors.New("profile is inactive")
	}
	member, err := IsMemberOfStore(ctx, profile.ID, store.ID)
	if err != nil {
		return nil, nil, err
	}
	if !member {
		return nil, nil, utils.ErrorNotAuthorized
	}
	if profile.PinHash == "" || utils.ComparePin(profile.PinHash, pin) != nil {
		return nil, nil, errors.New("invalid pin")
	}
	return profile, store, nil
}

// AuthenticateManager resolves manager credentials into a profile + managed
// store scope.
func AuthenticateManager(ctx context.Context, profileId int, password string) (*Profile, []int, error) {
	profile, err := GetProfileById(ctx, profileId)
	if err != nil {
		return nil, nil, errors.New("profile not found")
	}
	if !profile.IsActive || !profile.IsManager {
		return nil, nil, utils.ErrorNotAuthorized
	}
	if profile.PasswordHash == "" || utils.ComparePin(profile.PasswordHash, password) != nil {
		return nil, nil, errors.New("invalid credentials")
	}
	storeIds, err := ManagedStoreIds(ctx, profile.ID)
	if err != nil {
		return nil, nil, err
	}
	return profile, storeIds, nil
}
