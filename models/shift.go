package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/storeops/shiftdesk_backend/config"
	"github.com/storeops/shiftdesk_backend/utils"
)

type Shift struct {
	ID        int       `gorm:"primary_key" json:"id"`
	StoreId   int       `gorm:"index;not null" json:"store_id"`
	ProfileId int       `gorm:"index;not null" json:"profile_id"`
	ShiftType ShiftType `gorm:"size:16;not null" json:"shift_type"`

	// PlannedStartAt is the employee-entered time rounded to 30 minutes for
	// payroll. RawStartAt preserves the entered value verbatim; StartedAt is
	// the server timestamp for audit.
	PlannedStartAt time.Time  `gorm:"not null" json:"planned_start_at"`
	RawStartAt     time.Time  `gorm:"not null" json:"raw_start_at"`
	StartedAt      time.Time  `gorm:"not null" json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`

	// OpenProfileId mirrors ProfileId while the shift is open and is cleared
	// on close. The unique index makes the one-open-shift rule a database
	// constraint: concurrent clock-ins race to insert and the loser gets a
	// duplicate-key violation, never a second open shift.
	OpenProfileId *int `gorm:"uniqueIndex" json:"-"`

	ScheduledShiftId *int        `gorm:"index" json:"scheduled_shift_id"`
	ShiftSource      ShiftSource `gorm:"size:16;not null;default:'schedule'" json:"shift_source"`

	RequiresOverride bool       `gorm:"not null;default:false" json:"requires_override"`
	OverrideAt       *time.Time `json:"override_at"`
	OverrideBy       int        `json:"override_by"`
	OverrideNote     string     `gorm:"type:text" json:"override_note"`

	IsManualClose     bool              `gorm:"not null;default:false" json:"is_manual_close"`
	ManualCloseReview ManualCloseReview `gorm:"size:16" json:"manual_close_review"`

	// Weather snapshots are best-effort context, never load-bearing.
	StartWeather string `gorm:"size:255" json:"start_weather"`
	EndWeather   string `gorm:"size:255" json:"end_weather"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClockIn struct {
	StoreId        int             `json:"store_id" binding:"required"`
	PlannedStartAt time.Time       `json:"planned_start_at" binding:"required"`
	TypeHint       string          `json:"type_hint"`
	Force          bool            `json:"force"`
	StartDrawer    *NewDrawerCount `json:"start_drawer"`
}

// ClockInResult is a tagged outcome. Exactly one of the rejection flags is
// set, or Shift is non-nil.
type ClockInResult struct {
	Shift        *Shift    `json:"shift,omitempty"`
	ResolvedType ShiftType `json:"resolved_type,omitempty"`

	// Unscheduled: no published schedule row for the date and no force flag.
	Unscheduled      bool `json:"unscheduled,omitempty"`
	RequiresApproval bool `json:"requires_approval,omitempty"`

	// DrawerRequiresConfirm: the inline start count was out of threshold and
	// unconfirmed. The shift was rolled back; re-submit with confirmed +
	// notified_manager.
	DrawerRequiresConfirm bool `json:"drawer_requires_confirm,omitempty"`

	// Window is the resolved clock-window label, informational unless
	// enforcement is enabled.
	Window ClockWindowResult `json:"window"`
}

func (input *NewClockIn) validate(ctx context.Context) error {
	if input.PlannedStartAt.IsZero() {
		return errors.New("planned_start_at is required")
	}
	if input.TypeHint != "" {
		if _, err := ParseShiftType(input.TypeHint); err != nil {
			return err
		}
	}
	return nil
}

// ClockIn runs the full clock-in flow: membership check, schedule matching,
// the database-enforced one-open-shift rule, optional inline start count
// with compensating delete, and best-effort weather capture.
func ClockIn(ctx context.Context, input *NewClockIn) (*ClockInResult, error) {
	profileId, ok := utils.GetProfileIdFromContext(ctx)
	if !ok || profileId == 0 {
		return nil, errors.New("profile id is required")
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	if !utils.CanActOnStore(ctx, input.StoreId) {
		return nil, utils.ErrorNotAuthorized
	}

	profile, err := GetProfileById(ctx, profileId)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, errors.New("profile is inactive")
	}
	member, err := IsMemberOfStore(ctx, profileId, input.StoreId)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errors.New("profile is not a member of the store")
	}

	store, err := GetStoreById(ctx, input.StoreId)
	if err != nil {
		return nil, err
	}

	window := ResolveClockWindow(utils.ConvertToLocalTime(input.PlannedStartAt, store.Timezone), store.Class)
	if config.EnforceClockWindows() && !window.Matched {
		return nil, errors.New("clock-in outside the " + window.Label + " window")
	}

	match, err := MatchScheduledShift(ctx, input.StoreId, profileId, input.PlannedStartAt, store.Timezone, ShiftType(input.TypeHint))
	if err != nil {
		return nil, err
	}

	if !match.HasScheduledShift && !input.Force {
		return &ClockInResult{
			Unscheduled:      true,
			RequiresApproval: true,
			ResolvedType:     match.ResolvedType,
			Window:           window,
		}, nil
	}

	now := time.Now().UTC()
	shift := Shift{
		StoreId:        input.StoreId,
		ProfileId:      profileId,
		ShiftType:      match.ResolvedType,
		PlannedStartAt: utils.RoundToHalfHour(input.PlannedStartAt),
		RawStartAt:     input.PlannedStartAt,
		StartedAt:      now,
		OpenProfileId:  &profileId,
		ShiftSource:    ShiftSourceSchedule,
	}
	if match.ScheduledShiftId != 0 {
		shift.ScheduledShiftId = &match.ScheduledShiftId
	}
	if !match.HasScheduledShift {
		// Forced unscheduled clock-in: no schedule link, flagged for review.
		shift.ShiftSource = ShiftSourceManual
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&shift).Error; err != nil {
		tx.Rollback()
		if utils.IsDuplicateKeyErr(err) {
			return nil, utils.ErrorAlreadyActive
		}
		return nil, err
	}
	if err := PublishShiftEvent(ctx, tx, shift.StoreId, now, shift.ID, EventReferenceShift, EventActionShiftOpened, shift); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if input.StartDrawer != nil {
		input.StartDrawer.CountType = string(DrawerCountStart)
		drawerResult, derr := SaveDrawerCount(ctx, nil, shift.ID, store.ExpectedFloatCents, input.StartDrawer)

		// Compensating action, not a transaction: the shift insert already
		// committed, so an unpersisted start count must undo it explicitly
		// or a ghost open shift survives the failed request.
		if derr != nil || (drawerResult != nil && drawerResult.RequiresConfirm) {
			if delErr := db.WithContext(ctx).Delete(&Shift{}, shift.ID).Error; delErr != nil {
				config.LogError(config.GetLogger(), "shift.go", "ClockIn", "compensating delete", shift.ID, delErr)
			}
			// The opened event committed with the shift; an undispatched one
			// must not outlive the row it points at.
			if delErr := db.WithContext(ctx).
				Where("reference_type = ? AND reference_id = ? AND action = ? AND publish_status = ?",
					EventReferenceShift, shift.ID, EventActionShiftOpened, OutboxPublishStatusPending).
				Delete(&OutboxEvent{}).Error; delErr != nil {
				config.LogError(config.GetLogger(), "shift.go", "ClockIn", "compensating event delete", shift.ID, delErr)
			}
			if derr != nil {
				return nil, derr
			}
			return &ClockInResult{
				DrawerRequiresConfirm: true,
				ResolvedType:          match.ResolvedType,
				Window:                window,
			}, nil
		}
	}

	if !config.WeatherCaptureDisabled() {
		go captureWeather(shift.ID, "start_weather", store.Latitude, store.Longitude)
	}

	return &ClockInResult{Shift: &shift, ResolvedType: shift.ShiftType, Window: window}, nil
}

type NewClockOut struct {
	EndDrawer *NewDrawerCount `json:"end_drawer"`
	Manual    bool            `json:"manual"`
}

type ClockOutResult struct {
	Shift                 *Shift `json:"shift"`
	RequiresOverride      bool   `json:"requires_override"`
	DrawerRequiresConfirm bool   `json:"drawer_requires_confirm,omitempty"`
}

// ClockOut ends the shift and clears the open marker. A duration over the
// configured maximum flags the shift for manager override; it stays
// payroll-ineligible until approved.
func ClockOut(ctx context.Context, shiftId int, input *NewClockOut) (*ClockOutResult, error) {
	shift, err := getAuthorizedShift(ctx, shiftId)
	if err != nil {
		return nil, err
	}
	if shift.EndedAt != nil {
		return nil, errors.New("shift is already closed")
	}

	store, err := GetStoreById(ctx, shift.StoreId)
	if err != nil {
		return nil, err
	}

	if input != nil && input.EndDrawer != nil {
		input.EndDrawer.CountType = string(DrawerCountEnd)
		drawerResult, derr := SaveDrawerCount(ctx, nil, shift.ID, store.ExpectedFloatCents, input.EndDrawer)
		if derr != nil {
			return nil, derr
		}
		if drawerResult.RequiresConfirm {
			// Shift stays open; the caller re-prompts and retries.
			return &ClockOutResult{DrawerRequiresConfirm: true}, nil
		}
	}

	now := time.Now().UTC()
	shift.EndedAt = &now
	shift.OpenProfileId = nil
	if input != nil && input.Manual {
		shift.IsManualClose = true
		shift.ManualCloseReview = ManualCloseReviewPending
	}

	maxDuration := time.Duration(config.MaxShiftHours()) * time.Hour
	if now.Sub(shift.StartedAt) > maxDuration {
		shift.RequiresOverride = true
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Save(shift).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := PublishShiftEvent(ctx, tx, shift.StoreId, now, shift.ID, EventReferenceShift, EventActionShiftClosed, shift); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if !config.WeatherCaptureDisabled() {
		go captureWeather(shift.ID, "end_weather", store.Latitude, store.Longitude)
	}

	return &ClockOutResult{Shift: shift, RequiresOverride: shift.RequiresOverride}, nil
}

// ApproveOverride clears the over-duration flag. Manager-only; the
// justification note is mandatory. Approving an already-approved shift is a
// no-op success.
func ApproveOverride(ctx context.Context, shiftId int, note string) (*Shift, error) {
	if isManager, ok := utils.GetIsManagerFromContext(ctx); !ok || !isManager {
		return nil, utils.ErrorNotAuthorized
	}
	shift, err := getAuthorizedShift(ctx, shiftId)
	if err != nil {
		return nil, err
	}
	if !shift.RequiresOverride {
		// Idempotent: nothing pending.
		return shift, nil
	}
	if strings.TrimSpace(note) == "" {
		return nil, errors.New("override note is required")
	}

	managerId, _ := utils.GetProfileIdFromContext(ctx)
	now := time.Now().UTC()
	shift.RequiresOverride = false
	shift.OverrideAt = &now
	shift.OverrideBy = managerId
	shift.OverrideNote = note

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Save(shift).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := PublishShiftEvent(ctx, tx, shift.StoreId, now, shift.ID, EventReferenceShift, EventActionOverrideApproved, shift); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return shift, nil
}

// ReviewManualClose records a manager's disposition for a manually closed
// shift. Until reviewed, the shift is not payroll-final.
func ReviewManualClose(ctx context.Context, shiftId int, disposition string) (*Shift, error) {
	if isManager, ok := utils.GetIsManagerFromContext(ctx); !ok || !isManager {
		return nil, utils.ErrorNotAuthorized
	}
	review, err := ParseManualCloseReview(disposition)
	if err != nil {
		return nil, err
	}
	shift, err := getAuthorizedShift(ctx, shiftId)
	if err != nil {
		return nil, err
	}
	if !shift.IsManualClose {
		return nil, errors.New("shift was not manually closed")
	}

	shift.ManualCloseReview = review

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Save(shift).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := PublishShiftEvent(ctx, tx, shift.StoreId, time.Now().UTC(), shift.ID, EventReferenceShift, EventActionManualReviewed, shift); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return shift, nil
}

// GetOpenShift returns the profile's currently open shift, if any.
func GetOpenShift(ctx context.Context, profileId int) (*Shift, error) {
	db := config.GetDB()
	var shift Shift
	err := db.WithContext(ctx).
		Where("profile_id = ? AND ended_at IS NULL", profileId).
		First(&shift).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &shift, nil
}

func GetShiftById(ctx context.Context, shiftId int) (*Shift, error) {
	db := config.GetDB()
	var shift Shift
	if err := db.WithContext(ctx).Where("id = ?", shiftId).First(&shift).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &shift, nil
}

// getAuthorizedShift loads the shift and re-checks store scope and
// ownership. Employees may only touch their own shifts.
func getAuthorizedShift(ctx context.Context, shiftId int) (*Shift, error) {
	shift, err := GetShiftById(ctx, shiftId)
	if err != nil {
		return nil, err
	}
	if !utils.CanActOnStore(ctx, shift.StoreId) {
		return nil, utils.ErrorNotAuthorized
	}
	if isManager, ok := utils.GetIsManagerFromContext(ctx); !ok || !isManager {
		profileId, _ := utils.GetProfileIdFromContext(ctx)
		if shift.ProfileId != profileId {
			return nil, utils.ErrorNotAuthorized
		}
	}
	return shift, nil
}
