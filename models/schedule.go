package models

import (
	"context"
	"errors"
	"time"

	"github.com/storeops/shiftdesk_backend/config"
	"github.com/storeops/shiftdesk_backend/utils"
)

type Schedule struct {
	ID          int            `gorm:"primary_key" json:"id"`
	StoreId     int            `gorm:"index;not null" json:"store_id" binding:"required"`
	PeriodStart time.Time      `gorm:"not null" json:"period_start" binding:"required"`
	PeriodEnd   time.Time      `gorm:"not null" json:"period_end" binding:"required"`
	Status      ScheduleStatus `gorm:"size:16;not null;default:'draft'" json:"status"`

	Shifts []*ScheduledShift `json:"shifts"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type ScheduledShift struct {
	ID         int       `gorm:"primary_key" json:"id"`
	ScheduleId int       `gorm:"index;not null" json:"schedule_id"`
	StoreId    int       `gorm:"index;not null" json:"store_id"`
	ProfileId  int       `gorm:"index;not null" json:"profile_id"`
	ShiftDate  time.Time `gorm:"type:date;not null;index" json:"shift_date"`
	ShiftType  ShiftType `gorm:"size:16;not null" json:"shift_type"`
	ShiftMode  ShiftMode `gorm:"size:16;not null;default:'standard'" json:"shift_mode"`
	StartClock string    `gorm:"size:5;not null" json:"start_clock"`
	EndClock   string    `gorm:"size:5;not null" json:"end_clock"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewScheduledShift struct {
	ProfileId  int    `json:"profile_id" binding:"required"`
	ShiftDate  string `json:"shift_date" binding:"required"` // YYYY-MM-DD
	ShiftType  string `json:"shift_type" binding:"required"`
	ShiftMode  string `json:"shift_mode"`
	StartClock string `json:"start_clock" binding:"required"`
	EndClock   string `json:"end_clock" binding:"required"`
}

type NewSchedule struct {
	StoreId     int                 `json:"store_id" binding:"required"`
	PeriodStart time.Time           `json:"period_start" binding:"required"`
	PeriodEnd   time.Time           `json:"period_end" binding:"required"`
	Shifts      []NewScheduledShift `json:"shifts"`
}

func (input *NewSchedule) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Store](ctx, 0, input.StoreId); err != nil {
		return errors.New("store not found")
	}
	if !input.PeriodEnd.After(input.PeriodStart) {
		return errors.New("period_end must be after period_start")
	}
	for _, s := range input.Shifts {
		if _, err := ParseShiftType(s.ShiftType); err != nil {
			return err
		}
		if s.ShiftType != string(ShiftTypeOpen) && s.ShiftType != string(ShiftTypeClose) {
			return errors.New("scheduled shifts must be open or close")
		}
		if _, err := time.Parse("2006-01-02", s.ShiftDate); err != nil {
			return errors.New("invalid shift_date")
		}
		if _, err := utils.ParseClock(s.StartClock); err != nil {
			return err
		}
		if _, err := utils.ParseClock(s.EndClock); err != nil {
			return err
		}
		member, err := IsMemberOfStore(ctx, s.ProfileId, input.StoreId)
		if err != nil {
			return err
		}
		if !member {
			return errors.New("profile is not a member of the store")
		}
	}
	return nil
}

func CreateSchedule(ctx context.Context, input *NewSchedule) (*Schedule, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	schedule := Schedule{
		StoreId:     input.StoreId,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		Status:      ScheduleStatusDraft,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&schedule).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, s := range input.Shifts {
		date, _ := time.Parse("2006-01-02", s.ShiftDate)
		mode := ShiftMode(s.ShiftMode)
		if mode == "" {
			mode = ShiftModeStandard
		}
		row := ScheduledShift{
			ScheduleId: schedule.ID,
			StoreId:    input.StoreId,
			ProfileId:  s.ProfileId,
			ShiftDate:  date,
			ShiftType:  ShiftType(s.ShiftType),
			ShiftMode:  mode,
			StartClock: s.StartClock,
			EndClock:   s.EndClock,
		}
		if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		schedule.Shifts = append(schedule.Shifts, &row)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

// PublishSchedule makes the schedule's shifts eligible for clock-in matching.
func PublishSchedule(ctx context.Context, scheduleId int) error {
	db := config.GetDB()
	var schedule Schedule
	if err := db.WithContext(ctx).Where("id = ?", scheduleId).First(&schedule).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if schedule.Status == ScheduleStatusPublished {
		return nil
	}
	return db.WithContext(ctx).Model(&Schedule{}).
		Where("id = ?", scheduleId).
		Update("status", ScheduleStatusPublished).Error
}

// PublishedShiftsForDate fetches the matcher's candidate rows, ordered by
// (start_clock, id) so matching is reproducible regardless of storage order.
func PublishedShiftsForDate(ctx context.Context, storeId int, profileId int, date time.Time) ([]*ScheduledShift, error) {
	db := config.GetDB()
	var rows []*ScheduledShift
	err := db.WithContext(ctx).
		Joins("JOIN schedules ON schedules.id = scheduled_shifts.schedule_id AND schedules.status = ?", ScheduleStatusPublished).
		Where("scheduled_shifts.store_id = ? AND scheduled_shifts.profile_id = ? AND scheduled_shifts.shift_date = ?",
			storeId, profileId, date.Format("2006-01-02")).
		Order("scheduled_shifts.start_clock, scheduled_shifts.id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
