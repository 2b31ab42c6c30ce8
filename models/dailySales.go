package models

import (
	"context"
	"errors"
	"time"

	"github.com/storeops/shiftdesk_backend/config"
	"github.com/storeops/shiftdesk_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailySalesRecord is the per-(store, business date) register ledger. All
// register reads across the day land here by upsert, so repeated
// submissions are idempotent.
type DailySalesRecord struct {
	ID           int       `gorm:"primary_key" json:"id"`
	StoreId      int       `gorm:"not null;uniqueIndex:uq_store_business_date,priority:1" json:"store_id"`
	BusinessDate time.Time `gorm:"type:date;not null;uniqueIndex:uq_store_business_date,priority:2" json:"business_date"`

	// X reads are cumulative register totals; Z is the end-of-day final.
	OpenXReportCents  int64  `gorm:"not null;default:0" json:"open_x_report_cents"`
	PriorXReportCents int64  `gorm:"not null;default:0" json:"prior_x_report_cents"`
	CloseSalesCents   *int64 `json:"close_sales_cents"`
	ZReportCents      *int64 `json:"z_report_cents"`

	BeginningRolloverCents int64 `gorm:"not null;default:0" json:"beginning_rollover_cents"`
	RolloverCarryCents     int64 `gorm:"not null;default:0" json:"rollover_carry_cents"`

	OutOfBalance         bool  `gorm:"not null;default:false" json:"out_of_balance"`
	BalanceVarianceCents int64 `gorm:"not null;default:0" json:"balance_variance_cents"`

	// Closed freezes the record once the business date is fully closed out.
	Closed bool `gorm:"not null;default:false" json:"closed"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSalesCheckpoint struct {
	ShiftId                int    `json:"shift_id" binding:"required"`
	OpenXReportCents       *int64 `json:"open_x_report_cents"`
	PriorXReportCents      *int64 `json:"prior_x_report_cents"`
	CloseSalesCents        *int64 `json:"close_sales_cents"`
	ZReportCents           *int64 `json:"z_report_cents"`
	BeginningRolloverCents *int64 `json:"beginning_rollover_cents"`
	RolloverCarryCents     *int64 `json:"rollover_carry_cents"`
	SalesConfirmed         bool   `json:"sales_confirmed"`
}

type SalesCheckpointResult struct {
	Record *DailySalesRecord `json:"record,omitempty"`

	// RequiresSalesConfirm mirrors the drawer-count pattern: the Z total
	// disagrees with the running total and the caller has not confirmed.
	// Nothing was persisted.
	RequiresSalesConfirm bool  `json:"requires_sales_confirm,omitempty"`
	OutOfBalance         bool  `json:"out_of_balance"`
	BalanceVarianceCents int64 `json:"balance_variance_cents"`
}

func (input *NewSalesCheckpoint) validate() error {
	for _, v := range []*int64{
		input.OpenXReportCents, input.PriorXReportCents, input.CloseSalesCents,
		input.ZReportCents, input.BeginningRolloverCents, input.RolloverCarryCents,
	} {
		if v != nil && *v < 0 {
			return errors.New("register totals must not be negative")
		}
	}
	return nil
}

// applyTo overlays the checkpoint onto the day's record. Absent fields are
// left untouched so partial submissions never reset earlier reads.
func (input *NewSalesCheckpoint) applyTo(record *DailySalesRecord) {
	if input.OpenXReportCents != nil {
		record.OpenXReportCents = *input.OpenXReportCents
	}
	if input.PriorXReportCents != nil {
		record.PriorXReportCents = *input.PriorXReportCents
	}
	if input.CloseSalesCents != nil {
		record.CloseSalesCents = input.CloseSalesCents
	}
	if input.ZReportCents != nil {
		record.ZReportCents = input.ZReportCents
	}
	if input.BeginningRolloverCents != nil {
		record.BeginningRolloverCents = *input.BeginningRolloverCents
	}
	if input.RolloverCarryCents != nil {
		record.RolloverCarryCents = *input.RolloverCarryCents
	}
}

// SubmitSalesCheckpoint records register totals for the shift's business
// date. Partial payloads overlay the existing record; absent fields are
// left untouched. A Z report that disagrees with the running total is
// rejected with RequiresSalesConfirm until the caller confirms, at which
// point the mismatch is persisted as out_of_balance with its variance.
func SubmitSalesCheckpoint(ctx context.Context, input *NewSalesCheckpoint) (*SalesCheckpointResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	shift, err := getAuthorizedShift(ctx, input.ShiftId)
	if err != nil {
		return nil, err
	}
	store, err := GetStoreById(ctx, shift.StoreId)
	if err != nil {
		return nil, err
	}
	businessDate, err := utils.ConvertToDate(shift.StartedAt, store.Timezone)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	record := DailySalesRecord{StoreId: shift.StoreId, BusinessDate: businessDate}
	err = db.WithContext(ctx).
		Where("store_id = ? AND business_date = ?", shift.StoreId, businessDate).
		First(&record).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		// A failed read must not fall through to the upsert: UpdateAll would
		// replace the existing row with this zero-valued record.
		return nil, err
	}
	if record.Closed {
		return nil, utils.ErrorReadOnly
	}

	input.applyTo(&record)

	if input.ZReportCents != nil {
		variance := zVariance(&record)
		if variance != 0 && !input.SalesConfirmed {
			return &SalesCheckpointResult{
				RequiresSalesConfirm: true,
				OutOfBalance:         true,
				BalanceVarianceCents: variance,
			}, nil
		}
		record.OutOfBalance = variance != 0
		record.BalanceVarianceCents = variance
	}

	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "business_date"}},
		UpdateAll: true,
	}).Create(&record).Error
	if err != nil {
		return nil, err
	}

	return &SalesCheckpointResult{
		Record:               &record,
		OutOfBalance:         record.OutOfBalance,
		BalanceVarianceCents: record.BalanceVarianceCents,
	}, nil
}

// zVariance compares the Z report against the expected running total. With
// an entered close-sales figure the expectation is prior X + close sales;
// without one the Z itself defines close sales and only a Z below the last
// X read is a mismatch.
func zVariance(record *DailySalesRecord) int64 {
	if record.ZReportCents == nil {
		return 0
	}
	z := *record.ZReportCents
	lastX := record.PriorXReportCents
	if lastX == 0 {
		lastX = record.OpenXReportCents
	}
	if record.CloseSalesCents != nil {
		return z - (lastX + *record.CloseSalesCents)
	}
	if z < lastX {
		return z - lastX
	}
	return 0
}

// AttributableSales computes the sales credited to a shift from the day's
// ledger. Open shifts take the morning X read net of the beginning
// rollover; closing and double shifts take the entered close sales, or
// derive it from Z minus the prior X, plus the rollover carry on rollover
// nights.
func AttributableSales(shift *Shift, record *DailySalesRecord, isRolloverNight bool) int64 {
	switch shift.ShiftType {
	case ShiftTypeOpen:
		return record.OpenXReportCents - record.BeginningRolloverCents
	case ShiftTypeClose, ShiftTypeDouble:
		var sales int64
		if record.CloseSalesCents != nil {
			sales = *record.CloseSalesCents
		} else if record.ZReportCents != nil {
			sales = *record.ZReportCents - record.PriorXReportCents
		}
		if isRolloverNight {
			sales += record.RolloverCarryCents
		}
		return sales
	}
	return 0
}

// GetDailySalesRecord returns the ledger row for the date, or a not-found
// error.
func GetDailySalesRecord(ctx context.Context, storeId int, businessDate time.Time) (*DailySalesRecord, error) {
	db := config.GetDB()
	var record DailySalesRecord
	err := db.WithContext(ctx).
		Where("store_id = ? AND business_date = ?", storeId, businessDate).
		First(&record).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &record, nil
}
