package utils

import (
	"context"
	"errors"
	"reflect"

	"github.com/storeops/shiftdesk_backend/config"
)

// check if id exists, using storeId in WHERE, return RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, storeId int, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, storeId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, storeId int, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, storeId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, storeId, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate " + column)
	}
	return nil
}

// count records, using WHERE store_id = ? AND $condition
// storeId can be zero for models not owned by a store
func ResourceCountWhere[T any](ctx context.Context, storeId int, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if storeId != 0 {
		dbCtx.Where("store_id = ?", storeId)
	}
	dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
