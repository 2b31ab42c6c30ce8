package utils

import (
	"context"

	"github.com/storeops/shiftdesk_backend/appctx"
)

// Alias the shared context key type so call sites stay terse.
type contextKey = appctx.ContextKey

var (
	ContextKeyToken           = appctx.ContextKeyToken
	ContextKeyProfileId       = appctx.ContextKeyProfileId
	ContextKeyProfileName     = appctx.ContextKeyProfileName
	ContextKeyStoreId         = appctx.ContextKeyStoreId
	ContextKeyCorrelationId   = appctx.ContextKeyCorrelationId
	ContextKeyIsManager       = appctx.ContextKeyIsManager
	ContextKeyManagedStoreIds = appctx.ContextKeyManagedStoreIds
	ContextKeySkipStoreScope  = appctx.ContextKeySkipStoreScope
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyToken)
}

func GetProfileIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyProfileId)
}

func GetProfileNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyProfileName)
}

func GetStoreIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyStoreId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func GetIsManagerFromContext(ctx context.Context) (bool, bool) {
	return appctx.GetBool(ctx, ContextKeyIsManager)
}

func GetManagedStoreIdsFromContext(ctx context.Context) ([]int, bool) {
	return appctx.GetIntSlice(ctx, ContextKeyManagedStoreIds)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetProfileIdInContext(ctx context.Context, profileId int) context.Context {
	return appctx.Set(ctx, ContextKeyProfileId, profileId)
}

func SetProfileNameInContext(ctx context.Context, name string) context.Context {
	return appctx.Set(ctx, ContextKeyProfileName, name)
}

func SetStoreIdInContext(ctx context.Context, storeId int) context.Context {
	return appctx.Set(ctx, ContextKeyStoreId, storeId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func SetIsManagerInContext(ctx context.Context, isManager bool) context.Context {
	return appctx.Set(ctx, ContextKeyIsManager, isManager)
}

func SetManagedStoreIdsInContext(ctx context.Context, storeIds []int) context.Context {
	return appctx.Set(ctx, ContextKeyManagedStoreIds, storeIds)
}

func SetSkipStoreScopeInContext(ctx context.Context, skip bool) context.Context {
	return appctx.Set(ctx, ContextKeySkipStoreScope, skip)
}

// CanActOnStore reports whether the request identity may mutate records of
// the given store. Employees must be PIN-bound to it; managers must have it
// in their managed set. Re-checked on every step of multi-step flows.
func CanActOnStore(ctx context.Context, storeId int) bool {
	if isManager, ok := GetIsManagerFromContext(ctx); ok && isManager {
		managed, ok := GetManagedStoreIdsFromContext(ctx)
		if !ok {
			return false
		}
		for _, id := range managed {
			if id == storeId {
				return true
			}
		}
		return false
	}
	boundStore, ok := GetStoreIdFromContext(ctx)
	return ok && boundStore == storeId
}
