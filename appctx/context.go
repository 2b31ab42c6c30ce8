package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (config <-> utils).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyToken         = ContextKey("Token")
	ContextKeyProfileId     = ContextKey("ProfileId")
	ContextKeyProfileName   = ContextKey("ProfileName")
	ContextKeyStoreId       = ContextKey("StoreId")
	ContextKeyCorrelationId = ContextKey("CorrelationId")

	// ContextKeyIsManager is true for manager sessions. Managers may act on
	// any store in their managed set; employees only on their PIN-bound store.
	ContextKeyIsManager = ContextKey("IsManager")

	// ContextKeyManagedStoreIds carries the manager's store scope ([]int).
	ContextKeyManagedStoreIds = ContextKey("ManagedStoreIds")

	// ContextKeySkipStoreScope forces store scoping to be disabled for the
	// request. Use sparingly (internal ops / seed tooling only).
	ContextKeySkipStoreScope = ContextKey("SkipStoreScope")
)

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func GetBool(ctx context.Context, key ContextKey) (bool, bool) {
	v, ok := ctx.Value(key).(bool)
	return v, ok
}

func GetInt(ctx context.Context, key ContextKey) (int, bool) {
	v, ok := ctx.Value(key).(int)
	return v, ok
}

func GetIntSlice(ctx context.Context, key ContextKey) ([]int, bool) {
	v, ok := ctx.Value(key).([]int)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}
