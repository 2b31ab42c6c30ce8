package config

import (
	"context"
	"strings"

	"github.com/storeops/shiftdesk_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreGuardPlugin enforces store isolation by automatically scoping
// queries/updates/deletes to the request's store scope when the model has a
// store_id column. Employees are pinned to their PIN-bound store; managers
// are scoped to their managed store set.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include store_id manually.
// - Internal bypass is explicit via context flags.
type StoreGuardPlugin struct{}

func NewStoreGuardPlugin() *StoreGuardPlugin { return &StoreGuardPlugin{} }

func (p *StoreGuardPlugin) Name() string { return "store_guard" }

func (p *StoreGuardPlugin) Initialize(db *gorm.DB) error {
	// Query
	if err := db.Callback().Query().Before("gorm:query").Register("store_guard:query", storeGuardCallback); err != nil {
		return err
	}
	// Row (First/Take)
	if err := db.Callback().Row().Before("gorm:row").Register("store_guard:row", storeGuardCallback); err != nil {
		return err
	}
	// Update
	if err := db.Callback().Update().Before("gorm:update").Register("store_guard:update", storeGuardCallback); err != nil {
		return err
	}
	// Delete
	if err := db.Callback().Delete().Before("gorm:delete").Register("store_guard:delete", storeGuardCallback); err != nil {
		return err
	}
	return nil
}

func storeGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if shouldBypassStoreScope(ctx) {
		return
	}

	// Only apply if the current model/table includes a store_id column.
	if db.Statement.Schema == nil {
		return
	}
	hasStoreID := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, "store_id") {
			hasStoreID = true
			break
		}
	}
	if !hasStoreID {
		return
	}

	// Don't duplicate an explicit store filter.
	if whereHasStoreID(db.Statement.Clauses["WHERE"]) {
		return
	}

	if isManager, ok := appctx.GetBool(ctx, appctx.ContextKeyIsManager); ok && isManager {
		managed, ok := appctx.GetIntSlice(ctx, appctx.ContextKeyManagedStoreIds)
		if !ok || len(managed) == 0 {
			return
		}
		values := make([]any, 0, len(managed))
		for _, id := range managed {
			values = append(values, id)
		}
		db.Statement.AddClause(clause.Where{
			Exprs: []clause.Expression{
				clause.IN{
					Column: clause.Column{Table: db.Statement.Table, Name: "store_id"},
					Values: values,
				},
			},
		})
		return
	}

	storeID, ok := appctx.GetInt(ctx, appctx.ContextKeyStoreId)
	if !ok || storeID == 0 {
		return
	}
	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "store_id"},
				Value:  storeID,
			},
		},
	})
}

func shouldBypassStoreScope(ctx context.Context) bool {
	if v, ok := appctx.GetBool(ctx, appctx.ContextKeySkipStoreScope); ok && v {
		return true
	}
	return false
}

func whereHasStoreID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasStoreID(e) {
			return true
		}
	}
	return false
}

func exprHasStoreID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return columnIsStoreID(v.Column)
	case clause.IN:
		return columnIsStoreID(v.Column)
	case clause.Expr:
		return strings.Contains(strings.ToLower(v.SQL), "store_id")
	case clause.NamedExpr:
		return strings.Contains(strings.ToLower(v.SQL), "store_id")
	case clause.AndConditions:
		for _, inner := range v.Exprs {
			if exprHasStoreID(inner) {
				return true
			}
		}
	case clause.OrConditions:
		for _, inner := range v.Exprs {
			if exprHasStoreID(inner) {
				return true
			}
		}
	}
	return false
}

func columnIsStoreID(col any) bool {
	switch c := col.(type) {
	case clause.Column:
		return strings.EqualFold(c.Name, "store_id")
	case string:
		return strings.Contains(strings.ToLower(c), "store_id")
	}
	return false
}
