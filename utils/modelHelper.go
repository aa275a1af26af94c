package utils

import (
	"context"
	"errors"

	"github.com/mmdatafocus/inventory_backend/config"
	"gorm.io/gorm"
)

/* DB fetching */

// fetch model from db
// (may return RecordNotFound)
func FetchModel[T any](ctx context.Context, id int, associations ...string) (*T, error) {
	return FetchModelTx[T](ctx, config.GetDB(), id, associations...)
}

// same as FetchModel, reading through the given handle (usually an open transaction)
func FetchModelTx[T any](ctx context.Context, db *gorm.DB, id int, associations ...string) (*T, error) {
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	dbCtx := db.WithContext(ctx)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch all models from db ordered by the given column
func FetchAllModels[T any](ctx context.Context, orderBy string, associations ...string) ([]*T, error) {
	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	dbCtx := db.WithContext(ctx)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	if orderBy != "" {
		dbCtx = dbCtx.Order(orderBy)
	}
	var results []*T
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
