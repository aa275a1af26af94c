package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

// read a single row straight from the db; nothing is cached
// (may return RecordNotFound error)
func GetResource[T any](ctx context.Context, id int) (*T, error) {
	return utils.FetchModel[T](ctx, id)
}

// list all rows of T ordered by the given clause
func ListAllResource[T any](ctx context.Context, order string) ([]*T, error) {
	return utils.FetchAllModels[T](ctx, order)
}

// DateRange filters orders by order_date. From covers its whole day onward,
// To covers its whole day; either bound may be nil.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func NewDateRange(from, to *time.Time) *DateRange {
	return &DateRange{From: from, To: to}
}

// apply adds the bounds on column to the query
func (r *DateRange) apply(db *gorm.DB, column string) *gorm.DB {
	if r == nil {
		return db
	}
	if r.From != nil {
		db = db.Where(column+" >= ?", utils.StartOfDay(*r.From))
	}
	if r.To != nil {
		db = db.Where(column+" < ?", utils.StartOfNextDay(*r.To))
	}
	return db
}

// likePattern builds a lowercase LIKE pattern matching term anywhere, with wildcards escaped
func likePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}
