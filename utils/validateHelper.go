package utils

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ErrDuplicate is returned by ValidateUnique when the value is already taken.
var ErrDuplicate = errors.New("duplicate")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct runs the `validate` tags of input, returning a *ValidationError on rejection.
func ValidateStruct(input any) error {
	if err := getValidator().Struct(input); err != nil {
		return &ValidationError{Fields: processValidationErrors(err)}
	}
	return nil
}

// ValidateVar checks a single value against a validator tag such as "email".
func ValidateVar(field string, value any, tag string) error {
	if err := getValidator().Var(value, tag); err != nil {
		return &ValidationError{Fields: map[string]string{field: tag}}
	}
	return nil
}

func ValidateUnique[T any](ctx context.Context, db *gorm.DB, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if exceptId == nil || reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, db, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, db, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w %s", ErrDuplicate, column)
	}
	return nil
}

// count records, using WHERE $condition
// column names in condition come from code, never from input
func ResourceCountWhere[T any](ctx context.Context, db *gorm.DB, condition string, value ...interface{}) (int64, error) {
	var model T
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where(condition, value...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
