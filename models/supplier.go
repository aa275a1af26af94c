package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
)

var ErrSupplierNameRequired = fmt.Errorf("%w: supplier name is required", utils.ErrValidation)

type Supplier struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:255;not null;index" json:"name"`
	ContactPerson string    `gorm:"size:255" json:"contact_person"`
	Email         string    `gorm:"size:255" json:"email"`
	Phone         string    `gorm:"size:50" json:"phone"`
	Address       string    `gorm:"type:text" json:"address"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewSupplier struct {
	Name          string `json:"name" validate:"max=255"`
	ContactPerson string `json:"contact_person" validate:"max=255"`
	Email         string `json:"email" validate:"omitempty,email,max=255"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

// SupplierUpdate holds the editable supplier fields; nil means unchanged.
type SupplierUpdate struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
}

// validate input and normalise the phone number
func (input *NewSupplier) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	input.ContactPerson = strings.TrimSpace(input.ContactPerson)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" {
		return ErrSupplierNameRequired
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	phone, err := normalizePhone(input.Phone)
	if err != nil {
		return err
	}
	input.Phone = phone
	return nil
}

func (input *SupplierUpdate) isEmpty() bool {
	return input == nil || (input.Name == nil && input.ContactPerson == nil && input.Email == nil &&
		input.Phone == nil && input.Address == nil)
}

func (input *SupplierUpdate) columns() (map[string]interface{}, string, error) {
	updates := make(map[string]interface{})
	var changes []string
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, "", ErrSupplierNameRequired
		}
		updates["name"] = name
		changes = append(changes, "name="+name)
	}
	if input.ContactPerson != nil {
		contact := strings.TrimSpace(*input.ContactPerson)
		updates["contact_person"] = contact
		changes = append(changes, "contact_person="+contact)
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if err := utils.ValidateVar("email", email, "omitempty,email"); err != nil {
			return nil, "", err
		}
		updates["email"] = email
		changes = append(changes, "email="+email)
	}
	if input.Phone != nil {
		phone, err := normalizePhone(*input.Phone)
		if err != nil {
			return nil, "", err
		}
		updates["phone"] = phone
		changes = append(changes, "phone="+phone)
	}
	if input.Address != nil {
		updates["address"] = *input.Address
		changes = append(changes, "address="+*input.Address)
	}
	return updates, strings.Join(changes, ", "), nil
}

func normalizePhone(phone string) (string, error) {
	normalized, err := utils.NormalizePhoneNumber(phone, config.PhoneRegion())
	if err != nil {
		return "", fmt.Errorf("%w: %s", utils.ErrValidation, err.Error())
	}
	return normalized, nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	unlock := config.AcquireWriteLock()
	defer unlock()

	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	supplier := Supplier{
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
	}

	tx := db.WithContext(ctx).Begin()
	// db action
	if err := tx.Create(&supplier).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, utils.GetAuditUser(ctx), AuditActionAddSupplier, "Added supplier: "+supplier.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return GetResource[Supplier](ctx, id)
}

func GetSuppliers(ctx context.Context) ([]*Supplier, error) {
	return ListAllResource[Supplier](ctx, "name")
}

// GetSuppliersSorted lists every supplier ordered case-insensitively by the given field.
func GetSuppliersSorted(ctx context.Context, sortBy SupplierSortField) ([]*Supplier, error) {
	return ListAllResource[Supplier](ctx, sortBy.column())
}

// SearchSuppliers matches term case-insensitively anywhere in name, contact person or email.
func SearchSuppliers(ctx context.Context, term string) ([]*Supplier, error) {
	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	pattern := likePattern(term)
	var results []*Supplier
	err := db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(contact_person) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", pattern, pattern, pattern).
		Order("name").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func UpdateSupplier(ctx context.Context, id int, input *SupplierUpdate) (bool, error) {
	if input.isEmpty() {
		return false, nil
	}
	updates, changes, err := input.columns()
	if err != nil {
		return false, err
	}

	unlock := config.AcquireWriteLock()
	defer unlock()

	db := config.GetDB()
	if db == nil {
		return false, config.ErrDatabaseNotConnected
	}
	tx := db.WithContext(ctx).Begin()
	supplier, err := utils.FetchModelTx[Supplier](ctx, tx, id)
	if err != nil {
		tx.Rollback()
		return false, err
	}
	// db action
	if err := tx.Model(&Supplier{}).Where("id = ?", id).UpdateColumns(updates).Error; err != nil {
		tx.Rollback()
		return false, err
	}
	details := fmt.Sprintf("Updated supplier %s (ID: %d): %s", supplier.Name, supplier.ID, changes)
	if err := RecordAudit(tx, utils.GetAuditUser(ctx), AuditActionUpdateSupplier, details); err != nil {
		tx.Rollback()
		return false, err
	}
	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	return true, nil
}
