package models

import (
	"context"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
)

// documented bootstrap credential, rotated on first login
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

func MigrateTable() error {
	db := config.GetDB()
	if db == nil {
		return config.ErrDatabaseNotConnected
	}

	return db.AutoMigrate(
		&User{},
		&Product{},
		&Supplier{},
		&SalesOrder{},
		&PurchaseOrder{},
		&AuditLog{},
	)
}

// SeedAdmin inserts the default administrator when the users table is empty.
func SeedAdmin(ctx context.Context) error {
	unlock := config.AcquireWriteLock()
	defer unlock()

	db := config.GetDB()
	if db == nil {
		return config.ErrDatabaseNotConnected
	}

	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := utils.HashPassword(DefaultAdminPassword)
	if err != nil {
		return err
	}
	admin := User{
		Username:           DefaultAdminUsername,
		PasswordHash:       string(hashedPassword),
		Role:               UserRoleAdmin,
		MustChangePassword: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}
	config.LogInfo(config.GetLogger(), "Models", "SeedAdmin", "default admin account created", admin.Username)
	return nil
}

// Open connects to the data file at path, creates the tables and seeds the admin account.
func Open(path string) error {
	if err := config.ConnectDatabase(path); err != nil {
		return err
	}
	if err := MigrateTable(); err != nil {
		config.CloseDatabase()
		return err
	}
	if err := SeedAdmin(context.Background()); err != nil {
		config.CloseDatabase()
		return err
	}
	return nil
}
