package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

const DefaultAuditLogLimit = 100

// AuditLog is the append-only record of who changed what.
type AuditLog struct {
	ID        int         `gorm:"primary_key" json:"id"`
	User      string      `gorm:"size:100;not null;index" json:"user"`
	Timestamp time.Time   `gorm:"not null;index" json:"timestamp"`
	Action    AuditAction `gorm:"size:50;not null;index" json:"action"`
	Details   string      `gorm:"type:text" json:"details"`
}

// RecordAudit appends one entry through tx, which is normally the transaction
// of the change being documented.
func RecordAudit(tx *gorm.DB, user string, action AuditAction, details string) error {
	if tx == nil {
		return config.ErrDatabaseNotConnected
	}
	if user == "" {
		user = utils.SystemUser
	}
	if action == "" {
		return errors.New("audit action is required")
	}
	entry := AuditLog{
		User:      user,
		Timestamp: time.Now().UTC(),
		Action:    action,
		Details:   details,
	}
	return tx.Create(&entry).Error
}

// RecordAuditEntry appends one entry outside any business transaction,
// for actions that do not touch the tables themselves.
func RecordAuditEntry(ctx context.Context, user string, action AuditAction, details string) error {
	unlock := config.AcquireWriteLock()
	defer unlock()

	db := config.GetDB()
	if db == nil {
		return config.ErrDatabaseNotConnected
	}
	return RecordAudit(db.WithContext(ctx), user, action, details)
}

// DatabaseAuditSink records entries into the audit_logs table.
type DatabaseAuditSink struct{}

func (DatabaseAuditSink) Record(ctx context.Context, user string, action AuditAction, details string) error {
	return RecordAuditEntry(ctx, user, action, details)
}

func auditQuery(ctx context.Context, limit int) (*gorm.DB, error) {
	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	if limit <= 0 {
		limit = DefaultAuditLogLimit
	}
	return db.WithContext(ctx).Order("timestamp DESC").Order("id DESC").Limit(limit), nil
}

// GetAuditLogs returns at most limit entries, newest first.
func GetAuditLogs(ctx context.Context, limit int) ([]*AuditLog, error) {
	dbCtx, err := auditQuery(ctx, limit)
	if err != nil {
		return nil, err
	}
	var results []*AuditLog
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetAuditLogsByUser(ctx context.Context, username string, limit int) ([]*AuditLog, error) {
	dbCtx, err := auditQuery(ctx, limit)
	if err != nil {
		return nil, err
	}
	var results []*AuditLog
	if err := dbCtx.Where("user = ?", username).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// action is matched as a case-insensitive substring, so "product" finds every product action
func GetAuditLogsByAction(ctx context.Context, action string, limit int) ([]*AuditLog, error) {
	dbCtx, err := auditQuery(ctx, limit)
	if err != nil {
		return nil, err
	}
	var results []*AuditLog
	if err := dbCtx.Where("LOWER(action) LIKE ? ESCAPE '\\'", likePattern(action)).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
