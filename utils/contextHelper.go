package utils

import (
	"context"

	"github.com/mmdatafocus/inventory_backend/appctx"
)

// Alias the shared context key type so existing code keeps working.
type contextKey = appctx.ContextKey

// SystemUser is recorded in the audit log when no operator is attached to the context.
const SystemUser = "system"

var (
	ContextKeyUsername  = appctx.ContextKeyUsername
	ContextKeyUserId    = appctx.ContextKeyUserId
	ContextKeyUserRole  = appctx.ContextKeyUserRole
	ContextKeySessionId = appctx.ContextKeySessionId
)

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUsername)
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserRole)
}

func GetSessionIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeySessionId)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, ContextKeyUsername, username)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetUserRoleInContext(ctx context.Context, role string) context.Context {
	return appctx.Set(ctx, ContextKeyUserRole, role)
}

func SetSessionIdInContext(ctx context.Context, sessionId string) context.Context {
	return appctx.Set(ctx, ContextKeySessionId, sessionId)
}

// GetAuditUser returns the operator name used for audit attribution.
func GetAuditUser(ctx context.Context) string {
	if ctx == nil {
		return SystemUser
	}
	username, ok := GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return SystemUser
	}
	return username
}
