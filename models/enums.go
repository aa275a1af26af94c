package models

import (
	"errors"
	"strings"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}

// convert input to role
func ParseUserRole(s string) (UserRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return UserRoleAdmin, nil
	case "user", "":
		return UserRoleUser, nil
	default:
		return "", errors.New("invalid user role")
	}
}

type AuditAction string

const (
	AuditActionAddProduct          AuditAction = "ADD_PRODUCT"
	AuditActionUpdateProduct       AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct       AuditAction = "DELETE_PRODUCT"
	AuditActionAddSupplier         AuditAction = "ADD_SUPPLIER"
	AuditActionUpdateSupplier      AuditAction = "UPDATE_SUPPLIER"
	AuditActionCreateSalesOrder    AuditAction = "CREATE_SALES_ORDER"
	AuditActionCreatePurchaseOrder AuditAction = "CREATE_PURCHASE_ORDER"
	AuditActionCreateBackup        AuditAction = "CREATE_BACKUP"
	AuditActionRestoreBackup       AuditAction = "RESTORE_BACKUP"
	AuditActionDeleteBackup        AuditAction = "DELETE_BACKUP"
	AuditActionAddUser             AuditAction = "ADD_USER"
	AuditActionChangePassword      AuditAction = "CHANGE_PASSWORD"
)

func (a AuditAction) String() string {
	return string(a)
}

type SupplierSortField string

const (
	SupplierSortName          SupplierSortField = "name"
	SupplierSortContactPerson SupplierSortField = "contact_person"
	SupplierSortEmail         SupplierSortField = "email"
	SupplierSortPhone         SupplierSortField = "phone"
)

// column returns the order clause for the field, falling back to name
func (f SupplierSortField) column() string {
	switch f {
	case SupplierSortContactPerson, SupplierSortEmail, SupplierSortPhone:
		return "LOWER(" + string(f) + "), name"
	default:
		return "LOWER(name)"
	}
}
