package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

var (
	ErrDuplicateUsername      = errors.New("duplicate username")
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrPasswordChangeRequired = errors.New("password change required")
)

type User struct {
	ID                 int       `gorm:"primary_key" json:"id"`
	Username           string    `gorm:"size:100;not null;unique" json:"username"`
	PasswordHash       string    `gorm:"size:255;not null" json:"-"`
	Role               UserRole  `gorm:"size:10;not null;default:user" json:"role"`
	MustChangePassword *bool     `gorm:"not null;default:false" json:"must_change_password"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewUser struct {
	Username string   `json:"username" validate:"required,max=100"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

func (u *User) NeedsPasswordChange() bool {
	return u != nil && utils.DereferencePtr(u.MustChangePassword)
}

func (input *NewUser) validate() error {
	input.Username = strings.TrimSpace(input.Username)
	if input.Role == "" {
		input.Role = UserRoleUser
	}
	if !input.Role.IsValid() {
		return fmt.Errorf("%w: invalid user role", utils.ErrValidation)
	}
	return utils.ValidateStruct(input)
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	unlock := config.AcquireWriteLock()
	defer unlock()

	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	if err := utils.ValidateUnique[User](ctx, db, "username", input.Username, nil); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{
		Username:           input.Username,
		PasswordHash:       string(hashedPassword),
		Role:               input.Role,
		MustChangePassword: utils.NewFalse(),
	}

	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	details := fmt.Sprintf("Added user: %s (role: %s)", user.Username, user.Role)
	if err := RecordAudit(tx, utils.GetAuditUser(ctx), AuditActionAddUser, details); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	var result User
	err := db.WithContext(ctx).Where("username = ?", username).Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

func GetUsers(ctx context.Context) ([]*User, error) {
	return ListAllResource[User](ctx, "username")
}

// Authenticate checks the credentials. A user still holding the bootstrap
// password is returned together with ErrPasswordChangeRequired.
func Authenticate(ctx context.Context, username string, password string) (*User, error) {
	user, err := GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	// check login credentials
	if err := utils.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.NeedsPasswordChange() {
		return user, ErrPasswordChangeRequired
	}
	return user, nil
}

func ChangePassword(ctx context.Context, username string, oldPassword string, newPassword string) (*User, error) {
	if err := utils.ValidateVar("password", newPassword, "required,min=6"); err != nil {
		return nil, err
	}
	if oldPassword == newPassword {
		return nil, fmt.Errorf("%w: new password must differ from the old one", utils.ErrValidation)
	}

	unlock := config.AcquireWriteLock()
	defer unlock()

	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	// check oldPassword
	if err := utils.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		return nil, errors.New("old password is wrong")
	}

	//turn password into hash
	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Model(user).UpdateColumns(map[string]interface{}{
		"password_hash":        string(hashedPassword),
		"must_change_password": false,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, utils.GetAuditUser(ctx), AuditActionChangePassword, "Changed password for "+user.Username); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	user.PasswordHash = string(hashedPassword)
	user.MustChangePassword = utils.NewFalse()
	return user, nil
}
