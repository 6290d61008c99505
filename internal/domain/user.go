package domain

import "time"

// ApplicationUser is a desk user. Users are read-only reference data for the
// privilege validator; booking requests reference them as trader/inputter.
type ApplicationUser struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"id"`
	FirstName    string `gorm:"column:first_name" json:"first_name"`
	LastName     string `gorm:"column:last_name" json:"last_name"`
	LoginID      string `gorm:"column:login_id;uniqueIndex" json:"login_id"`
	PasswordHash string `gorm:"column:password_hash" json:"-"`
	Active       bool   `gorm:"column:active" json:"active"`

	ProfileID *uint        `gorm:"column:profile_id" json:"profile_id"`
	Profile   *UserProfile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ApplicationUser) TableName() string { return "application_users" }

// UserProfile is the user's role (TRADER, SALES, SUPERUSER, ...).
type UserProfile struct {
	ID       uint   `gorm:"column:id;primaryKey" json:"id"`
	UserType string `gorm:"column:user_type;uniqueIndex" json:"user_type"`
}

func (UserProfile) TableName() string { return "user_profiles" }

// Privilege is a named operation a user may be granted (BOOK_TRADE, ...).
type Privilege struct {
	ID   uint   `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name;uniqueIndex" json:"name"`
}

func (Privilege) TableName() string { return "privileges" }

// UserPrivilege joins users to their granted privileges.
type UserPrivilege struct {
	ID          uint `gorm:"column:id;primaryKey" json:"id"`
	UserID      uint `gorm:"column:user_id;index" json:"user_id"`
	PrivilegeID uint `gorm:"column:privilege_id" json:"privilege_id"`
}

func (UserPrivilege) TableName() string { return "user_privileges" }
