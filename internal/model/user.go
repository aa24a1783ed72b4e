package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the central identity record. Deactivated users keep their row
// (is_active = false) but are invisible to authentication and authorization.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Patronymic   string    `gorm:"type:varchar(100)" json:"patronymic,omitempty"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FullName joins last name, first name and patronymic when present.
func (u *User) FullName() string {
	name := u.LastName + " " + u.FirstName
	if u.Patronymic != "" {
		name += " " + u.Patronymic
	}
	return name
}

// UserRole links a user to a role. A user may hold many roles, but the same
// (user, role) pair only once.
type UserRole struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_role" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"user,omitempty"`
	RoleID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_role" json:"role_id"`
	Role       *Role     `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE;" json:"role,omitempty"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`
}
