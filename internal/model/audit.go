package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionLogin           = "LOGIN"
	ActionLogout          = "LOGOUT"
	ActionRegister        = "REGISTER"
	ActionDeactivate      = "DEACTIVATE_ACCOUNT"
	ActionSessionsRevoked = "SESSIONS_REVOKED"
	ActionRoleAssigned    = "ROLE_ASSIGNED"
	ActionRoleRemoved     = "ROLE_REMOVED"
	ActionRuleUpdated     = "RULE_UPDATED"
)

// AuditLog tracks who did what and when for security-relevant changes
type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user"`
	Action    string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID  string     `gorm:"type:varchar(50);index" json:"entity_id"`
	Details   string     `gorm:"type:text" json:"details"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}
