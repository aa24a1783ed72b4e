package model

import (
	"time"

	"github.com/google/uuid"
)

// Session backs one issued token. A cryptographically valid token is only
// honored while its session row is active and unexpired, which is what makes
// server-side revocation (logout, account deactivation) possible. Rows are
// never deleted; revocation just clears is_active.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(500);uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
}

// IsValid reports whether the session is still honored at the given instant.
func (s *Session) IsValid(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}
