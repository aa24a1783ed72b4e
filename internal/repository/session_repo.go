package repository

import (
	"context"

	"authz/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionRepository persists issued tokens. Sessions are never deleted:
// revocation clears is_active and the row stays for audit.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	// GetActiveByToken finds the still-active session row for an exact token
	// string, if any.
	GetActiveByToken(ctx context.Context, token string) (*model.Session, error)
	Revoke(ctx context.Context, session *model.Session) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	return GetDB(ctx, r.db).Create(session).Error
}

func (r *sessionRepository) GetActiveByToken(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	if err := GetDB(ctx, r.db).First(&session, "token = ? AND is_active = ?", token, true).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, session *model.Session) error {
	session.IsActive = false
	return GetDB(ctx, r.db).Model(session).Update("is_active", false).Error
}

func (r *sessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Session{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}
