package service

import (
	"context"
	"errors"
	"time"

	"authz/internal/model"
	"authz/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenClaims is the signed payload of an issued token: who, when issued,
// when it stops being valid.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthConfig carries the signing secret and token lifetime. It is injected at
// construction; the session manager never reads the environment itself.
type AuthConfig struct {
	Secret   []byte
	TokenTTL time.Duration
}

// AuthService is the session manager. Every issued token is verified on two
// independent layers: the HMAC signature with its embedded expiry (stateless),
// and a session row that must still be active and unexpired (revocable).
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	ResolveUser(ctx context.Context, token string) (*model.User, error)
	Logout(ctx context.Context, token string) (bool, error)
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	audit    repository.AuditRepository
	events   EventPublisher
	cfg      AuthConfig
	now      func() time.Time
}

// NewAuthService wires the session manager. audit and events may be nil;
// recording then becomes a no-op.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, audit repository.AuditRepository, events EventPublisher, cfg AuthConfig) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		audit:    audit,
		events:   events,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Login authenticates by email and password. On success it mints a signed
// token and persists the matching session row. Every failure mode returns the
// same ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := TokenClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, "", err
	}

	session := &model.Session{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", err
	}

	s.record(ctx, &user.ID, model.ActionLogin, session.ID.String(), user.Email)
	return user, token, nil
}

// decodeToken is layer 1: signature and embedded expiry. Any failure means
// "no claims", never an error.
func (s *authService) decodeToken(token string) *TokenClaims {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.cfg.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil
	}
	return claims
}

// ResolveUser maps a bearer token to its user, or nil when the token is
// worthless: bad signature, embedded expiry passed, session revoked, session
// expired on its own clock, or owning user deactivated. Only store faults
// return an error.
func (s *authService) ResolveUser(ctx context.Context, token string) (*model.User, error) {
	claims := s.decodeToken(token)
	if claims == nil {
		return nil, nil
	}

	session, err := s.sessions.GetActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !session.IsValid(s.now()) {
		return nil, nil
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil
	}

	user, err := s.users.GetActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the session backing the token. Returns whether a live
// session was actually found and revoked.
func (s *authService) Logout(ctx context.Context, token string) (bool, error) {
	session, err := s.sessions.GetActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.sessions.Revoke(ctx, session); err != nil {
		return false, err
	}

	s.record(ctx, &session.UserID, model.ActionLogout, session.ID.String(), "")
	return true, nil
}

// RevokeAllSessions invalidates every outstanding token of a user. Called on
// account deactivation so no token keeps resolving.
func (s *authService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}
	s.record(ctx, &userID, model.ActionSessionsRevoked, userID.String(), "")
	return nil
}

// record appends an audit entry and publishes the event. Both are
// best-effort: a failed audit write never fails the operation that caused it.
func (s *authService) record(ctx context.Context, userID *uuid.UUID, action, entityID, details string) {
	if s.audit != nil {
		_ = s.audit.Log(ctx, &model.AuditLog{
			UserID:   userID,
			Action:   action,
			EntityID: entityID,
			Details:  details,
		})
	}
	if s.events != nil {
		payload := map[string]any{"entity_id": entityID}
		if userID != nil {
			payload["user_id"] = userID.String()
		}
		s.events.Publish(action, payload)
	}
}
