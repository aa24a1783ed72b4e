package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"authz/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return gormDB, mock
}

func TestSessionRepoGetActiveByToken(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewSessionRepository(gormDB)

	sessionID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "created_at", "expires_at", "is_active"}).
		AddRow(sessionID.String(), userID.String(), "the-token", now, now.Add(time.Hour), true)
	mock.ExpectQuery(`SELECT \* FROM "sessions"`).WillReturnRows(rows)

	session, err := repo.GetActiveByToken(context.Background(), "the-token")
	if err != nil {
		t.Fatalf("GetActiveByToken: %v", err)
	}
	if session.ID != sessionID || session.UserID != userID {
		t.Fatalf("unexpected session: %+v", session)
	}
	if !session.IsActive {
		t.Fatalf("expected active session")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepoGetActiveByTokenMissing(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewSessionRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "created_at", "expires_at", "is_active"}))

	_, err := repo.GetActiveByToken(context.Background(), "unknown-token")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepoRevoke(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewSessionRepository(gormDB)

	session := &model.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Token:     "the-token",
		ExpiresAt: time.Now().Add(time.Hour),
		IsActive:  true,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "sessions" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Revoke(context.Background(), session); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if session.IsActive {
		t.Fatalf("expected session flagged inactive")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionRepoRevokeAllForUser(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewSessionRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "sessions" SET`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	if err := repo.RevokeAllForUser(context.Background(), uuid.New()); err != nil {
		t.Fatalf("RevokeAllForUser: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
