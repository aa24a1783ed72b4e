package service

import (
	"context"
	"errors"

	"authz/internal/model"
	"authz/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultRoleName is assigned to every freshly registered user.
const DefaultRoleName = "user"

// DTOs for request validation
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Patronymic string `json:"patronymic"`
}

type UpdateProfileRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Patronymic string `json:"patronymic"`
	Password   string `json:"password" binding:"omitempty,min=6"`
}

// UserResponse is the outward view of a user, without the password hash.
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Patronymic string    `json:"patronymic,omitempty"`
	FullName   string    `json:"full_name"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  string    `json:"created_at"`
}

func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Patronymic: user.Patronymic,
		FullName:   user.FullName(),
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// UserService handles registration and the self-service profile lifecycle.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	UpdateProfile(ctx context.Context, user *model.User, req UpdateProfileRequest) (*UserResponse, error)
	// Deactivate soft-deletes the account. All outstanding sessions are
	// revoked first so no issued token keeps resolving.
	Deactivate(ctx context.Context, user *model.User) error
}

type userService struct {
	users repository.UserRepository
	rbac  repository.RBACRepository
	audit repository.AuditRepository
	auth  AuthService
	tx    repository.TransactionManager
}

func NewUserService(users repository.UserRepository, rbac repository.RBACRepository, audit repository.AuditRepository, auth AuthService, tx repository.TransactionManager) UserService {
	return &userService{users: users, rbac: rbac, audit: audit, auth: auth, tx: tx}
}

// Register creates the user and assigns the default "user" role. Both writes
// happen in one transaction; the role assignment is a documented
// post-condition of registration, not a hidden store side effect. When the
// default role has not been provisioned the user is still created, just with
// no roles (and therefore no access).
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if _, err := s.users.GetActiveByEmail(ctx, req.Email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Patronymic:   req.Patronymic,
		IsActive:     true,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}

		role, err := s.rbac.GetRoleByName(txCtx, DefaultRoleName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		return s.rbac.CreateAssignment(txCtx, &model.UserRole{
			UserID: user.ID,
			RoleID: role.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Log(ctx, &model.AuditLog{
			UserID:   &user.ID,
			Action:   model.ActionRegister,
			EntityID: user.ID.String(),
			Details:  user.Email,
		})
	}

	return ToUserResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, user *model.User, req UpdateProfileRequest) (*UserResponse, error) {
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Patronymic != "" {
		user.Patronymic = req.Patronymic
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

func (s *userService) Deactivate(ctx context.Context, user *model.User) error {
	if err := s.auth.RevokeAllSessions(ctx, user.ID); err != nil {
		return err
	}

	user.IsActive = false
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if s.audit != nil {
		_ = s.audit.Log(ctx, &model.AuditLog{
			UserID:   &user.ID,
			Action:   model.ActionDeactivate,
			EntityID: user.ID.String(),
			Details:  user.Email,
		})
	}
	return nil
}
