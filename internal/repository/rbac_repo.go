package repository

import (
	"context"
	"errors"

	"authz/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RBACRepository is the data access layer for the role-permission matrix:
// roles, resources, permission rules and user-role assignments.
type RBACRepository interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	GetRoleByID(ctx context.Context, id uuid.UUID) (*model.Role, error)
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	GetRolesForUser(ctx context.Context, userID uuid.UUID) ([]model.Role, error)

	ListResources(ctx context.Context) ([]model.Resource, error)

	ListPermissions(ctx context.Context) ([]model.Permission, error)
	GetPermissionByID(ctx context.Context, id uuid.UUID) (*model.Permission, error)
	// GetPermission returns the single rule for a (role, resource-code) pair,
	// or nil when no rule exists. Absence is not an error: it simply denies.
	GetPermission(ctx context.Context, roleID uuid.UUID, resourceCode string) (*model.Permission, error)
	GetPermissionsForRole(ctx context.Context, roleID uuid.UUID) ([]model.Permission, error)
	UpdatePermission(ctx context.Context, perm *model.Permission) error

	ListAssignments(ctx context.Context) ([]model.UserRole, error)
	GetAssignmentByID(ctx context.Context, id uuid.UUID) (*model.UserRole, error)
	GetAssignment(ctx context.Context, userID, roleID uuid.UUID) (*model.UserRole, error)
	CreateAssignment(ctx context.Context, assignment *model.UserRole) error
	DeleteAssignment(ctx context.Context, id uuid.UUID) error
}

type rbacRepository struct {
	db *gorm.DB
}

func NewRBACRepository(db *gorm.DB) RBACRepository {
	return &rbacRepository{db: db}
}

func (r *rbacRepository) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *rbacRepository) GetRoleByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *rbacRepository) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *rbacRepository) GetRolesForUser(ctx context.Context, userID uuid.UUID) ([]model.Role, error) {
	var roles []model.Role
	err := GetDB(ctx, r.db).
		Joins("INNER JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *rbacRepository) ListResources(ctx context.Context) ([]model.Resource, error) {
	var resources []model.Resource
	if err := GetDB(ctx, r.db).Order("code ASC").Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *rbacRepository) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	var perms []model.Permission
	if err := GetDB(ctx, r.db).Preload("Role").Preload("Resource").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *rbacRepository) GetPermissionByID(ctx context.Context, id uuid.UUID) (*model.Permission, error) {
	var perm model.Permission
	if err := GetDB(ctx, r.db).Preload("Role").Preload("Resource").First(&perm, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *rbacRepository) GetPermission(ctx context.Context, roleID uuid.UUID, resourceCode string) (*model.Permission, error) {
	var perm model.Permission
	err := GetDB(ctx, r.db).
		Joins("INNER JOIN resources ON resources.id = permissions.resource_id").
		Where("permissions.role_id = ? AND resources.code = ?", roleID, resourceCode).
		First(&perm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &perm, nil
}

func (r *rbacRepository) GetPermissionsForRole(ctx context.Context, roleID uuid.UUID) ([]model.Permission, error) {
	var perms []model.Permission
	if err := GetDB(ctx, r.db).Preload("Resource").Where("role_id = ?", roleID).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *rbacRepository) UpdatePermission(ctx context.Context, perm *model.Permission) error {
	return GetDB(ctx, r.db).Save(perm).Error
}

func (r *rbacRepository) ListAssignments(ctx context.Context) ([]model.UserRole, error) {
	var assignments []model.UserRole
	err := GetDB(ctx, r.db).Preload("User").Preload("Role").Order("assigned_at DESC").Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *rbacRepository) GetAssignmentByID(ctx context.Context, id uuid.UUID) (*model.UserRole, error) {
	var assignment model.UserRole
	if err := GetDB(ctx, r.db).Preload("User").Preload("Role").First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *rbacRepository) GetAssignment(ctx context.Context, userID, roleID uuid.UUID) (*model.UserRole, error) {
	var assignment model.UserRole
	err := GetDB(ctx, r.db).First(&assignment, "user_id = ? AND role_id = ?", userID, roleID).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *rbacRepository) CreateAssignment(ctx context.Context, assignment *model.UserRole) error {
	return GetDB(ctx, r.db).Create(assignment).Error
}

func (r *rbacRepository) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.UserRole{}).Error
}
