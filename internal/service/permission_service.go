package service

import (
	"context"

	"authz/internal/model"
	"authz/internal/repository"

	"github.com/google/uuid"
)

// PermissionService is the permission evaluator: it aggregates the
// role-permission matrix across all of a user's roles. A user with zero roles
// is denied everything; a single granting role is enough (OR semantics).
type PermissionService interface {
	Authorize(ctx context.Context, userID uuid.UUID, resourceCode string, action model.Action, isOwner bool) (bool, error)
	EffectivePermissions(ctx context.Context, userID uuid.UUID) (map[string]model.Grants, error)
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]model.Role, error)
	HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error)
}

type permissionService struct {
	rbac repository.RBACRepository
}

func NewPermissionService(rbac repository.RBACRepository) PermissionService {
	return &permissionService{rbac: rbac}
}

// Authorize walks the caller's roles and allows on the first rule that
// permits the action. Missing rules and unknown resource codes deny; they are
// not errors.
func (s *permissionService) Authorize(ctx context.Context, userID uuid.UUID, resourceCode string, action model.Action, isOwner bool) (bool, error) {
	roles, err := s.rbac.GetRolesForUser(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, role := range roles {
		perm, err := s.rbac.GetPermission(ctx, role.ID, resourceCode)
		if err != nil {
			return false, err
		}
		if perm != nil && perm.Allows(action, isOwner) {
			return true, nil
		}
	}
	return false, nil
}

// EffectivePermissions reports, per resource code, the field-wise OR of every
// rule across the caller's roles.
func (s *permissionService) EffectivePermissions(ctx context.Context, userID uuid.UUID) (map[string]model.Grants, error) {
	roles, err := s.rbac.GetRolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make(map[string]model.Grants)
	for _, role := range roles {
		perms, err := s.rbac.GetPermissionsForRole(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		for i := range perms {
			perm := &perms[i]
			if perm.Resource == nil {
				continue
			}
			grants := result[perm.Resource.Code]
			grants.Merge(perm)
			result[perm.Resource.Code] = grants
		}
	}
	return result, nil
}

func (s *permissionService) RolesForUser(ctx context.Context, userID uuid.UUID) ([]model.Role, error) {
	return s.rbac.GetRolesForUser(ctx, userID)
}

func (s *permissionService) HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error) {
	roles, err := s.rbac.GetRolesForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.Name == roleName {
			return true, nil
		}
	}
	return false, nil
}
