package service

import (
	"context"
	"errors"

	"authz/internal/model"
	"authz/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

// UpdateRuleRequest carries a partial update of a rule's seven grant flags.
// Pointer fields distinguish "leave unchanged" from "set false". There is no
// create_all flag: create is scope-less.
type UpdateRuleRequest struct {
	CanRead      *bool `json:"can_read"`
	CanReadAll   *bool `json:"can_read_all"`
	CanCreate    *bool `json:"can_create"`
	CanUpdate    *bool `json:"can_update"`
	CanUpdateAll *bool `json:"can_update_all"`
	CanDelete    *bool `json:"can_delete"`
	CanDeleteAll *bool `json:"can_delete_all"`
}

func (r *UpdateRuleRequest) empty() bool {
	return r.CanRead == nil && r.CanReadAll == nil && r.CanCreate == nil &&
		r.CanUpdate == nil && r.CanUpdateAll == nil && r.CanDelete == nil && r.CanDeleteAll == nil
}

type AssignRoleRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	RoleID string `json:"role_id" binding:"required,uuid"`
}

type RuleResponse struct {
	ID       uuid.UUID    `json:"id"`
	Role     string       `json:"role"`
	Resource string       `json:"resource"`
	Grants   model.Grants `json:"grants"`
}

type AssignmentResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	UserEmail  string    `json:"user_email,omitempty"`
	RoleID     uuid.UUID `json:"role_id"`
	RoleName   string    `json:"role_name,omitempty"`
	AssignedAt string    `json:"assigned_at"`
}

func toRuleResponse(perm *model.Permission) RuleResponse {
	resp := RuleResponse{
		ID: perm.ID,
		Grants: model.Grants{
			Read:      perm.CanRead,
			ReadAll:   perm.CanReadAll,
			Create:    perm.CanCreate,
			Update:    perm.CanUpdate,
			UpdateAll: perm.CanUpdateAll,
			Delete:    perm.CanDelete,
			DeleteAll: perm.CanDeleteAll,
		},
	}
	if perm.Role != nil {
		resp.Role = perm.Role.Name
	}
	if perm.Resource != nil {
		resp.Resource = perm.Resource.Code
	}
	return resp
}

func toAssignmentResponse(a *model.UserRole) AssignmentResponse {
	resp := AssignmentResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		RoleID:     a.RoleID,
		AssignedAt: a.AssignedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if a.User != nil {
		resp.UserEmail = a.User.Email
	}
	if a.Role != nil {
		resp.RoleName = a.Role.Name
	}
	return resp
}

// --- Interface ---

// RBACAdminService backs the admin-only management surface: inspecting the
// matrix, editing rule grants and managing role assignments.
type RBACAdminService interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	ListResources(ctx context.Context) ([]model.Resource, error)
	ListRules(ctx context.Context) ([]RuleResponse, error)
	GetRule(ctx context.Context, id uuid.UUID) (*RuleResponse, error)
	UpdateRule(ctx context.Context, id uuid.UUID, req UpdateRuleRequest) (*RuleResponse, error)
	ListAssignments(ctx context.Context) ([]AssignmentResponse, error)
	// AssignRole is get-or-create: assigning an already held role returns the
	// existing assignment with created=false.
	AssignRole(ctx context.Context, actor *model.User, req AssignRoleRequest) (*AssignmentResponse, bool, error)
	RemoveAssignment(ctx context.Context, actor *model.User, id uuid.UUID) error
}

type rbacAdminService struct {
	rbac   repository.RBACRepository
	users  repository.UserRepository
	audit  repository.AuditRepository
	events EventPublisher
}

func NewRBACAdminService(rbac repository.RBACRepository, users repository.UserRepository, audit repository.AuditRepository, events EventPublisher) RBACAdminService {
	return &rbacAdminService{rbac: rbac, users: users, audit: audit, events: events}
}

func (s *rbacAdminService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.rbac.ListRoles(ctx)
}

func (s *rbacAdminService) ListResources(ctx context.Context) ([]model.Resource, error) {
	return s.rbac.ListResources(ctx)
}

func (s *rbacAdminService) ListRules(ctx context.Context) ([]RuleResponse, error) {
	perms, err := s.rbac.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	rules := make([]RuleResponse, 0, len(perms))
	for i := range perms {
		rules = append(rules, toRuleResponse(&perms[i]))
	}
	return rules, nil
}

func (s *rbacAdminService) GetRule(ctx context.Context, id uuid.UUID) (*RuleResponse, error) {
	perm, err := s.rbac.GetPermissionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resp := toRuleResponse(perm)
	return &resp, nil
}

func (s *rbacAdminService) UpdateRule(ctx context.Context, id uuid.UUID, req UpdateRuleRequest) (*RuleResponse, error) {
	if req.empty() {
		return nil, ErrValidation
	}

	perm, err := s.rbac.GetPermissionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&perm.CanRead, req.CanRead)
	apply(&perm.CanReadAll, req.CanReadAll)
	apply(&perm.CanCreate, req.CanCreate)
	apply(&perm.CanUpdate, req.CanUpdate)
	apply(&perm.CanUpdateAll, req.CanUpdateAll)
	apply(&perm.CanDelete, req.CanDelete)
	apply(&perm.CanDeleteAll, req.CanDeleteAll)

	if err := s.rbac.UpdatePermission(ctx, perm); err != nil {
		return nil, err
	}

	s.record(ctx, nil, model.ActionRuleUpdated, perm.ID.String(), "")

	resp := toRuleResponse(perm)
	return &resp, nil
}

func (s *rbacAdminService) ListAssignments(ctx context.Context) ([]AssignmentResponse, error) {
	assignments, err := s.rbac.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		out = append(out, toAssignmentResponse(&assignments[i]))
	}
	return out, nil
}

func (s *rbacAdminService) AssignRole(ctx context.Context, actor *model.User, req AssignRoleRequest) (*AssignmentResponse, bool, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, false, ErrValidation
	}
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		return nil, false, ErrValidation
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}
	role, err := s.rbac.GetRoleByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	if existing, err := s.rbac.GetAssignment(ctx, user.ID, role.ID); err == nil {
		existing.User, existing.Role = user, role
		resp := toAssignmentResponse(existing)
		return &resp, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	assignment := &model.UserRole{UserID: user.ID, RoleID: role.ID}
	if err := s.rbac.CreateAssignment(ctx, assignment); err != nil {
		return nil, false, err
	}

	var actorID *uuid.UUID
	if actor != nil {
		actorID = &actor.ID
	}
	s.record(ctx, actorID, model.ActionRoleAssigned, assignment.ID.String(), user.Email+" -> "+role.Name)

	assignment.User, assignment.Role = user, role
	resp := toAssignmentResponse(assignment)
	return &resp, true, nil
}

func (s *rbacAdminService) RemoveAssignment(ctx context.Context, actor *model.User, id uuid.UUID) error {
	assignment, err := s.rbac.GetAssignmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.rbac.DeleteAssignment(ctx, assignment.ID); err != nil {
		return err
	}

	var actorID *uuid.UUID
	if actor != nil {
		actorID = &actor.ID
	}
	s.record(ctx, actorID, model.ActionRoleRemoved, assignment.ID.String(), "")
	return nil
}

func (s *rbacAdminService) record(ctx context.Context, userID *uuid.UUID, action, entityID, details string) {
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
		if details != "" {
			payload["details"] = details
		}
		s.events.Publish(action, payload)
	}
}
