package service

import (
	"context"
	"testing"

	"authz/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRBACRepo is an in-memory stand-in for the role-permission matrix.
type fakeRBACRepo struct {
	rolesByUser map[uuid.UUID][]model.Role
	roleByName  map[string]model.Role
	perms       map[uuid.UUID]map[string]*model.Permission
	assignments []model.UserRole
}

func newFakeRBACRepo() *fakeRBACRepo {
	return &fakeRBACRepo{
		rolesByUser: make(map[uuid.UUID][]model.Role),
		roleByName:  make(map[string]model.Role),
		perms:       make(map[uuid.UUID]map[string]*model.Permission),
	}
}

func (f *fakeRBACRepo) addRole(name string) model.Role {
	role := model.Role{ID: uuid.New(), Name: name}
	f.roleByName[name] = role
	return role
}

func (f *fakeRBACRepo) assign(userID uuid.UUID, role model.Role) {
	f.rolesByUser[userID] = append(f.rolesByUser[userID], role)
}

func (f *fakeRBACRepo) grant(roleID uuid.UUID, resourceCode string, perm model.Permission) {
	perm.ID = uuid.New()
	perm.RoleID = roleID
	perm.Resource = &model.Resource{ID: uuid.New(), Code: resourceCode}
	perm.ResourceID = perm.Resource.ID
	if f.perms[roleID] == nil {
		f.perms[roleID] = make(map[string]*model.Permission)
	}
	f.perms[roleID][resourceCode] = &perm
}

func (f *fakeRBACRepo) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	for _, role := range f.roleByName {
		roles = append(roles, role)
	}
	return roles, nil
}

func (f *fakeRBACRepo) GetRoleByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	for _, role := range f.roleByName {
		if role.ID == id {
			return &role, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRBACRepo) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	role, ok := f.roleByName[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &role, nil
}

func (f *fakeRBACRepo) GetRolesForUser(ctx context.Context, userID uuid.UUID) ([]model.Role, error) {
	return f.rolesByUser[userID], nil
}

func (f *fakeRBACRepo) ListResources(ctx context.Context) ([]model.Resource, error) {
	return nil, nil
}

func (f *fakeRBACRepo) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	return nil, nil
}

func (f *fakeRBACRepo) GetPermissionByID(ctx context.Context, id uuid.UUID) (*model.Permission, error) {
	for _, byCode := range f.perms {
		for _, perm := range byCode {
			if perm.ID == id {
				return perm, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRBACRepo) GetPermission(ctx context.Context, roleID uuid.UUID, resourceCode string) (*model.Permission, error) {
	return f.perms[roleID][resourceCode], nil
}

func (f *fakeRBACRepo) GetPermissionsForRole(ctx context.Context, roleID uuid.UUID) ([]model.Permission, error) {
	var perms []model.Permission
	for _, perm := range f.perms[roleID] {
		perms = append(perms, *perm)
	}
	return perms, nil
}

func (f *fakeRBACRepo) UpdatePermission(ctx context.Context, perm *model.Permission) error {
	return nil
}

func (f *fakeRBACRepo) ListAssignments(ctx context.Context) ([]model.UserRole, error) {
	return f.assignments, nil
}

func (f *fakeRBACRepo) GetAssignmentByID(ctx context.Context, id uuid.UUID) (*model.UserRole, error) {
	for i := range f.assignments {
		if f.assignments[i].ID == id {
			return &f.assignments[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRBACRepo) GetAssignment(ctx context.Context, userID, roleID uuid.UUID) (*model.UserRole, error) {
	for i := range f.assignments {
		if f.assignments[i].UserID == userID && f.assignments[i].RoleID == roleID {
			return &f.assignments[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRBACRepo) CreateAssignment(ctx context.Context, assignment *model.UserRole) error {
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	f.assignments = append(f.assignments, *assignment)

	role, err := f.GetRoleByID(ctx, assignment.RoleID)
	if err == nil {
		f.assign(assignment.UserID, *role)
	}
	return nil
}

func (f *fakeRBACRepo) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	for i := range f.assignments {
		if f.assignments[i].ID == id {
			f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
			return nil
		}
	}
	return nil
}

func TestAuthorizeAllScopeIgnoresOwnership(t *testing.T) {
	rbac := newFakeRBACRepo()
	manager := rbac.addRole("manager")
	userID := uuid.New()
	rbac.assign(userID, manager)
	rbac.grant(manager.ID, "products", model.Permission{CanReadAll: true})

	svc := NewPermissionService(rbac)
	ctx := context.Background()

	for _, isOwner := range []bool{true, false} {
		ok, err := svc.Authorize(ctx, userID, "products", model.ActionRead, isOwner)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestAuthorizeOwnScopeRequiresOwnership(t *testing.T) {
	rbac := newFakeRBACRepo()
	role := rbac.addRole("user")
	userID := uuid.New()
	rbac.assign(userID, role)
	rbac.grant(role.ID, "orders", model.Permission{CanUpdate: true})

	svc := NewPermissionService(rbac)
	ctx := context.Background()

	ok, err := svc.Authorize(ctx, userID, "orders", model.ActionUpdate, true)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Authorize(ctx, userID, "orders", model.ActionUpdate, false)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAuthorizeCreateHasNoOwnershipScope(t *testing.T) {
	rbac := newFakeRBACRepo()
	role := rbac.addRole("user")
	userID := uuid.New()
	rbac.assign(userID, role)
	rbac.grant(role.ID, "orders", model.Permission{CanCreate: true})

	svc := NewPermissionService(rbac)
	ctx := context.Background()

	for _, isOwner := range []bool{true, false} {
		ok, err := svc.Authorize(ctx, userID, "orders", model.ActionCreate, isOwner)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestAuthorizeDeniesWithoutRoles(t *testing.T) {
	svc := NewPermissionService(newFakeRBACRepo())

	ok, err := svc.Authorize(context.Background(), uuid.New(), "products", model.ActionRead, true)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAuthorizeDeniesUnknownResource(t *testing.T) {
	rbac := newFakeRBACRepo()
	role := rbac.addRole("admin")
	userID := uuid.New()
	rbac.assign(userID, role)
	rbac.grant(role.ID, "products", model.Permission{CanReadAll: true})

	svc := NewPermissionService(rbac)

	ok, err := svc.Authorize(context.Background(), userID, "invoices", model.ActionRead, true)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAuthorizeAnyGrantingRoleSuffices(t *testing.T) {
	rbac := newFakeRBACRepo()
	viewer := rbac.addRole("viewer")
	editor := rbac.addRole("editor")
	userID := uuid.New()
	rbac.assign(userID, viewer)
	rbac.assign(userID, editor)
	rbac.grant(viewer.ID, "reports", model.Permission{CanReadAll: true})
	rbac.grant(editor.ID, "reports", model.Permission{CanUpdateAll: true})

	svc := NewPermissionService(rbac)
	ctx := context.Background()

	ok, err := svc.Authorize(ctx, userID, "reports", model.ActionUpdate, false)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Authorize(ctx, userID, "reports", model.ActionDelete, false)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEffectivePermissionsMergeAcrossRoles(t *testing.T) {
	rbac := newFakeRBACRepo()
	viewer := rbac.addRole("viewer")
	editor := rbac.addRole("editor")
	userID := uuid.New()
	rbac.assign(userID, viewer)
	rbac.assign(userID, editor)
	rbac.grant(viewer.ID, "products", model.Permission{CanRead: true, CanReadAll: true})
	rbac.grant(editor.ID, "products", model.Permission{CanCreate: true, CanUpdate: true})
	rbac.grant(editor.ID, "orders", model.Permission{CanRead: true})

	svc := NewPermissionService(rbac)

	grants, err := svc.EffectivePermissions(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, grants, 2)

	products := grants["products"]
	require.True(t, products.Read)
	require.True(t, products.ReadAll)
	require.True(t, products.Create)
	require.True(t, products.Update)
	require.False(t, products.Delete)

	orders := grants["orders"]
	require.True(t, orders.Read)
	require.False(t, orders.ReadAll)
}

func TestHasRole(t *testing.T) {
	rbac := newFakeRBACRepo()
	admin := rbac.addRole("admin")
	userID := uuid.New()
	rbac.assign(userID, admin)

	svc := NewPermissionService(rbac)
	ctx := context.Background()

	ok, err := svc.HasRole(ctx, userID, "admin")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.HasRole(ctx, userID, "manager")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.HasRole(ctx, uuid.New(), "admin")
	require.NoError(t, err)
	require.False(t, ok)
}
