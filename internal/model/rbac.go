package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is a named permission group: admin, manager, user, ...
type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
}

// AdminRoleName is the role that bypasses per-resource checks on admin-only
// endpoints.
const AdminRoleName = "admin"

// Resource is a protected category of business object, identified by code
// (products, orders, reports).
type Resource struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
}

// Action is one of the four verbs the permission matrix understands.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ParseAction validates an action string at the boundary. Unknown actions are
// rejected here, never defaulted to allow.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionRead, ActionCreate, ActionUpdate, ActionDelete:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Permission is the grant matrix entry for one (role, resource) pair. The
// *_all flags grant access to every object of the resource; the plain flags
// only to objects the caller owns. Create has no _all scope: ownership is
// meaningless before the object exists.
type Permission struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoleID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_role_resource" json:"role_id"`
	Role       *Role     `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE;" json:"role,omitempty"`
	ResourceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_role_resource" json:"resource_id"`
	Resource   *Resource `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE;" json:"resource,omitempty"`

	CanRead      bool `gorm:"default:false" json:"can_read"`
	CanReadAll   bool `gorm:"default:false" json:"can_read_all"`
	CanCreate    bool `gorm:"default:false" json:"can_create"`
	CanUpdate    bool `gorm:"default:false" json:"can_update"`
	CanUpdateAll bool `gorm:"default:false" json:"can_update_all"`
	CanDelete    bool `gorm:"default:false" json:"can_delete"`
	CanDeleteAll bool `gorm:"default:false" json:"can_delete_all"`
}

// Allows reports whether this rule permits the action, given whether the
// caller owns the target object.
func (p *Permission) Allows(action Action, isOwner bool) bool {
	var own, all bool
	switch action {
	case ActionRead:
		own, all = p.CanRead, p.CanReadAll
	case ActionCreate:
		return p.CanCreate
	case ActionUpdate:
		own, all = p.CanUpdate, p.CanUpdateAll
	case ActionDelete:
		own, all = p.CanDelete, p.CanDeleteAll
	default:
		return false
	}
	return all || (own && isOwner)
}

// Grants is the flattened per-resource view of a user's effective permissions,
// the field-wise OR of every rule across the user's roles.
type Grants struct {
	Read      bool `json:"read"`
	ReadAll   bool `json:"read_all"`
	Create    bool `json:"create"`
	Update    bool `json:"update"`
	UpdateAll bool `json:"update_all"`
	Delete    bool `json:"delete"`
	DeleteAll bool `json:"delete_all"`
}

// Merge ORs a rule's flags into the accumulated grants.
func (g *Grants) Merge(p *Permission) {
	g.Read = g.Read || p.CanRead
	g.ReadAll = g.ReadAll || p.CanReadAll
	g.Create = g.Create || p.CanCreate
	g.Update = g.Update || p.CanUpdate
	g.UpdateAll = g.UpdateAll || p.CanUpdateAll
	g.Delete = g.Delete || p.CanDelete
	g.DeleteAll = g.DeleteAll || p.CanDeleteAll
}
