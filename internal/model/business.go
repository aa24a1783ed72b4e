package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Resource codes for the business objects the permission matrix protects.
const (
	ResourceProducts = "products"
	ResourceOrders   = "orders"
	ResourceReports  = "reports"
)

// Product is a catalog entry. OwnerID is nullable: catalog items seeded by
// the system have no owner.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	OwnerID     *uuid.UUID      `gorm:"type:uuid;index" json:"owner_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Order statuses.
const (
	OrderStatusNew        = "new"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
)

// Order belongs to the user who placed it.
type Order struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int        `gorm:"not null" json:"quantity"`
	Status    string     `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	OwnerID   *uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Report is a generated document owned by its author.
type Report struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Type      string     `gorm:"type:varchar(50);not null" json:"type"`
	OwnerID   *uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Owned is implemented by business objects that carry an owner reference.
// The permission evaluator never inspects objects itself; callers derive the
// is_owner flag from this.
type Owned interface {
	Owner() *uuid.UUID
}

func (p *Product) Owner() *uuid.UUID { return p.OwnerID }
func (o *Order) Owner() *uuid.UUID   { return o.OwnerID }
func (r *Report) Owner() *uuid.UUID  { return r.OwnerID }

// OwnedBy reports whether the object's owner is the given user.
func OwnedBy(obj Owned, userID uuid.UUID) bool {
	owner := obj.Owner()
	return owner != nil && *owner == userID
}
