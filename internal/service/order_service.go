package service

import (
	"context"
	"errors"

	"authz/internal/model"
	"authz/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateOrderRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type UpdateOrderRequest struct {
	Quantity int    `json:"quantity" binding:"omitempty,min=1"`
	Status   string `json:"status" binding:"omitempty,oneof=new processing completed"`
}

// OrderService is owner-aware CRUD over orders. Orders reference products;
// creation validates the reference.
type OrderService interface {
	List(ctx context.Context, caller *model.User, page, limit int) ([]model.Order, int64, error)
	Get(ctx context.Context, caller *model.User, id uuid.UUID) (*model.Order, error)
	Create(ctx context.Context, caller *model.User, req CreateOrderRequest) (*model.Order, error)
	Update(ctx context.Context, caller *model.User, id uuid.UUID, req UpdateOrderRequest) (*model.Order, error)
	Delete(ctx context.Context, caller *model.User, id uuid.UUID) error
}

type orderService struct {
	accessGate
	orders   repository.OrderRepository
	products repository.ProductRepository
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, perms PermissionService) OrderService {
	return &orderService{accessGate: accessGate{perms: perms}, orders: orders, products: products}
}

func (s *orderService) List(ctx context.Context, caller *model.User, page, limit int) ([]model.Order, int64, error) {
	scope, err := s.scopeFor(ctx, caller, model.ResourceOrders)
	if err != nil {
		return nil, 0, err
	}
	switch scope {
	case scopeAll:
		return s.orders.List(ctx, page, limit)
	case scopeOwn:
		return s.orders.ListByOwner(ctx, caller.ID, page, limit)
	}
	return nil, 0, ErrPermissionDenied
}

func (s *orderService) Get(ctx context.Context, caller *model.User, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if gateErr := s.check(ctx, caller, model.ResourceOrders, model.ActionRead, false); gateErr != nil {
				return nil, gateErr
			}
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.check(ctx, caller, model.ResourceOrders, model.ActionRead, model.OwnedBy(order, caller.ID)); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) Create(ctx context.Context, caller *model.User, req CreateOrderRequest) (*model.Order, error) {
	if err := s.check(ctx, caller, model.ResourceOrders, model.ActionCreate, false); err != nil {
		return nil, err
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, ErrValidation
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	order := &model.Order{
		ProductID: productID,
		Quantity:  req.Quantity,
		Status:    model.OrderStatusNew,
		OwnerID:   &caller.ID,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return s.orders.FindByID(ctx, order.ID)
}

func (s *orderService) Update(ctx context.Context, caller *model.User, id uuid.UUID, req UpdateOrderRequest) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if gateErr := s.check(ctx, caller, model.ResourceOrders, model.ActionUpdate, false); gateErr != nil {
				return nil, gateErr
			}
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.check(ctx, caller, model.ResourceOrders, model.ActionUpdate, model.OwnedBy(order, caller.ID)); err != nil {
		return nil, err
	}

	if req.Quantity > 0 {
		order.Quantity = req.Quantity
	}
	if req.Status != "" {
		order.Status = req.Status
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) Delete(ctx context.Context, caller *model.User, id uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if gateErr := s.check(ctx, caller, model.ResourceOrders, model.ActionDelete, false); gateErr != nil {
				return gateErr
			}
			return ErrNotFound
		}
		return err
	}

	if err := s.check(ctx, caller, model.ResourceOrders, model.ActionDelete, model.OwnedBy(order, caller.ID)); err != nil {
		return err
	}
	return s.orders.Delete(ctx, order.ID)
}
