package service

import (
	"context"
	"errors"

	"authz/internal/model"
	"authz/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
}

type UpdateProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

// ProductService is owner-aware CRUD over the product catalog, gated by the
// permission evaluator on every operation.
type ProductService interface {
	List(ctx context.Context, caller *model.User, page, limit int) ([]model.Product, int64, error)
	Get(ctx context.Context, caller *model.User, id uuid.UUID) (*model.Product, error)
	Create(ctx context.Context, caller *model.User, req CreateProductRequest) (*model.Product, error)
	Update(ctx context.Context, caller *model.User, id uuid.UUID, req UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, caller *model.User, id uuid.UUID) error
}

type productService struct {
	accessGate
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository, perms PermissionService) ProductService {
	return &productService{accessGate: accessGate{perms: perms}, products: products}
}

func (s *productService) List(ctx context.Context, caller *model.User, page, limit int) ([]model.Product, int64, error) {
	scope, err := s.scopeFor(ctx, caller, model.ResourceProducts)
	if err != nil {
		return nil, 0, err
	}
	switch scope {
	case scopeAll:
		return s.products.List(ctx, page, limit)
	case scopeOwn:
		return s.products.ListByOwner(ctx, caller.ID, page, limit)
	}
	return nil, 0, ErrPermissionDenied
}

func (s *productService) Get(ctx context.Context, caller *model.User, id uuid.UUID) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deny before revealing absence to callers without broad read.
			if gateErr := s.check(ctx, caller, model.ResourceProducts, model.ActionRead, false); gateErr != nil {
				return nil, gateErr
			}
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.check(ctx, caller, model.ResourceProducts, model.ActionRead, model.OwnedBy(product, caller.ID)); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, caller *model.User, req CreateProductRequest) (*model.Product, error) {
	if err := s.check(ctx, caller, model.ResourceProducts, model.ActionCreate, false); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		OwnerID:     &caller.ID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, caller *model.User, id uuid.UUID, req UpdateProductRequest) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if gateErr := s.check(ctx, caller, model.ResourceProducts, model.ActionUpdate, false); gateErr != nil {
				return nil, gateErr
			}
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.check(ctx, caller, model.ResourceProducts, model.ActionUpdate, model.OwnedBy(product, caller.ID)); err != nil {
		return nil, err
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, caller *model.User, id uuid.UUID) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if gateErr := s.check(ctx, caller, model.ResourceProducts, model.ActionDelete, false); gateErr != nil {
				return gateErr
			}
			return ErrNotFound
		}
		return err
	}

	if err := s.check(ctx, caller, model.ResourceProducts, model.ActionDelete, model.OwnedBy(product, caller.ID)); err != nil {
		return err
	}
	return s.products.Delete(ctx, product.ID)
}
