package service

import (
	"context"
	"errors"

	"authz/internal/model"
	"authz/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateReportRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

type UpdateReportRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ReportService interface {
	List(ctx context.Context, caller *model.User, page, limit int) ([]model.Report, int64, error)
	Get(ctx context.Context, caller *model.User, id uuid.UUID) (*model.Report, error)
	Create(ctx context.Context, caller *model.User, req CreateReportRequest) (*model.Report, error)
	Update(ctx context.Context, caller *model.User, id uuid.UUID, req UpdateReportRequest) (*model.Report, error)
	Delete(ctx context.Context, caller *model.User, id uuid.UUID) error
}

type reportService struct {
	accessGate
	reports repository.ReportRepository
}

func NewReportService(reports repository.ReportRepository, perms PermissionService) ReportService {
	return &reportService{accessGate: accessGate{perms: perms}, reports: reports}
}

func (s *reportService) List(ctx context.Context, caller *model.User, page, limit int) ([]model.Report, int64, error) {
	scope, err := s.scopeFor(ctx, caller, model.ResourceReports)
	if err != nil {
		return nil, 0, err
	}
	switch scope {
	case scopeAll:
		return s.reports.List(ctx, page, limit)
	case scopeOwn:
		return s.reports.ListByOwner(ctx, caller.ID, page, limit)
	}
	return nil, 0, ErrPermissionDenied
}

func (s *reportService) Get(ctx context.Context, caller *model.User, id uuid.UUID) (*model.Report, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if gateErr := s.check(ctx, caller, model.ResourceReports, model.ActionRead, false); gateErr != nil {
				return nil, gateErr
			}
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.check(ctx, caller, model.ResourceReports, model.ActionRead, model.OwnedBy(report, caller.ID)); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) Create(ctx context.Context, caller *model.User, req CreateReportRequest) (*model.Report, error) {
	if err := s.check(ctx, caller, model.ResourceReports, model.ActionCreate, false); err != nil {
		return nil, err
	}

	report := &model.Report{
		Name:    req.Name,
		Type:    req.Type,
		OwnerID: &caller.ID,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) Update(ctx context.Context, caller *model.User, id uuid.UUID, req UpdateReportRequest) (*model.Report, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if gateErr := s.check(ctx, caller, model.ResourceReports, model.ActionUpdate, false); gateErr != nil {
				return nil, gateErr
			}
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.check(ctx, caller, model.ResourceReports, model.ActionUpdate, model.OwnedBy(report, caller.ID)); err != nil {
		return nil, err
	}

	if req.Name != "" {
		report.Name = req.Name
	}
	if req.Type != "" {
		report.Type = req.Type
	}

	if err := s.reports.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) Delete(ctx context.Context, caller *model.User, id uuid.UUID) error {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if gateErr := s.check(ctx, caller, model.ResourceReports, model.ActionDelete, false); gateErr != nil {
				return gateErr
			}
			return ErrNotFound
		}
		return err
	}

	if err := s.check(ctx, caller, model.ResourceReports, model.ActionDelete, model.OwnedBy(report, caller.ID)); err != nil {
		return err
	}
	return s.reports.Delete(ctx, report.ID)
}
