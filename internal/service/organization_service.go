package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/document-tracking/internal/domain"
	"github.com/spec-kit/document-tracking/internal/repository"
	apperrors "github.com/spec-kit/document-tracking/pkg/util/errorutil"
)

// OrganizationService manages areas and employees.
type OrganizationService struct {
	areas     repository.AreaRepository
	employees repository.EmployeeRepository
	logger    *zap.Logger
}

// OrgDependencies encapsulates repositories required for org management.
type OrgDependencies struct {
	AreaRepo     repository.AreaRepository
	EmployeeRepo repository.EmployeeRepository
	Logger       *zap.Logger
}

// AreaUpdate lists the mutable fields of an area. Nil fields are left untouched.
type AreaUpdate struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// EmployeeInput carries the fields of a new employee.
type EmployeeInput struct {
	AreaID   int64
	DNI      string
	FullName string
	Email    string
}

// EmployeeUpdate lists the mutable fields of an employee.
type EmployeeUpdate struct {
	AreaID   *int64
	FullName *string
	Email    *string
	IsActive *bool
}

// NewOrganizationService constructs the service.
func NewOrganizationService(deps OrgDependencies) *OrganizationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganizationService{areas: deps.AreaRepo, employees: deps.EmployeeRepo, logger: logger}
}

func requireAdmin(actor *domain.User) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// CreateArea creates a new active area.
func (s *OrganizationService) CreateArea(ctx context.Context, actor *domain.User, name, description string) (*domain.Area, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	area := &domain.Area{
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
	}
	if err := s.areas.Create(ctx, area); err != nil {
		return nil, mapRepositoryError(err, "area")
	}
	s.logger.Info("area created", zap.Int64("area_id", area.ID), zap.Int64("user_id", actor.ID))
	return area, nil
}

// UpdateArea applies a partial update.
func (s *OrganizationService) UpdateArea(ctx context.Context, actor *domain.User, areaID int64, update AreaUpdate) (*domain.Area, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	area, err := s.areas.GetByID(ctx, areaID)
	if err != nil {
		return nil, mapRepositoryError(err, "area")
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
		}
		area.Name = name
	}
	if update.Description != nil {
		area.Description = strings.TrimSpace(*update.Description)
	}
	if update.IsActive != nil {
		area.IsActive = *update.IsActive
	}
	if err := s.areas.Update(ctx, area); err != nil {
		return nil, mapRepositoryError(err, "area")
	}
	return area, nil
}

// ListAreas returns areas ordered by name.
func (s *OrganizationService) ListAreas(ctx context.Context, includeInactive bool) ([]domain.Area, error) {
	areas, err := s.areas.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if areas == nil {
		areas = []domain.Area{}
	}
	return areas, nil
}

// CreateEmployee registers an employee in an active area.
func (s *OrganizationService) CreateEmployee(ctx context.Context, actor *domain.User, input EmployeeInput) (*domain.Employee, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	dni := strings.TrimSpace(input.DNI)
	fullName := strings.TrimSpace(input.FullName)
	if dni == "" || fullName == "" {
		return nil, apperrors.NewValidationError("dni and full_name are required", nil)
	}
	if err := s.requireActiveArea(ctx, input.AreaID); err != nil {
		return nil, err
	}
	employee := &domain.Employee{
		AreaID:   input.AreaID,
		DNI:      dni,
		FullName: fullName,
		Email:    strings.TrimSpace(input.Email),
		IsActive: true,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, mapRepositoryError(err, "employee")
	}
	s.logger.Info("employee created", zap.Int64("employee_id", employee.ID), zap.Int64("area_id", employee.AreaID))
	return employee, nil
}

// UpdateEmployee applies a partial update. Moving an employee requires an active area.
func (s *OrganizationService) UpdateEmployee(ctx context.Context, actor *domain.User, employeeID int64, update EmployeeUpdate) (*domain.Employee, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, mapRepositoryError(err, "employee")
	}
	if update.AreaID != nil && *update.AreaID != employee.AreaID {
		if err := s.requireActiveArea(ctx, *update.AreaID); err != nil {
			return nil, err
		}
		employee.AreaID = *update.AreaID
	}
	if update.FullName != nil {
		fullName := strings.TrimSpace(*update.FullName)
		if fullName == "" {
			return nil, apperrors.NewValidationError("full_name is required", map[string]any{"field": "full_name"})
		}
		employee.FullName = fullName
	}
	if update.Email != nil {
		employee.Email = strings.TrimSpace(*update.Email)
	}
	if update.IsActive != nil {
		employee.IsActive = *update.IsActive
	}
	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, mapRepositoryError(err, "employee")
	}
	return employee, nil
}

// ListEmployees returns employees matching the filter.
func (s *OrganizationService) ListEmployees(ctx context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	employees, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if employees == nil {
		employees = []domain.Employee{}
	}
	return employees, nil
}

func (s *OrganizationService) requireActiveArea(ctx context.Context, areaID int64) error {
	area, err := s.areas.GetByID(ctx, areaID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewReferentialError("area does not exist", map[string]any{"area_id": areaID})
	}
	if err != nil {
		return apperrors.MapError(err)
	}
	if !area.IsActive {
		return apperrors.NewReferentialError("area is inactive", map[string]any{"area_id": areaID})
	}
	return nil
}

// mapRepositoryError translates repository sentinels for the named resource.
func mapRepositoryError(err error, resource string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", nil)
	case errors.Is(err, repository.ErrReferenceNotFound):
		return apperrors.NewReferentialError("referenced record does not exist", map[string]any{"resource": resource})
	}
	return apperrors.MapError(err)
}
