package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/document-tracking/internal/api/dto"
	"github.com/spec-kit/document-tracking/internal/auth"
	"github.com/spec-kit/document-tracking/internal/repository"
	"github.com/spec-kit/document-tracking/internal/service"
	apperrors "github.com/spec-kit/document-tracking/pkg/util/errorutil"
)

// OrganizationHandler manages areas and employees.
type OrganizationHandler struct {
	org *service.OrganizationService
}

// NewOrganizationHandler constructs handler.
func NewOrganizationHandler(org *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{org: org}
}

// CreateArea POST /areas.
func (h *OrganizationHandler) CreateArea(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateAreaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	area, err := h.org.CreateArea(c.UserContext(), principal.User, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAreaResponse(area)})
}

// UpdateArea PATCH /areas/:id.
func (h *OrganizationHandler) UpdateArea(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAreaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	area, err := h.org.UpdateArea(c.UserContext(), principal.User, id, service.AreaUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAreaResponse(area)})
}

// ListAreas GET /areas.
func (h *OrganizationHandler) ListAreas(c *fiber.Ctx) error {
	includeInactive := c.QueryBool("include_inactive", false)
	areas, err := h.org.ListAreas(c.UserContext(), includeInactive)
	if err != nil {
		return err
	}
	items := make([]dto.AreaResponse, 0, len(areas))
	for i := range areas {
		items = append(items, dto.NewAreaResponse(&areas[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateEmployee POST /employees.
func (h *OrganizationHandler) CreateEmployee(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	employee, err := h.org.CreateEmployee(c.UserContext(), principal.User, service.EmployeeInput{
		AreaID:   req.AreaID,
		DNI:      req.DNI,
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewEmployeeResponse(employee)})
}

// UpdateEmployee PATCH /employees/:id.
func (h *OrganizationHandler) UpdateEmployee(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	employee, err := h.org.UpdateEmployee(c.UserContext(), principal.User, id, service.EmployeeUpdate{
		AreaID:   req.AreaID,
		FullName: req.FullName,
		Email:    req.Email,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(employee)})
}

// ListEmployees GET /employees.
func (h *OrganizationHandler) ListEmployees(c *fiber.Ctx) error {
	filter := repository.EmployeeFilter{}
	if areaID, err := strconv.ParseInt(c.Query("area_id"), 10, 64); err == nil {
		filter.AreaID = &areaID
	}
	if raw := c.Query("active"); raw != "" {
		active := c.QueryBool("active")
		filter.Active = &active
	}
	if c.Query("page_size") != "" {
		page := parseInt(c.Query("page"), 1)
		pageSize := parseInt(c.Query("page_size"), 20)
		filter.Offset = (page - 1) * pageSize
		filter.Limit = pageSize
	}
	employees, err := h.org.ListEmployees(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		items = append(items, dto.NewEmployeeResponse(&employees[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
