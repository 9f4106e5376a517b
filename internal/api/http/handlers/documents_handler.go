package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/document-tracking/internal/api/dto"
	"github.com/spec-kit/document-tracking/internal/auth"
	"github.com/spec-kit/document-tracking/internal/domain"
	"github.com/spec-kit/document-tracking/internal/repository"
	"github.com/spec-kit/document-tracking/internal/service"
	apperrors "github.com/spec-kit/document-tracking/pkg/util/errorutil"
)

const defaultNearDeadlineDays = 3

// DocumentsHandler exposes document routing endpoints.
type DocumentsHandler struct {
	routing     *service.RoutingService
	permissions *service.PermissionValidator
}

// NewDocumentsHandler constructs handler.
func NewDocumentsHandler(routing *service.RoutingService, permissions *service.PermissionValidator) *DocumentsHandler {
	return &DocumentsHandler{routing: routing, permissions: permissions}
}

// CreateDocument POST /documents.
func (h *DocumentsHandler) CreateDocument(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	doc, err := h.routing.CreateDocument(c.UserContext(), service.CreateDocumentInput{
		DocumentTypeID: req.DocumentTypeID,
		Priority:       req.Priority,
		OriginAreaID:   req.OriginAreaID,
		CurrentAreaID:  req.CurrentAreaID,
		Status:         req.Status,
		Subject:        req.Subject,
		Folios:         req.Folios,
		FilePath:       req.FilePath,
		DeadlineDays:   req.DeadlineDays,
	}, principal.UserID())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDocumentResponse(doc)})
}

// ListDocuments GET /documents.
func (h *DocumentsHandler) ListDocuments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	docs, err := h.routing.SearchDocuments(c.UserContext(), principal.UserID(), parseDocumentQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDocumentList(docs)})
}

// NearDeadline GET /documents/near-deadline.
func (h *DocumentsHandler) NearDeadline(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	days, err := strconv.Atoi(c.Query("days", strconv.Itoa(defaultNearDeadlineDays)))
	if err != nil {
		return apperrors.NewValidationError("days must be an integer", nil)
	}
	docs, err := h.routing.GetDocumentsNearDeadlineForUser(c.UserContext(), principal.UserID(), days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDocumentList(docs)})
}

// GetDocument GET /documents/:id.
func (h *DocumentsHandler) GetDocument(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	doc, err := h.routing.GetDocument(c.UserContext(), id, principal.UserID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDocumentResponse(doc)})
}

// History GET /documents/:id/history.
func (h *DocumentsHandler) History(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	ledger, err := h.routing.GetDocumentHistory(c.UserContext(), id, principal.UserID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLedgerResponse(ledger)})
}

// Move POST /documents/:id/move.
func (h *DocumentsHandler) Move(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.MoveDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ToAreaID <= 0 {
		return apperrors.NewValidationError("to_area_id required", nil)
	}
	entry, err := h.routing.MoveDocument(c.UserContext(), service.MoveInput{
		DocumentID:     id,
		ToAreaID:       req.ToAreaID,
		ToEmployeeID:   req.ToEmployeeID,
		Description:    req.Description,
		AttachmentPath: req.AttachmentPath,
		DeadlineDays:   req.DeadlineDays,
	}, principal.UserID())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTrackingResponse(entry)})
}

// Assign POST /documents/:id/assign.
func (h *DocumentsHandler) Assign(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.AssignDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EmployeeID <= 0 {
		return apperrors.NewValidationError("employee_id required", nil)
	}
	entry, err := h.routing.AssignDocument(c.UserContext(), id, req.EmployeeID, principal.UserID())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTrackingResponse(entry)})
}

// UpdateStatus PATCH /documents/:id/status.
func (h *DocumentsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	doc, err := h.routing.UpdateDocumentStatus(c.UserContext(), id, req.Status, principal.UserID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDocumentResponse(doc)})
}

// Delete DELETE /documents/:id.
func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	if err := h.routing.DeleteDocument(c.UserContext(), id, principal.UserID()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Permissions GET /documents/:id/permissions.
func (h *DocumentsHandler) Permissions(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	move, err := h.permissions.ValidateDocumentMovement(c.UserContext(), principal.UserID(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	del, err := h.permissions.ValidateDocumentDeletion(c.UserContext(), id, principal.UserID())
	if err != nil {
		return apperrors.MapError(err)
	}
	if move.Reason == service.ReasonNotFound {
		return apperrors.NewNotFound("document", nil)
	}
	return c.JSON(fiber.Map{"data": dto.PermissionResponse{
		CanMove:      move.Allowed,
		MoveReason:   move.Reason,
		CanDelete:    del.Allowed,
		DeleteReason: del.Reason,
	}})
}

func principalAndID(c *fiber.Ctx) (*auth.Principal, int64, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, 0, apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return nil, 0, err
	}
	return principal, id, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": raw})
	}
	return id, nil
}

func parseDocumentQuery(c *fiber.Ctx) repository.DocumentFilter {
	filter := repository.DocumentFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.DocumentStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.Priority(strings.TrimSpace(part)))
		}
	}
	if areaID, err := strconv.ParseInt(c.Query("area_id"), 10, 64); err == nil {
		filter.CurrentAreaID = &areaID
	}
	if employeeID, err := strconv.ParseInt(c.Query("employee_id"), 10, 64); err == nil {
		filter.CurrentEmployeeID = &employeeID
	}
	if c.Query("page_size") != "" {
		page := parseInt(c.Query("page"), 1)
		pageSize := parseInt(c.Query("page_size"), 20)
		filter.Offset = (page - 1) * pageSize
		filter.Limit = pageSize
	}
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
