package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/document-tracking/internal/domain"
	"github.com/spec-kit/document-tracking/internal/events"
	"github.com/spec-kit/document-tracking/internal/lock"
	"github.com/spec-kit/document-tracking/internal/repository"
	"github.com/spec-kit/document-tracking/pkg/util/errorutil"
)

const createAttempts = 3

// CreateDocumentInput carries the caller supplied fields of a new document.
type CreateDocumentInput struct {
	DocumentTypeID int64
	Priority       domain.Priority
	OriginAreaID   int64
	CurrentAreaID  *int64
	Status         domain.DocumentStatus
	Subject        string
	Folios         int
	FilePath       *string
	DeadlineDays   *int
}

// MoveInput describes a transfer of a document to another area.
type MoveInput struct {
	DocumentID     int64
	ToAreaID       int64
	ToEmployeeID   *int64
	Description    string
	AttachmentPath *string
	DeadlineDays   *int
}

// RoutingService creates documents and records every change of location or status.
type RoutingService struct {
	documents     repository.DocumentRepository
	tracking      repository.TrackingRepository
	areas         repository.AreaRepository
	employees     repository.EmployeeRepository
	users         repository.UserRepository
	numbering     *Numbering
	deadlines     *DeadlineCalculator
	statuses      StatusPolicy
	guard         *lock.Guard
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	clock         func() time.Time
	cascadeDelete bool
}

// RoutingDependencies wires dependencies for the routing service.
type RoutingDependencies struct {
	Documents  repository.DocumentRepository
	Tracking   repository.TrackingRepository
	Areas      repository.AreaRepository
	Employees  repository.EmployeeRepository
	Users      repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Guard may be nil, in which case mutations rely on the version check alone.
	Guard         *lock.Guard
	StatusPolicy  StatusPolicy
	Clock         func() time.Time
	Location      *time.Location
	CascadeDelete bool
}

// NewRoutingService constructs a RoutingService.
func NewRoutingService(deps RoutingDependencies) *RoutingService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	statuses := deps.StatusPolicy
	if statuses == nil {
		statuses = PermissiveStatusPolicy{}
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	return &RoutingService{
		documents:     deps.Documents,
		tracking:      deps.Tracking,
		areas:         deps.Areas,
		employees:     deps.Employees,
		users:         deps.Users,
		numbering:     NewNumbering(deps.Documents, clock, deps.Location),
		deadlines:     NewDeadlineCalculator(clock, deps.Location),
		statuses:      statuses,
		guard:         deps.Guard,
		dispatcher:    dispatcher,
		logger:        logger,
		clock:         clock,
		cascadeDelete: deps.CascadeDelete,
	}
}

// Deadlines exposes the calculator used by the service.
func (s *RoutingService) Deadlines() *DeadlineCalculator {
	return s.deadlines
}

// CreateDocument registers a new document together with its creation entry.
func (s *RoutingService) CreateDocument(ctx context.Context, input CreateDocumentInput, createdBy int64) (*domain.Document, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, errorutil.NewValidationError("subject is required", map[string]any{"field": "subject"})
	}
	if input.DocumentTypeID <= 0 {
		return nil, errorutil.NewValidationError("document_type_id is required", map[string]any{"field": "document_type_id"})
	}
	if input.OriginAreaID <= 0 {
		return nil, errorutil.NewValidationError("origin_area_id is required", map[string]any{"field": "origin_area_id"})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !priority.IsValid() {
		return nil, errorutil.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	status := input.Status
	if status == "" {
		status = domain.StatusInAnalysis
	}
	if !status.IsValid() {
		return nil, errorutil.NewValidationError("invalid status", map[string]any{"status": status})
	}
	if input.Folios < 0 {
		return nil, errorutil.NewValidationError("folios must not be negative", map[string]any{"folios": input.Folios})
	}
	folios := input.Folios
	if folios == 0 {
		folios = 1
	}

	if _, err := s.loadArea(ctx, input.OriginAreaID, "origin"); err != nil {
		return nil, err
	}
	currentAreaID := input.OriginAreaID
	if input.CurrentAreaID != nil {
		currentAreaID = *input.CurrentAreaID
		if currentAreaID != input.OriginAreaID {
			if _, err := s.loadArea(ctx, currentAreaID, "current"); err != nil {
				return nil, err
			}
		}
	}

	deadline := s.deadlines.Calculate(priority, input.DeadlineDays)
	var doc *domain.Document
	err := s.guard.Do(ctx, lock.NumberingKey, func() error {
		var lastErr error
		for attempt := 0; attempt < createAttempts; attempt++ {
			processNumber, err := s.numbering.GenerateProcessNumber(ctx)
			if err != nil {
				return err
			}
			trackingNumber, err := s.numbering.GenerateTrackingNumber(ctx)
			if err != nil {
				return err
			}
			candidate := &domain.Document{
				ProcessNumber:  processNumber,
				TrackingNumber: trackingNumber,
				DocumentTypeID: input.DocumentTypeID,
				Priority:       priority,
				OriginAreaID:   input.OriginAreaID,
				Status:         status,
				Subject:        subject,
				Folios:         folios,
				FilePath:       input.FilePath,
				DeadlineDays:   deadline.DeadlineDays,
				Deadline:       deadline.Deadline,
				CreatedBy:      createdBy,
			}
			entry := &domain.DocumentTracking{
				FromAreaID:   input.OriginAreaID,
				ToAreaID:     currentAreaID,
				Description:  fmt.Sprintf("Documento criado: %s (prioridade: %s)", processNumber, priority),
				DeadlineDays: deadline.DeadlineDays,
				CreatedBy:    createdBy,
			}
			candidate.Project(entry)

			lastErr = s.documents.Create(ctx, candidate, entry)
			if lastErr == nil {
				doc = candidate
				return nil
			}
			if !errors.Is(lastErr, repository.ErrDuplicateNumber) {
				return lastErr
			}
			s.logger.Warn("document number collision, retrying",
				zap.String("process_number", processNumber),
				zap.Int("attempt", attempt+1))
		}
		return lastErr
	})
	if err != nil {
		return nil, s.mapMutationError(err)
	}

	s.logger.Info("document created",
		zap.Int64("document_id", doc.ID),
		zap.String("process_number", doc.ProcessNumber),
		zap.Int64("user_id", createdBy))
	s.publish(ctx, events.EventDocumentCreated, doc.ID, createdBy, events.DocumentCreatedPayload{
		ProcessNumber:  doc.ProcessNumber,
		TrackingNumber: doc.TrackingNumber,
		Priority:       doc.Priority,
		OriginAreaID:   doc.OriginAreaID,
		DeadlineDays:   doc.DeadlineDays,
	})
	return doc, nil
}

// MoveDocument transfers a document to another area, optionally to a specific employee.
func (s *RoutingService) MoveDocument(ctx context.Context, input MoveInput, userID int64) (*domain.DocumentTracking, error) {
	var entry *domain.DocumentTracking
	err := s.guard.Do(ctx, lock.DocumentKey(input.DocumentID), func() error {
		user, doc, err := s.loadActorAndDocument(ctx, userID, input.DocumentID)
		if err != nil {
			return err
		}
		if perm := CanMove(user, doc); !perm.Allowed {
			return errorutil.NewForbidden(perm.Reason)
		}

		area, err := s.loadArea(ctx, input.ToAreaID, "destination")
		if err != nil {
			return err
		}
		if input.ToEmployeeID != nil {
			if _, err := s.loadEmployeeInArea(ctx, *input.ToEmployeeID, area.ID); err != nil {
				return err
			}
		}

		description := strings.TrimSpace(input.Description)
		if description == "" {
			description = "Encaminhado para " + area.Name
		}
		deadline := s.deadlines.ForMove(input.DeadlineDays)
		entry = &domain.DocumentTracking{
			DocumentID:     doc.ID,
			FromAreaID:     doc.CurrentAreaID,
			ToAreaID:       area.ID,
			FromEmployeeID: doc.CurrentEmployeeID,
			ToEmployeeID:   input.ToEmployeeID,
			Description:    description,
			AttachmentPath: input.AttachmentPath,
			DeadlineDays:   deadline.DeadlineDays,
			CreatedBy:      userID,
		}
		doc.Project(entry)
		doc.DeadlineDays = deadline.DeadlineDays
		doc.Deadline = deadline.Deadline
		return s.documents.ApplyTransition(ctx, doc, entry)
	})
	if err != nil {
		return nil, s.mapMutationError(err)
	}

	s.logger.Info("document moved",
		zap.Int64("document_id", entry.DocumentID),
		zap.Int64("to_area_id", entry.ToAreaID),
		zap.Int64("user_id", userID))
	s.publish(ctx, events.EventDocumentMoved, entry.DocumentID, userID, events.DocumentMovedPayload{
		TrackingID:     entry.ID,
		FromAreaID:     entry.FromAreaID,
		ToAreaID:       entry.ToAreaID,
		FromEmployeeID: entry.FromEmployeeID,
		ToEmployeeID:   entry.ToEmployeeID,
		DeadlineDays:   entry.DeadlineDays,
	})
	return entry, nil
}

// AssignDocument hands a document to an employee of its current area.
func (s *RoutingService) AssignDocument(ctx context.Context, documentID, employeeID, userID int64) (*domain.DocumentTracking, error) {
	var entry *domain.DocumentTracking
	err := s.guard.Do(ctx, lock.DocumentKey(documentID), func() error {
		user, doc, err := s.loadActorAndDocument(ctx, userID, documentID)
		if err != nil {
			return err
		}
		if perm := CanMove(user, doc); !perm.Allowed {
			return errorutil.NewForbidden(perm.Reason)
		}
		employee, err := s.loadEmployeeInArea(ctx, employeeID, doc.CurrentAreaID)
		if err != nil {
			return err
		}

		entry = &domain.DocumentTracking{
			DocumentID:     doc.ID,
			FromAreaID:     doc.CurrentAreaID,
			ToAreaID:       doc.CurrentAreaID,
			FromEmployeeID: doc.CurrentEmployeeID,
			ToEmployeeID:   &employee.ID,
			Description:    "Atribuído a " + employee.FullName,
			CreatedBy:      userID,
		}
		doc.Project(entry)
		return s.documents.ApplyTransition(ctx, doc, entry)
	})
	if err != nil {
		return nil, s.mapMutationError(err)
	}

	s.logger.Info("document assigned",
		zap.Int64("document_id", documentID),
		zap.Int64("employee_id", employeeID),
		zap.Int64("user_id", userID))
	s.publish(ctx, events.EventDocumentAssigned, documentID, userID, events.DocumentAssignedPayload{
		TrackingID:     entry.ID,
		AreaID:         entry.ToAreaID,
		FromEmployeeID: entry.FromEmployeeID,
		EmployeeID:     employeeID,
	})
	return entry, nil
}

// UpdateDocumentStatus changes the lifecycle status without moving the document.
func (s *RoutingService) UpdateDocumentStatus(ctx context.Context, documentID int64, status domain.DocumentStatus, userID int64) (*domain.Document, error) {
	var (
		doc       *domain.Document
		oldStatus domain.DocumentStatus
	)
	err := s.guard.Do(ctx, lock.DocumentKey(documentID), func() error {
		user, current, err := s.loadActorAndDocument(ctx, userID, documentID)
		if err != nil {
			return err
		}
		if perm := CanMove(user, current); !perm.Allowed {
			return errorutil.NewForbidden(perm.Reason)
		}
		if !status.IsValid() {
			return errorutil.NewValidationError("invalid status", map[string]any{
				"status":  status,
				"allowed": domain.AllStatuses,
			})
		}
		if !s.statuses.Allows(current.Status, status) {
			return errorutil.NewValidationError("status transition not allowed", map[string]any{
				"from": current.Status,
				"to":   status,
			})
		}

		entry := &domain.DocumentTracking{
			DocumentID:     current.ID,
			FromAreaID:     current.CurrentAreaID,
			ToAreaID:       current.CurrentAreaID,
			FromEmployeeID: current.CurrentEmployeeID,
			ToEmployeeID:   current.CurrentEmployeeID,
			Description:    fmt.Sprintf("Status alterado para: %s", status),
			CreatedBy:      userID,
		}
		oldStatus = current.Status
		current.Status = status
		current.Project(entry)
		if err := s.documents.ApplyTransition(ctx, current, entry); err != nil {
			return err
		}
		doc = current
		return nil
	})
	if err != nil {
		return nil, s.mapMutationError(err)
	}

	s.logger.Info("document status changed",
		zap.Int64("document_id", documentID),
		zap.String("status", string(status)),
		zap.Int64("user_id", userID))
	s.publish(ctx, events.EventDocumentStatusChanged, documentID, userID, events.DocumentStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: status,
	})
	return doc, nil
}

// DeleteDocument removes a document that never left its creation step.
func (s *RoutingService) DeleteDocument(ctx context.Context, documentID, userID int64) error {
	var processNumber string
	err := s.guard.Do(ctx, lock.DocumentKey(documentID), func() error {
		user, doc, err := s.loadActorAndDocument(ctx, userID, documentID)
		if err != nil {
			return err
		}
		entries, err := s.tracking.CountByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}
		if perm := CanDelete(user, doc, entries); !perm.Allowed {
			return errorutil.NewForbidden(perm.Reason)
		}
		processNumber = doc.ProcessNumber
		return s.documents.Delete(ctx, doc.ID, s.cascadeDelete)
	})
	if err != nil {
		return s.mapMutationError(err)
	}

	s.logger.Info("document deleted",
		zap.Int64("document_id", documentID),
		zap.Bool("ledger_removed", s.cascadeDelete),
		zap.Int64("user_id", userID))
	s.publish(ctx, events.EventDocumentDeleted, documentID, userID, events.DocumentDeletedPayload{
		ProcessNumber: processNumber,
		LedgerRemoved: s.cascadeDelete,
	})
	return nil
}

// ListDocumentsForUser returns every document for administrators and the
// documents currently in the user's area for everyone else.
func (s *RoutingService) ListDocumentsForUser(ctx context.Context, userID int64) ([]domain.Document, error) {
	return s.SearchDocuments(ctx, userID, repository.DocumentFilter{})
}

// SearchDocuments applies filter within the documents visible to the user.
// The area restriction of non-administrators always wins over filter.CurrentAreaID.
func (s *RoutingService) SearchDocuments(ctx context.Context, userID int64, filter repository.DocumentFilter) ([]domain.Document, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	switch {
	case user.IsAdmin():
	case user.AreaID != nil:
		filter.CurrentAreaID = user.AreaID
	default:
		return []domain.Document{}, nil
	}
	docs, err := s.documents.List(ctx, filter)
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

// GetDocument returns a document visible to the user.
func (s *RoutingService) GetDocument(ctx context.Context, documentID, userID int64) (*domain.Document, error) {
	user, doc, err := s.loadActorAndDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if !canView(user, doc) {
		return nil, errorutil.NewForbidden(ReasonNotInArea)
	}
	return doc, nil
}

// GetDocumentHistory returns the ledger of a document visible to the user, oldest first.
func (s *RoutingService) GetDocumentHistory(ctx context.Context, documentID, userID int64) (domain.Ledger, error) {
	if _, err := s.GetDocument(ctx, documentID, userID); err != nil {
		return nil, err
	}
	ledger, err := s.tracking.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	ledger.Sort()
	return ledger, nil
}

// GetDocumentsNearDeadline lists documents whose deadline falls within the next days days, inclusive.
func (s *RoutingService) GetDocumentsNearDeadline(ctx context.Context, days int) ([]domain.Document, error) {
	if days < 0 {
		return nil, errorutil.NewValidationError("days must not be negative", map[string]any{"days": days})
	}
	now := s.clock()
	docs, err := s.documents.ListWithDeadlineBetween(ctx, now, s.deadlines.DeadlineDate(now, days))
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

// GetDocumentsNearDeadlineForUser is GetDocumentsNearDeadline restricted to
// the documents the user may view.
func (s *RoutingService) GetDocumentsNearDeadlineForUser(ctx context.Context, userID int64, days int) ([]domain.Document, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	docs, err := s.GetDocumentsNearDeadline(ctx, days)
	if err != nil || user.IsAdmin() {
		return docs, err
	}
	visible := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if canView(user, &doc) {
			visible = append(visible, doc)
		}
	}
	return visible, nil
}

func (s *RoutingService) loadActorAndDocument(ctx context.Context, userID, documentID int64) (*domain.User, *domain.Document, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, notFoundOr(err, "user")
	}
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, notFoundOr(err, "document")
	}
	return user, doc, nil
}

func (s *RoutingService) loadArea(ctx context.Context, areaID int64, role string) (*domain.Area, error) {
	area, err := s.areas.GetByID(ctx, areaID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errorutil.NewReferentialError(role+" area does not exist", map[string]any{"area_id": areaID})
	}
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	if !area.IsActive {
		return nil, errorutil.NewReferentialError(role+" area is inactive", map[string]any{"area_id": areaID})
	}
	return area, nil
}

func (s *RoutingService) loadEmployeeInArea(ctx context.Context, employeeID, areaID int64) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errorutil.NewReferentialError("employee does not exist", map[string]any{"employee_id": employeeID})
	}
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	if !employee.IsActive {
		return nil, errorutil.NewReferentialError("employee is inactive", map[string]any{"employee_id": employeeID})
	}
	if employee.AreaID != areaID {
		return nil, errorutil.NewReferentialError("employee does not belong to the area", map[string]any{
			"employee_id": employeeID,
			"area_id":     areaID,
		})
	}
	return employee, nil
}

// mapMutationError turns storage and lock failures into domain errors.
func (s *RoutingService) mapMutationError(err error) error {
	var domainErr *errorutil.DomainError
	switch {
	case errors.As(err, &domainErr):
		return domainErr
	case errors.Is(err, repository.ErrVersionConflict):
		return errorutil.NewConflict("document was modified by another request", nil)
	case errors.Is(err, lock.ErrLockTimeout):
		return errorutil.NewConflict("document busy", nil)
	case errors.Is(err, repository.ErrDuplicateNumber):
		return errorutil.NewConflict("could not allocate a unique document number", nil)
	case errors.Is(err, repository.ErrReferenceNotFound):
		return errorutil.NewReferentialError("referenced record does not exist", nil)
	case errors.Is(err, pgx.ErrNoRows):
		return errorutil.NewNotFound("document", nil)
	}
	s.logger.Error("document mutation failed", zap.Error(err))
	return errorutil.NewInternalError(err)
}

func (s *RoutingService) publish(ctx context.Context, eventType events.EventType, documentID, userID int64, payload any) {
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		DocumentID:  documentID,
		ActorUserID: userID,
		Timestamp:   s.clock(),
		Payload:     payload,
	})
	if err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

func canView(user *domain.User, doc *domain.Document) bool {
	if user.IsAdmin() {
		return true
	}
	return user.AreaID != nil && *user.AreaID == doc.CurrentAreaID
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errorutil.NewNotFound(resource, nil)
	}
	return errorutil.ToDomainError(err)
}
