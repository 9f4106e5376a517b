package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/document-tracking/internal/domain"
	"github.com/spec-kit/document-tracking/internal/repository"
)

// Denial reasons surfaced to callers.
const (
	ReasonNotFound          = "user or document not found"
	ReasonNotInArea         = "user is not in the document's current area"
	ReasonAssignedElsewhere = "document is assigned to another employee"
	ReasonAdminOnly         = "only administrators can delete documents"
	ReasonHasHistory        = "document has movement history"
)

// CanMove decides whether user may move, assign or change the status of doc.
func CanMove(user *domain.User, doc *domain.Document) domain.PermissionResult {
	if user == nil || doc == nil {
		return domain.Deny(ReasonNotFound)
	}
	if user.IsAdmin() {
		return domain.Allow()
	}
	if user.AreaID == nil || *user.AreaID != doc.CurrentAreaID {
		return domain.Deny(ReasonNotInArea)
	}
	if doc.CurrentEmployeeID != nil && !doc.AssignedTo(user.EmployeeID) {
		return domain.Deny(ReasonAssignedElsewhere)
	}
	return domain.Allow()
}

// CanDelete decides whether user may delete doc given the size of its ledger.
func CanDelete(user *domain.User, doc *domain.Document, ledgerEntries int) domain.PermissionResult {
	if user == nil || doc == nil {
		return domain.Deny(ReasonNotFound)
	}
	if !user.IsAdmin() {
		return domain.Deny(ReasonAdminOnly)
	}
	if ledgerEntries > 1 {
		return domain.Deny(ReasonHasHistory)
	}
	return domain.Allow()
}

// PermissionValidator answers movement and deletion questions against stored state.
// It never writes.
type PermissionValidator struct {
	users     repository.UserRepository
	documents repository.DocumentRepository
	tracking  repository.TrackingRepository
}

// NewPermissionValidator builds the validator.
func NewPermissionValidator(users repository.UserRepository, documents repository.DocumentRepository, tracking repository.TrackingRepository) *PermissionValidator {
	return &PermissionValidator{users: users, documents: documents, tracking: tracking}
}

// ValidateDocumentMovement reports whether userID may move documentID.
func (v *PermissionValidator) ValidateDocumentMovement(ctx context.Context, userID, documentID int64) (domain.PermissionResult, error) {
	user, doc, err := v.load(ctx, userID, documentID)
	if err != nil {
		return domain.PermissionResult{}, err
	}
	return CanMove(user, doc), nil
}

// ValidateDocumentDeletion reports whether userID may delete documentID.
func (v *PermissionValidator) ValidateDocumentDeletion(ctx context.Context, documentID, userID int64) (domain.PermissionResult, error) {
	user, doc, err := v.load(ctx, userID, documentID)
	if err != nil {
		return domain.PermissionResult{}, err
	}
	if user == nil || doc == nil {
		return domain.Deny(ReasonNotFound), nil
	}
	entries, err := v.tracking.CountByDocument(ctx, doc.ID)
	if err != nil {
		return domain.PermissionResult{}, err
	}
	return CanDelete(user, doc, entries), nil
}

// load returns nil records for missing rows and an error only for storage failures.
func (v *PermissionValidator) load(ctx context.Context, userID, documentID int64) (*domain.User, *domain.Document, error) {
	user, err := v.users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}
	doc, err := v.documents.GetByID(ctx, documentID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}
	return user, doc, nil
}
