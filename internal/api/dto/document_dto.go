package dto

import (
	"time"

	"github.com/spec-kit/document-tracking/internal/domain"
)

// CreateDocumentRequest payload.
type CreateDocumentRequest struct {
	DocumentTypeID int64                 `json:"document_type_id"`
	Priority       domain.Priority       `json:"priority"`
	OriginAreaID   int64                 `json:"origin_area_id"`
	CurrentAreaID  *int64                `json:"current_area_id"`
	Status         domain.DocumentStatus `json:"status"`
	Subject        string                `json:"subject"`
	Folios         int                   `json:"folios"`
	FilePath       *string               `json:"file_path"`
	DeadlineDays   *int                  `json:"deadline_days"`
}

// MoveDocumentRequest payload.
type MoveDocumentRequest struct {
	ToAreaID       int64   `json:"to_area_id"`
	ToEmployeeID   *int64  `json:"to_employee_id"`
	Description    string  `json:"description"`
	AttachmentPath *string `json:"attachment_path"`
	DeadlineDays   *int    `json:"deadline_days"`
}

// AssignDocumentRequest payload.
type AssignDocumentRequest struct {
	EmployeeID int64 `json:"employee_id"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.DocumentStatus `json:"status"`
}

// DocumentResponse describes a document.
type DocumentResponse struct {
	ID                int64                 `json:"id"`
	ProcessNumber     string                `json:"process_number"`
	TrackingNumber    string                `json:"tracking_number"`
	DocumentTypeID    int64                 `json:"document_type_id"`
	Priority          domain.Priority       `json:"priority"`
	OriginAreaID      int64                 `json:"origin_area_id"`
	CurrentAreaID     int64                 `json:"current_area_id"`
	CurrentEmployeeID *int64                `json:"current_employee_id"`
	Status            domain.DocumentStatus `json:"status"`
	Subject           string                `json:"subject"`
	Folios            int                   `json:"folios"`
	FilePath          *string               `json:"file_path"`
	DeadlineDays      *int                  `json:"deadline_days"`
	Deadline          *time.Time            `json:"deadline"`
	CreatedBy         int64                 `json:"created_by"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	Version           int64                 `json:"version"`
}

// TrackingResponse describes a ledger entry.
type TrackingResponse struct {
	ID             int64     `json:"id"`
	DocumentID     int64     `json:"document_id"`
	FromAreaID     int64     `json:"from_area_id"`
	ToAreaID       int64     `json:"to_area_id"`
	FromEmployeeID *int64    `json:"from_employee_id"`
	ToEmployeeID   *int64    `json:"to_employee_id"`
	Description    string    `json:"description"`
	AttachmentPath *string   `json:"attachment_path"`
	DeadlineDays   *int      `json:"deadline_days"`
	CreatedBy      int64     `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// PermissionResponse reports the caller's rights on a document.
type PermissionResponse struct {
	CanMove      bool   `json:"can_move"`
	MoveReason   string `json:"move_reason,omitempty"`
	CanDelete    bool   `json:"can_delete"`
	DeleteReason string `json:"delete_reason,omitempty"`
}

// NewDocumentResponse maps a document.
func NewDocumentResponse(doc *domain.Document) DocumentResponse {
	return DocumentResponse{
		ID:                doc.ID,
		ProcessNumber:     doc.ProcessNumber,
		TrackingNumber:    doc.TrackingNumber,
		DocumentTypeID:    doc.DocumentTypeID,
		Priority:          doc.Priority,
		OriginAreaID:      doc.OriginAreaID,
		CurrentAreaID:     doc.CurrentAreaID,
		CurrentEmployeeID: doc.CurrentEmployeeID,
		Status:            doc.Status,
		Subject:           doc.Subject,
		Folios:            doc.Folios,
		FilePath:          doc.FilePath,
		DeadlineDays:      doc.DeadlineDays,
		Deadline:          doc.Deadline,
		CreatedBy:         doc.CreatedBy,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
		Version:           doc.Version,
	}
}

// NewDocumentList maps a slice of documents.
func NewDocumentList(docs []domain.Document) []DocumentResponse {
	items := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		items = append(items, NewDocumentResponse(&docs[i]))
	}
	return items
}

// NewTrackingResponse maps a ledger entry.
func NewTrackingResponse(entry *domain.DocumentTracking) TrackingResponse {
	return TrackingResponse{
		ID:             entry.ID,
		DocumentID:     entry.DocumentID,
		FromAreaID:     entry.FromAreaID,
		ToAreaID:       entry.ToAreaID,
		FromEmployeeID: entry.FromEmployeeID,
		ToEmployeeID:   entry.ToEmployeeID,
		Description:    entry.Description,
		AttachmentPath: entry.AttachmentPath,
		DeadlineDays:   entry.DeadlineDays,
		CreatedBy:      entry.CreatedBy,
		CreatedAt:      entry.CreatedAt,
	}
}

// NewLedgerResponse maps a ledger.
func NewLedgerResponse(ledger domain.Ledger) []TrackingResponse {
	items := make([]TrackingResponse, 0, len(ledger))
	for i := range ledger {
		items = append(items, NewTrackingResponse(&ledger[i]))
	}
	return items
}
