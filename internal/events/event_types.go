package events

import (
	"time"

	"github.com/spec-kit/document-tracking/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDocumentCreated       EventType = "document_created"
	EventDocumentMoved         EventType = "document_moved"
	EventDocumentAssigned      EventType = "document_assigned"
	EventDocumentStatusChanged EventType = "document_status_changed"
	EventDocumentDeleted       EventType = "document_deleted"
)

// Event represents a domain event emitted after a committed mutation.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	DocumentID  int64     `json:"document_id"`
	ActorUserID int64     `json:"actor_user_id"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// DocumentCreatedPayload payload.
type DocumentCreatedPayload struct {
	ProcessNumber  string          `json:"process_number"`
	TrackingNumber string          `json:"tracking_number"`
	Priority       domain.Priority `json:"priority"`
	OriginAreaID   int64           `json:"origin_area_id"`
	DeadlineDays   *int            `json:"deadline_days,omitempty"`
}

// DocumentMovedPayload payload.
type DocumentMovedPayload struct {
	TrackingID     int64  `json:"tracking_id"`
	FromAreaID     int64  `json:"from_area_id"`
	ToAreaID       int64  `json:"to_area_id"`
	FromEmployeeID *int64 `json:"from_employee_id,omitempty"`
	ToEmployeeID   *int64 `json:"to_employee_id,omitempty"`
	DeadlineDays   *int   `json:"deadline_days,omitempty"`
}

// DocumentAssignedPayload payload.
type DocumentAssignedPayload struct {
	TrackingID     int64  `json:"tracking_id"`
	AreaID         int64  `json:"area_id"`
	FromEmployeeID *int64 `json:"from_employee_id,omitempty"`
	EmployeeID     int64  `json:"employee_id"`
}

// DocumentStatusChangedPayload payload.
type DocumentStatusChangedPayload struct {
	OldStatus domain.DocumentStatus `json:"old_status"`
	NewStatus domain.DocumentStatus `json:"new_status"`
}

// DocumentDeletedPayload payload.
type DocumentDeletedPayload struct {
	ProcessNumber string `json:"process_number"`
	LedgerRemoved bool   `json:"ledger_removed"`
}
