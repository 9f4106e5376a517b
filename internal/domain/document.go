package domain

import "time"

// Priority drives the default deadline of a document.
type Priority string

const (
	PriorityNormal        Priority = "Normal"
	PriorityDeadlineCount Priority = "Com Contagem de Prazo"
	PriorityUrgent        Priority = "Urgente"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNormal, PriorityDeadlineCount, PriorityUrgent:
		return true
	}
	return false
}

// DocumentStatus enumerates lifecycle states for documents.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "Pending"
	StatusInAnalysis DocumentStatus = "Em Análise"
	StatusInProgress DocumentStatus = "In Progress"
	StatusCompleted  DocumentStatus = "Completed"
	StatusArchived   DocumentStatus = "Archived"
)

// AllStatuses lists every known status in lifecycle order.
var AllStatuses = []DocumentStatus{
	StatusPending,
	StatusInAnalysis,
	StatusInProgress,
	StatusCompleted,
	StatusArchived,
}

// IsValid reports whether s is one of the known statuses.
func (s DocumentStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further work is expected on the document.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusArchived
}

// Document is a tracked unit of work routed between areas.
//
// CurrentAreaID and CurrentEmployeeID mirror the destination of the most
// recent tracking entry and only change through Project.
type Document struct {
	ID                int64
	ProcessNumber     string
	TrackingNumber    string
	DocumentTypeID    int64
	Priority          Priority
	OriginAreaID      int64
	CurrentAreaID     int64
	CurrentEmployeeID *int64
	Status            DocumentStatus
	Subject           string
	Folios            int
	FilePath          *string
	DeadlineDays      *int
	Deadline          *time.Time
	CreatedBy         int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
}

// Project moves the cached location of the document to the destination of entry.
func (d *Document) Project(entry *DocumentTracking) {
	d.CurrentAreaID = entry.ToAreaID
	d.CurrentEmployeeID = cloneID(entry.ToEmployeeID)
}

// AssignedTo reports whether the document is held by the given employee.
func (d *Document) AssignedTo(employeeID *int64) bool {
	if d.CurrentEmployeeID == nil {
		return false
	}
	return employeeID != nil && *employeeID == *d.CurrentEmployeeID
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
