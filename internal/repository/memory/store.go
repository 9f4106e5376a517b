// Package memory provides an in-process implementation of the repository
// contracts. It backs the test suites and runs the service when no database
// is configured.
package memory

import (
	"sync"
	"time"

	"github.com/spec-kit/document-tracking/internal/domain"
	"github.com/spec-kit/document-tracking/internal/repository"
)

// Store holds every table behind a single mutex.
type Store struct {
	mu    sync.RWMutex
	clock func() time.Time

	documentTypes map[int64]string
	documents     map[int64]domain.Document
	tracking      []domain.DocumentTracking
	areas         map[int64]domain.Area
	employees     map[int64]domain.Employee
	users         map[int64]domain.User

	nextDocumentID int64
	nextTrackingID int64
	nextAreaID     int64
	nextEmployeeID int64
	nextUserID     int64
}

// seededDocumentTypes mirrors the rows inserted by the initial migration.
var seededDocumentTypes = []string{"Oficio", "Memorando", "Solicitação", "Relatório"}

// NewStore creates a store holding only the seeded document types. A nil clock defaults to time.Now.
func NewStore(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	documentTypes := make(map[int64]string, len(seededDocumentTypes))
	for i, name := range seededDocumentTypes {
		documentTypes[int64(i+1)] = name
	}
	return &Store{
		clock:         clock,
		documentTypes: documentTypes,
		documents:     make(map[int64]domain.Document),
		areas:         make(map[int64]domain.Area),
		employees:     make(map[int64]domain.Employee),
		users:         make(map[int64]domain.User),
	}
}

// Documents exposes the document repository view.
func (s *Store) Documents() repository.DocumentRepository { return &documentRepo{s} }

// Tracking exposes the ledger repository view.
func (s *Store) Tracking() repository.TrackingRepository { return &trackingRepo{s} }

// Areas exposes the area repository view.
func (s *Store) Areas() repository.AreaRepository { return &areaRepo{s} }

// Employees exposes the employee repository view.
func (s *Store) Employees() repository.EmployeeRepository { return &employeeRepo{s} }

// Users exposes the user repository view.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

func (s *Store) now() time.Time {
	return s.clock().UTC()
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneDocument(doc domain.Document) domain.Document {
	doc.CurrentEmployeeID = cloneInt64(doc.CurrentEmployeeID)
	doc.FilePath = cloneString(doc.FilePath)
	doc.DeadlineDays = cloneInt(doc.DeadlineDays)
	doc.Deadline = cloneTime(doc.Deadline)
	return doc
}

func cloneEntry(entry domain.DocumentTracking) domain.DocumentTracking {
	entry.FromEmployeeID = cloneInt64(entry.FromEmployeeID)
	entry.ToEmployeeID = cloneInt64(entry.ToEmployeeID)
	entry.AttachmentPath = cloneString(entry.AttachmentPath)
	entry.DeadlineDays = cloneInt(entry.DeadlineDays)
	return entry
}

func cloneUser(user domain.User) domain.User {
	user.AreaID = cloneInt64(user.AreaID)
	user.EmployeeID = cloneInt64(user.EmployeeID)
	return user
}
