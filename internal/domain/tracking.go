package domain

import (
	"sort"
	"time"
)

// DocumentTracking is an immutable ledger entry recorded for every document mutation.
type DocumentTracking struct {
	ID             int64
	DocumentID     int64
	FromAreaID     int64
	ToAreaID       int64
	FromEmployeeID *int64
	ToEmployeeID   *int64
	Description    string
	AttachmentPath *string
	// DeadlineDays is the day count applied at this step.
	DeadlineDays *int
	CreatedBy    int64
	CreatedAt    time.Time
}

// Ledger is the ordered history of a document.
type Ledger []DocumentTracking

// Sort orders entries by creation time, using the id to break ties.
func (l Ledger) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].CreatedAt.Equal(l[j].CreatedAt) {
			return l[i].ID < l[j].ID
		}
		return l[i].CreatedAt.Before(l[j].CreatedAt)
	})
}

// Tail returns the most recent entry, or nil for an empty ledger.
func (l Ledger) Tail() *DocumentTracking {
	if len(l) == 0 {
		return nil
	}
	return &l[len(l)-1]
}

// ProjectionMatches reports whether the document location equals the ledger tail.
func (l Ledger) ProjectionMatches(doc *Document) bool {
	tail := l.Tail()
	if tail == nil || doc == nil {
		return false
	}
	if tail.ToAreaID != doc.CurrentAreaID {
		return false
	}
	if tail.ToEmployeeID == nil || doc.CurrentEmployeeID == nil {
		return tail.ToEmployeeID == nil && doc.CurrentEmployeeID == nil
	}
	return *tail.ToEmployeeID == *doc.CurrentEmployeeID
}
