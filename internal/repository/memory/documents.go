package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/document-tracking/internal/domain"
	"github.com/spec-kit/document-tracking/internal/repository"
)

type documentRepo struct {
	s *Store
}

func (r *documentRepo) Create(_ context.Context, doc *domain.Document, initial *domain.DocumentTracking) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.areas[doc.OriginAreaID]; !ok {
		return repository.ErrReferenceNotFound
	}
	if _, ok := s.areas[doc.CurrentAreaID]; !ok {
		return repository.ErrReferenceNotFound
	}
	for _, existing := range s.documents {
		if existing.ProcessNumber == doc.ProcessNumber || existing.TrackingNumber == doc.TrackingNumber {
			return repository.ErrDuplicateNumber
		}
	}
	if _, ok := s.documentTypes[doc.DocumentTypeID]; !ok {
		return repository.ErrReferenceNotFound
	}

	now := s.now()
	s.nextDocumentID++
	doc.ID = s.nextDocumentID
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.Version = 1
	s.documents[doc.ID] = cloneDocument(*doc)

	initial.DocumentID = doc.ID
	s.appendEntry(initial, now)
	return nil
}

// appendEntry requires s.mu to be held for writing.
func (s *Store) appendEntry(entry *domain.DocumentTracking, now time.Time) {
	s.nextTrackingID++
	entry.ID = s.nextTrackingID
	entry.CreatedAt = now
	s.tracking = append(s.tracking, cloneEntry(*entry))
}

func (r *documentRepo) GetByID(_ context.Context, id int64) (*domain.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	doc, ok := r.s.documents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneDocument(doc)
	return &out, nil
}

func (r *documentRepo) List(_ context.Context, filter repository.DocumentFilter) ([]domain.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.Document
	for _, doc := range r.s.documents {
		if filter.CurrentAreaID != nil && doc.CurrentAreaID != *filter.CurrentAreaID {
			continue
		}
		if filter.CurrentEmployeeID != nil && !doc.AssignedTo(filter.CurrentEmployeeID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, doc.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, doc.Priority) {
			continue
		}
		result = append(result, cloneDocument(doc))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 {
		start := filter.Offset
		if start < 0 {
			start = 0
		}
		if start > len(result) {
			start = len(result)
		}
		end := start + filter.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[start:end]
	}
	return result, nil
}

func (r *documentRepo) MaxProcessSequence(_ context.Context, prefix string) (int, error) {
	return r.maxSequence(prefix, func(doc domain.Document) string { return doc.ProcessNumber }), nil
}

func (r *documentRepo) MaxTrackingSequence(_ context.Context, prefix string) (int, error) {
	return r.maxSequence(prefix, func(doc domain.Document) string { return doc.TrackingNumber }), nil
}

func (r *documentRepo) maxSequence(prefix string, number func(domain.Document) string) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	highest := 0
	for _, doc := range r.s.documents {
		suffix, ok := strings.CutPrefix(number(doc), prefix)
		if !ok {
			continue
		}
		if seq, err := strconv.Atoi(suffix); err == nil && seq > highest {
			highest = seq
		}
	}
	return highest
}

func (r *documentRepo) ApplyTransition(_ context.Context, doc *domain.Document, entry *domain.DocumentTracking) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.documents[doc.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != doc.Version {
		return repository.ErrVersionConflict
	}
	if _, ok := s.areas[doc.CurrentAreaID]; !ok {
		return repository.ErrReferenceNotFound
	}

	now := s.now()
	stored.CurrentAreaID = doc.CurrentAreaID
	stored.CurrentEmployeeID = cloneInt64(doc.CurrentEmployeeID)
	stored.Status = doc.Status
	stored.DeadlineDays = cloneInt(doc.DeadlineDays)
	stored.Deadline = cloneTime(doc.Deadline)
	stored.UpdatedAt = now
	stored.Version++
	s.documents[doc.ID] = stored

	doc.UpdatedAt = stored.UpdatedAt
	doc.Version = stored.Version

	entry.DocumentID = doc.ID
	s.appendEntry(entry, now)
	return nil
}

func (r *documentRepo) Delete(_ context.Context, id int64, cascade bool) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.documents, id)
	if cascade {
		kept := s.tracking[:0]
		for _, entry := range s.tracking {
			if entry.DocumentID != id {
				kept = append(kept, entry)
			}
		}
		s.tracking = kept
	}
	return nil
}

func (r *documentRepo) ListWithDeadlineBetween(_ context.Context, from, to time.Time) ([]domain.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.Document
	for _, doc := range r.s.documents {
		if doc.Deadline == nil {
			continue
		}
		if doc.Deadline.Before(from) || doc.Deadline.After(to) {
			continue
		}
		result = append(result, cloneDocument(doc))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Deadline.Equal(*result[j].Deadline) {
			return result[i].ID < result[j].ID
		}
		return result[i].Deadline.Before(*result[j].Deadline)
	})
	return result, nil
}

func containsStatus(statuses []domain.DocumentStatus, status domain.DocumentStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func containsPriority(priorities []domain.Priority, priority domain.Priority) bool {
	for _, candidate := range priorities {
		if candidate == priority {
			return true
		}
	}
	return false
}

type trackingRepo struct {
	s *Store
}

func (r *trackingRepo) ListByDocument(_ context.Context, documentID int64) (domain.Ledger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ledger domain.Ledger
	for _, entry := range r.s.tracking {
		if entry.DocumentID == documentID {
			ledger = append(ledger, cloneEntry(entry))
		}
	}
	ledger.Sort()
	return ledger, nil
}

func (r *trackingRepo) CountByDocument(_ context.Context, documentID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, entry := range r.s.tracking {
		if entry.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}
