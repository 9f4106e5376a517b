package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/document-tracking/internal/domain"
	"github.com/spec-kit/document-tracking/internal/events"
	"github.com/spec-kit/document-tracking/internal/lock"
	"github.com/spec-kit/document-tracking/internal/repository"
	"github.com/spec-kit/document-tracking/pkg/util/errorutil"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, code), "expected %s, got %v", code, err)
}

func assertReason(t *testing.T, err error, reason string) {
	t.Helper()
	assertCode(t, err, errorutil.CodeForbidden)
	domainErr := errorutil.ToDomainError(err)
	assert.Equal(t, reason, domainErr.Details["reason"])
}

func TestRouting_CreateThenMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.svc.CreateDocument(ctx, CreateDocumentInput{
		DocumentTypeID: 1,
		Priority:       domain.PriorityNormal,
		OriginAreaID:   1,
		Subject:        "Ofício 12/2026",
	}, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.CurrentAreaID)
	assert.Nil(t, doc.Deadline)
	assert.Nil(t, doc.DeadlineDays)
	assert.Len(t, f.ledger(t, doc.ID), 1)

	_, err = f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: 2, DeadlineDays: intPtr(3)}, f.admin.ID)
	require.NoError(t, err)

	moved := f.reload(t, doc.ID)
	assert.Equal(t, int64(2), moved.CurrentAreaID)
	require.NotNil(t, moved.DeadlineDays)
	assert.Equal(t, 3, *moved.DeadlineDays)
	require.NotNil(t, moved.Deadline)
	assert.WithinDuration(t, fixedNow.AddDate(0, 0, 3), *moved.Deadline, time.Second)

	ledger := f.ledger(t, doc.ID)
	require.Len(t, ledger, 2)
	assert.Equal(t, int64(1), ledger[1].FromAreaID)
	assert.Equal(t, int64(2), ledger[1].ToAreaID)
	assert.Equal(t, "Encaminhado para Assessoria Jurídica", ledger[1].Description)
	assert.True(t, ledger.ProjectionMatches(moved))

	assert.Equal(t, []events.EventType{events.EventDocumentCreated, events.EventDocumentMoved}, f.events.types())
}

func TestRouting_CreateDeadlineFromPriority(t *testing.T) {
	tests := []struct {
		name     string
		priority domain.Priority
		custom   *int
		want     *int
	}{
		{name: "urgent", priority: domain.PriorityUrgent, want: intPtr(1)},
		{name: "deadline count", priority: domain.PriorityDeadlineCount, want: intPtr(5)},
		{name: "normal", priority: domain.PriorityNormal, want: nil},
		{name: "custom overrides urgent", priority: domain.PriorityUrgent, custom: intPtr(10), want: intPtr(10)},
		{name: "custom on normal", priority: domain.PriorityNormal, custom: intPtr(10), want: intPtr(10)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			doc, err := f.svc.CreateDocument(context.Background(), CreateDocumentInput{
				DocumentTypeID: 1,
				Priority:       tc.priority,
				OriginAreaID:   f.areaA.ID,
				Subject:        "Prazo",
				DeadlineDays:   tc.custom,
			}, f.admin.ID)
			require.NoError(t, err)
			if tc.want == nil {
				assert.Nil(t, doc.DeadlineDays)
				assert.Nil(t, doc.Deadline)
				return
			}
			require.NotNil(t, doc.DeadlineDays)
			assert.Equal(t, *tc.want, *doc.DeadlineDays)
			assert.Equal(t, fixedNow.AddDate(0, 0, *tc.want), *doc.Deadline)
			assert.Equal(t, *tc.want, *f.ledger(t, doc.ID)[0].DeadlineDays)
		})
	}
}

func TestRouting_CreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	doc, err := f.svc.CreateDocument(context.Background(), CreateDocumentInput{
		DocumentTypeID: 2,
		OriginAreaID:   f.areaA.ID,
		Subject:        "  Memorando  ",
	}, f.opA1.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.PriorityNormal, doc.Priority)
	assert.Equal(t, domain.StatusInAnalysis, doc.Status)
	assert.Equal(t, 1, doc.Folios)
	assert.Equal(t, "Memorando", doc.Subject)
	assert.Equal(t, "PROC-2026-10-17-0001", doc.ProcessNumber)
	assert.Equal(t, "TRK-2026-001", doc.TrackingNumber)
	assert.Equal(t, f.opA1.ID, doc.CreatedBy)

	entry := f.ledger(t, doc.ID)[0]
	assert.Equal(t, f.areaA.ID, entry.FromAreaID)
	assert.Equal(t, f.areaA.ID, entry.ToAreaID)
	assert.Contains(t, entry.Description, doc.ProcessNumber)
	assert.Contains(t, entry.Description, string(domain.PriorityNormal))

	second := f.document(t)
	assert.Equal(t, "PROC-2026-10-17-0002", second.ProcessNumber)
	assert.Equal(t, "TRK-2026-002", second.TrackingNumber)
}

func TestRouting_CreateWithCurrentArea(t *testing.T) {
	f := newFixture(t)
	doc, err := f.svc.CreateDocument(context.Background(), CreateDocumentInput{
		DocumentTypeID: 1,
		OriginAreaID:   f.areaA.ID,
		CurrentAreaID:  &f.areaB.ID,
		Subject:        "Direto ao jurídico",
	}, f.admin.ID)
	require.NoError(t, err)

	assert.Equal(t, f.areaA.ID, doc.OriginAreaID)
	assert.Equal(t, f.areaB.ID, doc.CurrentAreaID)
	ledger := f.ledger(t, doc.ID)
	assert.Equal(t, f.areaA.ID, ledger[0].FromAreaID)
	assert.Equal(t, f.areaB.ID, ledger[0].ToAreaID)
	assert.True(t, ledger.ProjectionMatches(doc))
}

func TestRouting_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := CreateDocumentInput{DocumentTypeID: 1, OriginAreaID: f.areaA.ID, Subject: "ok"}

	blank := valid
	blank.Subject = "   "
	_, err := f.svc.CreateDocument(ctx, blank, f.admin.ID)
	assertCode(t, err, errorutil.CodeValidation)

	noType := valid
	noType.DocumentTypeID = 0
	_, err = f.svc.CreateDocument(ctx, noType, f.admin.ID)
	assertCode(t, err, errorutil.CodeValidation)

	badPriority := valid
	badPriority.Priority = "Imediato"
	_, err = f.svc.CreateDocument(ctx, badPriority, f.admin.ID)
	assertCode(t, err, errorutil.CodeValidation)

	badStatus := valid
	badStatus.Status = "Lost"
	_, err = f.svc.CreateDocument(ctx, badStatus, f.admin.ID)
	assertCode(t, err, errorutil.CodeValidation)

	unknownOrigin := valid
	unknownOrigin.OriginAreaID = 999
	_, err = f.svc.CreateDocument(ctx, unknownOrigin, f.admin.ID)
	assertCode(t, err, errorutil.CodeReferential)

	docs, err := f.store.Documents().List(ctx, repository.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRouting_MoveDeniedOutsideArea(t *testing.T) {
	f := newFixture(t)
	doc := f.document(t)

	_, err := f.svc.MoveDocument(context.Background(), MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID}, f.opB.ID)
	assertReason(t, err, ReasonNotInArea)

	_, err = f.svc.MoveDocument(context.Background(), MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID}, f.viewer.ID)
	assertReason(t, err, ReasonNotInArea)

	assert.Len(t, f.ledger(t, doc.ID), 1)
	assert.Equal(t, f.areaA.ID, f.reload(t, doc.ID).CurrentAreaID)
}

func TestRouting_MoveDeniedWhenAssignedElsewhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t)

	_, err := f.svc.AssignDocument(ctx, doc.ID, f.empA1.ID, f.admin.ID)
	require.NoError(t, err)

	_, err = f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID}, f.opA2.ID)
	assertReason(t, err, ReasonAssignedElsewhere)

	entry, err := f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID, Description: "Para parecer"}, f.opA1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Para parecer", entry.Description)
	require.NotNil(t, entry.FromEmployeeID)
	assert.Equal(t, f.empA1.ID, *entry.FromEmployeeID)
	assert.Nil(t, entry.ToEmployeeID)
	assert.Nil(t, f.reload(t, doc.ID).CurrentEmployeeID)
}

func TestRouting_MoveRejectsInvalidDestination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t)

	_, err := f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.closed.ID}, f.admin.ID)
	assertCode(t, err, errorutil.CodeReferential)

	_, err = f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: 404}, f.admin.ID)
	assertCode(t, err, errorutil.CodeReferential)

	_, err = f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID, ToEmployeeID: &f.empA1.ID}, f.admin.ID)
	assertCode(t, err, errorutil.CodeReferential)

	_, err = f.svc.MoveDocument(ctx, MoveInput{DocumentID: 404, ToAreaID: f.areaB.ID}, f.admin.ID)
	assertCode(t, err, errorutil.CodeNotFound)

	assert.Len(t, f.ledger(t, doc.ID), 1)

	entry, err := f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID, ToEmployeeID: &f.empB.ID}, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, f.empB.ID, *entry.ToEmployeeID)
	assert.Equal(t, f.empB.ID, *f.reload(t, doc.ID).CurrentEmployeeID)
}

func TestRouting_MoveRejectsInactiveEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t)

	f.empB.IsActive = false
	require.NoError(t, f.store.Employees().Update(ctx, f.empB))

	_, err := f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID, ToEmployeeID: &f.empB.ID}, f.admin.ID)
	assertCode(t, err, errorutil.CodeReferential)
}

func TestRouting_MoveWithoutDaysClearsDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc, err := f.svc.CreateDocument(ctx, CreateDocumentInput{
		DocumentTypeID: 1,
		Priority:       domain.PriorityUrgent,
		OriginAreaID:   f.areaA.ID,
		Subject:        "Urgente",
	}, f.admin.ID)
	require.NoError(t, err)
	require.NotNil(t, doc.Deadline)

	entry, err := f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID}, f.admin.ID)
	require.NoError(t, err)
	assert.Nil(t, entry.DeadlineDays)

	moved := f.reload(t, doc.ID)
	assert.Nil(t, moved.DeadlineDays)
	assert.Nil(t, moved.Deadline)
}

func TestRouting_AssignDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc, err := f.svc.CreateDocument(ctx, CreateDocumentInput{
		DocumentTypeID: 1,
		Priority:       domain.PriorityDeadlineCount,
		OriginAreaID:   f.areaA.ID,
		Subject:        "Atribuição",
	}, f.admin.ID)
	require.NoError(t, err)

	entry, err := f.svc.AssignDocument(ctx, doc.ID, f.empA2.ID, f.opA1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Atribuído a Bruno Lima", entry.Description)
	assert.Equal(t, f.areaA.ID, entry.FromAreaID)
	assert.Equal(t, f.areaA.ID, entry.ToAreaID)
	assert.Nil(t, entry.DeadlineDays)

	assigned := f.reload(t, doc.ID)
	assert.Equal(t, f.empA2.ID, *assigned.CurrentEmployeeID)
	assert.Equal(t, doc.Deadline, assigned.Deadline)
	assert.Equal(t, 5, *assigned.DeadlineDays)

	_, err = f.svc.AssignDocument(ctx, doc.ID, f.empB.ID, f.admin.ID)
	assertCode(t, err, errorutil.CodeReferential)

	_, err = f.svc.AssignDocument(ctx, doc.ID, f.empA1.ID, f.opA1.ID)
	assertReason(t, err, ReasonAssignedElsewhere)
}

func TestRouting_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t)

	updated, err := f.svc.UpdateDocumentStatus(ctx, doc.ID, domain.StatusCompleted, f.opA1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	// the default policy allows reopening
	_, err = f.svc.UpdateDocumentStatus(ctx, doc.ID, domain.StatusPending, f.opA1.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateDocumentStatus(ctx, doc.ID, "Perdido", f.opA1.ID)
	assertCode(t, err, errorutil.CodeValidation)

	_, err = f.svc.UpdateDocumentStatus(ctx, doc.ID, domain.StatusArchived, f.opB.ID)
	assertReason(t, err, ReasonNotInArea)

	ledger := f.ledger(t, doc.ID)
	require.Len(t, ledger, 3)
	assert.Equal(t, "Status alterado para: Completed", ledger[1].Description)
	assert.Equal(t, f.areaA.ID, ledger[1].FromAreaID)
	assert.Equal(t, f.areaA.ID, ledger[1].ToAreaID)
	assert.True(t, ledger.ProjectionMatches(f.reload(t, doc.ID)))
}

func TestRouting_UpdateStatusStrictPolicy(t *testing.T) {
	f := newFixture(t, func(d *RoutingDependencies) { d.StatusPolicy = StrictTransitions })
	ctx := context.Background()
	doc := f.document(t)

	_, err := f.svc.UpdateDocumentStatus(ctx, doc.ID, domain.StatusCompleted, f.admin.ID)
	assertCode(t, err, errorutil.CodeValidation)

	_, err = f.svc.UpdateDocumentStatus(ctx, doc.ID, domain.StatusInProgress, f.admin.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateDocumentStatus(ctx, doc.ID, domain.StatusCompleted, f.admin.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateDocumentStatus(ctx, doc.ID, domain.StatusPending, f.admin.ID)
	assertCode(t, err, errorutil.CodeValidation)
}

func TestRouting_DeleteRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fresh := f.document(t)
	assertReason(t, f.svc.DeleteDocument(ctx, fresh.ID, f.opA1.ID), ReasonAdminOnly)
	require.NoError(t, f.svc.DeleteDocument(ctx, fresh.ID, f.admin.ID))
	_, err := f.store.Documents().GetByID(ctx, fresh.ID)
	assert.Error(t, err)
	assert.Len(t, f.ledger(t, fresh.ID), 1, "ledger rows are kept without cascade")

	moved := f.document(t)
	_, err = f.svc.MoveDocument(ctx, MoveInput{DocumentID: moved.ID, ToAreaID: f.areaB.ID}, f.admin.ID)
	require.NoError(t, err)
	assertReason(t, f.svc.DeleteDocument(ctx, moved.ID, f.admin.ID), ReasonHasHistory)
	assertReason(t, f.svc.DeleteDocument(ctx, moved.ID, f.opB.ID), ReasonAdminOnly)

	assertCode(t, f.svc.DeleteDocument(ctx, fresh.ID, f.admin.ID), errorutil.CodeNotFound)
}

func TestRouting_DeleteCascade(t *testing.T) {
	f := newFixture(t, func(d *RoutingDependencies) { d.CascadeDelete = true })
	doc := f.document(t)

	require.NoError(t, f.svc.DeleteDocument(context.Background(), doc.ID, f.admin.ID))
	assert.Empty(t, f.ledger(t, doc.ID))
	assert.Contains(t, f.events.types(), events.EventDocumentDeleted)
}

func TestRouting_ListAndVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inA := f.document(t)
	inB := f.document(t)
	_, err := f.svc.MoveDocument(ctx, MoveInput{DocumentID: inB.ID, ToAreaID: f.areaB.ID}, f.admin.ID)
	require.NoError(t, err)

	all, err := f.svc.ListDocumentsForUser(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	areaA, err := f.svc.ListDocumentsForUser(ctx, f.opA1.ID)
	require.NoError(t, err)
	require.Len(t, areaA, 1)
	assert.Equal(t, inA.ID, areaA[0].ID)

	none, err := f.svc.ListDocumentsForUser(ctx, f.viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	// an operator cannot widen the search beyond their own area
	spoofed, err := f.svc.SearchDocuments(ctx, f.opA1.ID, repository.DocumentFilter{CurrentAreaID: &f.areaB.ID})
	require.NoError(t, err)
	require.Len(t, spoofed, 1)
	assert.Equal(t, inA.ID, spoofed[0].ID)

	_, err = f.svc.GetDocument(ctx, inB.ID, f.opA1.ID)
	assertCode(t, err, errorutil.CodeForbidden)
	_, err = f.svc.GetDocumentHistory(ctx, inB.ID, f.opB.ID)
	require.NoError(t, err)

	_, err = f.svc.ListDocumentsForUser(ctx, 999)
	assertCode(t, err, errorutil.CodeNotFound)
}

func TestRouting_HistoryIsChronological(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t)

	_, err := f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID}, f.admin.ID)
	require.NoError(t, err)
	_, err = f.svc.AssignDocument(ctx, doc.ID, f.empB.ID, f.admin.ID)
	require.NoError(t, err)
	_, err = f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.areaA.ID}, f.opB.ID)
	require.NoError(t, err)

	history, err := f.svc.GetDocumentHistory(ctx, doc.ID, f.admin.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].CreatedAt.Before(history[i-1].CreatedAt))
		assert.Equal(t, history[i-1].ToAreaID, history[i].FromAreaID)
	}
	assert.True(t, history.ProjectionMatches(f.reload(t, doc.ID)))
}

func TestRouting_NearDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	urgent, err := f.svc.CreateDocument(ctx, CreateDocumentInput{
		DocumentTypeID: 1, Priority: domain.PriorityUrgent, OriginAreaID: f.areaA.ID, Subject: "u",
	}, f.admin.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateDocument(ctx, CreateDocumentInput{
		DocumentTypeID: 1, Priority: domain.PriorityDeadlineCount, OriginAreaID: f.areaA.ID, Subject: "c",
	}, f.admin.ID)
	require.NoError(t, err)
	f.document(t)

	soon, err := f.svc.GetDocumentsNearDeadline(ctx, 1)
	require.NoError(t, err)
	require.Len(t, soon, 1)
	assert.Equal(t, urgent.ID, soon[0].ID)

	week, err := f.svc.GetDocumentsNearDeadline(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, week, 2)

	_, err = f.svc.GetDocumentsNearDeadline(ctx, -1)
	assertCode(t, err, errorutil.CodeValidation)
}

func TestRouting_NearDeadlineForUserFollowsArea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	urgent, err := f.svc.CreateDocument(ctx, CreateDocumentInput{
		DocumentTypeID: 1, Priority: domain.PriorityUrgent, OriginAreaID: f.areaA.ID, Subject: "Sigiloso",
	}, f.admin.ID)
	require.NoError(t, err)

	for _, u := range []*domain.User{f.admin, f.opA1} {
		docs, err := f.svc.GetDocumentsNearDeadlineForUser(ctx, u.ID, 3)
		require.NoError(t, err)
		require.Len(t, docs, 1, u.Username)
		assert.Equal(t, urgent.ID, docs[0].ID)
	}
	for _, u := range []*domain.User{f.opB, f.viewer} {
		docs, err := f.svc.GetDocumentsNearDeadlineForUser(ctx, u.ID, 3)
		require.NoError(t, err)
		assert.Empty(t, docs, u.Username)
	}

	_, err = f.svc.MoveDocument(ctx, MoveInput{DocumentID: urgent.ID, ToAreaID: f.areaB.ID}, f.admin.ID)
	require.NoError(t, err)
	docs, err := f.svc.GetDocumentsNearDeadlineForUser(ctx, f.opB.ID, 3)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = f.svc.GetDocumentsNearDeadlineForUser(ctx, 999, 3)
	assertCode(t, err, errorutil.CodeNotFound)
	_, err = f.svc.GetDocumentsNearDeadlineForUser(ctx, f.opA1.ID, -1)
	assertCode(t, err, errorutil.CodeValidation)
}

func TestRouting_ConcurrentMovesKeepProjection(t *testing.T) {
	f := newFixture(t)
	doc := f.document(t)
	targets := []int64{f.areaA.ID, f.areaB.ID}

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.MoveDocument(context.Background(), MoveInput{DocumentID: doc.ID, ToAreaID: targets[i%2]}, f.admin.ID)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	ledger := f.ledger(t, doc.ID)
	assert.Len(t, ledger, 11)
	assert.True(t, ledger.ProjectionMatches(f.reload(t, doc.ID)))
	assert.Equal(t, int64(11), f.reload(t, doc.ID).Version)
}

func TestRouting_BusyDocumentIsConflict(t *testing.T) {
	locker := lock.NewLocal()
	f := newFixture(t, func(d *RoutingDependencies) {
		d.Guard = lock.NewGuard(locker, time.Minute, 0, time.Millisecond)
	})
	ctx := context.Background()
	doc := f.document(t)

	token, held, err := locker.Acquire(ctx, lock.DocumentKey(doc.ID), time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	_, err = f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID}, f.admin.ID)
	assertCode(t, err, errorutil.CodeConflict)

	require.NoError(t, locker.Release(ctx, lock.DocumentKey(doc.ID), token))
	_, err = f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID}, f.admin.ID)
	require.NoError(t, err)
}

type flakyDocuments struct {
	repository.DocumentRepository
	createFailures int
	staleWrites    bool
}

func (d *flakyDocuments) Create(ctx context.Context, doc *domain.Document, initial *domain.DocumentTracking) error {
	if d.createFailures > 0 {
		d.createFailures--
		return repository.ErrDuplicateNumber
	}
	return d.DocumentRepository.Create(ctx, doc, initial)
}

func (d *flakyDocuments) ApplyTransition(ctx context.Context, doc *domain.Document, entry *domain.DocumentTracking) error {
	if d.staleWrites {
		return repository.ErrVersionConflict
	}
	return d.DocumentRepository.ApplyTransition(ctx, doc, entry)
}

func TestRouting_CreateRetriesDuplicateNumbers(t *testing.T) {
	flaky := &flakyDocuments{createFailures: 2}
	f := newFixture(t, func(d *RoutingDependencies) {
		flaky.DocumentRepository = d.Documents
		d.Documents = flaky
	})
	doc := f.document(t)
	assert.NotZero(t, doc.ID)

	flaky.createFailures = 3
	_, err := f.svc.CreateDocument(context.Background(), CreateDocumentInput{
		DocumentTypeID: 1, OriginAreaID: f.areaA.ID, Subject: "x",
	}, f.admin.ID)
	assertCode(t, err, errorutil.CodeConflict)
}

// laggingSequence reports a stale highest process sequence once, as a second
// instance that has not yet seen the latest insert would.
type laggingSequence struct {
	repository.DocumentRepository
	stale int
}

func (d *laggingSequence) MaxProcessSequence(ctx context.Context, prefix string) (int, error) {
	if d.stale > 0 {
		d.stale--
		return 0, nil
	}
	return d.DocumentRepository.MaxProcessSequence(ctx, prefix)
}

func TestRouting_CreateRecoversFromStoreDuplicate(t *testing.T) {
	lagging := &laggingSequence{}
	f := newFixture(t, func(d *RoutingDependencies) {
		lagging.DocumentRepository = d.Documents
		d.Documents = lagging
	})
	first := f.document(t)
	require.Equal(t, "PROC-2026-10-17-0001", first.ProcessNumber)

	lagging.stale = 1
	second := f.document(t)
	assert.Equal(t, "PROC-2026-10-17-0002", second.ProcessNumber)
	assert.NotEqual(t, first.TrackingNumber, second.TrackingNumber)

	docs, err := f.store.Documents().List(context.Background(), repository.DocumentFilter{})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestRouting_NumbersAreNotReusedAfterDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.document(t)
	second := f.document(t)
	require.Equal(t, "PROC-2026-10-17-0002", second.ProcessNumber)

	require.NoError(t, f.svc.DeleteDocument(ctx, first.ID, f.admin.ID))

	third := f.document(t)
	assert.Equal(t, "PROC-2026-10-17-0003", third.ProcessNumber)
	assert.Equal(t, "TRK-2026-003", third.TrackingNumber)
	assert.Len(t, f.events.types(), 4)
}

func TestRouting_CreateRejectsUnknownDocumentType(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateDocument(context.Background(), CreateDocumentInput{
		DocumentTypeID: 99, OriginAreaID: f.areaA.ID, Subject: "x",
	}, f.admin.ID)
	assertCode(t, err, errorutil.CodeReferential)
}

func TestRouting_VersionConflictIsReported(t *testing.T) {
	flaky := &flakyDocuments{}
	f := newFixture(t, func(d *RoutingDependencies) {
		flaky.DocumentRepository = d.Documents
		d.Documents = flaky
	})
	doc := f.document(t)

	flaky.staleWrites = true
	_, err := f.svc.MoveDocument(context.Background(), MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID}, f.admin.ID)
	assertCode(t, err, errorutil.CodeConflict)
	assert.Len(t, f.ledger(t, doc.ID), 1)
}
