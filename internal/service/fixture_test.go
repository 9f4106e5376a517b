package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/document-tracking/internal/domain"
	"github.com/spec-kit/document-tracking/internal/events"
	"github.com/spec-kit/document-tracking/internal/lock"
	"github.com/spec-kit/document-tracking/internal/repository/memory"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

// tickClock advances one second per call so ledger entries get distinct timestamps.
type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store  *memory.Store
	svc    *RoutingService
	events *recorder
	locker *lock.Local

	areaA, areaB, closed *domain.Area
	empA1, empA2, empB   *domain.Employee

	admin, opA1, opA2, opB, viewer *domain.User
}

type fixtureOption func(*RoutingDependencies)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	clock := &tickClock{now: fixedNow}
	f := &fixture{store: memory.NewStore(clock.Now), events: &recorder{}, locker: lock.NewLocal()}

	f.areaA = f.area(t, "Mesa de Partes", true)
	f.areaB = f.area(t, "Assessoria Jurídica", true)
	f.closed = f.area(t, "Arquivo Antigo", false)

	f.empA1 = f.employee(t, f.areaA.ID, "11111111", "Ana Souza")
	f.empA2 = f.employee(t, f.areaA.ID, "22222222", "Bruno Lima")
	f.empB = f.employee(t, f.areaB.ID, "33333333", "Carla Dias")

	f.admin = f.user(t, "admin", domain.RoleAdministrator, nil, nil)
	f.opA1 = f.user(t, "ana", domain.RoleOperator, &f.areaA.ID, &f.empA1.ID)
	f.opA2 = f.user(t, "bruno", domain.RoleOperator, &f.areaA.ID, &f.empA2.ID)
	f.opB = f.user(t, "carla", domain.RoleOperator, &f.areaB.ID, &f.empB.ID)
	f.viewer = f.user(t, "visitante", domain.RoleViewer, nil, nil)

	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{
		events.EventDocumentCreated,
		events.EventDocumentMoved,
		events.EventDocumentAssigned,
		events.EventDocumentStatusChanged,
		events.EventDocumentDeleted,
	} {
		dispatcher.Subscribe(et, f.events.handle)
	}

	deps := RoutingDependencies{
		Documents:  f.store.Documents(),
		Tracking:   f.store.Tracking(),
		Areas:      f.store.Areas(),
		Employees:  f.store.Employees(),
		Users:      f.store.Users(),
		Dispatcher: dispatcher,
		Guard:      lock.NewGuard(f.locker, time.Minute, 5*time.Second, time.Millisecond),
		Clock:      func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.svc = NewRoutingService(deps)
	return f
}

func (f *fixture) area(t *testing.T, name string, active bool) *domain.Area {
	t.Helper()
	area := &domain.Area{Name: name, IsActive: active}
	require.NoError(t, f.store.Areas().Create(context.Background(), area))
	return area
}

func (f *fixture) employee(t *testing.T, areaID int64, dni, name string) *domain.Employee {
	t.Helper()
	employee := &domain.Employee{AreaID: areaID, DNI: dni, FullName: name, IsActive: true}
	require.NoError(t, f.store.Employees().Create(context.Background(), employee))
	return employee
}

func (f *fixture) user(t *testing.T, username string, role domain.UserRole, areaID, employeeID *int64) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Role: role, AreaID: areaID, EmployeeID: employeeID, IsActive: true, PasswordHash: "x"}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

// document creates a Normal priority document held by areaA.
func (f *fixture) document(t *testing.T) *domain.Document {
	t.Helper()
	doc, err := f.svc.CreateDocument(context.Background(), CreateDocumentInput{
		DocumentTypeID: 1,
		OriginAreaID:   f.areaA.ID,
		Subject:        "Pedido de informação",
	}, f.admin.ID)
	require.NoError(t, err)
	return doc
}

func (f *fixture) ledger(t *testing.T, documentID int64) domain.Ledger {
	t.Helper()
	ledger, err := f.store.Tracking().ListByDocument(context.Background(), documentID)
	require.NoError(t, err)
	ledger.Sort()
	return ledger
}

func (f *fixture) reload(t *testing.T, documentID int64) *domain.Document {
	t.Helper()
	doc, err := f.store.Documents().GetByID(context.Background(), documentID)
	require.NoError(t, err)
	return doc
}

func intPtr(v int) *int { return &v }
