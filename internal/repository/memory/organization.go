package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/document-tracking/internal/domain"
	"github.com/spec-kit/document-tracking/internal/repository"
)

type areaRepo struct {
	s *Store
}

func (r *areaRepo) Create(_ context.Context, area *domain.Area) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.areaNameTaken(area.Name, 0) {
		return repository.ErrDuplicate
	}
	now := s.now()
	s.nextAreaID++
	area.ID = s.nextAreaID
	area.CreatedAt = now
	area.UpdatedAt = now
	s.areas[area.ID] = *area
	return nil
}

func (r *areaRepo) Update(_ context.Context, area *domain.Area) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.areas[area.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if s.areaNameTaken(area.Name, area.ID) {
		return repository.ErrDuplicate
	}
	area.CreatedAt = stored.CreatedAt
	area.UpdatedAt = s.now()
	s.areas[area.ID] = *area
	return nil
}

// areaNameTaken requires s.mu to be held.
func (s *Store) areaNameTaken(name string, except int64) bool {
	for id, existing := range s.areas {
		if id != except && strings.EqualFold(existing.Name, name) {
			return true
		}
	}
	return false
}

func (r *areaRepo) GetByID(_ context.Context, id int64) (*domain.Area, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	area, ok := r.s.areas[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &area, nil
}

func (r *areaRepo) List(_ context.Context, includeInactive bool) ([]domain.Area, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.Area
	for _, area := range r.s.areas {
		if !includeInactive && !area.IsActive {
			continue
		}
		result = append(result, area)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type employeeRepo struct {
	s *Store
}

func (r *employeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.areas[employee.AreaID]; !ok {
		return repository.ErrReferenceNotFound
	}
	if s.dniTaken(employee.DNI, 0) {
		return repository.ErrDuplicate
	}
	now := s.now()
	s.nextEmployeeID++
	employee.ID = s.nextEmployeeID
	employee.CreatedAt = now
	employee.UpdatedAt = now
	s.employees[employee.ID] = *employee
	return nil
}

func (r *employeeRepo) Update(_ context.Context, employee *domain.Employee) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.employees[employee.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if _, ok := s.areas[employee.AreaID]; !ok {
		return repository.ErrReferenceNotFound
	}
	if s.dniTaken(employee.DNI, employee.ID) {
		return repository.ErrDuplicate
	}
	employee.CreatedAt = stored.CreatedAt
	employee.UpdatedAt = s.now()
	s.employees[employee.ID] = *employee
	return nil
}

// dniTaken requires s.mu to be held.
func (s *Store) dniTaken(dni string, except int64) bool {
	for id, existing := range s.employees {
		if id != except && existing.DNI == dni {
			return true
		}
	}
	return false
}

func (r *employeeRepo) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	employee, ok := r.s.employees[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &employee, nil
}

func (r *employeeRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.Employee
	for _, employee := range r.s.employees {
		if filter.AreaID != nil && employee.AreaID != *filter.AreaID {
			continue
		}
		if filter.Active != nil && employee.IsActive != *filter.Active {
			continue
		}
		result = append(result, employee)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	if err := s.checkUserRefs(user); err != nil {
		return err
	}
	now := s.now()
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := s.checkUserRefs(user); err != nil {
		return err
	}
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = s.now()
	s.users[user.ID] = cloneUser(*user)
	return nil
}

// checkUserRefs requires s.mu to be held.
func (s *Store) checkUserRefs(user *domain.User) error {
	if user.AreaID != nil {
		if _, ok := s.areas[*user.AreaID]; !ok {
			return repository.ErrReferenceNotFound
		}
	}
	if user.EmployeeID != nil {
		if _, ok := s.employees[*user.EmployeeID]; !ok {
			return repository.ErrReferenceNotFound
		}
	}
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneUser(user)
	return &out, nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Username == username {
			out := cloneUser(user)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}
