package dto

import (
	"time"

	"github.com/spec-kit/document-tracking/internal/domain"
)

// CreateAreaRequest payload.
type CreateAreaRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateAreaRequest payload; omitted fields stay unchanged.
type UpdateAreaRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// AreaResponse describes an area.
type AreaResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateEmployeeRequest payload.
type CreateEmployeeRequest struct {
	AreaID   int64  `json:"area_id"`
	DNI      string `json:"dni"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// UpdateEmployeeRequest payload; omitted fields stay unchanged.
type UpdateEmployeeRequest struct {
	AreaID   *int64  `json:"area_id"`
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
}

// EmployeeResponse describes an employee.
type EmployeeResponse struct {
	ID        int64     `json:"id"`
	AreaID    int64     `json:"area_id"`
	DNI       string    `json:"dni"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAreaResponse maps an area.
func NewAreaResponse(area *domain.Area) AreaResponse {
	return AreaResponse{
		ID:          area.ID,
		Name:        area.Name,
		Description: area.Description,
		IsActive:    area.IsActive,
		CreatedAt:   area.CreatedAt,
		UpdatedAt:   area.UpdatedAt,
	}
}

// NewEmployeeResponse maps an employee.
func NewEmployeeResponse(employee *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        employee.ID,
		AreaID:    employee.AreaID,
		DNI:       employee.DNI,
		FullName:  employee.FullName,
		Email:     employee.Email,
		IsActive:  employee.IsActive,
		CreatedAt: employee.CreatedAt,
		UpdatedAt: employee.UpdatedAt,
	}
}
