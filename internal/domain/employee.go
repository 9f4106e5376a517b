package domain

import "time"

// Employee is a person affiliated with exactly one area.
type Employee struct {
	ID        int64
	AreaID    int64
	DNI       string
	FullName  string
	Email     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
