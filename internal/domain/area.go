package domain

import "time"

// Area represents an organizational unit that holds documents.
type Area struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
