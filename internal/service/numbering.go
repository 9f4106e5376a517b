package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/document-tracking/internal/repository"
)

// Numbering issues process and tracking numbers.
//
// The sequence is the highest existing suffix for the prefix plus one, so gaps
// left by deleted documents are never reused. Callers serialize allocation and
// rely on the unique constraints to catch collisions.
type Numbering struct {
	documents repository.DocumentRepository
	clock     func() time.Time
	location  *time.Location
}

// NewNumbering builds the generator.
func NewNumbering(documents repository.DocumentRepository, clock func() time.Time, location *time.Location) *Numbering {
	if clock == nil {
		clock = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &Numbering{documents: documents, clock: clock, location: location}
}

// GenerateProcessNumber returns PROC-YYYY-MM-DD-NNNN for today.
func (n *Numbering) GenerateProcessNumber(ctx context.Context) (string, error) {
	prefix := "PROC-" + n.clock().In(n.location).Format("2006-01-02") + "-"
	last, err := n.documents.MaxProcessSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("read process sequence: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, last+1), nil
}

// GenerateTrackingNumber returns TRK-YYYY-NNN for the current year.
func (n *Numbering) GenerateTrackingNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("TRK-%d-", n.clock().In(n.location).Year())
	last, err := n.documents.MaxTrackingSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("read tracking sequence: %w", err)
	}
	return fmt.Sprintf("%s%03d", prefix, last+1), nil
}
