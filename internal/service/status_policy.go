package service

import "github.com/spec-kit/document-tracking/internal/domain"

// StatusPolicy decides which status changes are legal.
type StatusPolicy interface {
	Allows(from, to domain.DocumentStatus) bool
}

// PermissiveStatusPolicy accepts any known status from any status.
type PermissiveStatusPolicy struct{}

// Allows implements StatusPolicy.
func (PermissiveStatusPolicy) Allows(_, to domain.DocumentStatus) bool {
	return to.IsValid()
}

// TransitionTable restricts changes to an explicit table.
type TransitionTable map[domain.DocumentStatus][]domain.DocumentStatus

// StrictTransitions moves documents forward only; Completed and Archived are terminal.
var StrictTransitions = TransitionTable{
	domain.StatusPending:    {domain.StatusInAnalysis, domain.StatusInProgress, domain.StatusArchived},
	domain.StatusInAnalysis: {domain.StatusInProgress, domain.StatusArchived},
	domain.StatusInProgress: {domain.StatusCompleted, domain.StatusArchived},
	domain.StatusCompleted:  {},
	domain.StatusArchived:   {},
}

// Allows implements StatusPolicy.
func (t TransitionTable) Allows(from, to domain.DocumentStatus) bool {
	for _, candidate := range t[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// StatusPolicyByName resolves the configured policy name.
func StatusPolicyByName(name string) StatusPolicy {
	if name == "strict" {
		return StrictTransitions
	}
	return PermissiveStatusPolicy{}
}
