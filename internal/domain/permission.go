package domain

// PermissionResult is the outcome of a movement or deletion check.
type PermissionResult struct {
	Allowed bool
	Reason  string
}

// Allow returns a granting result.
func Allow() PermissionResult {
	return PermissionResult{Allowed: true}
}

// Deny returns a refusing result carrying reason.
func Deny(reason string) PermissionResult {
	return PermissionResult{Allowed: false, Reason: reason}
}
