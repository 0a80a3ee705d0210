package unifyiq

import "errors"

// Error kinds of the whole system. Callers classify failures with
// errors.Is; everything that matches none of these is internal.
var (
	// ErrPlanShape marks a malformed or incomplete plan step (client-caused).
	ErrPlanShape = errors.New("invalid plan")
	// ErrInvalidArgument marks a bad priority or dimension value.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstream marks a failed or timed-out collaborator call.
	ErrUpstream = errors.New("upstream failure")
	// ErrNotFound marks a single-account lookup miss.
	ErrNotFound = errors.New("not found")
)
