// Package resource converts untrusted request payloads into checked entity
// records and shapes entity records into response payloads.
package resource

import "fmt"

// Action selects the validator applied to a request payload.
type Action int

// Action constants.
const (
	ActionCreate Action = iota + 1
	ActionUpdate
	ActionPartialUpdate
)

// String returns the action name used in logs and errors.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionPartialUpdate:
		return "partial_update"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ErrUnsupportedAction is returned when a resource has no validator for an action.
type ErrUnsupportedAction struct {
	Resource string
	Action   Action
}

func (e ErrUnsupportedAction) Error() string {
	return fmt.Sprintf("resource: %s does not support %s", e.Resource, e.Action)
}
