package resource

import "fmt"

// capacityError signals that a request could not be admitted even after full
// cascading reclamation. A normal, recoverable outcome for 507 mapping.
type capacityError struct {
	componentID string
	requested   int64
}

func (e capacityError) Error() string {
	return fmt.Sprintf("capacity exhausted: %q requested %d bytes", e.componentID, e.requested)
}

// IsCapacityExceeded reports whether err indicates an unsatisfiable request.
func IsCapacityExceeded(err error) bool {
	_, ok := err.(capacityError)
	return ok
}

// unknownComponentError signals an operation on an unregistered component id.
type unknownComponentError struct{ id string }

func (e unknownComponentError) Error() string { return "component not found: " + e.id }

// ErrUnknownComponent constructs an unknownComponentError.
func ErrUnknownComponent(id string) error { return unknownComponentError{id: id} }

// IsUnknownComponent reports whether the error indicates a missing component id.
func IsUnknownComponent(err error) bool {
	_, ok := err.(unknownComponentError)
	return ok
}

// invalidArgumentError signals a programmer error (negative size, out-of-range
// priority or importance). Rejected before any state mutation.
type invalidArgumentError struct{ msg string }

func (e invalidArgumentError) Error() string { return e.msg }

// ErrInvalidArgument constructs an invalidArgumentError.
func ErrInvalidArgument(msg string) error { return invalidArgumentError{msg: msg} }

// IsInvalidArgument reports whether err indicates a rejected argument.
func IsInvalidArgument(err error) bool {
	_, ok := err.(invalidArgumentError)
	return ok
}
