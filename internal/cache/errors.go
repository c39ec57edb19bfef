package cache

import "fmt"

// noSpaceError signals that eviction could not free enough room for a put.
type noSpaceError struct {
	key      string
	required int64
}

func (e noSpaceError) Error() string {
	return fmt.Sprintf("cache full: cannot free %d bytes for %q", e.required, e.key)
}

// IsNoSpace reports whether err means the cache could not make room.
func IsNoSpace(err error) bool {
	_, ok := err.(noSpaceError)
	return ok
}

// invalidArgumentError signals a caller bug (out-of-range importance).
type invalidArgumentError struct{ msg string }

func (e invalidArgumentError) Error() string { return e.msg }

// ErrInvalidArgument constructs an invalidArgumentError.
func ErrInvalidArgument(msg string) error { return invalidArgumentError{msg: msg} }

// IsInvalidArgument reports whether err indicates a rejected argument.
func IsInvalidArgument(err error) bool {
	_, ok := err.(invalidArgumentError)
	return ok
}
