package filter

import (
	"errors"
	"fmt"
)

// Error reports a rejected filter parameter. It only ever names the public
// parameter, never the storage field behind it.
type Error struct {
	Param  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid filter %s: %s", e.Param, e.Reason)
}

func invalid(param, reason string) *Error {
	return &Error{Param: param, Reason: reason}
}

// AsError extracts a filter error from err, if there is one
func AsError(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
