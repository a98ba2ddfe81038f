package util

import (
	"errors"
)

// Temporary is implemented by errors which are expected to go away on their
// own: network failures, 5xx responses and the like. The refresh pipeline
// logs them less loudly and retries them where it makes sense.
type Temporary interface {
	Temporary() bool
}

func IsTemporaryError(err error) bool {
	for err := err; err != nil; err = errors.Unwrap(err) {
		if err, ok := err.(Temporary); ok && err.Temporary() {
			return true
		}
	}
	return false
}

type temporaryError struct {
	error error
}

var _ Temporary = temporaryError{}

func MakeTemporaryError(err error) error {
	return temporaryError{error: err}
}

func (e temporaryError) Temporary() bool {
	return true
}

func (e temporaryError) Error() string {
	return e.error.Error()
}

func (e temporaryError) Unwrap() error {
	return e.error
}
