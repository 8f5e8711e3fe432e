package cfnstack

import (
	"github.com/pkg/errors"
)

// The distinct failure conditions callers branch on. Everything else is
// reported as a wrapped error with operation context.
var (
	ErrStackAlreadyExists = errors.New("stack already exists")
	ErrStackNotFound      = errors.New("stack does not exist")
	ErrEmptyChangeSet     = errors.New("change set is empty, stack is up to date")
	ErrNoUpdatesToPerform = errors.New("no updates are to be performed, stack is up to date")
)

// IsEmptyChangeSet reports whether err means the stack is already up to
// date, either via an empty change set or a direct no-op update.
func IsEmptyChangeSet(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrEmptyChangeSet || cause == ErrNoUpdatesToPerform
}

// IsStackNotFound reports whether err means the target stack does not exist.
func IsStackNotFound(err error) bool {
	return errors.Cause(err) == ErrStackNotFound
}
