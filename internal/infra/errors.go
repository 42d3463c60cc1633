package infra

import "github.com/pkg/errors"

// ErrCommandFailed matches errors returned by a command handler. The webhook
// acknowledges those; any other processing error is answered with 500.
var ErrCommandFailed = errors.New("command failed")

type commandError struct {
	err error
}

func (e commandError) Error() string { return e.err.Error() }

func (e commandError) Unwrap() error { return e.err }

func (e commandError) Is(target error) bool { return target == ErrCommandFailed }

// CommandFailure marks err as a command handler failure, keeping its chain intact.
func CommandFailure(err error) error {
	if err == nil {
		return nil
	}
	return commandError{err: err}
}
