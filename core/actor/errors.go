package actor

import "errors"

var (
	// ErrStopped is returned when a command is submitted to an actor whose run loop has exited.
	// It signals a lifecycle bug in the caller rather than a recoverable condition.
	ErrStopped = errors.New("actor is stopped")

	// ErrAlreadyStarted is returned when Start is called on a running actor.
	ErrAlreadyStarted = errors.New("actor already started")

	// ErrNotRunning is returned by Healthcheck when the run loop is not active.
	ErrNotRunning = errors.New("actor not running")

	// ErrHealthcheckFailed wraps every health check failure.
	ErrHealthcheckFailed = errors.New("healthcheck failed")
)

// ErrPanicked is returned to a caller whose command panicked on the actor goroutine.
var ErrPanicked = errors.New("actor command panicked")
