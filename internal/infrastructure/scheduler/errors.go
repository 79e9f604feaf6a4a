package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when interacting with a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
)
