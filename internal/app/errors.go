package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoIntervals = errors.New("no interval sizes configured")
	ErrBadSchedule = errors.New("invalid refresh schedule")
)
