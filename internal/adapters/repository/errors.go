package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("lineup not found")
	ErrNoReport       = errors.New("no report has been saved")
	ErrInvalidLimit   = errors.New("invalid limit")
	ErrUnknownMetric  = errors.New("unknown metric")
	ErrUnsupportedDSN = errors.New("unsupported sink dsn")
)
