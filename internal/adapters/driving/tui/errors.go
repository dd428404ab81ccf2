package tui

import "errors"

// ErrMissingJobService is returned when the job service is not provided.
var ErrMissingJobService = errors.New("tui: job service is required")

// ErrMissingReader is returned when the spreadsheet reader is not provided.
var ErrMissingReader = errors.New("tui: spreadsheet reader is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
