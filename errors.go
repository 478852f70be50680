package main

import (
	"errors"
	"fmt"
)

var (
	// ErrNoColorSupport is returned by the terminal surface provider when the
	// output cannot show colors at all.
	ErrNoColorSupport = errors.New("terminal has no color support")

	// ErrSurfaceReleased is returned by surface operations after Release.
	ErrSurfaceReleased = errors.New("surface already released")

	// ErrAlreadyMounted is returned by Start on a field that was started before.
	ErrAlreadyMounted = errors.New("beam field already mounted")

	// ErrNotRunning is returned by Resize when the field has no live surface.
	ErrNotRunning = errors.New("beam field is not running")
)

// ConfigurationError reports a BeamConfig value that was rejected at construction.
type ConfigurationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid beam config: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// InitializationError reports that the rendering surface could not be set up.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("beam field initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// ResizeError reports a failed surface resize. The previous size is kept.
type ResizeError struct {
	Width  int
	Height int
	Err    error
}

func (e *ResizeError) Error() string {
	return fmt.Sprintf("resize to %dx%d failed: %v", e.Width, e.Height, e.Err)
}

func (e *ResizeError) Unwrap() error { return e.Err }
