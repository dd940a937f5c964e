package service

import (
	"errors"
	"fmt"
)

// ErrPostNotFound aborts a publish before any state mutation.
var ErrPostNotFound = errors.New("post not found")

// ValidationError marks a request the platform can never accept, e.g. an
// Instagram publish with no media.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PlatformAPIError carries a provider error payload verbatim.
type PlatformAPIError struct {
	Platform string
	Message  string
}

func (e *PlatformAPIError) Error() string {
	return fmt.Sprintf("%s API: %s", e.Platform, e.Message)
}

// ProcessingError means a media container reached ERROR state while
// processing.
type ProcessingError struct {
	ContainerID string
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("Instagram media processing failed for container %s", e.ContainerID)
}

// TimeoutError means the readiness poll exhausted its attempts without the
// container finishing.
type TimeoutError struct {
	AccountID   string
	ContainerID string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Instagram media processing timed out for account %s (container %s)", e.AccountID, e.ContainerID)
}

// PolicyViolationError rejects an edit, delete or publish attempted in a
// state that forbids it.
type PolicyViolationError struct {
	Message string
}

func (e *PolicyViolationError) Error() string {
	return e.Message
}
