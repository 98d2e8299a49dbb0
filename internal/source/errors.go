package source

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a profile or posting does not exist
var ErrNotFound = errors.New("not found")

// NotFoundError names the missing record
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewProfileNotFound creates a NotFoundError for a job seeker profile
func NewProfileNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "profile", ID: id}
}

// NewPostingNotFound creates a NotFoundError for a job posting
func NewPostingNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "posting", ID: id}
}
