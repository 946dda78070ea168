package dom

import (
	"errors"
	"fmt"
)

// DOMError represents a DOM exception with a name and message.
type DOMError struct {
	Name    string
	Message string
}

func (e *DOMError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Is matches DOM errors by name so callers can use errors.Is against the
// sentinel values below.
func (e *DOMError) Is(target error) bool {
	var other *DOMError
	if !errors.As(target, &other) {
		return false
	}
	return other.Name == e.Name
}

// Sentinels for errors.Is.
var (
	ErrHierarchyRequest = &DOMError{Name: "HierarchyRequestError"}
	ErrNotFound         = &DOMError{Name: "NotFoundError"}
)

func hierarchyRequest(message string) *DOMError {
	return &DOMError{Name: ErrHierarchyRequest.Name, Message: message}
}

func notFound(message string) *DOMError {
	return &DOMError{Name: ErrNotFound.Name, Message: message}
}
