package favourites

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrListNotFound indicates a list was not found
	ErrListNotFound = errors.New("list not found")

	// ErrItemNotFound indicates an item was not found
	ErrItemNotFound = errors.New("item not found")

	// ErrNotInList indicates a remove or lookup on a reference that is not a
	// member of the list
	ErrNotInList = errors.New("item not in list")

	// ErrItemAlreadyInList indicates a duplicate membership insert. The
	// service converts it into an idempotent no-op; callers of the service
	// never see it.
	ErrItemAlreadyInList = errors.New("item already in list")

	// ErrUnknownKind indicates a content kind that was never registered
	ErrUnknownKind = errors.New("unknown content kind")

	// ErrContentNotFound indicates a content id unknown to its backend
	ErrContentNotFound = errors.New("content not found")

	// ErrKindNotAllowed indicates a kind outside the list's allowed set
	ErrKindNotAllowed = errors.New("content kind not allowed for list")

	// ErrKindRegistered indicates a kind already bound to a different
	// backend. Registration happens at startup; this is fatal configuration.
	ErrKindRegistered = errors.New("content kind already registered")

	// ErrPermissionDenied indicates the acting user fails the relevant
	// permission predicate
	ErrPermissionDenied = errors.New("permission denied")
)

// ListError represents an error related to list operations
type ListError struct {
	ListID uuid.UUID
	Op     string
	Err    error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("list operation %s failed for list %s: %v", e.Op, e.ListID, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// ItemError represents an error related to item operations
type ItemError struct {
	ItemID uuid.UUID
	Op     string
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item operation %s failed for item %s: %v", e.Op, e.ItemID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
