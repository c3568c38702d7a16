package favourites

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the favourites library. It is the
// operation surface the surrounding web layer consumes; that layer resolves
// the acting user and passes content references as raw (kind, id) pairs.
//
// Mutating operations verify the relevant permission predicate against the
// acting user and fail with ErrPermissionDenied, so callers may rely on the
// core as the final gate even when they also check predicates up front.
type Service interface {
	// List operations
	CreateList(ctx context.Context, req CreateListRequest) (*List, error)
	CreateListFromItem(ctx context.Context, req CreateListFromItemRequest) (*List, error)
	EnsureDefaultList(ctx context.Context, req EnsureDefaultListRequest) (*List, error)
	GetList(ctx context.Context, id uuid.UUID) (*List, error)
	UpdateList(ctx context.Context, req UpdateListRequest) error
	DeleteList(ctx context.Context, req DeleteListRequest) error

	// Item operations
	AddItem(ctx context.Context, req AddItemRequest) (*Item, error)
	RemoveItem(ctx context.Context, req RemoveItemRequest) error
	UpdateItemDescription(ctx context.Context, req UpdateItemRequest) (*Item, error)
	SwapItems(ctx context.Context, req SwapItemsRequest) error
	Contains(ctx context.Context, listID uuid.UUID, ref ContentRef) (bool, error)
	GetItemByRef(ctx context.Context, listID uuid.UUID, ref ContentRef) (*Item, error)
	ListEntries(ctx context.Context, listID uuid.UUID) ([]*ListEntry, error)
	ItemAt(ctx context.Context, listID uuid.UUID, index int) (*ListEntry, error)

	// List discovery
	ListsOwnedBy(ctx context.Context, userID uuid.UUID) ([]*List, error)
	ListsEditedBy(ctx context.Context, userID uuid.UUID) ([]*List, error)
	ListsVisibleTo(ctx context.Context, viewer User) ([]*List, error)
	ListsOwnedByVisibleTo(ctx context.Context, ownerID uuid.UUID, viewer User) ([]*List, error)
	ListsEditableByVisibleTo(ctx context.Context, editorID uuid.UUID, viewer User) ([]*List, error)
	ListsContaining(ctx context.Context, ref ContentRef, viewer User) ([]*List, error)

	// Aggregation
	TimesFavourited(ctx context.Context, ref ContentRef) (int64, error)
	UsersFavourited(ctx context.Context, ref ContentRef) ([]uuid.UUID, error)

	// Registry access for callers resolving raw request parameters
	Registry() *Registry
}
