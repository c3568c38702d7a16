package favourites

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for list and item persistence.
//
// Composite mutations (CreateItem, DeleteItem, ReorderItem) must be atomic:
// an implementation performs the importance assignment, the membership
// change and the list Modified bump as one unit (a transaction, or a single
// lock acquisition for in-memory implementations). The authoritative guard
// against duplicate membership is a uniqueness constraint on
// (kind, object id, list); CreateItem reports a violation as
// ErrItemAlreadyInList.
type Repository interface {
	// List operations
	CreateList(ctx context.Context, list *List) error
	GetList(ctx context.Context, id uuid.UUID) (*List, error)
	UpdateList(ctx context.Context, list *List) error
	DeleteList(ctx context.Context, id uuid.UUID) error

	// List discovery
	ListsOwnedBy(ctx context.Context, userID uuid.UUID) ([]*List, error)
	ListsEditedBy(ctx context.Context, userID uuid.UUID) ([]*List, error)
	ListsWithMemberOrPublic(ctx context.Context, userID uuid.UUID) ([]*List, error)
	PublicLists(ctx context.Context) ([]*List, error)
	AllLists(ctx context.Context) ([]*List, error)
	ListsContainingRef(ctx context.Context, ref ContentRef) ([]*List, error)
	CountListsOwnedBy(ctx context.Context, userID uuid.UUID) (int64, error)

	// LatestTitleWithPrefix returns the most recently created title among the
	// creator's lists whose title starts with prefix, or "" when none match.
	LatestTitleWithPrefix(ctx context.Context, creatorID uuid.UUID, prefix string) (string, error)

	// Item operations. CreateItem assigns the item's importance
	// (max within the list plus one, or zero for an empty list) and bumps the
	// list's Modified timestamp.
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	GetItemByRef(ctx context.Context, listID uuid.UUID, ref ContentRef) (*Item, error)
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, listID uuid.UUID) ([]*Item, error)

	// ReorderItem moves the item at display position from to display
	// position to, shifting the blocking range by one importance unit and
	// placing the moved item adjacent to the displaced one. Display positions
	// are zero-based in importance-descending order. Fails with
	// ErrItemNotFound when a position is out of range or the item is not the
	// one at position from.
	ReorderItem(ctx context.Context, listID, itemID uuid.UUID, from, to int) error

	// Aggregation
	CountListsContainingRef(ctx context.Context, ref ContentRef) (int64, error)
	OwnersOfListsContainingRef(ctx context.Context, ref ContentRef) ([]uuid.UUID, error)
}

// EventSink defines the interface for event handling
type EventSink interface {
	// ListCreated is fired when a list is created
	ListCreated(ctx context.Context, list *List) error

	// ListUpdated is fired when a list's fields or membership change
	ListUpdated(ctx context.Context, list *List) error

	// ListDeleted is fired when a list is deleted
	ListDeleted(ctx context.Context, listID uuid.UUID) error

	// ItemAdded is fired when an item is added to a list
	ItemAdded(ctx context.Context, item *Item) error

	// ItemRemoved is fired when an item is removed from a list
	ItemRemoved(ctx context.Context, item *Item) error

	// ItemsReordered is fired after a reorder within a list
	ItemsReordered(ctx context.Context, listID uuid.UUID) error
}

// UserDirectory resolves user ids to display names for title generation.
// The surrounding application owns user records; this is the only detail the
// core ever asks about them.
type UserDirectory interface {
	DisplayName(ctx context.Context, userID uuid.UUID) (string, error)
}
