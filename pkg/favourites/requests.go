package favourites

import "github.com/google/uuid"

// Request DTOs

// CreateListRequest contains parameters for creating a new list.
//
// When Title is empty a title is derived from the owner's display name and
// decorated with an incrementing suffix on collision. ForUserID creates the
// list on behalf of another user; the acting user then needs the add-list
// capability.
type CreateListRequest struct {
	Actor        User
	ForUserID    *uuid.UUID
	Title        string
	Description  string
	IsPublic     bool
	AllowedKinds []string
}

// CreateListFromItemRequest creates a list and adds one item as a single
// logical operation. RestrictToKind limits the new list to the item's
// content kind.
type CreateListFromItemRequest struct {
	Actor          User
	Ref            ContentRef
	Title          string
	Description    string
	IsPublic       bool
	RestrictToKind bool
}

// EnsureDefaultListRequest provisions a default list for a user who owns
// none. The user-provisioning workflow calls this right after creating a
// user record; it is also the repair pass for the at-least-one-list
// invariant.
type EnsureDefaultListRequest struct {
	User User
}

// UpdateListRequest contains parameters for updating a list's fields and
// membership. Creator and creation time are immutable; the service restores
// them from the stored list and re-asserts the creator's ownership.
type UpdateListRequest struct {
	Actor User
	List  *List
}

// DeleteListRequest deletes a list and cascades its items.
type DeleteListRequest struct {
	Actor  User
	ListID uuid.UUID
}

// AddItemRequest contains parameters for adding a content reference to a
// list. Adding a reference already in the list is an idempotent no-op.
type AddItemRequest struct {
	Actor       User
	ListID      uuid.UUID
	Ref         ContentRef
	Description string
}

// RemoveItemRequest removes a content reference from a list.
type RemoveItemRequest struct {
	Actor  User
	ListID uuid.UUID
	Ref    ContentRef
}

// UpdateItemRequest updates an item's annotation.
type UpdateItemRequest struct {
	Actor       User
	ItemID      uuid.UUID
	Description string
}

// SwapItemsRequest reorders a list: the item identified by ItemID moves from
// display position From to display position To. Positions are zero-based in
// display order (importance descending).
type SwapItemsRequest struct {
	Actor  User
	ListID uuid.UUID
	ItemID uuid.UUID
	From   int
	To     int
}
