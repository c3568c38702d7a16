package favourites

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Capability is a global administrative override flag carried by a user
// identity. Capabilities are granted by the surrounding application; the
// core only reads them.
type Capability string

// Capability constants (typed).
const (
	// CapChangeList grants edit (and therefore view) access to every list.
	CapChangeList Capability = "change_list"

	// CapDeleteList grants delete access to every list.
	CapDeleteList Capability = "delete_list"

	// CapAddList allows creating lists on behalf of other users.
	CapAddList Capability = "add_list"

	// CapAddItem allows adding items to lists the user cannot otherwise edit.
	CapAddItem Capability = "add_item"

	// CapDeleteItem allows removing any item from any list.
	CapDeleteItem Capability = "delete_item"
)

// User is the caller-supplied identity an operation acts as. Users are owned
// by the surrounding application; the core never stores them.
type User struct {
	ID           uuid.UUID
	Name         string
	Anonymous    bool
	Capabilities []Capability
}

// Can reports whether the user holds the given administrative capability.
// Anonymous users hold no capabilities.
func (u User) Can(c Capability) bool {
	if u.Anonymous {
		return false
	}
	for _, held := range u.Capabilities {
		if held == c {
			return true
		}
	}
	return false
}

// AnonymousUser returns the identity used for unauthenticated callers.
func AnonymousUser() User {
	return User{Anonymous: true}
}

// ContentRef is a weak polymorphic reference to a content object: a
// registered kind tag plus an identifier opaque to this package. The
// referenced object may disappear without notice; readers surface that as a
// missing entry, never as an error.
type ContentRef struct {
	Kind     string `json:"kind"`
	ObjectID string `json:"object_id"`
}

// RefOf builds the ContentRef for a resolved content object.
func RefOf(obj Object) ContentRef {
	return ContentRef{Kind: obj.ObjectKind(), ObjectID: obj.ObjectID()}
}

func (r ContentRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ObjectID)
}

// List is a named, owned, shareable collection of content references.
//
// Owners, Editors and Viewers are membership snapshots loaded together with
// the list so that a permission decision sees one consistent state. The
// creator is always a member of Owners; the service re-asserts that on every
// save.
type List struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	IsPublic    bool        `json:"is_public"`
	CreatorID   uuid.UUID   `json:"creator_id"`
	Owners      []uuid.UUID `json:"owners"`
	Editors     []uuid.UUID `json:"editors,omitempty"`
	Viewers     []uuid.UUID `json:"viewers,omitempty"`

	// AllowedKinds optionally restricts which content kinds the list accepts.
	// Empty means any registered kind.
	AllowedKinds []string `json:"allowed_kinds,omitempty"`

	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// IsOwner reports whether the given user id is in the list's owners.
func (l *List) IsOwner(userID uuid.UUID) bool { return containsID(l.Owners, userID) }

// IsEditor reports whether the given user id is in the list's editors.
func (l *List) IsEditor(userID uuid.UUID) bool { return containsID(l.Editors, userID) }

// IsViewer reports whether the given user id is in the list's viewers.
func (l *List) IsViewer(userID uuid.UUID) bool { return containsID(l.Viewers, userID) }

// AllowsKind reports whether the list accepts items of the given kind.
// Registry validity is checked separately by the service.
func (l *List) AllowsKind(kind string) bool {
	if len(l.AllowedKinds) == 0 {
		return true
	}
	for _, k := range l.AllowedKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// Item is one membership record: a list, a weak content reference, an
// importance value defining display order (higher first), provenance and an
// optional annotation.
type Item struct {
	ID          uuid.UUID  `json:"id"`
	ListID      uuid.UUID  `json:"list_id"`
	Ref         ContentRef `json:"ref"`
	Importance  float64    `json:"importance"`
	Description string     `json:"description,omitempty"`
	AddedByID   uuid.UUID  `json:"added_by_id"`
	Created     time.Time  `json:"created"`
}

// ListEntry is one element of an iterated list: the membership record plus
// the resolved content object. Missing is set when the reference no longer
// resolves (the content was deleted by its own owner).
type ListEntry struct {
	Item    *Item  `json:"item"`
	Object  Object `json:"object,omitempty"`
	Missing bool   `json:"missing,omitempty"`
}

// ListPermissions is the derived capability set of one user against one
// list. It is computed per call and never stored or cached.
type ListPermissions struct {
	CanView    bool `json:"can_view"`
	CanEdit    bool `json:"can_edit"`
	CanDelete  bool `json:"can_delete"`
	CanAddItem bool `json:"can_add_item"`
}
