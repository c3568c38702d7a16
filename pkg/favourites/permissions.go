package favourites

import "github.com/google/uuid"

// Permission predicates. All of them are pure functions over a user identity
// and a loaded list (or item) snapshot: roles and capability flags are
// dynamic, so outcomes are recomputed per decision and never cached. A single
// loaded List carries its membership sets, which keeps one decision on one
// consistent view of the data.

// CanViewList reports whether the user may view the list: public lists are
// visible to everyone including anonymous users; otherwise the user must be
// an owner, editor or viewer, or hold the global change-list capability.
func CanViewList(u User, l *List) bool {
	if l.IsPublic {
		return true
	}
	if u.Anonymous {
		return false
	}
	if u.Can(CapChangeList) {
		return true
	}
	return l.IsOwner(u.ID) || l.IsEditor(u.ID) || l.IsViewer(u.ID)
}

// CanEditList reports whether the user may change the list's fields,
// membership and items: owners, editors, or the global change-list
// capability.
func CanEditList(u User, l *List) bool {
	if u.Anonymous {
		return false
	}
	if u.Can(CapChangeList) {
		return true
	}
	return l.IsOwner(u.ID) || l.IsEditor(u.ID)
}

// CanDeleteList reports whether the user may delete the list: owners only,
// or the global delete-list capability.
func CanDeleteList(u User, l *List) bool {
	if u.Anonymous {
		return false
	}
	if u.Can(CapDeleteList) {
		return true
	}
	return l.IsOwner(u.ID)
}

// CanAddItem reports whether the user may add items to the list.
func CanAddItem(u User, l *List) bool {
	if CanEditList(u, l) {
		return true
	}
	return !u.Anonymous && u.Can(CapAddItem)
}

// CanDeleteAnyItem reports whether the user may remove any item from the
// list regardless of who added it: owners, or the global change-list or
// delete-item capability.
func CanDeleteAnyItem(u User, l *List) bool {
	if u.Anonymous {
		return false
	}
	if u.Can(CapChangeList) || u.Can(CapDeleteItem) {
		return true
	}
	return l.IsOwner(u.ID)
}

// CanDeleteItem reports whether the user may remove the given item: the user
// who added it always may, as may anyone allowed to delete any item from the
// item's list.
func CanDeleteItem(u User, it *Item, l *List) bool {
	if u.Anonymous {
		return false
	}
	if it.AddedByID == u.ID {
		return true
	}
	return CanDeleteAnyItem(u, l)
}

// CanAddListFor reports whether the acting user may create a list owned by
// the target user: themselves, or anyone with the global add-list
// capability.
func CanAddListFor(acting User, targetID uuid.UUID) bool {
	if acting.Anonymous {
		return false
	}
	if acting.ID == targetID {
		return true
	}
	return acting.Can(CapAddList)
}

// PermissionsFor computes the full derived permission set of a user against
// a list.
func PermissionsFor(u User, l *List) ListPermissions {
	return ListPermissions{
		CanView:    CanViewList(u, l),
		CanEdit:    CanEditList(u, l),
		CanDelete:  CanDeleteList(u, l),
		CanAddItem: CanAddItem(u, l),
	}
}
