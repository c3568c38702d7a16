package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/glamkit/glamkit-favourites/pkg/favourites"
	"github.com/google/uuid"
)

// Repository implements favourites.Repository using in-memory storage.
// Composite operations run under a single write-lock acquisition, which
// gives them the same atomicity the Postgres implementation gets from
// transactions.
type Repository struct {
	mu          sync.RWMutex
	lists       map[uuid.UUID]*favourites.List
	items       map[uuid.UUID]*favourites.Item
	itemsByList map[uuid.UUID][]uuid.UUID // list_id -> []item_id
	itemsByRef  map[string]uuid.UUID      // "list|kind|id" -> item_id
}

// New creates a new in-memory repository
func New() favourites.Repository {
	return &Repository{
		lists:       make(map[uuid.UUID]*favourites.List),
		items:       make(map[uuid.UUID]*favourites.Item),
		itemsByList: make(map[uuid.UUID][]uuid.UUID),
		itemsByRef:  make(map[string]uuid.UUID),
	}
}

func refKey(listID uuid.UUID, ref favourites.ContentRef) string {
	return fmt.Sprintf("%s|%s|%s", listID, ref.Kind, ref.ObjectID)
}

// copyList returns a deep copy so callers cannot mutate stored state.
func copyList(list *favourites.List) *favourites.List {
	listCopy := *list
	listCopy.Owners = append([]uuid.UUID(nil), list.Owners...)
	listCopy.Editors = append([]uuid.UUID(nil), list.Editors...)
	listCopy.Viewers = append([]uuid.UUID(nil), list.Viewers...)
	listCopy.AllowedKinds = append([]string(nil), list.AllowedKinds...)
	return &listCopy
}

func copyItem(item *favourites.Item) *favourites.Item {
	itemCopy := *item
	return &itemCopy
}

// sortListsByModified orders newest-modified first, the display order of
// every list query.
func sortListsByModified(lists []*favourites.List) {
	sort.Slice(lists, func(i, j int) bool {
		return lists[i].Modified.After(lists[j].Modified)
	})
}

// orderedItems returns the stored items of a list in display order:
// importance descending, newest created first among equals.
func (r *Repository) orderedItems(listID uuid.UUID) []*favourites.Item {
	ids := r.itemsByList[listID]
	items := make([]*favourites.Item, 0, len(ids))
	for _, id := range ids {
		if item, exists := r.items[id]; exists {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Importance != items[j].Importance {
			return items[i].Importance > items[j].Importance
		}
		return items[i].Created.After(items[j].Created)
	})
	return items
}

// List operations

func (r *Repository) CreateList(ctx context.Context, list *favourites.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lists[list.ID] = copyList(list)
	return nil
}

func (r *Repository) GetList(ctx context.Context, id uuid.UUID) (*favourites.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, exists := r.lists[id]
	if !exists {
		return nil, favourites.ErrListNotFound
	}
	return copyList(list), nil
}

func (r *Repository) UpdateList(ctx context.Context, list *favourites.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lists[list.ID]; !exists {
		return favourites.ErrListNotFound
	}
	r.lists[list.ID] = copyList(list)
	return nil
}

func (r *Repository) DeleteList(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, exists := r.lists[id]
	if !exists {
		return favourites.ErrListNotFound
	}

	// Items are exclusively owned by their list; deletion cascades.
	for _, itemID := range r.itemsByList[id] {
		if item, ok := r.items[itemID]; ok {
			delete(r.itemsByRef, refKey(id, item.Ref))
			delete(r.items, itemID)
		}
	}
	delete(r.itemsByList, id)
	delete(r.lists, list.ID)
	return nil
}

// List discovery

func (r *Repository) filterLists(match func(*favourites.List) bool) []*favourites.List {
	var result []*favourites.List
	for _, list := range r.lists {
		if match(list) {
			result = append(result, copyList(list))
		}
	}
	sortListsByModified(result)
	return result
}

func (r *Repository) ListsOwnedBy(ctx context.Context, userID uuid.UUID) ([]*favourites.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterLists(func(l *favourites.List) bool { return l.IsOwner(userID) }), nil
}

func (r *Repository) ListsEditedBy(ctx context.Context, userID uuid.UUID) ([]*favourites.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterLists(func(l *favourites.List) bool { return l.IsEditor(userID) }), nil
}

func (r *Repository) ListsWithMemberOrPublic(ctx context.Context, userID uuid.UUID) ([]*favourites.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterLists(func(l *favourites.List) bool {
		return l.IsPublic || l.IsOwner(userID) || l.IsEditor(userID) || l.IsViewer(userID)
	}), nil
}

func (r *Repository) PublicLists(ctx context.Context) ([]*favourites.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterLists(func(l *favourites.List) bool { return l.IsPublic }), nil
}

func (r *Repository) AllLists(ctx context.Context) ([]*favourites.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterLists(func(l *favourites.List) bool { return true }), nil
}

func (r *Repository) ListsContainingRef(ctx context.Context, ref favourites.ContentRef) ([]*favourites.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	containing := make(map[uuid.UUID]bool)
	for _, item := range r.items {
		if item.Ref == ref {
			containing[item.ListID] = true
		}
	}
	return r.filterLists(func(l *favourites.List) bool { return containing[l.ID] }), nil
}

func (r *Repository) CountListsOwnedBy(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, list := range r.lists {
		if list.IsOwner(userID) {
			count++
		}
	}
	return count, nil
}

func (r *Repository) LatestTitleWithPrefix(ctx context.Context, creatorID uuid.UUID, prefix string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		latest  string
		created time.Time
	)
	for _, list := range r.lists {
		if list.CreatorID != creatorID || !strings.HasPrefix(list.Title, prefix) {
			continue
		}
		if list.Created.After(created) || (list.Created.Equal(created) && list.Title > latest) {
			latest = list.Title
			created = list.Created
		}
	}
	return latest, nil
}

// Item operations

func (r *Repository) CreateItem(ctx context.Context, item *favourites.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, exists := r.lists[item.ListID]
	if !exists {
		return favourites.ErrListNotFound
	}
	key := refKey(item.ListID, item.Ref)
	if _, exists := r.itemsByRef[key]; exists {
		return favourites.ErrItemAlreadyInList
	}

	// New members go first: max importance in the list plus one, zero for an
	// empty list.
	item.Importance = 0
	for _, existingID := range r.itemsByList[item.ListID] {
		if existing, ok := r.items[existingID]; ok && existing.Importance+1 > item.Importance {
			item.Importance = existing.Importance + 1
		}
	}

	r.items[item.ID] = copyItem(item)
	r.itemsByList[item.ListID] = append(r.itemsByList[item.ListID], item.ID)
	r.itemsByRef[key] = item.ID
	list.Modified = time.Now().UTC()
	return nil
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*favourites.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, favourites.ErrItemNotFound
	}
	return copyItem(item), nil
}

func (r *Repository) GetItemByRef(ctx context.Context, listID uuid.UUID, ref favourites.ContentRef) (*favourites.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemID, exists := r.itemsByRef[refKey(listID, ref)]
	if !exists {
		return nil, favourites.ErrNotInList
	}
	item, exists := r.items[itemID]
	if !exists {
		return nil, favourites.ErrNotInList
	}
	return copyItem(item), nil
}

func (r *Repository) UpdateItem(ctx context.Context, item *favourites.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return favourites.ErrItemNotFound
	}
	r.items[item.ID] = copyItem(item)
	if list, exists := r.lists[item.ListID]; exists {
		list.Modified = time.Now().UTC()
	}
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists {
		return favourites.ErrItemNotFound
	}

	delete(r.itemsByRef, refKey(item.ListID, item.Ref))
	delete(r.items, id)

	ids := r.itemsByList[item.ListID]
	for i, candidate := range ids {
		if candidate == id {
			r.itemsByList[item.ListID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}

	if list, exists := r.lists[item.ListID]; exists {
		list.Modified = time.Now().UTC()
	}
	return nil
}

func (r *Repository) ListItems(ctx context.Context, listID uuid.UUID) ([]*favourites.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := r.orderedItems(listID)
	result := make([]*favourites.Item, 0, len(ordered))
	for _, item := range ordered {
		result = append(result, copyItem(item))
	}
	return result, nil
}

func (r *Repository) ReorderItem(ctx context.Context, listID, itemID uuid.UUID, from, to int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, exists := r.lists[listID]
	if !exists {
		return favourites.ErrListNotFound
	}

	ordered := r.orderedItems(listID)
	if from < 0 || from >= len(ordered) || to < 0 || to >= len(ordered) {
		return fmt.Errorf("position out of range: %w", favourites.ErrItemNotFound)
	}
	moved := ordered[from]
	if moved.ID != itemID {
		return fmt.Errorf("item not at position %d: %w", from, favourites.ErrItemNotFound)
	}
	if from == to {
		return nil
	}

	// Shift the blocking side of the target by one unit away from the
	// vacated slot, then park the moved item adjacent to the target. Shifted
	// items keep their relative order, so no duplicate importances appear.
	target := ordered[to]
	if to < from {
		for _, item := range ordered {
			if item.ID != moved.ID && item.Importance > target.Importance {
				item.Importance++
			}
		}
		moved.Importance = target.Importance + 1
	} else {
		for _, item := range ordered {
			if item.ID != moved.ID && item.Importance < target.Importance {
				item.Importance--
			}
		}
		moved.Importance = target.Importance - 1
	}

	list.Modified = time.Now().UTC()
	return nil
}

// Aggregation

func (r *Repository) CountListsContainingRef(ctx context.Context, ref favourites.ContentRef) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, item := range r.items {
		if item.Ref == ref {
			count++
		}
	}
	return count, nil
}

func (r *Repository) OwnersOfListsContainingRef(ctx context.Context, ref favourites.ContentRef) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	var owners []uuid.UUID
	for _, item := range r.items {
		if item.Ref != ref {
			continue
		}
		list, exists := r.lists[item.ListID]
		if !exists {
			continue
		}
		for _, ownerID := range list.Owners {
			if !seen[ownerID] {
				seen[ownerID] = true
				owners = append(owners, ownerID)
			}
		}
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].String() < owners[j].String() })
	return owners, nil
}
