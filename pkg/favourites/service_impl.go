package favourites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository   Repository
	registry     *Registry
	eventSink    EventSink
	users        UserDirectory
	titleFormat  string
	defaultTitle string
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithRegistry sets the content registry for the service
func WithRegistry(registry *Registry) Option {
	return func(s *service) {
		s.registry = registry
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithUserDirectory sets the display-name resolver used for generated titles
func WithUserDirectory(users UserDirectory) Option {
	return func(s *service) {
		s.users = users
	}
}

// WithTitleFormat overrides the format used to derive list titles from an
// owner's display name
func WithTitleFormat(format string) Option {
	return func(s *service) {
		s.titleFormat = format
	}
}

// WithDefaultTitle overrides the title used when no display name resolves
func WithDefaultTitle(title string) Option {
	return func(s *service) {
		s.defaultTitle = title
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		titleFormat:  DefaultTitleFormat,
		defaultTitle: DefaultListTitle,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.registry == nil {
		return nil, fmt.Errorf("content registry is required")
	}

	return s, nil
}

func (s *service) Registry() *Registry {
	return s.registry
}

// displayName resolves a user's display name through the directory, if one
// is configured. A miss degrades to the default title instead of failing.
func (s *service) displayName(ctx context.Context, userID uuid.UUID) string {
	if s.users == nil {
		return ""
	}
	name, err := s.users.DisplayName(ctx, userID)
	if err != nil {
		return ""
	}
	return name
}

// List operations

func (s *service) CreateList(ctx context.Context, req CreateListRequest) (*List, error) {
	if req.Actor.Anonymous {
		return nil, &ListError{Op: "create", Err: ErrPermissionDenied}
	}

	ownerID := req.Actor.ID
	ownerName := req.Actor.Name
	if req.ForUserID != nil && *req.ForUserID != req.Actor.ID {
		if !CanAddListFor(req.Actor, *req.ForUserID) {
			return nil, &ListError{Op: "create", Err: ErrPermissionDenied}
		}
		ownerID = *req.ForUserID
		ownerName = s.displayName(ctx, ownerID)
	}

	return s.createList(ctx, ownerID, ownerName, req.Title, req.Description, req.IsPublic, req.AllowedKinds)
}

func (s *service) CreateListFromItem(ctx context.Context, req CreateListFromItemRequest) (*List, error) {
	if req.Actor.Anonymous {
		return nil, &ListError{Op: "create_from_item", Err: ErrPermissionDenied}
	}
	if !s.registry.Resolvable(req.Ref.Kind) {
		return nil, &ListError{Op: "create_from_item", Err: fmt.Errorf("%w: %q", ErrUnknownKind, req.Ref.Kind)}
	}

	var allowed []string
	if req.RestrictToKind {
		allowed = []string{req.Ref.Kind}
	}

	list, err := s.createList(ctx, req.Actor.ID, req.Actor.Name, req.Title, req.Description, req.IsPublic, allowed)
	if err != nil {
		return nil, err
	}
	if _, err := s.addItemToList(ctx, list, req.Actor, req.Ref, ""); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *service) EnsureDefaultList(ctx context.Context, req EnsureDefaultListRequest) (*List, error) {
	if req.User.Anonymous {
		return nil, &ListError{Op: "ensure_default", Err: ErrPermissionDenied}
	}

	owned, err := s.repository.ListsOwnedBy(ctx, req.User.ID)
	if err != nil {
		return nil, &ListError{Op: "ensure_default", Err: err}
	}
	if len(owned) > 0 {
		return owned[0], nil
	}

	name := req.User.Name
	if name == "" {
		name = s.displayName(ctx, req.User.ID)
	}
	return s.createList(ctx, req.User.ID, name, "", "", false, nil)
}

// createList is the single construction path for lists. A blank title is
// derived from the owner's display name and decorated with an incrementing
// suffix on collision with the owner's existing titles.
func (s *service) createList(ctx context.Context, ownerID uuid.UUID, ownerName, title, description string, isPublic bool, allowedKinds []string) (*List, error) {
	id := uuid.New()

	for _, kind := range allowedKinds {
		if !s.registry.Resolvable(kind) {
			return nil, &ListError{ListID: id, Op: "create", Err: fmt.Errorf("allowed kind %q: %w", kind, ErrUnknownKind)}
		}
	}

	if title == "" {
		prefix := titlePrefix(s.titleFormat, ownerName, s.defaultTitle)
		latest, err := s.repository.LatestTitleWithPrefix(ctx, ownerID, prefix)
		if err != nil {
			return nil, &ListError{ListID: id, Op: "create", Err: err}
		}
		title = nextTitle(prefix, latest)
	}

	now := time.Now().UTC()
	list := &List{
		ID:           id,
		Title:        title,
		Description:  description,
		IsPublic:     isPublic,
		CreatorID:    ownerID,
		Owners:       []uuid.UUID{ownerID},
		AllowedKinds: allowedKinds,
		Created:      now,
		Modified:     now,
	}

	if err := s.repository.CreateList(ctx, list); err != nil {
		return nil, &ListError{ListID: list.ID, Op: "create", Err: err}
	}

	if s.eventSink != nil {
		// Sink failures never fail the operation
		_ = s.eventSink.ListCreated(ctx, list)
	}

	return list, nil
}

func (s *service) GetList(ctx context.Context, id uuid.UUID) (*List, error) {
	return s.repository.GetList(ctx, id)
}

func (s *service) UpdateList(ctx context.Context, req UpdateListRequest) error {
	current, err := s.repository.GetList(ctx, req.List.ID)
	if err != nil {
		return &ListError{ListID: req.List.ID, Op: "update", Err: err}
	}
	if !CanEditList(req.Actor, current) {
		return &ListError{ListID: current.ID, Op: "update", Err: ErrPermissionDenied}
	}

	for _, kind := range req.List.AllowedKinds {
		if !s.registry.Resolvable(kind) {
			return &ListError{ListID: current.ID, Op: "update", Err: fmt.Errorf("allowed kind %q: %w", kind, ErrUnknownKind)}
		}
	}

	updated := *req.List
	// Creator and creation time are immutable; the creator never leaves the
	// owners set.
	updated.CreatorID = current.CreatorID
	updated.Created = current.Created
	if !updated.IsOwner(updated.CreatorID) {
		updated.Owners = append(updated.Owners, updated.CreatorID)
	}
	updated.Modified = time.Now().UTC()

	if err := s.repository.UpdateList(ctx, &updated); err != nil {
		return &ListError{ListID: updated.ID, Op: "update", Err: err}
	}
	*req.List = updated

	if s.eventSink != nil {
		_ = s.eventSink.ListUpdated(ctx, &updated)
	}

	return nil
}

func (s *service) DeleteList(ctx context.Context, req DeleteListRequest) error {
	list, err := s.repository.GetList(ctx, req.ListID)
	if err != nil {
		return &ListError{ListID: req.ListID, Op: "delete", Err: err}
	}
	if !CanDeleteList(req.Actor, list) {
		return &ListError{ListID: list.ID, Op: "delete", Err: ErrPermissionDenied}
	}

	if err := s.repository.DeleteList(ctx, list.ID); err != nil {
		return &ListError{ListID: list.ID, Op: "delete", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.ListDeleted(ctx, list.ID)
	}

	// A user is never left list-less: recreate a default list when the
	// creator's last owned list just went away.
	owned, err := s.repository.CountListsOwnedBy(ctx, list.CreatorID)
	if err != nil {
		return &ListError{ListID: list.ID, Op: "delete", Err: err}
	}
	if owned == 0 {
		name := s.displayName(ctx, list.CreatorID)
		if name == "" && req.Actor.ID == list.CreatorID {
			name = req.Actor.Name
		}
		if _, err := s.createList(ctx, list.CreatorID, name, "", "", false, nil); err != nil {
			return &ListError{ListID: list.ID, Op: "delete", Err: err}
		}
	}

	return nil
}

// Item operations

func (s *service) AddItem(ctx context.Context, req AddItemRequest) (*Item, error) {
	list, err := s.repository.GetList(ctx, req.ListID)
	if err != nil {
		return nil, &ListError{ListID: req.ListID, Op: "add_item", Err: err}
	}
	if !CanAddItem(req.Actor, list) {
		return nil, &ListError{ListID: list.ID, Op: "add_item", Err: ErrPermissionDenied}
	}
	return s.addItemToList(ctx, list, req.Actor, req.Ref, req.Description)
}

func (s *service) addItemToList(ctx context.Context, list *List, actor User, ref ContentRef, description string) (*Item, error) {
	if !s.registry.Resolvable(ref.Kind) {
		return nil, &ListError{ListID: list.ID, Op: "add_item", Err: fmt.Errorf("%w: %q", ErrUnknownKind, ref.Kind)}
	}
	if !list.AllowsKind(ref.Kind) {
		return nil, &ListError{ListID: list.ID, Op: "add_item", Err: fmt.Errorf("%w: %q", ErrKindNotAllowed, ref.Kind)}
	}

	item := &Item{
		ID:          uuid.New(),
		ListID:      list.ID,
		Ref:         ref,
		Description: description,
		AddedByID:   actor.ID,
		Created:     time.Now().UTC(),
	}

	if err := s.repository.CreateItem(ctx, item); err != nil {
		if errors.Is(err, ErrItemAlreadyInList) {
			// Already a member: the unique constraint is the authoritative
			// guard, a violation is the idempotent no-op case.
			return s.repository.GetItemByRef(ctx, list.ID, ref)
		}
		return nil, &ItemError{ItemID: item.ID, Op: "add", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.ItemAdded(ctx, item)
	}

	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, req RemoveItemRequest) error {
	list, err := s.repository.GetList(ctx, req.ListID)
	if err != nil {
		return &ListError{ListID: req.ListID, Op: "remove_item", Err: err}
	}
	item, err := s.repository.GetItemByRef(ctx, list.ID, req.Ref)
	if err != nil {
		return &ListError{ListID: list.ID, Op: "remove_item", Err: err}
	}
	if !CanDeleteItem(req.Actor, item, list) {
		return &ListError{ListID: list.ID, Op: "remove_item", Err: ErrPermissionDenied}
	}

	if err := s.repository.DeleteItem(ctx, item.ID); err != nil {
		return &ItemError{ItemID: item.ID, Op: "remove", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.ItemRemoved(ctx, item)
	}

	return nil
}

func (s *service) UpdateItemDescription(ctx context.Context, req UpdateItemRequest) (*Item, error) {
	item, err := s.repository.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, &ItemError{ItemID: req.ItemID, Op: "update", Err: err}
	}
	list, err := s.repository.GetList(ctx, item.ListID)
	if err != nil {
		return nil, &ItemError{ItemID: item.ID, Op: "update", Err: err}
	}
	if !CanEditList(req.Actor, list) {
		return nil, &ItemError{ItemID: item.ID, Op: "update", Err: ErrPermissionDenied}
	}

	item.Description = req.Description
	if err := s.repository.UpdateItem(ctx, item); err != nil {
		return nil, &ItemError{ItemID: item.ID, Op: "update", Err: err}
	}
	return item, nil
}

func (s *service) SwapItems(ctx context.Context, req SwapItemsRequest) error {
	list, err := s.repository.GetList(ctx, req.ListID)
	if err != nil {
		return &ListError{ListID: req.ListID, Op: "swap_items", Err: err}
	}
	if !CanEditList(req.Actor, list) {
		return &ListError{ListID: list.ID, Op: "swap_items", Err: ErrPermissionDenied}
	}

	if err := s.repository.ReorderItem(ctx, list.ID, req.ItemID, req.From, req.To); err != nil {
		return &ListError{ListID: list.ID, Op: "swap_items", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.ItemsReordered(ctx, list.ID)
	}

	return nil
}

func (s *service) Contains(ctx context.Context, listID uuid.UUID, ref ContentRef) (bool, error) {
	_, err := s.repository.GetItemByRef(ctx, listID, ref)
	if err != nil {
		if errors.Is(err, ErrNotInList) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) GetItemByRef(ctx context.Context, listID uuid.UUID, ref ContentRef) (*Item, error) {
	return s.repository.GetItemByRef(ctx, listID, ref)
}

func (s *service) ListEntries(ctx context.Context, listID uuid.UUID) ([]*ListEntry, error) {
	items, err := s.repository.ListItems(ctx, listID)
	if err != nil {
		return nil, &ListError{ListID: listID, Op: "entries", Err: err}
	}

	entries := make([]*ListEntry, 0, len(items))
	for _, item := range items {
		entry, err := s.resolveEntry(ctx, item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *service) ItemAt(ctx context.Context, listID uuid.UUID, index int) (*ListEntry, error) {
	items, err := s.repository.ListItems(ctx, listID)
	if err != nil {
		return nil, &ListError{ListID: listID, Op: "item_at", Err: err}
	}
	if index < 0 || index >= len(items) {
		return nil, &ListError{ListID: listID, Op: "item_at", Err: fmt.Errorf("position %d: %w", index, ErrItemNotFound)}
	}
	return s.resolveEntry(ctx, items[index])
}

// resolveEntry resolves an item's content reference. A reference whose
// content has been deleted, or whose kind aged out of the configuration,
// degrades to a missing sentinel rather than an error.
func (s *service) resolveEntry(ctx context.Context, item *Item) (*ListEntry, error) {
	obj, err := s.registry.Resolve(ctx, item.Ref)
	if err != nil {
		if errors.Is(err, ErrContentNotFound) || errors.Is(err, ErrUnknownKind) {
			return &ListEntry{Item: item, Missing: true}, nil
		}
		return nil, &ItemError{ItemID: item.ID, Op: "resolve", Err: err}
	}
	return &ListEntry{Item: item, Object: obj}, nil
}

// List discovery

func (s *service) ListsOwnedBy(ctx context.Context, userID uuid.UUID) ([]*List, error) {
	return s.repository.ListsOwnedBy(ctx, userID)
}

func (s *service) ListsEditedBy(ctx context.Context, userID uuid.UUID) ([]*List, error) {
	return s.repository.ListsEditedBy(ctx, userID)
}

func (s *service) ListsVisibleTo(ctx context.Context, viewer User) ([]*List, error) {
	switch {
	case viewer.Can(CapChangeList):
		return s.repository.AllLists(ctx)
	case viewer.Anonymous:
		return s.repository.PublicLists(ctx)
	default:
		return s.repository.ListsWithMemberOrPublic(ctx, viewer.ID)
	}
}

func (s *service) ListsOwnedByVisibleTo(ctx context.Context, ownerID uuid.UUID, viewer User) ([]*List, error) {
	owned, err := s.repository.ListsOwnedBy(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return filterVisible(owned, viewer), nil
}

func (s *service) ListsEditableByVisibleTo(ctx context.Context, editorID uuid.UUID, viewer User) ([]*List, error) {
	owned, err := s.repository.ListsOwnedBy(ctx, editorID)
	if err != nil {
		return nil, err
	}
	edited, err := s.repository.ListsEditedBy(ctx, editorID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(owned))
	editable := make([]*List, 0, len(owned)+len(edited))
	for _, list := range owned {
		seen[list.ID] = true
		editable = append(editable, list)
	}
	for _, list := range edited {
		if !seen[list.ID] {
			editable = append(editable, list)
		}
	}
	return filterVisible(editable, viewer), nil
}

func (s *service) ListsContaining(ctx context.Context, ref ContentRef, viewer User) ([]*List, error) {
	containing, err := s.repository.ListsContainingRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	return filterVisible(containing, viewer), nil
}

func filterVisible(lists []*List, viewer User) []*List {
	visible := make([]*List, 0, len(lists))
	for _, list := range lists {
		if CanViewList(viewer, list) {
			visible = append(visible, list)
		}
	}
	return visible
}

// Aggregation

func (s *service) TimesFavourited(ctx context.Context, ref ContentRef) (int64, error) {
	return s.repository.CountListsContainingRef(ctx, ref)
}

func (s *service) UsersFavourited(ctx context.Context, ref ContentRef) ([]uuid.UUID, error) {
	return s.repository.OwnersOfListsContainingRef(ctx, ref)
}
