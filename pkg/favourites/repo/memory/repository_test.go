package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glamkit/glamkit-favourites/pkg/favourites"
	"github.com/glamkit/glamkit-favourites/pkg/favourites/repo/memory"
)

func newList(creatorID uuid.UUID, title string) *favourites.List {
	now := time.Now().UTC()
	return &favourites.List{
		ID:        uuid.New(),
		Title:     title,
		CreatorID: creatorID,
		Owners:    []uuid.UUID{creatorID},
		Created:   now,
		Modified:  now,
	}
}

func newItem(listID uuid.UUID, ref favourites.ContentRef, addedBy uuid.UUID) *favourites.Item {
	return &favourites.Item{
		ID:        uuid.New(),
		ListID:    listID,
		Ref:       ref,
		AddedByID: addedBy,
		Created:   time.Now().UTC(),
	}
}

func TestListCRUD(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	creator := uuid.New()

	list := newList(creator, "Reading")
	require.NoError(t, repo.CreateList(ctx, list))

	t.Run("Get", func(t *testing.T) {
		got, err := repo.GetList(ctx, list.ID)
		require.NoError(t, err)
		assert.Equal(t, list.Title, got.Title)
		assert.Equal(t, list.Owners, got.Owners)
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		got, err := repo.GetList(ctx, list.ID)
		require.NoError(t, err)
		got.Title = "Mutated"
		got.Owners[0] = uuid.New()

		reloaded, err := repo.GetList(ctx, list.ID)
		require.NoError(t, err)
		assert.Equal(t, "Reading", reloaded.Title)
		assert.Equal(t, creator, reloaded.Owners[0])
	})

	t.Run("Update", func(t *testing.T) {
		updated, err := repo.GetList(ctx, list.ID)
		require.NoError(t, err)
		updated.Title = "Renamed"
		require.NoError(t, repo.UpdateList(ctx, updated))

		got, err := repo.GetList(ctx, list.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		missing := newList(creator, "Ghost")
		assert.ErrorIs(t, repo.UpdateList(ctx, missing), favourites.ErrListNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteList(ctx, list.ID))
		_, err := repo.GetList(ctx, list.ID)
		assert.ErrorIs(t, err, favourites.ErrListNotFound)
		assert.ErrorIs(t, repo.DeleteList(ctx, list.ID), favourites.ErrListNotFound)
	})
}

func TestDeleteListCascadesItems(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	creator := uuid.New()
	ref := favourites.ContentRef{Kind: "book", ObjectID: "dune"}

	list := newList(creator, "Doomed")
	require.NoError(t, repo.CreateList(ctx, list))
	item := newItem(list.ID, ref, creator)
	require.NoError(t, repo.CreateItem(ctx, item))

	require.NoError(t, repo.DeleteList(ctx, list.ID))

	_, err := repo.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, favourites.ErrItemNotFound)

	count, err := repo.CountListsContainingRef(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestItemImportanceAssignment(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	creator := uuid.New()

	list := newList(creator, "Ordered")
	require.NoError(t, repo.CreateList(ctx, list))

	first := newItem(list.ID, favourites.ContentRef{Kind: "book", ObjectID: "a"}, creator)
	require.NoError(t, repo.CreateItem(ctx, first))
	assert.Equal(t, 0.0, first.Importance)

	second := newItem(list.ID, favourites.ContentRef{Kind: "book", ObjectID: "b"}, creator)
	require.NoError(t, repo.CreateItem(ctx, second))
	assert.Equal(t, 1.0, second.Importance)

	// Removing the top item leaves a gap; the next insert still lands on top.
	require.NoError(t, repo.DeleteItem(ctx, second.ID))
	third := newItem(list.ID, favourites.ContentRef{Kind: "book", ObjectID: "c"}, creator)
	require.NoError(t, repo.CreateItem(ctx, third))
	assert.Equal(t, 1.0, third.Importance)

	items, err := repo.ListItems(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].Ref.ObjectID)
	assert.Equal(t, "a", items[1].Ref.ObjectID)
}

func TestDuplicateItemRejected(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	creator := uuid.New()
	ref := favourites.ContentRef{Kind: "book", ObjectID: "dune"}

	list := newList(creator, "Unique")
	require.NoError(t, repo.CreateList(ctx, list))
	require.NoError(t, repo.CreateItem(ctx, newItem(list.ID, ref, creator)))

	err := repo.CreateItem(ctx, newItem(list.ID, ref, creator))
	assert.ErrorIs(t, err, favourites.ErrItemAlreadyInList)

	// The same ref in another list is fine.
	other := newList(creator, "Other")
	require.NoError(t, repo.CreateList(ctx, other))
	assert.NoError(t, repo.CreateItem(ctx, newItem(other.ID, ref, creator)))
}

func TestCreateItemTouchesModified(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	creator := uuid.New()

	list := newList(creator, "Touched")
	list.Modified = list.Modified.Add(-time.Hour)
	list.Created = list.Created.Add(-time.Hour)
	require.NoError(t, repo.CreateList(ctx, list))

	require.NoError(t, repo.CreateItem(ctx, newItem(list.ID, favourites.ContentRef{Kind: "book", ObjectID: "a"}, creator)))

	got, err := repo.GetList(ctx, list.ID)
	require.NoError(t, err)
	assert.True(t, got.Modified.After(list.Modified))
}

func TestCreateItemMissingList(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	item := newItem(uuid.New(), favourites.ContentRef{Kind: "book", ObjectID: "a"}, uuid.New())
	assert.ErrorIs(t, repo.CreateItem(ctx, item), favourites.ErrListNotFound)
}

func TestGetItemByRef(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	creator := uuid.New()
	ref := favourites.ContentRef{Kind: "book", ObjectID: "dune"}

	list := newList(creator, "Lookup")
	require.NoError(t, repo.CreateList(ctx, list))
	item := newItem(list.ID, ref, creator)
	require.NoError(t, repo.CreateItem(ctx, item))

	got, err := repo.GetItemByRef(ctx, list.ID, ref)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = repo.GetItemByRef(ctx, list.ID, favourites.ContentRef{Kind: "book", ObjectID: "other"})
	assert.ErrorIs(t, err, favourites.ErrNotInList)

	_, err = repo.GetItemByRef(ctx, uuid.New(), ref)
	assert.ErrorIs(t, err, favourites.ErrNotInList)
}

func TestReorderItem(t *testing.T) {
	ctx := context.Background()
	creator := uuid.New()

	setup := func(t *testing.T) (favourites.Repository, *favourites.List, []uuid.UUID) {
		repo := memory.New()
		list := newList(creator, "Ordered")
		require.NoError(t, repo.CreateList(ctx, list))

		// Display order after adds: e d c b a
		var displayed []uuid.UUID
		for _, id := range []string{"a", "b", "c", "d", "e"} {
			item := newItem(list.ID, favourites.ContentRef{Kind: "book", ObjectID: id}, creator)
			require.NoError(t, repo.CreateItem(ctx, item))
			displayed = append([]uuid.UUID{item.ID}, displayed...)
		}
		return repo, list, displayed
	}

	order := func(t *testing.T, repo favourites.Repository, listID uuid.UUID) []string {
		t.Helper()
		items, err := repo.ListItems(ctx, listID)
		require.NoError(t, err)
		ids := make([]string, len(items))
		for i, item := range items {
			ids[i] = item.Ref.ObjectID
		}
		return ids
	}

	t.Run("MoveUp", func(t *testing.T) {
		repo, list, displayed := setup(t)
		require.NoError(t, repo.ReorderItem(ctx, list.ID, displayed[3], 3, 1))
		assert.Equal(t, []string{"e", "b", "d", "c", "a"}, order(t, repo, list.ID))
	})

	t.Run("MoveDown", func(t *testing.T) {
		repo, list, displayed := setup(t)
		require.NoError(t, repo.ReorderItem(ctx, list.ID, displayed[0], 0, 3))
		assert.Equal(t, []string{"d", "c", "b", "e", "a"}, order(t, repo, list.ID))
	})

	t.Run("MoveToTop", func(t *testing.T) {
		repo, list, displayed := setup(t)
		require.NoError(t, repo.ReorderItem(ctx, list.ID, displayed[4], 4, 0))
		assert.Equal(t, []string{"a", "e", "d", "c", "b"}, order(t, repo, list.ID))
	})

	t.Run("SamePositionNoop", func(t *testing.T) {
		repo, list, displayed := setup(t)
		require.NoError(t, repo.ReorderItem(ctx, list.ID, displayed[2], 2, 2))
		assert.Equal(t, []string{"e", "d", "c", "b", "a"}, order(t, repo, list.ID))
	})

	t.Run("NoDuplicateImportances", func(t *testing.T) {
		repo, list, displayed := setup(t)
		require.NoError(t, repo.ReorderItem(ctx, list.ID, displayed[4], 4, 1))

		items, err := repo.ListItems(ctx, list.ID)
		require.NoError(t, err)
		seen := make(map[float64]bool)
		for _, item := range items {
			assert.False(t, seen[item.Importance], "duplicate importance %v", item.Importance)
			seen[item.Importance] = true
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		repo, list, displayed := setup(t)
		err := repo.ReorderItem(ctx, list.ID, displayed[0], 0, 9)
		assert.ErrorIs(t, err, favourites.ErrItemNotFound)
	})

	t.Run("WrongItemAtPosition", func(t *testing.T) {
		repo, list, displayed := setup(t)
		err := repo.ReorderItem(ctx, list.ID, displayed[0], 2, 0)
		assert.ErrorIs(t, err, favourites.ErrItemNotFound)
	})

	t.Run("MissingList", func(t *testing.T) {
		repo, _, displayed := setup(t)
		err := repo.ReorderItem(ctx, uuid.New(), displayed[0], 0, 1)
		assert.ErrorIs(t, err, favourites.ErrListNotFound)
	})
}

func TestListDiscovery(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	owner := uuid.New()
	editor := uuid.New()
	viewer := uuid.New()

	private := newList(owner, "Private")
	private.Editors = []uuid.UUID{editor}
	private.Viewers = []uuid.UUID{viewer}
	require.NoError(t, repo.CreateList(ctx, private))

	public := newList(owner, "Public")
	public.IsPublic = true
	require.NoError(t, repo.CreateList(ctx, public))

	other := newList(uuid.New(), "Unrelated")
	require.NoError(t, repo.CreateList(ctx, other))

	t.Run("OwnedBy", func(t *testing.T) {
		owned, err := repo.ListsOwnedBy(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, owned, 2)

		count, err := repo.CountListsOwnedBy(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("EditedBy", func(t *testing.T) {
		edited, err := repo.ListsEditedBy(ctx, editor)
		require.NoError(t, err)
		require.Len(t, edited, 1)
		assert.Equal(t, private.ID, edited[0].ID)
	})

	t.Run("MemberOrPublic", func(t *testing.T) {
		visible, err := repo.ListsWithMemberOrPublic(ctx, viewer)
		require.NoError(t, err)
		assert.Len(t, visible, 2)
	})

	t.Run("Public", func(t *testing.T) {
		pub, err := repo.PublicLists(ctx)
		require.NoError(t, err)
		require.Len(t, pub, 1)
		assert.Equal(t, public.ID, pub[0].ID)
	})

	t.Run("All", func(t *testing.T) {
		all, err := repo.AllLists(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("ContainingRef", func(t *testing.T) {
		ref := favourites.ContentRef{Kind: "book", ObjectID: "dune"}
		require.NoError(t, repo.CreateItem(ctx, newItem(private.ID, ref, owner)))
		require.NoError(t, repo.CreateItem(ctx, newItem(other.ID, ref, owner)))

		containing, err := repo.ListsContainingRef(ctx, ref)
		require.NoError(t, err)
		assert.Len(t, containing, 2)
	})

	t.Run("OrderedByModified", func(t *testing.T) {
		// ContainingRef just touched private and other; public is untouched.
		all, err := repo.AllLists(ctx)
		require.NoError(t, err)
		assert.Equal(t, public.ID, all[len(all)-1].ID)
	})
}

func TestLatestTitleWithPrefix(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	creator := uuid.New()

	latest, err := repo.LatestTitleWithPrefix(ctx, creator, "Alice's Favourites")
	require.NoError(t, err)
	assert.Equal(t, "", latest)

	base := newList(creator, "Alice's Favourites")
	base.Created = base.Created.Add(-2 * time.Hour)
	require.NoError(t, repo.CreateList(ctx, base))

	numbered := newList(creator, "Alice's Favourites 1")
	numbered.Created = numbered.Created.Add(-time.Hour)
	require.NoError(t, repo.CreateList(ctx, numbered))

	unrelated := newList(creator, "Holiday Reading")
	require.NoError(t, repo.CreateList(ctx, unrelated))

	latest, err = repo.LatestTitleWithPrefix(ctx, creator, "Alice's Favourites")
	require.NoError(t, err)
	assert.Equal(t, "Alice's Favourites 1", latest)

	// Another creator's titles never collide.
	latest, err = repo.LatestTitleWithPrefix(ctx, uuid.New(), "Alice's Favourites")
	require.NoError(t, err)
	assert.Equal(t, "", latest)
}

func TestAggregation(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	first := uuid.New()
	second := uuid.New()
	ref := favourites.ContentRef{Kind: "book", ObjectID: "dune"}

	firstList := newList(first, "First")
	require.NoError(t, repo.CreateList(ctx, firstList))
	secondList := newList(second, "Second")
	require.NoError(t, repo.CreateList(ctx, secondList))

	require.NoError(t, repo.CreateItem(ctx, newItem(firstList.ID, ref, first)))
	require.NoError(t, repo.CreateItem(ctx, newItem(secondList.ID, ref, second)))

	count, err := repo.CountListsContainingRef(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	owners, err := repo.OwnersOfListsContainingRef(ctx, ref)
	require.NoError(t, err)
	assert.Len(t, owners, 2)
	assert.Contains(t, owners, first)
	assert.Contains(t, owners, second)
}
