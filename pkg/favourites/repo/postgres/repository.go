package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glamkit/glamkit-favourites/pkg/favourites"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements favourites.Repository using PostgreSQL.
//
// When constructed with NewWithPool, composite operations (item insert with
// importance assignment, reorder, membership rewrites) run inside their own
// transaction. When constructed with New the caller is expected to pass a
// transaction as the DBTX if it needs that atomicity.
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL repository on an existing connection or transaction
func New(db DBTX) favourites.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) favourites.Repository {
	return &Repository{db: pool, pool: pool}
}

// Membership roles as persisted in favourites.list_member.
const (
	roleOwner  = "owner"
	roleEditor = "editor"
	roleViewer = "viewer"
)

const listColumns = `id, title, description, is_public, creator_id, created, modified`

// withTx runs fn inside a transaction when a pool is available, directly on
// the configured DBTX otherwise.
func (r *Repository) withTx(ctx context.Context, fn func(db DBTX) error) error {
	if r.pool == nil {
		return fn(r.db)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "item") {
				return favourites.ErrItemAlreadyInList
			}
			return fmt.Errorf("duplicate entry in %s", operation)
		case "23503": // foreign_key_violation
			if strings.Contains(pgErr.ConstraintName, "item") || strings.Contains(pgErr.ConstraintName, "member") || strings.Contains(pgErr.ConstraintName, "kind") {
				return favourites.ErrListNotFound
			}
			return fmt.Errorf("referenced record not found in %s", operation)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// List operations

func (r *Repository) CreateList(ctx context.Context, list *favourites.List) error {
	return r.withTx(ctx, func(db DBTX) error {
		query := `
			INSERT INTO favourites.list (
				id, title, description, is_public, creator_id, created, modified
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`

		_, err := db.Exec(ctx, query,
			list.ID, list.Title, list.Description, list.IsPublic,
			list.CreatorID, list.Created, list.Modified)
		if err != nil {
			return r.handlePostgresError("create list", err)
		}

		return r.insertRelations(ctx, db, list)
	})
}

func (r *Repository) insertRelations(ctx context.Context, db DBTX, list *favourites.List) error {
	memberQuery := `INSERT INTO favourites.list_member (list_id, user_id, role) VALUES ($1, $2, $3)`
	for role, members := range map[string][]uuid.UUID{
		roleOwner:  list.Owners,
		roleEditor: list.Editors,
		roleViewer: list.Viewers,
	} {
		for _, userID := range members {
			if _, err := db.Exec(ctx, memberQuery, list.ID, userID, role); err != nil {
				return r.handlePostgresError("insert list member", err)
			}
		}
	}

	kindQuery := `INSERT INTO favourites.list_kind (list_id, kind) VALUES ($1, $2)`
	for _, kind := range list.AllowedKinds {
		if _, err := db.Exec(ctx, kindQuery, list.ID, kind); err != nil {
			return r.handlePostgresError("insert list kind", err)
		}
	}
	return nil
}

func (r *Repository) GetList(ctx context.Context, id uuid.UUID) (*favourites.List, error) {
	query := `SELECT ` + listColumns + ` FROM favourites.list WHERE id = $1`

	var list favourites.List
	err := r.db.QueryRow(ctx, query, id).Scan(
		&list.ID, &list.Title, &list.Description, &list.IsPublic,
		&list.CreatorID, &list.Created, &list.Modified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, favourites.ErrListNotFound
		}
		return nil, err
	}

	if err := r.loadRelations(ctx, r.db, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// loadRelations populates the membership and allowed-kind snapshots of a
// loaded list row.
func (r *Repository) loadRelations(ctx context.Context, db DBTX, list *favourites.List) error {
	rows, err := db.Query(ctx,
		`SELECT user_id, role FROM favourites.list_member WHERE list_id = $1 ORDER BY user_id`, list.ID)
	if err != nil {
		return r.handlePostgresError("load list members", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID uuid.UUID
			role   string
		)
		if err := rows.Scan(&userID, &role); err != nil {
			return r.handlePostgresError("scan list member", err)
		}
		switch role {
		case roleOwner:
			list.Owners = append(list.Owners, userID)
		case roleEditor:
			list.Editors = append(list.Editors, userID)
		case roleViewer:
			list.Viewers = append(list.Viewers, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return r.handlePostgresError("iterate list members", err)
	}

	kindRows, err := db.Query(ctx,
		`SELECT kind FROM favourites.list_kind WHERE list_id = $1 ORDER BY kind`, list.ID)
	if err != nil {
		return r.handlePostgresError("load list kinds", err)
	}
	defer kindRows.Close()

	for kindRows.Next() {
		var kind string
		if err := kindRows.Scan(&kind); err != nil {
			return r.handlePostgresError("scan list kind", err)
		}
		list.AllowedKinds = append(list.AllowedKinds, kind)
	}
	return kindRows.Err()
}

func (r *Repository) UpdateList(ctx context.Context, list *favourites.List) error {
	return r.withTx(ctx, func(db DBTX) error {
		query := `
			UPDATE favourites.list SET
				title = $2, description = $3, is_public = $4, modified = $5
			WHERE id = $1`

		tag, err := db.Exec(ctx, query,
			list.ID, list.Title, list.Description, list.IsPublic, list.Modified)
		if err != nil {
			return r.handlePostgresError("update list", err)
		}
		if tag.RowsAffected() == 0 {
			return favourites.ErrListNotFound
		}

		// Membership and kind sets are rewritten wholesale; the list row is
		// small and the sets are short.
		if _, err := db.Exec(ctx, `DELETE FROM favourites.list_member WHERE list_id = $1`, list.ID); err != nil {
			return r.handlePostgresError("clear list members", err)
		}
		if _, err := db.Exec(ctx, `DELETE FROM favourites.list_kind WHERE list_id = $1`, list.ID); err != nil {
			return r.handlePostgresError("clear list kinds", err)
		}
		return r.insertRelations(ctx, db, list)
	})
}

func (r *Repository) DeleteList(ctx context.Context, id uuid.UUID) error {
	// Items, members and kinds cascade with the list row.
	tag, err := r.db.Exec(ctx, `DELETE FROM favourites.list WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete list", err)
	}
	if tag.RowsAffected() == 0 {
		return favourites.ErrListNotFound
	}
	return nil
}

// List discovery

func (r *Repository) queryLists(ctx context.Context, query string, args ...interface{}) ([]*favourites.List, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("query lists", err)
	}
	defer rows.Close()

	var lists []*favourites.List
	for rows.Next() {
		var list favourites.List
		if err := rows.Scan(
			&list.ID, &list.Title, &list.Description, &list.IsPublic,
			&list.CreatorID, &list.Created, &list.Modified); err != nil {
			return nil, r.handlePostgresError("scan list", err)
		}
		lists = append(lists, &list)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate lists", err)
	}

	for _, list := range lists {
		if err := r.loadRelations(ctx, r.db, list); err != nil {
			return nil, err
		}
	}
	return lists, nil
}

func (r *Repository) listsWithRole(ctx context.Context, userID uuid.UUID, role string) ([]*favourites.List, error) {
	query := `
		SELECT l.` + strings.ReplaceAll(listColumns, ", ", ", l.") + `
		FROM favourites.list l
		JOIN favourites.list_member m ON m.list_id = l.id
		WHERE m.user_id = $1 AND m.role = $2
		ORDER BY l.modified DESC`
	return r.queryLists(ctx, query, userID, role)
}

func (r *Repository) ListsOwnedBy(ctx context.Context, userID uuid.UUID) ([]*favourites.List, error) {
	return r.listsWithRole(ctx, userID, roleOwner)
}

func (r *Repository) ListsEditedBy(ctx context.Context, userID uuid.UUID) ([]*favourites.List, error) {
	return r.listsWithRole(ctx, userID, roleEditor)
}

func (r *Repository) ListsWithMemberOrPublic(ctx context.Context, userID uuid.UUID) ([]*favourites.List, error) {
	query := `
		SELECT DISTINCT l.` + strings.ReplaceAll(listColumns, ", ", ", l.") + `
		FROM favourites.list l
		LEFT JOIN favourites.list_member m ON m.list_id = l.id
		WHERE l.is_public OR m.user_id = $1
		ORDER BY l.modified DESC`
	return r.queryLists(ctx, query, userID)
}

func (r *Repository) PublicLists(ctx context.Context) ([]*favourites.List, error) {
	query := `SELECT ` + listColumns + ` FROM favourites.list WHERE is_public ORDER BY modified DESC`
	return r.queryLists(ctx, query)
}

func (r *Repository) AllLists(ctx context.Context) ([]*favourites.List, error) {
	query := `SELECT ` + listColumns + ` FROM favourites.list ORDER BY modified DESC`
	return r.queryLists(ctx, query)
}

func (r *Repository) ListsContainingRef(ctx context.Context, ref favourites.ContentRef) ([]*favourites.List, error) {
	query := `
		SELECT l.` + strings.ReplaceAll(listColumns, ", ", ", l.") + `
		FROM favourites.list l
		JOIN favourites.item i ON i.list_id = l.id
		WHERE i.kind = $1 AND i.object_id = $2
		ORDER BY l.modified DESC`
	return r.queryLists(ctx, query, ref.Kind, ref.ObjectID)
}

func (r *Repository) CountListsOwnedBy(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM favourites.list_member WHERE user_id = $1 AND role = $2`,
		userID, roleOwner).Scan(&count)
	if err != nil {
		return 0, r.handlePostgresError("count owned lists", err)
	}
	return count, nil
}

func (r *Repository) LatestTitleWithPrefix(ctx context.Context, creatorID uuid.UUID, prefix string) (string, error) {
	// left() comparison instead of LIKE: prefixes come from display names
	// and may contain pattern metacharacters.
	query := `
		SELECT title FROM favourites.list
		WHERE creator_id = $1 AND left(title, char_length($2)) = $2
		ORDER BY created DESC, title DESC
		LIMIT 1`

	var title string
	err := r.db.QueryRow(ctx, query, creatorID, prefix).Scan(&title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", r.handlePostgresError("latest title", err)
	}
	return title, nil
}

// Item operations

func (r *Repository) CreateItem(ctx context.Context, item *favourites.Item) error {
	return r.withTx(ctx, func(db DBTX) error {
		err := db.QueryRow(ctx,
			`SELECT COALESCE(MAX(importance) + 1, 0) FROM favourites.item WHERE list_id = $1`,
			item.ListID).Scan(&item.Importance)
		if err != nil {
			return r.handlePostgresError("next importance", err)
		}

		query := `
			INSERT INTO favourites.item (
				id, list_id, kind, object_id, importance, description, added_by, created
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

		_, err = db.Exec(ctx, query,
			item.ID, item.ListID, item.Ref.Kind, item.Ref.ObjectID,
			item.Importance, item.Description, item.AddedByID, item.Created)
		if err != nil {
			return r.handlePostgresError("create item", err)
		}

		return r.touchList(ctx, db, item.ListID)
	})
}

func (r *Repository) touchList(ctx context.Context, db DBTX, listID uuid.UUID) error {
	_, err := db.Exec(ctx,
		`UPDATE favourites.list SET modified = (now() AT TIME ZONE 'utc') WHERE id = $1`, listID)
	if err != nil {
		return r.handlePostgresError("touch list", err)
	}
	return nil
}

const itemColumns = `id, list_id, kind, object_id, importance, description, added_by, created`

func scanItem(row pgx.Row) (*favourites.Item, error) {
	var item favourites.Item
	err := row.Scan(
		&item.ID, &item.ListID, &item.Ref.Kind, &item.Ref.ObjectID,
		&item.Importance, &item.Description, &item.AddedByID, &item.Created)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*favourites.Item, error) {
	item, err := scanItem(r.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM favourites.item WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, favourites.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *Repository) GetItemByRef(ctx context.Context, listID uuid.UUID, ref favourites.ContentRef) (*favourites.Item, error) {
	item, err := scanItem(r.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM favourites.item WHERE list_id = $1 AND kind = $2 AND object_id = $3`,
		listID, ref.Kind, ref.ObjectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, favourites.ErrNotInList
		}
		return nil, err
	}
	return item, nil
}

func (r *Repository) UpdateItem(ctx context.Context, item *favourites.Item) error {
	return r.withTx(ctx, func(db DBTX) error {
		tag, err := db.Exec(ctx,
			`UPDATE favourites.item SET importance = $2, description = $3 WHERE id = $1`,
			item.ID, item.Importance, item.Description)
		if err != nil {
			return r.handlePostgresError("update item", err)
		}
		if tag.RowsAffected() == 0 {
			return favourites.ErrItemNotFound
		}
		return r.touchList(ctx, db, item.ListID)
	})
}

func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.withTx(ctx, func(db DBTX) error {
		var listID uuid.UUID
		err := db.QueryRow(ctx,
			`DELETE FROM favourites.item WHERE id = $1 RETURNING list_id`, id).Scan(&listID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return favourites.ErrItemNotFound
			}
			return r.handlePostgresError("delete item", err)
		}
		return r.touchList(ctx, db, listID)
	})
}

func (r *Repository) ListItems(ctx context.Context, listID uuid.UUID) ([]*favourites.Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+itemColumns+` FROM favourites.item WHERE list_id = $1 ORDER BY importance DESC, created DESC`,
		listID)
	if err != nil {
		return nil, r.handlePostgresError("list items", err)
	}
	defer rows.Close()

	var items []*favourites.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate items", err)
	}
	return items, nil
}

func (r *Repository) ReorderItem(ctx context.Context, listID, itemID uuid.UUID, from, to int) error {
	return r.withTx(ctx, func(db DBTX) error {
		rows, err := db.Query(ctx,
			`SELECT id, importance FROM favourites.item WHERE list_id = $1 ORDER BY importance DESC, created DESC`,
			listID)
		if err != nil {
			return r.handlePostgresError("load item order", err)
		}
		defer rows.Close()

		type slot struct {
			id         uuid.UUID
			importance float64
		}
		var ordered []slot
		for rows.Next() {
			var s slot
			if err := rows.Scan(&s.id, &s.importance); err != nil {
				return r.handlePostgresError("scan item order", err)
			}
			ordered = append(ordered, s)
		}
		if err := rows.Err(); err != nil {
			return r.handlePostgresError("iterate item order", err)
		}

		if from < 0 || from >= len(ordered) || to < 0 || to >= len(ordered) {
			return fmt.Errorf("position out of range: %w", favourites.ErrItemNotFound)
		}
		if ordered[from].id != itemID {
			return fmt.Errorf("item not at position %d: %w", from, favourites.ErrItemNotFound)
		}
		if from == to {
			return nil
		}

		// One range update plus one point update: the blocking side of the
		// target shifts a unit away from the vacated slot and the moved item
		// lands adjacent to the target.
		target := ordered[to]
		if to < from {
			_, err = db.Exec(ctx,
				`UPDATE favourites.item SET importance = importance + 1 WHERE list_id = $1 AND importance > $2`,
				listID, target.importance)
			if err == nil {
				_, err = db.Exec(ctx,
					`UPDATE favourites.item SET importance = $2 WHERE id = $1`,
					itemID, target.importance+1)
			}
		} else {
			_, err = db.Exec(ctx,
				`UPDATE favourites.item SET importance = importance - 1 WHERE list_id = $1 AND importance < $2 AND id <> $3`,
				listID, target.importance, itemID)
			if err == nil {
				_, err = db.Exec(ctx,
					`UPDATE favourites.item SET importance = $2 WHERE id = $1`,
					itemID, target.importance-1)
			}
		}
		if err != nil {
			return r.handlePostgresError("reorder items", err)
		}

		return r.touchList(ctx, db, listID)
	})
}

// Aggregation

func (r *Repository) CountListsContainingRef(ctx context.Context, ref favourites.ContentRef) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM favourites.item WHERE kind = $1 AND object_id = $2`,
		ref.Kind, ref.ObjectID).Scan(&count)
	if err != nil {
		return 0, r.handlePostgresError("count favourited", err)
	}
	return count, nil
}

func (r *Repository) OwnersOfListsContainingRef(ctx context.Context, ref favourites.ContentRef) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT m.user_id
		FROM favourites.list_member m
		JOIN favourites.item i ON i.list_id = m.list_id
		WHERE m.role = $1 AND i.kind = $2 AND i.object_id = $3
		ORDER BY m.user_id`

	rows, err := r.db.Query(ctx, query, roleOwner, ref.Kind, ref.ObjectID)
	if err != nil {
		return nil, r.handlePostgresError("users favourited", err)
	}
	defer rows.Close()

	var owners []uuid.UUID
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, r.handlePostgresError("scan user", err)
		}
		owners = append(owners, userID)
	}
	return owners, rows.Err()
}
