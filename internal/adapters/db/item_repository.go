package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"foundly-match-service/internal/domain/item"
	"foundly-match-service/internal/domain/shared"

	"github.com/google/uuid"
)

// ItemRepository implements the item repository interface
type ItemRepository struct {
	conn *Connection
}

// NewItemRepository creates a new item repository
func NewItemRepository(conn *Connection) *ItemRepository {
	return &ItemRepository{conn: conn}
}

const itemColumns = `id, title, description, status, category, owner_id, contact_info, photo_url, address, lat, lng, matched_item_id, resolved, created_at, updated_at`

// Create persists a new item, assigning its ID
func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}

	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	address, lat, lng := locationColumns(it)

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		it.ID,
		it.Title,
		it.Description,
		it.Status,
		it.Category,
		it.OwnerID,
		it.ContactInfo,
		it.PhotoURL,
		address,
		lat,
		lng,
		matchedColumn(it),
		it.Resolved,
		it.CreatedAt,
		it.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id = $1
	`

	it, err := scanItem(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return it, nil
}

// GetAll retrieves the full item snapshot in creation order
func (r *ItemRepository) GetAll(ctx context.Context) ([]*item.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		ORDER BY created_at ASC
	`

	return r.queryItems(ctx, query)
}

// GetByOwnerID retrieves all items created by a user
func (r *ItemRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*item.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`

	return r.queryItems(ctx, query, ownerID)
}

// Update updates an item's editable fields. The matched_item_id
// cross-reference is deliberately not touched here; only LinkItems writes it.
func (r *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	query := `
		UPDATE items
		SET title = $2, description = $3, category = $4, contact_info = $5,
		    photo_url = $6, address = $7, lat = $8, lng = $9, updated_at = $10
		WHERE id = $1
	`

	address, lat, lng := locationColumns(it)

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		it.ID,
		it.Title,
		it.Description,
		it.Category,
		it.ContactInfo,
		it.PhotoURL,
		address,
		lat,
		lng,
		it.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrItemNotFound
	}

	return nil
}

// SetResolved marks an item as closed by its owner
func (r *ItemRepository) SetResolved(ctx context.Context, id uuid.UUID, resolved bool) error {
	query := `UPDATE items SET resolved = $2, updated_at = $3 WHERE id = $1`

	result, err := r.conn.GetDB().ExecContext(ctx, query, id, resolved, time.Now())
	if err != nil {
		return fmt.Errorf("failed to resolve item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrItemNotFound
	}

	return nil
}

// Delete deletes an item
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM items WHERE id = $1`

	result, err := r.conn.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrItemNotFound
	}

	return nil
}

/*
LinkItems sets the matched_item_id cross-reference on both items as one
atomic conditional pair-update:
 1. Each side's UPDATE is guarded on matched_item_id IS NULL
 2. Zero rows affected on either side means a concurrent writer already
    matched that item (or it was deleted)
 3. The whole transaction rolls back in that case, so a one-sided link can
    never be persisted
*/
func (r *ItemRepository) LinkItems(ctx context.Context, itemID, counterpartID uuid.UUID) error {
	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE items
			SET matched_item_id = $2, updated_at = $3
			WHERE id = $1 AND matched_item_id IS NULL
		`

		now := time.Now()
		pairs := [][2]uuid.UUID{
			{itemID, counterpartID},
			{counterpartID, itemID},
		}

		for _, pair := range pairs {
			result, err := tx.ExecContext(ctx, query, pair[0], pair[1], now)
			if err != nil {
				return fmt.Errorf("failed to link item %s: %w", pair[0], err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}

			// Either the row is gone or another transaction matched it first
			if rowsAffected == 0 {
				return shared.ErrMatchConflict
			}
		}

		return nil
	})
}

func (r *ItemRepository) queryItems(ctx context.Context, query string, args ...interface{}) ([]*item.Item, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []*item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*item.Item, error) {
	var (
		it      item.Item
		address sql.NullString
		lat     sql.NullFloat64
		lng     sql.NullFloat64
		matched uuid.NullUUID
	)

	err := row.Scan(
		&it.ID,
		&it.Title,
		&it.Description,
		&it.Status,
		&it.Category,
		&it.OwnerID,
		&it.ContactInfo,
		&it.PhotoURL,
		&address,
		&lat,
		&lng,
		&matched,
		&it.Resolved,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if address.Valid || lat.Valid || lng.Valid {
		loc := &item.Location{Address: address.String}
		if lat.Valid {
			v := lat.Float64
			loc.Lat = &v
		}
		if lng.Valid {
			v := lng.Float64
			loc.Lng = &v
		}
		it.Location = loc
	}

	if matched.Valid {
		id := matched.UUID
		it.MatchedItemID = &id
	}

	return &it, nil
}

func locationColumns(it *item.Item) (sql.NullString, sql.NullFloat64, sql.NullFloat64) {
	var (
		address sql.NullString
		lat     sql.NullFloat64
		lng     sql.NullFloat64
	)

	if it.Location == nil {
		return address, lat, lng
	}

	if it.Location.Address != "" {
		address = sql.NullString{String: it.Location.Address, Valid: true}
	}
	if it.Location.Lat != nil {
		lat = sql.NullFloat64{Float64: *it.Location.Lat, Valid: true}
	}
	if it.Location.Lng != nil {
		lng = sql.NullFloat64{Float64: *it.Location.Lng, Valid: true}
	}

	return address, lat, lng
}

func matchedColumn(it *item.Item) uuid.NullUUID {
	if it.MatchedItemID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *it.MatchedItemID, Valid: true}
}
