package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

const listSummaryColumns = `
	l.id, l.name, l.store_number, l.is_auto_saved, l.created_at,
	COUNT(li.id) AS item_count,
	COALESCE(SUM(li.quantity), 0) AS total_quantity,
	COALESCE(SUM(li.price * li.quantity), 0) AS total_price`

func scanListSummary(row pgx.Row, l *models.SavedList) error {
	return row.Scan(&l.ID, &l.Name, &l.StoreNumber, &l.IsAutoSaved, &l.CreatedAt,
		&l.ItemCount, &l.TotalQuantity, &l.TotalPrice)
}

// GetLists returns the user's saved lists at a store with totals and items
func (db *DB) GetLists(ctx context.Context, userID string, storeNumber int) ([]models.SavedList, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+listSummaryColumns+`
		FROM saved_lists l
		LEFT JOIN saved_list_items li ON l.id = li.list_id
		WHERE l.user_id = $1 AND l.store_number = $2
		GROUP BY l.id
		ORDER BY l.created_at DESC
	`, userID, storeNumber)
	if err != nil {
		return nil, err
	}

	lists := []models.SavedList{}
	for rows.Next() {
		var l models.SavedList
		if err := scanListSummary(rows, &l); err != nil {
			rows.Close()
			return nil, err
		}
		lists = append(lists, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lists {
		items, err := db.getListItems(ctx, lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Items = items
	}

	return lists, nil
}

func (db *DB) getListItems(ctx context.Context, listID int) ([]models.SavedListItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT product_name, price, quantity, aisle, is_sold_by_weight
		FROM saved_list_items
		WHERE list_id = $1
		ORDER BY id
	`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.SavedListItem{}
	for rows.Next() {
		var item models.SavedListItem
		if err := rows.Scan(&item.ProductName, &item.Price, &item.Quantity, &item.Aisle, &item.IsSoldByWeight); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveCartAsList snapshots the cart into a new list in one transaction
func (db *DB) SaveCartAsList(ctx context.Context, userID string, storeNumber int, name string, autoSaved bool) (int, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var listID int
	err = tx.QueryRow(ctx, `
		INSERT INTO saved_lists (user_id, name, store_number, is_auto_saved)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, name, storeNumber, autoSaved).Scan(&listID)
	if err != nil {
		return 0, fmt.Errorf("failed to create saved list: %w", err)
	}

	if err := copyCartToList(ctx, tx, listID, userID, storeNumber); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return listID, nil
}

func copyCartToList(ctx context.Context, tx pgx.Tx, listID int, userID string, storeNumber int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO saved_list_items (list_id, product_name, price, quantity, aisle, is_sold_by_weight)
		SELECT $1, product_name, price, quantity, aisle, is_sold_by_weight
		FROM shopping_carts
		WHERE user_id = $2 AND store_number = $3
	`, listID, userID, storeNumber)
	if err != nil {
		return fmt.Errorf("failed to copy cart to list: %w", err)
	}
	return nil
}

// AutoSaveList refreshes today's list with this name from the cart, or
// creates it. Returns the list ID and whether an existing list was updated.
func (db *DB) AutoSaveList(ctx context.Context, userID string, storeNumber int, name string) (int, bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback(ctx)

	var listID int
	err = tx.QueryRow(ctx, `
		SELECT id FROM saved_lists
		WHERE user_id = $1 AND store_number = $2 AND name = $3
		  AND created_at::date = CURRENT_DATE
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, storeNumber, name).Scan(&listID)

	updated := true
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		updated = false
		err = tx.QueryRow(ctx, `
			INSERT INTO saved_lists (user_id, name, store_number, is_auto_saved)
			VALUES ($1, $2, $3, TRUE)
			RETURNING id
		`, userID, name, storeNumber).Scan(&listID)
		if err != nil {
			return 0, false, fmt.Errorf("failed to create saved list: %w", err)
		}
	case err != nil:
		return 0, false, err
	default:
		if _, err := tx.Exec(ctx, `DELETE FROM saved_list_items WHERE list_id = $1`, listID); err != nil {
			return 0, false, err
		}
		if _, err := tx.Exec(ctx, `UPDATE saved_lists SET last_updated = NOW() WHERE id = $1`, listID); err != nil {
			return 0, false, err
		}
	}

	if err := copyCartToList(ctx, tx, listID, userID, storeNumber); err != nil {
		return 0, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}
	return listID, updated, nil
}

// GetTodaysAutoSavedList returns today's auto-saved list summary without items
func (db *DB) GetTodaysAutoSavedList(ctx context.Context, userID string, storeNumber int) (*models.SavedList, error) {
	l := &models.SavedList{}
	err := scanListSummary(db.Pool.QueryRow(ctx, `
		SELECT `+listSummaryColumns+`
		FROM saved_lists l
		LEFT JOIN saved_list_items li ON l.id = li.list_id
		WHERE l.user_id = $1 AND l.store_number = $2
		  AND l.is_auto_saved = TRUE
		  AND l.created_at::date = CURRENT_DATE
		GROUP BY l.id
		ORDER BY l.created_at DESC
		LIMIT 1
	`, userID, storeNumber), l)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// LoadListToCart replaces the cart with the list's items in one transaction.
// Returns the list name.
func (db *DB) LoadListToCart(ctx context.Context, userID string, storeNumber, listID int) (string, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var name string
	var listStore int
	err = tx.QueryRow(ctx, `
		SELECT name, store_number FROM saved_lists WHERE id = $1 AND user_id = $2
	`, listID, userID).Scan(&name, &listStore)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if listStore != storeNumber {
		return "", fmt.Errorf("%w: list is for store %d, not store %d", ErrStoreMismatch, listStore, storeNumber)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM shopping_carts WHERE user_id = $1 AND store_number = $2
	`, userID, storeNumber); err != nil {
		return "", err
	}

	// a list may repeat a product; fold duplicates into one cart line
	if _, err := tx.Exec(ctx, `
		INSERT INTO shopping_carts
			(user_id, store_number, product_name, price, quantity, aisle, search_term, is_sold_by_weight)
		SELECT $1, $2, product_name, MAX(price), SUM(quantity), MAX(aisle), '', BOOL_OR(is_sold_by_weight)
		FROM saved_list_items
		WHERE list_id = $3
		GROUP BY product_name
	`, userID, storeNumber, listID); err != nil {
		return "", fmt.Errorf("failed to load list: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return name, nil
}

// DeleteList removes a list and takes one purchase off each of its products
// in frequent items, dropping rows that reach zero
func (db *DB) DeleteList(ctx context.Context, userID string, storeNumber, listID int) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var products []string
	rows, err := tx.Query(ctx, `
		SELECT DISTINCT li.product_name
		FROM saved_lists l
		JOIN saved_list_items li ON l.id = li.list_id
		WHERE l.id = $1 AND l.user_id = $2 AND l.store_number = $3
	`, listID, userID, storeNumber)
	if err != nil {
		return err
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		products = append(products, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM saved_lists WHERE id = $1 AND user_id = $2 AND store_number = $3
	`, listID, userID, storeNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if len(products) > 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE frequent_items SET purchase_count = purchase_count - 1
			WHERE user_id = $1 AND store_number = $2 AND product_name = ANY($3)
			  AND is_manual = FALSE
		`, userID, storeNumber, products); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM frequent_items
			WHERE user_id = $1 AND store_number = $2 AND purchase_count <= 0
		`, userID, storeNumber); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
