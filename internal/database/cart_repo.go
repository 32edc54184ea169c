package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// GetCart returns the user's cart at a store, newest first
func (db *DB) GetCart(ctx context.Context, userID string, storeNumber int) ([]models.CartItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, store_number, product_name, price, quantity, aisle, image_url,
		       search_term, is_sold_by_weight, unit_price, added_at
		FROM shopping_carts
		WHERE user_id = $1 AND store_number = $2
		ORDER BY added_at DESC, id DESC
	`, userID, storeNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.StoreNumber, &item.ProductName, &item.Price, &item.Quantity,
			&item.Aisle, &item.ImageURL, &item.SearchTerm, &item.IsSoldByWeight, &item.UnitPrice, &item.AddedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddToCart inserts a product or adds to the quantity of the existing line
func (db *DB) AddToCart(ctx context.Context, userID string, storeNumber int, req models.AddToCartRequest) error {
	price, err := ParsePrice(req.Price)
	if err != nil {
		return err
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO shopping_carts
			(user_id, store_number, product_name, price, quantity, aisle, image_url,
			 search_term, is_sold_by_weight, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, store_number, product_name) DO UPDATE SET
			quantity = shopping_carts.quantity + EXCLUDED.quantity
	`, userID, storeNumber, req.Name, price, quantity, req.Aisle, req.Image,
		req.SearchTerm, req.IsSoldByWeight, req.UnitPrice)
	if err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

// UpdateCartQuantity sets the quantity of a cart line
func (db *DB) UpdateCartQuantity(ctx context.Context, userID string, storeNumber, cartItemID int, quantity float64) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE shopping_carts SET quantity = $1
		WHERE id = $2 AND user_id = $3 AND store_number = $4
	`, quantity, cartItemID, userID, storeNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveFromCart deletes one cart line
func (db *DB) RemoveFromCart(ctx context.Context, userID string, storeNumber, cartItemID int) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM shopping_carts
		WHERE id = $1 AND user_id = $2 AND store_number = $3
	`, cartItemID, userID, storeNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCart empties the user's cart at a store
func (db *DB) ClearCart(ctx context.Context, userID string, storeNumber int) error {
	_, err := db.Pool.Exec(ctx, `
		DELETE FROM shopping_carts WHERE user_id = $1 AND store_number = $2
	`, userID, storeNumber)
	return err
}

// CartSize returns the number of lines in the user's cart at a store
func (db *DB) CartSize(ctx context.Context, userID string, storeNumber int) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM shopping_carts WHERE user_id = $1 AND store_number = $2
	`, userID, storeNumber).Scan(&n)
	return n, err
}

// CompleteShopping records the cart in frequent items and clears it
func (db *DB) CompleteShopping(ctx context.Context, userID string, storeNumber int) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := updateFrequentItems(ctx, tx, userID, storeNumber); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM shopping_carts WHERE user_id = $1 AND store_number = $2
	`, userID, storeNumber); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateFrequentItems counts one purchase for every product in the cart
func (db *DB) UpdateFrequentItems(ctx context.Context, userID string, storeNumber int) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := updateFrequentItems(ctx, tx, userID, storeNumber); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func updateFrequentItems(ctx context.Context, tx pgx.Tx, userID string, storeNumber int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO frequent_items
			(user_id, store_number, product_name, price, aisle, image_url,
			 purchase_count, is_sold_by_weight, last_purchased)
		SELECT $1, $2, product_name, price, aisle, image_url, 1, is_sold_by_weight, NOW()
		FROM shopping_carts
		WHERE user_id = $1 AND store_number = $2
		ON CONFLICT (user_id, store_number, product_name) DO UPDATE SET
			purchase_count = frequent_items.purchase_count + 1,
			last_purchased = NOW(),
			price = EXCLUDED.price,
			aisle = EXCLUDED.aisle,
			image_url = EXCLUDED.image_url
	`, userID, storeNumber)
	if err != nil {
		return fmt.Errorf("failed to update frequent items: %w", err)
	}
	return nil
}
