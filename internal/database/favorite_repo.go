package database

import (
	"context"
	"fmt"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// Manual favorites carry a purchase count no real history reaches, so they
// sort first among frequent items
const favoritePurchaseCount = 999

const frequentItemColumns = `id, product_name, price, aisle, image_url, purchase_count,
	is_manual, is_sold_by_weight, last_purchased`

func (db *DB) queryFrequentItems(ctx context.Context, query string, args ...any) ([]models.FrequentItem, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.FrequentItem{}
	for rows.Next() {
		var item models.FrequentItem
		if err := rows.Scan(&item.ID, &item.ProductName, &item.Price, &item.Aisle, &item.ImageURL,
			&item.PurchaseCount, &item.IsManual, &item.IsSoldByWeight, &item.LastPurchased); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetFrequentItems returns products bought at least twice, excluding manual favorites
func (db *DB) GetFrequentItems(ctx context.Context, userID string, storeNumber, limit int) ([]models.FrequentItem, error) {
	return db.queryFrequentItems(ctx, `
		SELECT `+frequentItemColumns+`
		FROM frequent_items
		WHERE user_id = $1 AND store_number = $2
		  AND is_manual = FALSE
		  AND purchase_count >= 2
		ORDER BY purchase_count DESC, last_purchased DESC
		LIMIT $3
	`, userID, storeNumber, limit)
}

// GetFavorites returns manually starred products, most recent first
func (db *DB) GetFavorites(ctx context.Context, userID string, storeNumber int) ([]models.FrequentItem, error) {
	return db.queryFrequentItems(ctx, `
		SELECT `+frequentItemColumns+`
		FROM frequent_items
		WHERE user_id = $1 AND store_number = $2 AND is_manual = TRUE
		ORDER BY last_purchased DESC
	`, userID, storeNumber)
}

// AddFavorite stars a product. An empty image URL keeps the stored one.
func (db *DB) AddFavorite(ctx context.Context, userID string, storeNumber int, req models.FavoriteRequest) error {
	price, err := ParsePrice(req.Price)
	if err != nil {
		return err
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO frequent_items
			(user_id, store_number, product_name, price, aisle, image_url,
			 purchase_count, is_manual, is_sold_by_weight, last_purchased)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, NOW())
		ON CONFLICT (user_id, store_number, product_name) DO UPDATE SET
			is_manual = TRUE,
			purchase_count = GREATEST(frequent_items.purchase_count, EXCLUDED.purchase_count),
			last_purchased = NOW(),
			price = EXCLUDED.price,
			aisle = EXCLUDED.aisle,
			image_url = COALESCE(NULLIF(EXCLUDED.image_url, ''), frequent_items.image_url),
			is_sold_by_weight = EXCLUDED.is_sold_by_weight
	`, userID, storeNumber, req.ProductName, price, req.Aisle, req.ImageURL, favoritePurchaseCount, req.IsSoldByWeight)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unstars a product. It stays in frequent items only if it
// was really bought at least twice.
func (db *DB) RemoveFavorite(ctx context.Context, userID string, storeNumber int, productName string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE frequent_items SET
			is_manual = FALSE,
			purchase_count = CASE WHEN purchase_count >= $4 THEN 1 ELSE purchase_count END
		WHERE user_id = $1 AND store_number = $2 AND product_name = $3
	`, userID, storeNumber, productName, favoritePurchaseCount); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM frequent_items
		WHERE user_id = $1 AND store_number = $2 AND product_name = $3
		  AND purchase_count < 2 AND is_manual = FALSE
	`, userID, storeNumber, productName); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// IsFavorite reports whether the product is manually starred
func (db *DB) IsFavorite(ctx context.Context, userID string, storeNumber int, productName string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM frequent_items
			WHERE user_id = $1 AND store_number = $2 AND product_name = $3 AND is_manual = TRUE
		)
	`, userID, storeNumber, productName).Scan(&exists)
	return exists, err
}
