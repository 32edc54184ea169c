package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// GetRecipes returns the user's recipes at a store with totals and items,
// most recently updated first
func (db *DB) GetRecipes(ctx context.Context, userID string, storeNumber int) ([]models.Recipe, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT r.id, r.name, r.description, r.store_number, r.created_at, r.last_updated,
		       COUNT(ri.id) AS item_count,
		       COALESCE(SUM(ri.quantity), 0) AS total_quantity,
		       COALESCE(SUM(ri.price * ri.quantity), 0) AS total_price
		FROM recipes r
		LEFT JOIN recipe_items ri ON r.id = ri.recipe_id
		WHERE r.user_id = $1 AND r.store_number = $2
		GROUP BY r.id
		ORDER BY r.last_updated DESC
	`, userID, storeNumber)
	if err != nil {
		return nil, err
	}

	recipes := []models.Recipe{}
	for rows.Next() {
		var r models.Recipe
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.StoreNumber, &r.CreatedAt, &r.LastUpdated,
			&r.ItemCount, &r.TotalQuantity, &r.TotalPrice); err != nil {
			rows.Close()
			return nil, err
		}
		recipes = append(recipes, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		items, err := db.getRecipeItems(ctx, recipes[i].ID)
		if err != nil {
			return nil, err
		}
		recipes[i].Items = items
	}

	return recipes, nil
}

func (db *DB) getRecipeItems(ctx context.Context, recipeID int) ([]models.RecipeItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, product_name, price, quantity, aisle, image_url,
		       search_term, is_sold_by_weight, unit_price
		FROM recipe_items
		WHERE recipe_id = $1
		ORDER BY id
	`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.RecipeItem{}
	for rows.Next() {
		var item models.RecipeItem
		if err := rows.Scan(&item.ID, &item.ProductName, &item.Price, &item.Quantity, &item.Aisle,
			&item.ImageURL, &item.SearchTerm, &item.IsSoldByWeight, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateRecipe creates an empty recipe
func (db *DB) CreateRecipe(ctx context.Context, userID string, storeNumber int, name string, description *string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO recipes (user_id, store_number, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, storeNumber, name, description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create recipe: %w", err)
	}
	return id, nil
}

// SaveCartAsRecipe creates a recipe from the cart in one transaction
func (db *DB) SaveCartAsRecipe(ctx context.Context, userID string, storeNumber int, name string, description *string) (int, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO recipes (user_id, store_number, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, storeNumber, name, description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create recipe: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO recipe_items
			(recipe_id, product_name, price, quantity, aisle, image_url,
			 search_term, is_sold_by_weight, unit_price)
		SELECT $1, product_name, price, quantity, aisle, image_url,
		       search_term, is_sold_by_weight, unit_price
		FROM shopping_carts
		WHERE user_id = $2 AND store_number = $3
		ORDER BY added_at
	`, id, userID, storeNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to copy cart to recipe: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func (db *DB) recipeOwned(ctx context.Context, q pgx.Tx, userID string, recipeID int) (int, error) {
	var store int
	var err error
	query := `SELECT store_number FROM recipes WHERE id = $1 AND user_id = $2`
	if q != nil {
		err = q.QueryRow(ctx, query, recipeID, userID).Scan(&store)
	} else {
		err = db.Pool.QueryRow(ctx, query, recipeID, userID).Scan(&store)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return store, nil
}

// AddRecipeItem appends a product to a recipe owned by the user
func (db *DB) AddRecipeItem(ctx context.Context, userID string, recipeID int, req models.AddRecipeItemRequest) error {
	if _, err := db.recipeOwned(ctx, nil, userID, recipeID); err != nil {
		return err
	}

	price, err := ParsePrice(req.Price)
	if err != nil {
		return err
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO recipe_items
			(recipe_id, product_name, price, quantity, aisle, image_url,
			 search_term, is_sold_by_weight, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, recipeID, req.Name, price, quantity, req.Aisle, req.Image, req.SearchTerm, req.IsSoldByWeight, req.UnitPrice)
	if err != nil {
		return fmt.Errorf("failed to add recipe item: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `UPDATE recipes SET last_updated = NOW() WHERE id = $1`, recipeID)
	return err
}

// UpdateRecipeItemQuantity sets the quantity of an item in one of the user's recipes
func (db *DB) UpdateRecipeItemQuantity(ctx context.Context, userID string, itemID int, quantity float64) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE recipe_items ri SET quantity = $1
		FROM recipes r
		WHERE ri.id = $2 AND ri.recipe_id = r.id AND r.user_id = $3
	`, quantity, itemID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveRecipeItem deletes an item from one of the user's recipes
func (db *DB) RemoveRecipeItem(ctx context.Context, userID string, itemID int) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM recipe_items ri
		USING recipes r
		WHERE ri.id = $1 AND ri.recipe_id = r.id AND r.user_id = $2
	`, itemID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRecipe changes the name and/or description. An empty name is ignored;
// an empty description clears it.
func (db *DB) UpdateRecipe(ctx context.Context, userID string, recipeID int, req models.UpdateRecipeRequest) error {
	var name *string
	if req.Name != nil && *req.Name != "" {
		name = req.Name
	}

	tag, err := db.Pool.Exec(ctx, `
		UPDATE recipes SET
			name = COALESCE($1, name),
			description = CASE WHEN $2::boolean THEN $3 ELSE description END,
			last_updated = NOW()
		WHERE id = $4 AND user_id = $5
	`, name, req.Description != nil, req.Description, recipeID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecipe removes a recipe and its items
func (db *DB) DeleteRecipe(ctx context.Context, userID string, storeNumber, recipeID int) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM recipes WHERE id = $1 AND user_id = $2 AND store_number = $3
	`, recipeID, userID, storeNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadRecipeToCart adds the recipe's items (or only itemIDs when given) to
// the cart, adding to quantities already there
func (db *DB) LoadRecipeToCart(ctx context.Context, userID string, storeNumber, recipeID int, itemIDs []int) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	recipeStore, err := db.recipeOwned(ctx, tx, userID, recipeID)
	if err != nil {
		return err
	}
	if recipeStore != storeNumber {
		return fmt.Errorf("%w: recipe is for store %d, not store %d", ErrStoreMismatch, recipeStore, storeNumber)
	}

	// duplicate products inside a recipe are folded so the upsert touches each row once
	_, err = tx.Exec(ctx, `
		INSERT INTO shopping_carts
			(user_id, store_number, product_name, price, quantity, aisle, image_url,
			 search_term, is_sold_by_weight, unit_price)
		SELECT $1, $2, product_name, MAX(price), SUM(quantity), MAX(aisle), MAX(image_url),
		       MAX(search_term), BOOL_OR(is_sold_by_weight), MAX(unit_price)
		FROM recipe_items
		WHERE recipe_id = $3 AND (cardinality($4::int[]) = 0 OR id = ANY($4::int[]))
		GROUP BY product_name
		ON CONFLICT (user_id, store_number, product_name) DO UPDATE SET
			quantity = shopping_carts.quantity + EXCLUDED.quantity
	`, userID, storeNumber, recipeID, itemIDsOrEmpty(itemIDs))
	if err != nil {
		return fmt.Errorf("failed to load recipe: %w", err)
	}

	return tx.Commit(ctx)
}

func itemIDsOrEmpty(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
