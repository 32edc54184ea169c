package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// EnsureUser creates the user row on first sight. Signed-in users get their
// email filled in if it was missing.
func (db *DB) EnsureUser(ctx context.Context, user models.AuthUser) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO users (id, email, is_anonymous, store_number)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(users.email, EXCLUDED.email)
		WHERE users.email IS NULL AND EXCLUDED.email IS NOT NULL
	`, user.ID, user.Email, user.IsAnonymous, models.DefaultStoreNumber)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, is_anonymous, store_number, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.IsAnonymous, &user.StoreNumber, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserStore returns the user's current store, or the default store for
// unknown users
func (db *DB) GetUserStore(ctx context.Context, userID string) (int, error) {
	var store int
	err := db.Pool.QueryRow(ctx, `SELECT store_number FROM users WHERE id = $1`, userID).Scan(&store)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DefaultStoreNumber, nil
		}
		return 0, err
	}
	return store, nil
}

// UpdateUserStore sets the user's current store
func (db *DB) UpdateUserStore(ctx context.Context, userID string, storeNumber int) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE users SET store_number = $1 WHERE id = $2`, storeNumber, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SwitchStoreClearingData wipes the user's cart, frequent items, lists and
// recipes at the target store and then makes it the current store
func (db *DB) SwitchStoreClearingData(ctx context.Context, userID string, storeNumber int) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"shopping_carts", "frequent_items", "saved_lists", "recipes"} {
		if _, err := tx.Exec(ctx,
			"DELETE FROM "+table+" WHERE user_id = $1 AND store_number = $2",
			userID, storeNumber,
		); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	tag, err := tx.Exec(ctx, `UPDATE users SET store_number = $1 WHERE id = $2`, storeNumber, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

const staleAnonymousUsers = `
	FROM users u
	WHERE u.is_anonymous = TRUE
	  AND u.created_at < NOW() - make_interval(days => $1)
	  AND NOT EXISTS (SELECT 1 FROM shopping_carts sc WHERE sc.user_id = u.id)
	  AND NOT EXISTS (SELECT 1 FROM saved_lists sl WHERE sl.user_id = u.id)
	  AND NOT EXISTS (SELECT 1 FROM recipes r WHERE r.user_id = u.id)
`

// CountStaleAnonymousUsers counts what CleanupStaleAnonymousUsers would delete
func (db *DB) CountStaleAnonymousUsers(ctx context.Context, daysOld int) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) `+staleAnonymousUsers, daysOld).Scan(&count)
	return count, err
}

// CleanupStaleAnonymousUsers deletes anonymous users older than daysOld
// that never saved a cart, list or recipe. Returns the deleted user IDs.
func (db *DB) CleanupStaleAnonymousUsers(ctx context.Context, daysOld int) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		DELETE FROM users WHERE id IN (SELECT u.id `+staleAnonymousUsers+`)
		RETURNING id
	`, daysOld)
	if err != nil {
		return nil, fmt.Errorf("failed to clean up anonymous users: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to clean up anonymous users: %w", err)
	}
	return ids, nil
}

// AnonymousUserStats summarizes anonymous accounts by age
func (db *DB) AnonymousUserStats(ctx context.Context) (*models.AnonymousUserStats, error) {
	stats := &models.AnonymousUserStats{}
	err := db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '7 days'),
			COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '30 days'),
			COUNT(*) FILTER (WHERE created_at < NOW() - INTERVAL '30 days')
		FROM users
		WHERE is_anonymous = TRUE
	`).Scan(&stats.TotalAnonymous, &stats.Active7d, &stats.Active30d, &stats.Stale30d)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
