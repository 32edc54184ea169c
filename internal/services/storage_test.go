package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryPhotos struct {
	byUser  map[string][]string
	failFor string
	deleted []string
}

func (m *memoryPhotos) SaveRecipePhoto(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	key := photoKey(userID, contentType, time.Now())
	m.byUser[userID] = append(m.byUser[userID], key)
	return key, nil
}

func (m *memoryPhotos) PhotoURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://photos.test/" + key, nil
}

func (m *memoryPhotos) DeleteUserPhotos(ctx context.Context, userID string) error {
	if userID == m.failFor {
		return errors.New("access denied")
	}
	delete(m.byUser, userID)
	m.deleted = append(m.deleted, userID)
	return nil
}

func TestPhotoKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)

	key := photoKey("user-1", "image/png", at)
	assert.True(t, strings.HasPrefix(key, "recipes/user-1/2024/03/09/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)

	assert.True(t, strings.HasSuffix(photoKey("u", "image/jpeg", at), ".jpg"))
	assert.True(t, strings.HasSuffix(photoKey("u", "application/pdf", at), ".bin"))
	assert.NotEqual(t, photoKey("u", "image/jpeg", at), photoKey("u", "image/jpeg", at))
}

func TestPurgeUserPhotos(t *testing.T) {
	ctx := context.Background()
	photos := &memoryPhotos{byUser: map[string][]string{}}
	for _, user := range []string{"anon-1", "anon-2", "kept"} {
		_, err := photos.SaveRecipePhoto(ctx, user, []byte("img"), "image/png")
		require.NoError(t, err)
	}

	purged, err := PurgeUserPhotos(ctx, photos, []string{"anon-1", "anon-2"})
	require.NoError(t, err)

	assert.Equal(t, 2, purged)
	assert.Equal(t, []string{"anon-1", "anon-2"}, photos.deleted)
	assert.Contains(t, photos.byUser, "kept")
	assert.NotContains(t, photos.byUser, "anon-1")
}

func TestPurgeUserPhotos_ContinuesPastFailures(t *testing.T) {
	photos := &memoryPhotos{byUser: map[string][]string{}, failFor: "anon-1"}

	purged, err := PurgeUserPhotos(context.Background(), photos, []string{"anon-1", "anon-2", "anon-3"})
	require.Error(t, err)

	assert.Contains(t, err.Error(), "user anon-1")
	assert.Equal(t, 2, purged)
	assert.Equal(t, []string{"anon-2", "anon-3"}, photos.deleted)
}

func TestPurgeUserPhotos_NoStorage(t *testing.T) {
	purged, err := PurgeUserPhotos(context.Background(), nil, []string{"anon-1"})
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestPurgeUserPhotos_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	photos := &memoryPhotos{byUser: map[string][]string{}}

	purged, err := PurgeUserPhotos(ctx, photos, []string{"anon-1"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, purged)
	assert.Empty(t, photos.deleted)
}
