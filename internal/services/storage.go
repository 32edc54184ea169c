package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PhotoStore keeps uploaded recipe photos
type PhotoStore interface {
	SaveRecipePhoto(ctx context.Context, userID string, data []byte, contentType string) (string, error)
	PhotoURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	DeleteUserPhotos(ctx context.Context, userID string) error
}

var _ PhotoStore = (*StorageService)(nil)

// StorageService stores recipe photos in an S3-compatible bucket
type StorageService struct {
	client     *minio.Client
	bucketName string
	region     string
	now        func() time.Time
}

// StorageConfig holds the S3 connection settings
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// NewStorageService creates a new S3 storage service
func NewStorageService(cfg StorageConfig) (*StorageService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &StorageService{
		client:     client,
		bucketName: cfg.Bucket,
		region:     cfg.Region,
		now:        time.Now,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *StorageService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{
			Region: s.region,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// SaveRecipePhoto uploads a photo under the user's prefix and returns its key
func (s *StorageService) SaveRecipePhoto(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	key := photoKey(userID, contentType, s.now())

	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"user-id": userID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload recipe photo: %w", err)
	}

	return key, nil
}

// PhotoURL returns a time-limited download link for a stored photo
func (s *StorageService) PhotoURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

// DeleteUserPhotos removes every photo stored for a user
func (s *StorageService) DeleteUserPhotos(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user id is required")
	}

	objects := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    "recipes/" + userID + "/",
		Recursive: true,
	})

	for err := range s.client.RemoveObjects(ctx, s.bucketName, objects, minio.RemoveObjectsOptions{}) {
		if err.Err != nil {
			return fmt.Errorf("failed to delete object %s: %w", err.ObjectName, err.Err)
		}
	}
	return nil
}

// PurgeUserPhotos deletes the photos of each user, continuing past failures.
// It returns how many users were purged along with any errors joined.
func PurgeUserPhotos(ctx context.Context, photos PhotoStore, userIDs []string) (int, error) {
	if photos == nil {
		return 0, nil
	}

	var errs []error
	purged := 0
	for _, id := range userIDs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := photos.DeleteUserPhotos(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", id, err))
			continue
		}
		purged++
	}
	return purged, errors.Join(errs...)
}

func photoKey(userID, contentType string, at time.Time) string {
	ext, ok := photoExtensions[contentType]
	if !ok {
		ext = ".bin"
	}
	return path.Join("recipes", userID, at.UTC().Format("2006/01/02"), uuid.NewString()+ext)
}
