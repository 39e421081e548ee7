package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// FirebaseBackend stores images in a Firebase Cloud Storage bucket and
// hands out real signed URLs.
type FirebaseBackend struct {
	bucket *gcs.BucketHandle
}

// NewFirebaseBackend initializes the Firebase app and resolves the bucket.
// credentialsFile may be empty, in which case application default
// credentials are used.
func NewFirebaseBackend(ctx context.Context, bucketName, credentialsFile string) (*FirebaseBackend, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get firebase storage client: %w", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage bucket: %w", err)
	}

	return &FirebaseBackend{bucket: bucket}, nil
}

func (b *FirebaseBackend) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	url, err := b.bucket.SignedURL(key, &gcs.SignedURLOptions{
		Method:      http.MethodPut,
		Expires:     time.Now().Add(expiresIn),
		ContentType: contentType,
		Scheme:      gcs.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign upload url: %w", err)
	}
	return url, nil
}

func (b *FirebaseBackend) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	url, err := b.bucket.SignedURL(key, &gcs.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: time.Now().Add(expiresIn),
		Scheme:  gcs.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign download url: %w", err)
	}
	return url, nil
}

func (b *FirebaseBackend) FileExists(ctx context.Context, key string) (bool, int64, error) {
	attrs, err := b.bucket.Object(key).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, attrs.Size, nil
}

func (b *FirebaseBackend) DeleteFile(ctx context.Context, key string) error {
	err := b.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// SaveFile is only meaningful for the local backend; firebase uploads go
// straight to the bucket through the signed URL.
func (b *FirebaseBackend) SaveFile(key string, reader io.Reader) error {
	return errors.New("direct save is not supported by the firebase backend")
}

func (b *FirebaseBackend) ReadFile(key string) (io.ReadCloser, error) {
	return nil, errors.New("direct read is not supported by the firebase backend")
}
