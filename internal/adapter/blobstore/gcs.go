package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
	"google.golang.org/api/option"
)

var _ port.BlobStore = (*GCS)(nil)

const defaultGCSBaseURL = "https://storage.googleapis.com"

type GCSOpt func(*gcsOpts) error

type gcsOpts struct {
	clientOpts    []option.ClientOption
	publicBaseURL string
}

func GCSCredentialsFile(path string) GCSOpt {
	return func(o *gcsOpts) error {
		if path == "" {
			return errors.New("credentials file path is empty")
		}
		o.clientOpts = append(o.clientOpts, option.WithCredentialsFile(path))
		return nil
	}
}

// GCSEndpoint points the client to an emulator. Requests are sent
// unauthenticated.
func GCSEndpoint(endpoint string) GCSOpt {
	return func(o *gcsOpts) error {
		if endpoint == "" {
			return errors.New("endpoint is empty")
		}
		o.clientOpts = append(o.clientOpts,
			option.WithEndpoint(endpoint),
			option.WithoutAuthentication(),
		)
		return nil
	}
}

func GCSPublicBaseURL(base string) GCSOpt {
	return func(o *gcsOpts) error {
		if base == "" {
			return errors.New("public base url is empty")
		}
		o.publicBaseURL = base
		return nil
	}
}

// GCS stores objects in a Google Cloud Storage bucket. Objects are expected
// to be publicly readable through bucket IAM.
type GCS struct {
	client  *storage.Client
	bucket  *storage.BucketHandle
	baseURL string
}

func NewGCS(ctx context.Context, bucket string, opts ...GCSOpt) (*GCS, error) {
	const op = "NewGCS"
	log := slog.With("op", op)

	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("%s: bucket is empty", op)
	}

	options := gcsOpts{publicBaseURL: defaultGCSBaseURL}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	client, err := storage.NewClient(ctx, options.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create client: %w", op, err)
	}

	log.Info("gcs blob store is ready", "bucket", bucket)
	return &GCS{
		client:  client,
		bucket:  client.Bucket(bucket),
		baseURL: strings.TrimRight(options.publicBaseURL, "/") + "/" + bucket,
	}, nil
}

func (g *GCS) Put(
	ctx context.Context, key, contentType string, body io.Reader,
) (domain.BlobObject, error) {
	const op = "GCS.Put"

	key = strings.TrimSpace(key)
	if key == "" {
		return domain.BlobObject{}, fmt.Errorf("%s: %w", op, ErrInvalidKey)
	}

	w := g.bucket.Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	w.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return domain.BlobObject{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return domain.BlobObject{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.BlobObject{Key: key, URL: objectURL(g.baseURL, key)}, nil
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	const op = "GCS.Delete"

	err := g.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (g *GCS) Close() {
	const op = "GCS.Close"
	log := slog.With("op", op)

	if err := g.client.Close(); err != nil {
		log.Error("failed to close client", "err", err)
		return
	}
	log.Info("gcs client is closed")
}
