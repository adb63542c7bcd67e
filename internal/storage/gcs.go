package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const csvContentType = "text/csv; charset=utf-8"

// GCSStore keeps objects in a Google Cloud Storage bucket. Versions are
// object generations, so conditional writes map onto GCS preconditions.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore creates a storage client for bucket. Credentials come from
// ClientOptionsFromEnv plus any extra options; STORAGE_EMULATOR_HOST is
// honored by the client library itself.
func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("gcs bucket name is required")
	}

	opts = append(ClientOptionsFromEnv(), opts...)
	opts = append(opts, option.WithScopes(gcs.ScopeReadWrite))
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{client: client, bucket: bucket}, nil
}

// ClientOptionsFromEnv reads service account credentials from
// GOOGLE_APPLICATION_CREDENTIALS_JSON (inline JSON) or
// GOOGLE_APPLICATION_CREDENTIALS (inline JSON or a file path).
// With neither set, application default credentials apply.
func ClientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func (s *GCSStore) Get(ctx context.Context, key string) (Object, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return Object{}, ErrNotFound
		}
		return Object{}, fmt.Errorf("open gs://%s/%s: %w", s.bucket, key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return Object{}, fmt.Errorf("read gs://%s/%s: %w", s.bucket, key, err)
	}

	return Object{
		Data:    data,
		Version: strconv.FormatInt(r.Attrs.Generation, 10),
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, data []byte, cond Precondition) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(key)

	if !cond.Unconditional() {
		if cond.Version() == "" {
			obj = obj.If(gcs.Conditions{DoesNotExist: true})
		} else {
			gen, err := strconv.ParseInt(cond.Version(), 10, 64)
			if err != nil {
				// A token we never issued cannot match the stored generation.
				return "", ErrConflict
			}
			obj = obj.If(gcs.Conditions{GenerationMatch: gen})
		}
	}

	w := obj.NewWriter(ctx)
	w.ContentType = csvContentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", s.writeError(key, err)
	}
	if err := w.Close(); err != nil {
		return "", s.writeError(key, err)
	}

	return strconv.FormatInt(w.Attrs().Generation, 10), nil
}

func (s *GCSStore) writeError(key string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
		return ErrConflict
	}
	return fmt.Errorf("write gs://%s/%s: %w", s.bucket, key, err)
}

// Close releases the storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

var _ Store = (*GCSStore)(nil)
