package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/platform/logger"
)

const gcsScheme = "gs://"

type GCSConfig struct {
	Bucket string
	// EmulatorHost points the client at a fake-gcs style emulator.
	EmulatorHost string
	// CredentialsJSON or CredentialsFile; both empty uses ADC.
	CredentialsJSON string
	CredentialsFile string
}

type GCSStore struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, log *logger.Logger, cfg GCSConfig) (*GCSStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("gcs bucket: %w", pkgerrors.ErrNotConfigured)
	}
	client, err := storage.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog := log.With("service", "GCSBlobStore")
	serviceLog.Info("Object storage initialized", "bucket", cfg.Bucket, "emulator_host", cfg.EmulatorHost)
	return &GCSStore{log: serviceLog, client: client, bucket: cfg.Bucket}, nil
}

func clientOptions(cfg GCSConfig) []option.ClientOption {
	if host := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"); host != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", host)
		return []option.ClientOption{option.WithoutAuthentication()}
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if js := strings.TrimSpace(cfg.CredentialsJSON); js != "" {
		return append(opts, option.WithCredentialsJSON([]byte(js)))
	}
	if f := strings.TrimSpace(cfg.CredentialsFile); f != "" {
		return append(opts, option.WithCredentialsFile(f))
	}
	return opts
}

func (s *GCSStore) Put(ctx context.Context, studyID, fileName string, data []byte) (string, error) {
	key, err := objectKey(studyID, fileName)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = mimetype.Detect(data).String()
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return gcsScheme + s.bucket + "/" + key, nil
}

func (s *GCSStore) Get(ctx context.Context, ref string) ([]byte, error) {
	key, err := s.keyFor(ref)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("blob %s: %w", ref, pkgerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open GCS object %q: %w", key, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSStore) DeleteStudy(ctx context.Context, studyID string) error {
	if _, err := objectKey(studyID, "x"); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: studyPrefix(studyID)})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.client.Bucket(s.bucket).Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			s.log.Warn("failed to delete GCS object", "key", attrs.Name, "error", err)
		}
	}
}

func (s *GCSStore) Close() error { return s.client.Close() }

func (s *GCSStore) keyFor(ref string) (string, error) {
	rest, ok := strings.CutPrefix(ref, gcsScheme+s.bucket+"/")
	if !ok || rest == "" {
		return "", fmt.Errorf("blob ref %q: %w", ref, pkgerrors.ErrInvalidArgument)
	}
	return rest, nil
}
