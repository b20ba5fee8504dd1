package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/studypath/internal/data/db"
	"github.com/yungbote/studypath/internal/data/kv"
	"github.com/yungbote/studypath/internal/platform/blob"
	"github.com/yungbote/studypath/internal/platform/logger"
)

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidDriver StorageBootstrapErrorCode = "invalid_driver"
	StorageBootstrapErrorMissingConfig StorageBootstrapErrorCode = "missing_config"
	StorageBootstrapErrorConnectFailed StorageBootstrapErrorCode = "connect_failed"
)

// StorageBootstrapError reports which backend failed to come up and why.
type StorageBootstrapError struct {
	Code   StorageBootstrapErrorCode
	Kind   string
	Driver string
	Cause  error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "storage bootstrap failed"
	}
	return fmt.Sprintf("%s storage bootstrap failed (code=%s driver=%q): %v", e.Kind, e.Code, e.Driver, e.Cause)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Storage holds the backends behind the study repo and upload blobs.
type Storage struct {
	KV    kv.Store
	Blobs blob.Store
	DB    *db.Service
	Redis *goredis.Client

	closers []func() error
}

func (s *Storage) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func wireStorage(ctx context.Context, log *logger.Logger, cfg Config) (*Storage, error) {
	log.Info("Wiring storage...", "store_driver", cfg.StoreDriver, "blob_driver", cfg.BlobDriver)
	st := &Storage{}

	if cfg.RedisAddr != "" && (cfg.StoreDriver == "redis" || cfg.NotifyRedisChannel != "") {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Kind: "redis", Driver: "redis", Cause: err}
		}
		st.Redis = rdb
		st.closers = append(st.closers, rdb.Close)
	}

	store, err := resolveKVStore(log, cfg, st)
	if err != nil {
		_ = st.Close()
		log.Error("Key-value store bootstrap failed", "driver", cfg.StoreDriver, "error", err)
		return nil, err
	}
	st.KV = store

	blobs, err := resolveBlobStore(ctx, log, cfg, st)
	if err != nil {
		_ = st.Close()
		log.Error("Blob store bootstrap failed", "driver", cfg.BlobDriver, "error", err)
		return nil, err
	}
	st.Blobs = blobs
	return st, nil
}

func resolveKVStore(log *logger.Logger, cfg Config, st *Storage) (kv.Store, error) {
	switch cfg.StoreDriver {
	case "memory", "":
		return kv.NewMemoryStore(), nil
	case "redis":
		if st.Redis == nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorMissingConfig, Kind: "kv", Driver: cfg.StoreDriver, Cause: errors.New("REDIS_ADDR not set")}
		}
		return kv.NewRedisStoreFromClient(log, st.Redis), nil
	case db.DriverSQLite, db.DriverPostgres:
		svc, err := db.Open(log, db.Config{Driver: cfg.StoreDriver, SQLitePath: cfg.SQLitePath, PostgresDSN: cfg.PostgresDSN})
		if err != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Kind: "kv", Driver: cfg.StoreDriver, Cause: err}
		}
		st.closers = append(st.closers, svc.Close)
		if err := db.AutoMigrateAll(svc.DB()); err != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Kind: "kv", Driver: cfg.StoreDriver, Cause: err}
		}
		st.DB = svc
		return kv.NewSQLStore(svc.DB()), nil
	default:
		return nil, &StorageBootstrapError{Code: StorageBootstrapErrorInvalidDriver, Kind: "kv", Driver: cfg.StoreDriver, Cause: fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)}
	}
}

func resolveBlobStore(ctx context.Context, log *logger.Logger, cfg Config, st *Storage) (blob.Store, error) {
	switch cfg.BlobDriver {
	case "local", "":
		ls, err := blob.NewLocalStore(log, cfg.BlobDir)
		if err != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Kind: "blob", Driver: "local", Cause: err}
		}
		return ls, nil
	case "gcs":
		gs, err := blob.NewGCSStore(ctx, log, blob.GCSConfig{
			Bucket:          cfg.UploadGCSBucket,
			EmulatorHost:    cfg.StorageEmulatorHost,
			CredentialsJSON: cfg.GCPCredentialsJSON,
			CredentialsFile: cfg.GCPCredentialsFile,
		})
		if err != nil {
			code := StorageBootstrapErrorConnectFailed
			if cfg.UploadGCSBucket == "" {
				code = StorageBootstrapErrorMissingConfig
			}
			return nil, &StorageBootstrapError{Code: code, Kind: "blob", Driver: "gcs", Cause: err}
		}
		st.closers = append(st.closers, gs.Close)
		return gs, nil
	default:
		return nil, &StorageBootstrapError{Code: StorageBootstrapErrorInvalidDriver, Kind: "blob", Driver: cfg.BlobDriver, Cause: fmt.Errorf("unsupported blob driver %q", cfg.BlobDriver)}
	}
}
