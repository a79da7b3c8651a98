package persistctl

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/goliatone/go-persist/pkg/storage"
	"github.com/goliatone/go-persist/pkg/storage/boltdb"
	"github.com/goliatone/go-persist/pkg/storage/redis"
	"github.com/goliatone/go-persist/pkg/storage/s3"
	"github.com/goliatone/go-persist/pkg/storage/sqlite"
	"go.uber.org/zap"
)

// Backend names accepted by --backend.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

// Settings selects and addresses a storage backend.
type Settings struct {
	Backend string
	DSN     string
	Bucket  string
	Prefix  string
	Region  string
}

// Opener builds the backend described by settings. The returned closer
// releases it.
type Opener func(ctx context.Context, settings Settings, logger *zap.Logger) (storage.Storage, io.Closer, error)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenBackend is the default Opener.
func OpenBackend(ctx context.Context, settings Settings, logger *zap.Logger) (storage.Storage, io.Closer, error) {
	var (
		backend storage.Storage
		closer  io.Closer = nopCloser{}
	)
	switch settings.Backend {
	case "", BackendMemory:
		backend = storage.NewMemory()
	case BackendBolt:
		bolt, err := boltdb.Open(settings.DSN, boltdb.WithBucket(settings.Bucket), boltdb.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		backend, closer = bolt, bolt
	case BackendSQLite:
		db, err := sqlite.Open(settings.DSN)
		if err != nil {
			return nil, nil, err
		}
		backend, closer = db, db
	case BackendRedis:
		cfg := redis.DefaultConfig()
		if settings.DSN != "" {
			cfg.Addr = settings.DSN
		}
		client, err := redis.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		backend, closer = client, client
	case BackendS3:
		if settings.Bucket == "" {
			return nil, nil, fmt.Errorf("s3 backend requires --bucket")
		}
		config := aws.Config{Region: aws.String(settings.Region)}
		if settings.DSN != "" {
			config.Endpoint = aws.String(settings.DSN)
			config.S3ForcePathStyle = aws.Bool(true)
		}
		sess, err := session.NewSession(&config)
		if err != nil {
			return nil, nil, fmt.Errorf("s3 session: %w", err)
		}
		backend = s3.New(awss3.New(sess), settings.Bucket, "")
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", settings.Backend)
	}

	if settings.Prefix != "" {
		backend = storage.NewPrefixed(backend, settings.Prefix)
	}
	logger.Debug("Opened backend",
		zap.String("backend", settings.Backend),
		zap.String("prefix", settings.Prefix),
	)
	return backend, closer, nil
}
