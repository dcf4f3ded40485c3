// Package storage keeps rendered artifacts in a gocloud.dev bucket.
package storage

import (
	"context"
	"log/slog"
	"strings"

	"storehub/config"
	"storehub/internal/domain/service"
	"storehub/internal/util"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/gcsblob"  // gs:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"
)

type blobStore struct {
	bucket *blob.Bucket
	logger *slog.Logger
}

// NewBlobStore wraps an open bucket. Keys are used as-is.
func NewBlobStore(bucket *blob.Bucket, logger *slog.Logger) service.ArtifactStore {
	return &blobStore{bucket: bucket, logger: logger}
}

// BucketParams holds dependencies for opening the artifact bucket.
type BucketParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// OpenBucket opens the configured bucket and closes it on shutdown.
func OpenBucket(params BucketParams) (*blob.Bucket, error) {
	cfg := params.Config.Storage
	if cfg == nil || cfg.BucketURL == "" {
		return nil, errors.New("storage bucket url is not configured")
	}

	bucket, err := blob.OpenBucket(context.Background(), cfg.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", cfg.BucketURL)
	}

	if prefix := strings.Trim(cfg.Prefix, "/"); prefix != "" {
		bucket = blob.PrefixedBucket(bucket, prefix+"/")
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Closing artifact bucket")

			return bucket.Close()
		},
	})

	return bucket, nil
}

func (s *blobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, false, nil
		}

		return nil, false, errors.Wrapf(err, "failed to read artifact %s", key)
	}

	return data, true, nil
}

func (s *blobStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	opts := &blob.WriterOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"sha256": util.Checksum(data)},
	}
	if err := s.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return errors.Wrapf(err, "failed to write artifact %s", key)
	}

	s.logger.Debug("Artifact stored", slog.String("key", key), slog.String("size", util.FormatBytes(int64(len(data)))))

	return nil
}

// Module provides the artifact store.
var Module = fx.Options(
	fx.Provide(
		OpenBucket,
		NewBlobStore,
	),
)
