package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pubfeed/config"
	"pubfeed/providers"
	"pubfeed/providers/bucket"
	"pubfeed/providers/local"
	"pubfeed/providers/remote"
	"pubfeed/storage"
)

// NewProvider wählt anhand von BIB_SOURCE die Quelle der Bibliographie.
func NewProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (providers.Provider, error) {
	switch cfg.BibSource {
	case config.SourceFile, "":
		return local.NewFetcher(cfg.BibFilePath, logger), nil
	case config.SourceS3:
		client, err := storage.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create s3 client: %w", err)
		}
		return bucket.NewFetcher(client, cfg.S3Bucket, cfg.BibS3Key, logger), nil
	case config.SourceHTTP:
		return remote.NewFetcher(cfg.BibSourceURL, cfg.SourceTimeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown bibliography source %q", cfg.BibSource)
	}
}
