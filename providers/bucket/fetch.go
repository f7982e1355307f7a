package bucket

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pubfeed/storage"
)

// Fetcher liest die Bibliographie als Objekt aus einem S3-Bucket.
type Fetcher struct {
	Client storage.ObjectAPI
	Bucket string
	Key    string
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen S3-Fetcher.
func NewFetcher(client storage.ObjectAPI, bucket, key string, logger *zap.Logger) *Fetcher {
	return &Fetcher{Client: client, Bucket: bucket, Key: key, Logger: logger}
}

func (f *Fetcher) Name() string {
	return fmt.Sprintf("s3://%s/%s", f.Bucket, f.Key)
}

func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	log := f.Logger.With(zap.String("bucket", f.Bucket), zap.String("key", f.Key))
	data, err := storage.DownloadFile(ctx, f.Client, f.Bucket, f.Key)
	if err != nil {
		log.Error("Bibliographie konnte nicht aus S3 geladen werden", zap.Error(err))
		return "", err
	}
	log.Debug("Bibliographie aus S3 geladen", zap.Int("bytes", len(data)))
	return string(data), nil
}
