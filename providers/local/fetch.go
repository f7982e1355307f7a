package local

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Fetcher liest die Bibliographie aus einer lokalen Datei.
type Fetcher struct {
	Path   string
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Datei-Fetcher.
func NewFetcher(path string, logger *zap.Logger) *Fetcher {
	return &Fetcher{Path: path, Logger: logger}
}

func (f *Fetcher) Name() string {
	return "file:" + f.Path
}

// Fetch liest die Datei bei jedem Aufruf neu ein.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		f.Logger.Error("Bibliographie-Datei konnte nicht gelesen werden", zap.String("path", f.Path), zap.Error(err))
		return "", fmt.Errorf("read bibliography %s: %w", f.Path, err)
	}
	f.Logger.Debug("Bibliographie-Datei gelesen", zap.String("path", f.Path), zap.Int("bytes", len(data)))
	return string(data), nil
}
