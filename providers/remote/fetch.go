package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxBodyBytes begrenzt die Größe einer entfernten Bibliographie.
const maxBodyBytes = 32 << 20

// Fetcher lädt die Bibliographie per HTTP GET von einer URL.
type Fetcher struct {
	URL    string
	Client *http.Client
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen HTTP-Fetcher.
func NewFetcher(url string, timeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

func (f *Fetcher) Name() string {
	return "http:" + f.URL
}

func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	log := f.Logger.With(zap.String("url", f.URL))
	log.Debug("Lade Bibliographie von URL.")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", f.URL, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		log.Error("HTTP-Abruf der Bibliographie fehlgeschlagen", zap.Error(err))
		return "", fmt.Errorf("fetch %s: %w", f.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error("Unerwarteter HTTP-Status", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("fetch %s failed with status: %d", f.URL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", f.URL, err)
	}
	log.Debug("Bibliographie geladen", zap.Int("bytes", len(data)))
	return string(data), nil
}
