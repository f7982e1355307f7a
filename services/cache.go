package services

import (
	"context"
	"sync"
	"time"

	"pubfeed/models"
)

// Loader liefert einen frischen Publikationsbestand.
type Loader func(ctx context.Context) ([]models.Publication, error)

// PublicationCache hält das Ergebnis des letzten Extraktionslaufs für eine feste Dauer.
//
// Der Mutex schützt nur die Referenz auf den Bestand, nicht den Ladevorgang: gleichzeitige
// Refreshes sind erlaubt, der zuletzt fertige gewinnt.
type PublicationCache struct {
	mu          sync.RWMutex
	records     []models.Publication
	lastRefresh time.Time

	ttl time.Duration
	now func() time.Time
}

// NewPublicationCache erstellt einen leeren Cache mit der gegebenen Lebensdauer.
func NewPublicationCache(ttl time.Duration) *PublicationCache {
	return &PublicationCache{ttl: ttl, now: time.Now}
}

// Get liefert den gecachten Bestand oder lädt ihn synchron neu, wenn er fehlt oder abgelaufen ist.
// hit meldet, ob der Cache getroffen wurde. Bei Ladefehlern bleibt der alte Bestand unverändert.
func (c *PublicationCache) Get(ctx context.Context, load Loader) (records []models.Publication, hit bool, err error) {
	if records, ok := c.fresh(); ok {
		return records, true, nil
	}
	records, err = load(ctx)
	if err != nil {
		return nil, false, err
	}
	c.Store(records)
	return records, false, nil
}

func (c *PublicationCache) fresh() ([]models.Publication, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.records == nil || c.lastRefresh.IsZero() {
		return nil, false
	}
	if c.now().Sub(c.lastRefresh) >= c.ttl {
		return nil, false
	}
	return c.records, true
}

// Store ersetzt den Bestand vollständig und setzt den Refresh-Zeitpunkt.
func (c *PublicationCache) Store(records []models.Publication) {
	c.mu.Lock()
	c.records = records
	c.lastRefresh = c.now()
	c.mu.Unlock()
}

// Invalidate erzwingt beim nächsten Get einen Neuladevorgang.
func (c *PublicationCache) Invalidate() {
	c.mu.Lock()
	c.lastRefresh = time.Time{}
	c.mu.Unlock()
}

// Snapshot liefert den aktuellen Bestand und den Refresh-Zeitpunkt, ohne zu laden.
func (c *PublicationCache) Snapshot() ([]models.Publication, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.records, c.lastRefresh
}
