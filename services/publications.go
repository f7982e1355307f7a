package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pubfeed/config"
	"pubfeed/models"
	"pubfeed/providers"
)

// PublicationService verbindet Quelle, Extraktion, Cache und Abfragen.
type PublicationService struct {
	Config    *config.Config
	Logger    *zap.Logger
	Provider  providers.Provider
	Extractor *Extractor
	Cache     *PublicationCache
	Engine    *QueryEngine
	Metrics   *Metrics
}

// Stats beschreibt den aktuellen Zustand des Caches für den Health-Endpunkt.
type Stats struct {
	Source       string     `json:"source"`
	Publications int        `json:"publications"`
	LastRefresh  *time.Time `json:"last_refresh,omitempty"`
}

// NewPublicationService erstellt eine neue Instanz des PublicationService.
func NewPublicationService(cfg *config.Config, logger *zap.Logger, provider providers.Provider, metrics *Metrics) *PublicationService {
	return &PublicationService{
		Config:    cfg,
		Logger:    logger,
		Provider:  provider,
		Extractor: NewExtractor(logger, metrics),
		Cache:     NewPublicationCache(cfg.CacheTTL),
		Engine:    NewQueryEngine(cfg.CollationLanguage, cfg.DefaultPageLimit, cfg.MaxPageLimit),
		Metrics:   metrics,
	}
}

// load liest die Quelle und extrahiert die Publikationen.
func (s *PublicationService) load(ctx context.Context) ([]models.Publication, error) {
	log := s.Logger.With(zap.String("source", s.Provider.Name()))
	content, err := s.Provider.Fetch(ctx)
	if err != nil {
		log.Error("Bibliographie konnte nicht gelesen werden", zap.Error(err))
		s.Metrics.extractionResult("source_error")
		return nil, fmt.Errorf("load publications from %s: %w", s.Provider.Name(), err)
	}
	pubs, err := s.Extractor.Parse(content)
	if err != nil {
		log.Error("Extraktion fehlgeschlagen", zap.Error(err))
		return nil, err
	}
	return pubs, nil
}

// Publications liefert den gecachten Bestand und lädt ihn nach Ablauf der TTL neu.
func (s *PublicationService) Publications(ctx context.Context) ([]models.Publication, error) {
	records, hit, err := s.Cache.Get(ctx, s.load)
	s.Metrics.cacheLookup(hit)
	return records, err
}

// Query beantwortet eine Abfrage. Kann kein Bestand geladen werden, ist die Antwort eine leere Seite
// statt eines Fehlers.
func (s *PublicationService) Query(ctx context.Context, params QueryParams) models.PublicationPage {
	start := time.Now()
	defer s.Metrics.observeQuery(start)

	records, err := s.Publications(ctx)
	if err != nil {
		s.Logger.Warn("Liefere leere Seite, da keine Publikationen geladen werden konnten", zap.Error(err))
		return s.Engine.EmptyPage(params)
	}
	if len(records) == 0 {
		return s.Engine.EmptyPage(params)
	}
	return s.Engine.Run(records, params)
}

// FindByID sucht eine Publikation im aktuellen Bestand. IDs gelten nur bis zum nächsten Refresh.
func (s *PublicationService) FindByID(ctx context.Context, id string) (models.Publication, bool, error) {
	records, err := s.Publications(ctx)
	if err != nil {
		return models.Publication{}, false, err
	}
	for _, pub := range records {
		if pub.ID == id {
			return pub, true, nil
		}
	}
	return models.Publication{}, false, nil
}

// Refresh lädt den Bestand unabhängig von der TTL neu und gibt die Anzahl der Publikationen zurück.
func (s *PublicationService) Refresh(ctx context.Context) (int, error) {
	records, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	s.Cache.Store(records)
	s.Logger.Info("Publikations-Cache aktualisiert", zap.Int("publications", len(records)))
	return len(records), nil
}

// Stats liefert den Zustand des Caches, ohne einen Ladevorgang auszulösen.
func (s *PublicationService) Stats() Stats {
	records, last := s.Cache.Snapshot()
	st := Stats{Source: s.Provider.Name(), Publications: len(records)}
	if !last.IsZero() {
		st.LastRefresh = &last
	}
	return st
}
