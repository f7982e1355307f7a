package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pubfeed/config"
	"pubfeed/models"
	"pubfeed/services"
	"pubfeed/storage"

	"go.uber.org/zap"
)

// Snapshot ist das Format der exportierten Datei.
type Snapshot struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	Source       string               `json:"source"`
	Publications []models.Publication `json:"publications"`
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	logging.Info("Starte Snapshot-Export...")

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	if !cfg.S3Configured() {
		logging.Fatal("Snapshot-Export benötigt S3_KEY, S3_SECRET, S3_URL und S3_BUCKET")
	}

	ctx := context.Background()

	// 1. Bibliographie lesen und extrahieren
	provider, err := services.NewProvider(ctx, cfg, logging)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen der Quelle", zap.Error(err))
	}
	content, err := provider.Fetch(ctx)
	if err != nil {
		logging.Fatal("Fehler beim Lesen der Bibliographie", zap.String("source", provider.Name()), zap.Error(err))
	}
	pubs, err := services.NewExtractor(logging, nil).Parse(content)
	if err != nil {
		logging.Fatal("Fehler bei der Extraktion", zap.Error(err))
	}

	// 2. Snapshot komprimieren
	now := time.Now().UTC()
	data, err := encodeSnapshot(Snapshot{GeneratedAt: now, Source: provider.Name(), Publications: pubs})
	if err != nil {
		logging.Fatal("Fehler beim Kodieren des Snapshots", zap.Error(err))
	}

	// 3. Nach S3 hochladen
	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}
	key := snapshotKey(cfg.SnapshotPrefix, now)
	link, err := storage.UploadFile(ctx, s3Client, cfg, key, "application/gzip", data)
	if err != nil {
		logging.Fatal("Fehler beim Hochladen nach S3", zap.String("key", key), zap.Error(err))
	}
	logging.Info("Snapshot hochgeladen", zap.String("link", link), zap.Int("publications", len(pubs)))

	// 4. Alte Snapshots rotieren
	deleted, err := storage.RotateObjects(ctx, s3Client, cfg.S3Bucket, cfg.SnapshotPrefix, cfg.KeepSnapshots)
	if err != nil {
		logging.Fatal("Fehler bei der Rotation alter Snapshots", zap.Error(err))
	}
	if len(deleted) == 0 {
		logging.Info("Keine Rotation nötig.", zap.Int("keep", cfg.KeepSnapshots))
	} else {
		logging.Info("Alte Snapshots gelöscht", zap.Strings("keys", deleted))
	}

	logging.Info("Snapshot-Export erfolgreich abgeschlossen.")
}

func snapshotKey(prefix string, at time.Time) string {
	return fmt.Sprintf("%ssnapshot-%s.json.gz", prefix, at.Format("2006-01-02T15-04-05Z"))
}

func encodeSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gzipWriter).Encode(s); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
