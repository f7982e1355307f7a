package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Unterstützte Quellen für die Bibliographie-Datei.
const (
	SourceFile = "file"
	SourceS3   = "s3"
	SourceHTTP = "http"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	HTTPPort       string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey   string `envconfig:"API_SECRET_KEY"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`

	// Quelle der Bibliographie: file, s3 oder http
	BibSource     string        `envconfig:"BIB_SOURCE" default:"file"`
	BibFilePath   string        `envconfig:"BIB_FILE_PATH" default:"citations.bib"`
	BibSourceURL  string        `envconfig:"BIB_SOURCE_URL"`
	BibS3Key      string        `envconfig:"BIB_S3_OBJECT_KEY" default:"citations.bib"`
	SourceTimeout time.Duration `envconfig:"SOURCE_TIMEOUT" default:"30s"`

	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION" default:"eu-central-1"`
	S3Bucket string `envconfig:"S3_BUCKET"`

	CacheTTL          time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	CacheWarmSchedule string        `envconfig:"CACHE_WARM_SCHEDULE"`

	DefaultPageLimit  int    `envconfig:"DEFAULT_PAGE_LIMIT" default:"20"`
	MaxPageLimit      int    `envconfig:"MAX_PAGE_LIMIT" default:"100"`
	CollationLanguage string `envconfig:"COLLATION_LANGUAGE" default:"en"`

	// Snapshot-Export (cmd/snapshot)
	SnapshotPrefix string `envconfig:"SNAPSHOT_PREFIX" default:"snapshots/"`
	KeepSnapshots  int    `envconfig:"KEEP_SNAPSHOTS" default:"4"`
}

// S3Configured meldet, ob alle Zugangsdaten für S3 gesetzt sind.
func (c *Config) S3Configured() bool {
	return c.S3Key != "" && c.S3Secret != "" && c.S3URL != "" && c.S3Bucket != ""
}

// Validate prüft die quellenspezifischen Pflichtfelder.
func (c *Config) Validate() error {
	c.BibSource = strings.ToLower(strings.TrimSpace(c.BibSource))
	switch c.BibSource {
	case SourceFile:
		if c.BibFilePath == "" {
			return fmt.Errorf("BIB_FILE_PATH darf nicht leer sein")
		}
	case SourceS3:
		if !c.S3Configured() {
			return fmt.Errorf("BIB_SOURCE=s3 benötigt S3_KEY, S3_SECRET, S3_URL und S3_BUCKET")
		}
		if c.BibS3Key == "" {
			return fmt.Errorf("BIB_S3_OBJECT_KEY darf nicht leer sein")
		}
	case SourceHTTP:
		if c.BibSourceURL == "" {
			return fmt.Errorf("BIB_SOURCE=http benötigt BIB_SOURCE_URL")
		}
	default:
		return fmt.Errorf("unbekannte BIB_SOURCE %q", c.BibSource)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL muss positiv sein, ist %s", c.CacheTTL)
	}
	if c.DefaultPageLimit <= 0 || c.MaxPageLimit <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_LIMIT und MAX_PAGE_LIMIT müssen positiv sein")
	}
	if c.DefaultPageLimit > c.MaxPageLimit {
		return fmt.Errorf("DEFAULT_PAGE_LIMIT (%d) größer als MAX_PAGE_LIMIT (%d)", c.DefaultPageLimit, c.MaxPageLimit)
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return &c, err
	}
	return &c, c.Validate()
}
