package providers

import "context"

// Provider ist das Interface für jede Quelle, aus der die Bibliographie gelesen wird (Datei, S3, HTTP).
type Provider interface {
	// Fetch liest den vollständigen Rohtext der Bibliographie.
	Fetch(ctx context.Context) (string, error)

	// Name beschreibt die Quelle für Logs und Health-Ausgaben (z.B. "file:citations.bib").
	Name() string
}
