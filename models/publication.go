package models

// Fallback-Werte für fehlende BibTeX-Felder. Die UI soll nie leere Labels rendern.
const (
	DefaultTitle   = "Untitled"
	DefaultAuthors = "Unknown Authors"
	UnknownYear    = "Unknown Year"
	DefaultURL     = "#"
)

// Publication repräsentiert einen aus der Bibliographie extrahierten Eintrag.
// Einträge werden bei jedem Extraktionslauf neu erzeugt und danach nicht mehr verändert.
type Publication struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Year      string `json:"year"`
	Journal   string `json:"journal"`
	Citations int    `json:"citations"`
	URL       string `json:"url"`
	BibTeX    string `json:"bibtex"`
	// Timestamp in Epoch-Millisekunden, nil wenn kein Jahr vorhanden ist.
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// SortTime liefert den Timestamp für Vergleiche, fehlende Werte zählen als 0.
func (p Publication) SortTime() int64 {
	if p.Timestamp == nil {
		return 0
	}
	return *p.Timestamp
}

// HasLink meldet, ob die Publikation eine echte URL besitzt.
func (p Publication) HasLink() bool {
	return p.URL != "" && p.URL != DefaultURL
}

// MinimalPublication ist die reduzierte Projektion für schnelle Erst-Ladevorgänge (ohne BibTeX und Zitationen).
type MinimalPublication struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Year      string `json:"year"`
	Journal   string `json:"journal"`
	URL       string `json:"url"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// Minimal projiziert eine Publikation auf die reduzierte Darstellung.
func (p Publication) Minimal() MinimalPublication {
	return MinimalPublication{
		ID:        p.ID,
		Title:     p.Title,
		Authors:   p.Authors,
		Year:      p.Year,
		Journal:   p.Journal,
		URL:       p.URL,
		Timestamp: p.Timestamp,
	}
}
