package models

// PublicationGroup bündelt die Publikationen eines Jahres innerhalb einer Seite.
type PublicationGroup struct {
	Year         string        `json:"year"`
	Publications []Publication `json:"publications"`
}

// Pagination beschreibt die Position der ausgelieferten Seite im gefilterten Gesamtbestand.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// PublicationPage ist die Antwort des Query-Endpunkts.
// Data enthält je nach Modus []Publication, []PublicationGroup oder []MinimalPublication.
type PublicationPage struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}
