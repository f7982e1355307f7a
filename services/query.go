package services

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"pubfeed/models"
)

// Sortierschlüssel
const (
	SortTime      = "time"
	SortTitle     = "title"
	SortAuthor    = "author"
	SortCitations = "citations"
)

// Richtungen, Gruppierungen und Antwortmodi
const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"

	GroupYear = "year"
	GroupNone = "none"

	ModeFull    = "full"
	ModeMinimal = "minimal"
)

// QueryParams sind die Parameter einer Abfrage des Publikations-Feeds.
type QueryParams struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	Sort      string `json:"sort"`
	Direction string `json:"direction"`
	Group     string `json:"group"`
	Search    string `json:"search"`
	Mode      string `json:"mode"`
}

// QueryEngine führt Filter, Sortierung, Paginierung und Gruppierung auf einem Bestand aus.
type QueryEngine struct {
	Language     language.Tag
	DefaultLimit int
	MaxLimit     int
}

// NewQueryEngine erstellt eine Engine. Eine unbekannte Sprache fällt auf Englisch zurück.
func NewQueryEngine(lang string, defaultLimit, maxLimit int) *QueryEngine {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &QueryEngine{Language: tag, DefaultLimit: defaultLimit, MaxLimit: maxLimit}
}

// Normalize setzt Defaults für fehlende oder ungültige Parameter.
func (q *QueryEngine) Normalize(p QueryParams) QueryParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = q.DefaultLimit
	}
	if q.MaxLimit > 0 && p.Limit > q.MaxLimit {
		p.Limit = q.MaxLimit
	}

	switch p.Sort {
	case SortTime, SortTitle, SortAuthor, SortCitations:
	default:
		p.Sort = SortTime
	}
	if p.Direction != DirectionAsc {
		p.Direction = DirectionDesc
	}
	switch p.Group {
	case "", GroupYear:
		p.Group = GroupYear
	default:
		p.Group = GroupNone
	}
	if p.Mode != ModeMinimal {
		p.Mode = ModeFull
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// Run beantwortet eine Abfrage. Reihenfolge: filtern, sortieren, paginieren, gruppieren, projizieren.
// Der übergebene Bestand wird nicht verändert.
func (q *QueryEngine) Run(records []models.Publication, params QueryParams) models.PublicationPage {
	p := q.Normalize(params)

	filtered := FilterPublications(records, p.Search)
	cmp := q.comparator(p.Sort, p.Direction)
	sort.SliceStable(filtered, func(i, j int) bool {
		return cmp(&filtered[i], &filtered[j]) < 0
	})

	page, pagination := Paginate(filtered, p.Page, p.Limit)

	var data any
	switch {
	case p.Mode == ModeMinimal:
		minimal := make([]models.MinimalPublication, len(page))
		for i, pub := range page {
			minimal[i] = pub.Minimal()
		}
		data = minimal
	case p.Group == GroupYear:
		data = GroupByYear(page, cmp)
	default:
		data = page
	}
	return models.PublicationPage{Data: data, Pagination: pagination}
}

// EmptyPage ist die Antwort, wenn kein Bestand geladen werden konnte.
func (q *QueryEngine) EmptyPage(params QueryParams) models.PublicationPage {
	p := q.Normalize(params)
	return models.PublicationPage{
		Data:       []models.Publication{},
		Pagination: models.Pagination{Page: 1, Limit: p.Limit},
	}
}

// FilterPublications behält Publikationen, in denen jeder Suchbegriff in Titel, Autoren oder Journal vorkommt.
// Das Ergebnis ist immer eine neue Slice.
func FilterPublications(records []models.Publication, search string) []models.Publication {
	terms := strings.Fields(foldText(search))
	out := make([]models.Publication, 0, len(records))
	for _, pub := range records {
		if matchesAll(pub, terms) {
			out = append(out, pub)
		}
	}
	return out
}

func matchesAll(pub models.Publication, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	title := foldText(pub.Title)
	authors := foldText(pub.Authors)
	journal := foldText(pub.Journal)
	for _, term := range terms {
		if !strings.Contains(title, term) && !strings.Contains(authors, term) && !strings.Contains(journal, term) {
			return false
		}
	}
	return true
}

// foldText normalisiert auf NFC und Kleinschreibung, damit "é" und "é" gleich vergleichen.
func foldText(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// comparator liefert den Basisvergleich des Sortierschlüssels; asc kehrt ihn um.
// Negativ bedeutet: a steht vor b.
func (q *QueryEngine) comparator(key, direction string) func(a, b *models.Publication) int {
	var base func(a, b *models.Publication) int
	switch key {
	case SortTitle, SortAuthor:
		// collate.Collator ist nicht nebenläufig nutzbar, daher einer pro Abfrage.
		col := collate.New(q.Language)
		if key == SortTitle {
			base = func(a, b *models.Publication) int { return col.CompareString(a.Title, b.Title) }
		} else {
			base = func(a, b *models.Publication) int { return col.CompareString(a.Authors, b.Authors) }
		}
	case SortCitations:
		base = func(a, b *models.Publication) int { return b.Citations - a.Citations }
	default:
		base = func(a, b *models.Publication) int {
			if c := compareInt64(b.SortTime(), a.SortTime()); c != 0 {
				return c
			}
			return leadingInt(b.Year) - leadingInt(a.Year)
		}
	}
	if direction == DirectionAsc {
		return func(a, b *models.Publication) int { return -base(a, b) }
	}
	return base
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// leadingInt liest die führenden Ziffern ("2020a" -> 2020); ohne Ziffern 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	n := 0
	for i, r := range s {
		if r < '0' || r > '9' {
			if i == 0 {
				return 0
			}
			break
		}
		n = n*10 + int(r-'0')
		if n > 1<<30 {
			break
		}
	}
	return n
}

// Paginate schneidet die Seite page (1-basiert) heraus. Seiten außerhalb des Bereichs sind leer.
// Ein limit < 1 liefert immer eine leere Seite.
func Paginate(records []models.Publication, page, limit int) ([]models.Publication, models.Pagination) {
	total := len(records)
	pagination := models.Pagination{Page: page, Limit: limit, TotalItems: total}
	if limit < 1 {
		return []models.Publication{}, pagination
	}
	pagination.TotalPages = total / limit
	if total%limit != 0 {
		pagination.TotalPages++
	}
	// Vor der Multiplikation prüfen, sonst läuft (page-1)*limit bei großen Seiten über.
	if page < 1 || page > pagination.TotalPages {
		return []models.Publication{}, pagination
	}
	start := (page - 1) * limit
	end := total
	if limit < total-start {
		end = start + limit
	}
	return records[start:end], pagination
}

// GroupByYear bündelt eine Seite nach dem rohen Jahresfeld. Jede Gruppe wird mit cmp sortiert,
// die Gruppen absteigend nach Jahr; "Unknown Year" steht unabhängig von der Richtung immer am Ende.
func GroupByYear(page []models.Publication, cmp func(a, b *models.Publication) int) []models.PublicationGroup {
	index := map[string]int{}
	groups := []models.PublicationGroup{}
	for _, pub := range page {
		year := pub.Year
		if year == "" {
			year = models.UnknownYear
		}
		i, ok := index[year]
		if !ok {
			i = len(groups)
			index[year] = i
			groups = append(groups, models.PublicationGroup{Year: year})
		}
		groups[i].Publications = append(groups[i].Publications, pub)
	}

	for _, g := range groups {
		pubs := g.Publications
		sort.SliceStable(pubs, func(i, j int) bool {
			return cmp(&pubs[i], &pubs[j]) < 0
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return yearBefore(groups[i].Year, groups[j].Year)
	})
	return groups
}

// yearBefore ordnet numerische Jahre absteigend, danach sonstige Werte alphabetisch, zuletzt "Unknown Year".
func yearBefore(a, b string) bool {
	if a == models.UnknownYear || b == models.UnknownYear {
		return b == models.UnknownYear && a != models.UnknownYear
	}
	ya, aNumeric := numericYear(a)
	yb, bNumeric := numericYear(b)
	switch {
	case aNumeric && bNumeric:
		return ya > yb
	case aNumeric != bNumeric:
		return aNumeric
	}
	return a < b
}

func numericYear(s string) (int, bool) {
	n := leadingInt(s)
	return n, n > 0
}
