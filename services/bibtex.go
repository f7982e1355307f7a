package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pubfeed/models"
)

// entryDelimiter trennt die Einträge einer Bibliographie. Ein "@" mitten in einer Zeile
// (z.B. in einer E-Mail-Adresse) beginnt keinen neuen Eintrag.
const entryDelimiter = "\n@"

// byteOrderMark steht bei manchen Exporten vor dem ersten Eintrag; strings.TrimSpace entfernt es nicht.
const byteOrderMark = "\ufeff"

var (
	// fieldPatterns cached ein kompiliertes Pattern pro Feldname.
	fieldPatterns sync.Map

	citationsPattern  = regexp.MustCompile(`Cited by (\d+|None)`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	entryHeadPattern  = regexp.MustCompile(`^([A-Za-z]+)\s*\{`)
)

// Spezial-Einträge, die keine Publikation beschreiben.
var nonPublicationTypes = map[string]bool{
	"comment":  true,
	"preamble": true,
	"string":   true,
}

// monthIndex bildet englische Monatsnamen (voll und abgekürzt) auf 0-basierte Indizes ab.
var monthIndex = map[string]int{
	"jan": 0, "january": 0,
	"feb": 1, "february": 1,
	"mar": 2, "march": 2,
	"apr": 3, "april": 3,
	"may": 4,
	"jun": 5, "june": 5,
	"jul": 6, "july": 6,
	"aug": 7, "august": 7,
	"sep": 8, "september": 8,
	"oct": 9, "october": 9,
	"nov": 10, "november": 10,
	"dec": 11, "december": 11,
}

func fieldPattern(name string) *regexp.Regexp {
	if re, ok := fieldPatterns.Load(name); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\s*=\s*\{([^}]*)\}`)
	actual, _ := fieldPatterns.LoadOrStore(name, re)
	return actual.(*regexp.Regexp)
}

// ExtractField sucht `name = {value}` (Groß-/Kleinschreibung egal) und liefert den getrimmten Wert.
// Leere Werte gelten als fehlend.
//
// Bekannte Einschränkung: verschachtelte Klammern werden nicht unterstützt. Der Wert endet an der
// ersten schließenden Klammer, aus `title = {The {GPU} Era}` wird also "The {GPU".
func ExtractField(entry, name string) (string, bool) {
	m := fieldPattern(name).FindStringSubmatch(entry)
	if m == nil {
		return "", false
	}
	value := strings.TrimSpace(m[1])
	if value == "" {
		return "", false
	}
	return value, true
}

func fieldOr(entry, name, fallback string) string {
	if v, ok := ExtractField(entry, name); ok {
		return v
	}
	return fallback
}

// ParseCitations liest die Zitationszahl aus einem Notizfeld ("Cited by 42").
// "Cited by None", ein fehlender Satz oder eine nicht lesbare Zahl ergeben 0.
func ParseCitations(note string) int {
	m := citationsPattern.FindStringSubmatch(note)
	if m == nil || m[1] == "None" {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ExtractTimestamp bildet year/month/day eines Eintrags auf Epoch-Millisekunden ab (lokale Mitternacht).
// Ohne lesbares Jahr gibt es keinen Timestamp. Unbekannte Monate zählen als Januar, fehlende Tage als 1.
func ExtractTimestamp(entry string) *int64 {
	yearText, ok := ExtractField(entry, "year")
	if !ok {
		return nil
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return nil
	}

	month := 0
	if m, ok := ExtractField(entry, "month"); ok {
		month = parseMonth(m)
	}

	day := 1
	if d, ok := ExtractField(entry, "day"); ok {
		if n, err := strconv.Atoi(d); err == nil && n > 0 {
			day = n
		}
	}

	ts := time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.Local).UnixMilli()
	return &ts
}

// parseMonth akzeptiert Monatsnamen und zusätzlich numerische Monate 1-12.
func parseMonth(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if idx, ok := monthIndex[s]; ok {
		return idx
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return n - 1
	}
	return 0
}

// SplitEntries zerlegt den Rohtext in Eintragsrümpfe ohne führendes "@".
// Ein führendes BOM wird entfernt. Text vor dem ersten Eintrag (Präambel) wird verworfen, leere Stücke ebenso.
func SplitEntries(content string) []string {
	content = strings.TrimPrefix(content, byteOrderMark)
	chunks := strings.Split(content, entryDelimiter)
	entries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if i == 0 {
			if !strings.HasPrefix(chunk, "@") {
				continue
			}
			chunk = strings.TrimPrefix(chunk, "@")
		}
		if chunk == "" {
			continue
		}
		entries = append(entries, chunk)
	}
	return entries
}

// Extractor wandelt den Rohtext einer Bibliographie in Publikationen um.
type Extractor struct {
	Logger  *zap.Logger
	Metrics *Metrics
	NewID   func() string
}

// NewExtractor erstellt einen neuen Extractor mit UUID-IDs.
func NewExtractor(logger *zap.Logger, metrics *Metrics) *Extractor {
	return &Extractor{
		Logger:  logger,
		Metrics: metrics,
		NewID:   uuid.NewString,
	}
}

// Parse extrahiert alle Publikationen, sortiert nach Timestamp absteigend.
// Fehlerhafte Einträge werden geloggt und übersprungen. Bleibt kein Eintrag übrig,
// wird ErrNoValidPublications zurückgegeben.
func (e *Extractor) Parse(content string) ([]models.Publication, error) {
	e.Logger.Info("Starting BibTeX parsing", zap.Int("bytes", len(content)))

	entries := SplitEntries(content)
	publications := make([]models.Publication, 0, len(entries))
	for i, entry := range entries {
		pub, skip, err := e.safeParseEntry(entry)
		if err != nil {
			e.Logger.Warn("Error parsing entry", zap.Int("index", i), zap.Error(&BibParseError{
				Code:    CodeMalformedEntry,
				Message: "entry skipped",
				Index:   i,
				Cause:   err,
			}))
			e.Metrics.entrySkipped()
			continue
		}
		if skip {
			continue
		}
		publications = append(publications, pub)
	}

	sort.SliceStable(publications, func(i, j int) bool {
		return publications[i].SortTime() > publications[j].SortTime()
	})

	if len(publications) == 0 {
		e.Logger.Error("BibTeX parsing failed", zap.Int("entries", len(entries)), zap.Error(ErrNoValidPublications))
		e.Metrics.extractionResult("empty")
		return nil, &BibParseError{Code: CodeNoValidPublications, Message: "no valid publications found in file"}
	}

	e.Logger.Info("Successfully parsed publications", zap.Int("count", len(publications)), zap.Int("entries", len(entries)))
	e.Metrics.extractionResult("success")
	e.Metrics.publicationCount(len(publications))
	return publications, nil
}

// safeParseEntry fängt Panics eines einzelnen Eintrags ab, damit der Rest der Datei weiterläuft.
func (e *Extractor) safeParseEntry(entry string) (pub models.Publication, skip bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while parsing entry: %v", r)
		}
	}()
	return e.parseEntry(entry)
}

// parseEntry liest einen einzelnen Eintragsrumpf. skip ist true für @comment, @string und @preamble.
func (e *Extractor) parseEntry(entry string) (models.Publication, bool, error) {
	head := entryHeadPattern.FindStringSubmatch(entry)
	if head == nil {
		return models.Publication{}, false, errMalformedHead(entry)
	}
	if nonPublicationTypes[strings.ToLower(head[1])] {
		return models.Publication{}, true, nil
	}

	note, _ := ExtractField(entry, "note")
	pub := models.Publication{
		ID:        e.NewID(),
		Title:     fieldOr(entry, "title", models.DefaultTitle),
		Authors:   whitespacePattern.ReplaceAllString(fieldOr(entry, "author", models.DefaultAuthors), " "),
		Year:      fieldOr(entry, "year", models.UnknownYear),
		Journal:   fieldOr(entry, "journal", ""),
		Citations: ParseCitations(note),
		URL:       fieldOr(entry, "url", models.DefaultURL),
		BibTeX:    "@" + entry,
		Timestamp: ExtractTimestamp(entry),
	}
	return pub, false, nil
}

type malformedHeadError struct {
	head string
}

func (e malformedHeadError) Error() string {
	return "entry does not start with a type and opening brace: " + strconv.Quote(e.head)
}

func errMalformedHead(entry string) error {
	head := entry
	if i := strings.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if len(head) > 40 {
		head = head[:40]
	}
	return malformedHeadError{head: head}
}
