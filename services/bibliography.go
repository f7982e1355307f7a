package services

import (
	"fmt"
	"strings"

	"pubfeed/models"
)

// maxReferenceAuthors begrenzt die Autorenliste einer Kurzreferenz, danach folgt "et al.".
const maxReferenceAuthors = 6

// FormatReference rendert eine Publikation als kompakte Referenzzeile.
func FormatReference(p models.Publication) string {
	authors := formatAuthors(p.Authors)
	year := "n.d."
	if p.Year != "" && p.Year != models.UnknownYear {
		year = p.Year
	}
	title := p.Title
	if title == "" {
		title = models.DefaultTitle
	}
	var tail string
	if p.HasLink() {
		tail = " " + p.URL
	}
	if p.Journal != "" {
		return fmt.Sprintf("%s (%s). %s. %s.%s", authors, year, title, p.Journal, tail)
	}
	return fmt.Sprintf("%s (%s). %s.%s", authors, year, title, tail)
}

// formatAuthors macht aus "A and B and C" die Liste "A, B, C".
func formatAuthors(raw string) string {
	if raw == "" || raw == models.DefaultAuthors {
		return models.DefaultAuthors
	}
	var names []string
	for _, name := range strings.Split(raw, " and ") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return models.DefaultAuthors
	}
	if len(names) > maxReferenceAuthors {
		return strings.Join(names[:maxReferenceAuthors], ", ") + " et al."
	}
	return strings.Join(names, ", ")
}
