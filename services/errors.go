package services

import (
	"errors"
	"fmt"
)

// ErrorCode kennzeichnet die Fehlerarten der BibTeX-Extraktion.
type ErrorCode string

const (
	// CodeNoValidPublications: kein einziger Eintrag hat die Extraktion überstanden.
	CodeNoValidPublications ErrorCode = "NO_VALID_PUBLICATIONS"
	// CodeMalformedEntry: ein einzelner Eintrag konnte nicht gelesen werden und wurde übersprungen.
	CodeMalformedEntry ErrorCode = "MALFORMED_ENTRY"
)

// BibParseError ist ein Extraktionsfehler mit Code und optionalem Eintrags-Index.
type BibParseError struct {
	Code    ErrorCode
	Message string
	Index   int
	Cause   error
}

func (e *BibParseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Code == CodeMalformedEntry {
		msg = fmt.Sprintf("%s (entry %d)", msg, e.Index)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

func (e *BibParseError) Unwrap() error {
	return e.Cause
}

// Is vergleicht nur den Code, damit errors.Is mit den Sentinel-Werten funktioniert.
func (e *BibParseError) Is(target error) bool {
	t, ok := target.(*BibParseError)
	return ok && t.Code == e.Code
}

// ErrNoValidPublications ist der Sentinel für errors.Is.
var ErrNoValidPublications = &BibParseError{Code: CodeNoValidPublications, Message: "no valid publications found in file"}

// IsErrorCode prüft, ob err (oder eine gewrappte Ursache) ein BibParseError mit dem Code ist.
func IsErrorCode(err error, code ErrorCode) bool {
	var bpe *BibParseError
	if errors.As(err, &bpe) {
		return bpe.Code == code
	}
	return false
}
