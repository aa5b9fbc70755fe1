package services

import "errors"

// Kind klassifiziert Service-Fehler für die HTTP-Abbildung.
type Kind int

const (
	KindUnexpected Kind = iota // 500
	KindValidation             // 400
	KindAuth                   // 401
	KindForbidden              // 403
	KindNotFound               // 404
	KindConflict               // 409
)

// Error ist der Fehlertyp aller Services. Message ist für den Client bestimmt,
// Err trägt die interne Ursache.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }
func Auth(msg string) error       { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) error  { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }

// Unexpected kennzeichnet Store- oder Dateisystemfehler.
func Unexpected(msg string, err error) error {
	return &Error{Kind: KindUnexpected, Message: msg, Err: err}
}

// KindOf liefert die Fehlerklasse; unbekannte Fehler gelten als unerwartet.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// MessageOf liefert die clientgeeignete Fehlermeldung.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// CauseOf liefert die interne Ursache eines unerwarteten Fehlers, falls vorhanden.
func CauseOf(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err
	}
	return err
}
