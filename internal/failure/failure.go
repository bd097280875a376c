package failure

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the normalized failure taxonomy of the login and notification flows.
type Kind string

const (
	// KindValidation means required caller input was missing; no network call was made.
	KindValidation Kind = "validation"

	// KindAuth means the token broker call failed or returned no token.
	KindAuth Kind = "auth"

	// KindRetrieve means the citizen data call failed or returned a non-success code.
	KindRetrieve Kind = "retrieve"

	// KindSchema means the citizen payload was missing required fields.
	KindSchema Kind = "schema"

	// KindStore means persisting the citizen record failed.
	KindStore Kind = "store"

	// KindNotify means the notification call failed.
	KindNotify Kind = "notify"

	// KindGeneral is anything unanticipated.
	KindGeneral Kind = "general"
)

// Failure carries the upstream status and raw body so callers can diagnose
// problems against a provider they do not control.
type Failure struct {
	Kind    Kind
	Status  int // upstream HTTP status, 0 when no response was received
	Body    any // json.RawMessage when the body parsed as JSON, string otherwise
	Message string
	Err     error
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString(string(f.Kind))
	if f.Status != 0 {
		fmt.Fprintf(&b, " [status %d]", f.Status)
	}
	if f.Message != "" {
		b.WriteString(": ")
		b.WriteString(f.Message)
	}
	if f.Err != nil {
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Forbidden reports a 403 from upstream, which the DGA gateway uses for
// credential and IP allow-list rejections.
func (f *Failure) Forbidden() bool {
	return f.Status == http.StatusForbidden
}

// HTTPStatus is the status a handler should answer with for this failure.
func (f *Failure) HTTPStatus() int {
	switch {
	case f.Kind == KindValidation:
		return http.StatusBadRequest
	case f.Status >= 400 && f.Status <= 599:
		return f.Status
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Failure {
	return &Failure{Kind: KindValidation, Message: message}
}

// Upstream builds a failure from an HTTP exchange. raw may be nil.
func Upstream(kind Kind, status int, raw []byte, message string, err error) *Failure {
	return &Failure{
		Kind:    kind,
		Status:  status,
		Body:    RawBody(raw),
		Message: message,
		Err:     err,
	}
}

// RawBody keeps JSON bodies as-is for re-encoding and falls back to text.
func RawBody(raw []byte) any {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	return trimmed
}

// As extracts a *Failure from err, following wrapping.
func As(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf returns KindGeneral for errors that are not failures.
func KindOf(err error) Kind {
	if f, ok := As(err); ok {
		return f.Kind
	}
	return KindGeneral
}
