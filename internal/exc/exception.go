// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"strings"

	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/optional"
)

type Exception interface {
	error
	Code() string
	Message() string
	Location() Location
	// Context returns the labels of the rules that were being parsed when the
	// exception was raised, outermost first.
	Context() []string
}

// Location identifies where an exception was raised. The span is absent for
// exceptions raised with no current token, such as an empty input.
type Location struct {
	URI  string
	Span optional.Optional[idl.Span]
}

func (l Location) String() string {
	if !l.Span.IsPresent() {
		return l.URI
	}
	if l.URI == "" {
		return l.Span.Value().String()
	}
	return l.URI + ":" + l.Span.Value().String()
}

// At is shorthand for a location with a span.
func At(uri string, span idl.Span) Location {
	return Location{URI: uri, Span: optional.Some(span)}
}

type exc struct {
	code     string
	message  string
	location Location
}

func (e *exc) Error() string {
	return render(e)
}

func (e *exc) Code() string {
	return e.code
}

func (e *exc) Message() string {
	return e.message
}

func (e *exc) Location() Location {
	return e.location
}

func (e *exc) Context() []string {
	return nil
}

type excUnwrap struct {
	Exception
	cause error
}

func (e *excUnwrap) Unwrap() error {
	return e.cause
}

type excContext struct {
	Exception
	context []string
}

func (e *excContext) Error() string {
	return render(e)
}

func (e *excContext) Context() []string {
	return e.context
}

func (e *excContext) Unwrap() error {
	return e.Exception
}

func New(location Location, code string, message string) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
	}
}

func Wrap(location Location, code string, err error) Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(Exception); ok {
		return &excUnwrap{
			Exception: New(location, code, e.Message()),
			cause:     e,
		}
	}
	return &excUnwrap{
		cause:     err,
		Exception: New(location, code, err.Error()),
	}
}

func WrapUnknown(location Location, err error) Exception {
	return Wrap(location, CodeUnknownFatal, err)
}

// WithContext prepends label to the context chain of err. The code, message
// and location of err are kept as they are so that the innermost failure
// stays visible. Errors that are not exceptions are wrapped as unknown first.
func WithContext(err error, label string) Exception {
	if err == nil {
		return nil
	}
	e, ok := err.(Exception)
	if !ok {
		e = WrapUnknown(Location{}, err)
	}
	outer := e.Context()
	context := make([]string, 0, len(outer)+1)
	context = append(context, label)
	context = append(context, outer...)
	return &excContext{
		Exception: e,
		context:   context,
	}
}

func render(e Exception) string {
	var b strings.Builder
	b.WriteString("error: ")
	b.WriteString(e.Message())
	if loc := e.Location(); loc.Span.IsPresent() || loc.URI != "" {
		b.WriteString(" at ")
		b.WriteString(loc.String())
	}
	for _, label := range e.Context() {
		b.WriteString(", while parsing ")
		b.WriteString(label)
	}
	b.WriteString(" [")
	b.WriteString(e.Code())
	b.WriteString("]")
	return b.String()
}

type excLocated struct {
	Exception
	location Location
}

func (e *excLocated) Error() string {
	return render(e)
}

func (e *excLocated) Location() Location {
	return e.location
}

func (e *excLocated) Unwrap() error {
	return e.Exception
}

// InFile sets the URI of an exception raised by code that does not know which
// file it is working on. Errors that already carry a URI are returned as they
// are.
func InFile(err error, uri string) Exception {
	if err == nil {
		return nil
	}
	e, ok := err.(Exception)
	if !ok {
		return WrapUnknown(Location{URI: uri}, err)
	}
	loc := e.Location()
	if loc.URI != "" {
		return e
	}
	loc.URI = uri
	return &excLocated{Exception: e, location: loc}
}
