package pattern

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/iter"
	"gopkg.keel-lang.org/keelc/internal/optional"
)

// Cursor is the read position of a single parse. A cursor is owned by the
// goroutine running the parse and must not be shared.
type Cursor struct {
	uri    string
	tokens *iter.Cursor[*idl.Token]
	logger *slog.Logger
	depth  int
}

type CursorOption func(c *Cursor)

// WithURI sets the file path used in the location of raised exceptions.
func WithURI(uri string) CursorOption {
	return func(c *Cursor) {
		c.uri = uri
	}
}

// WithLogger enables rule tracing. Every named pattern logs at Debug level
// when it is entered, left, or fails.
func WithLogger(logger *slog.Logger) CursorOption {
	return func(c *Cursor) {
		c.logger = logger
	}
}

func NewCursor(tokens []*idl.Token, options ...CursorOption) *Cursor {
	c := &Cursor{
		tokens: iter.NewCursor(tokens),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (self *Cursor) URI() string {
	return self.uri
}

// Peek returns the current token without consuming it.
func (self *Cursor) Peek() optional.Optional[*idl.Token] {
	return self.tokens.Peek()
}

// Prev returns the last consumed token.
func (self *Cursor) Prev() optional.Optional[*idl.Token] {
	return self.tokens.Prev()
}

func (self *Cursor) Advance() {
	self.tokens.Advance()
}

func (self *Cursor) Mark() iter.Mark {
	return self.tokens.Mark()
}

func (self *Cursor) Reset(m iter.Mark) {
	self.tokens.Reset(m)
}

// Done reports whether every token has been consumed.
func (self *Cursor) Done() bool {
	return self.tokens.Done()
}

// SpanSince returns the span covering the tokens consumed after m. When
// nothing was consumed the result is the empty span at the current position.
func (self *Cursor) SpanSince(m iter.Mark) idl.Span {
	consumed := self.tokens.Since(m)
	if len(consumed) == 0 {
		return self.Here()
	}
	return idl.Span{
		Start: consumed[0].Span.Start,
		End:   consumed[len(consumed)-1].Span.End,
	}
}

// Here returns the empty span at the current position: the start of the
// current token or, at the end of input, the end of the last one.
func (self *Cursor) Here() idl.Span {
	if t := self.tokens.Peek(); t.IsPresent() {
		start := t.Value().Span.Start
		return idl.Span{Start: start, End: start}
	}
	if t := self.tokens.Prev(); t.IsPresent() {
		end := t.Value().Span.End
		return idl.Span{Start: end, End: end}
	}
	return idl.Span{}
}

// location is where an exception raised at the current position points: the
// current token, the end of the last token at the end of input, or nowhere
// for an empty input.
func (self *Cursor) location() exc.Location {
	if t := self.tokens.Peek(); t.IsPresent() {
		return exc.At(self.uri, t.Value().Span)
	}
	if self.tokens.Prev().IsPresent() {
		return exc.At(self.uri, self.Here())
	}
	return exc.Location{URI: self.uri}
}

// Fail returns an exception located at the current token.
func (self *Cursor) Fail(code string, format string, args ...any) exc.Exception {
	return exc.New(self.location(), code, fmt.Sprintf(format, args...))
}

// FailAt returns an exception located at span.
func (self *Cursor) FailAt(span idl.Span, code string, format string, args ...any) exc.Exception {
	return exc.New(exc.At(self.uri, span), code, fmt.Sprintf(format, args...))
}

// Expected returns the exception raised when the current token does not have
// the shape described by want.
func (self *Cursor) Expected(want string) exc.Exception {
	t := self.tokens.Peek()
	if !t.IsPresent() {
		return self.Fail(exc.CodeUnexpectedEOF, "expected %s, found end of input", want)
	}
	return self.Fail(exc.CodeUnrecognizedToken, "expected %s, found %s", want, t.Value())
}

func (self *Cursor) trace(msg string, rule string, attrs ...slog.Attr) {
	if self.logger == nil {
		return
	}
	attrs = append(attrs,
		slog.String("rule", rule),
		slog.Int("offset", int(self.tokens.Mark())),
		slog.Int("depth", self.depth),
	)
	self.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}
