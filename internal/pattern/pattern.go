package pattern

import (
	"log/slog"

	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/idl"
)

// Pattern is a grammar rule. A named pattern prepends its label to the
// context of every failure raised inside it; an inline pattern only groups.
type Pattern[T any] struct {
	label string
	body  Consumer[T]
}

func Named[T any](label string, body Consumer[T]) *Pattern[T] {
	return &Pattern[T]{label: label, body: body}
}

func Inline[T any](body Consumer[T]) *Pattern[T] {
	return &Pattern[T]{body: body}
}

func (self *Pattern[T]) Consume(c *Cursor) (T, error) {
	if self.label == "" {
		return self.body.Consume(c)
	}
	c.trace("enter", self.label)
	c.depth = c.depth + 1
	v, err := self.body.Consume(c)
	c.depth = c.depth - 1
	if err != nil {
		c.trace("fail", self.label, slog.String("error", err.Error()))
		var zero T
		return zero, exc.WithContext(err, self.label)
	}
	c.trace("leave", self.label)
	return v, nil
}

// Spanned is a value together with the span of the tokens it was built from.
type Spanned[T any] struct {
	Value T
	Span  idl.Span
}

// WithSpan records the span consumed by c alongside its value.
func WithSpan[T any](c Consumer[T]) Consumer[Spanned[T]] {
	return Seq1(c, func(v T, span idl.Span) Spanned[T] {
		return Spanned[T]{Value: v, Span: span}
	})
}

// Map transforms the value of c.
func Map[T any, R any](c Consumer[T], fn func(T) R) Consumer[R] {
	return ConsumerFunc[R](func(cur *Cursor) (R, error) {
		v, err := c.Consume(cur)
		if err != nil {
			var zero R
			return zero, err
		}
		return fn(v), nil
	})
}

// MapErr transforms the value of c with a function that may reject it. The
// rejection is raised as the failure of the whole step.
func MapErr[T any, R any](c Consumer[T], fn func(T, idl.Span) (R, error)) Consumer[R] {
	return ConsumerFunc[R](func(cur *Cursor) (R, error) {
		m := cur.Mark()
		v, err := c.Consume(cur)
		if err != nil {
			var zero R
			return zero, err
		}
		out, err := fn(v, cur.SpanSince(m))
		if err != nil {
			var zero R
			return zero, exc.InFile(err, cur.URI())
		}
		return out, nil
	})
}

// Parse runs c over the whole cursor. Tokens left over after c succeeds are
// an error.
func Parse[T any](c Consumer[T], cur *Cursor) (T, error) {
	v, err := c.Consume(cur)
	if err != nil {
		return v, err
	}
	if t := cur.Peek(); t.IsPresent() {
		var zero T
		return zero, cur.Fail(exc.CodeUnrecognizedToken, "unexpected %s after end of input", t.Value())
	}
	return v, nil
}
