// Package pattern is a combinator library for recursive-descent parsers over
// a token slice.
//
// A Consumer inspects the cursor and either succeeds, advancing past the
// tokens it matched, or fails with an exception. Consumers are composed into
// sequences, branches, and lists, and named patterns add a label to every
// failure that passes through them. Branch selection is done with predicates
// that never move the cursor; once a branch is selected its failure is final.
package pattern

import (
	"gopkg.keel-lang.org/keelc/internal/idl"
)

type Consumer[T any] interface {
	Consume(c *Cursor) (T, error)
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc[T any] func(c *Cursor) (T, error)

func (f ConsumerFunc[T]) Consume(c *Cursor) (T, error) {
	return f(c)
}

// token matches the current token against match and advances past it on
// success. Nothing is consumed on failure.
func token[T any](want string, match func(t *idl.Token) (T, bool)) Consumer[T] {
	return ConsumerFunc[T](func(c *Cursor) (T, error) {
		var zero T
		t := c.Peek()
		if !t.IsPresent() {
			return zero, c.Expected(want)
		}
		v, ok := match(t.Value())
		if !ok {
			return zero, c.Expected(want)
		}
		c.Advance()
		return v, nil
	})
}

// Ident matches any identifier and returns its text.
func Ident() Consumer[string] {
	return token("identifier", func(t *idl.Token) (string, bool) {
		return t.Value, t.Type == idl.TokenTypeIdentifier
	})
}

// Keyword matches an identifier spelled exactly as text.
func Keyword(text string) Consumer[string] {
	return token("'"+text+"'", func(t *idl.Token) (string, bool) {
		return t.Value, t.Type == idl.TokenTypeIdentifier && t.Value == text
	})
}

// Literal matches any literal and returns its value.
func Literal() Consumer[idl.Literal] {
	return token("literal", func(t *idl.Token) (idl.Literal, bool) {
		return t.Literal, t.Type == idl.TokenTypeLiteral
	})
}

// Particle matches the punctuation character r.
func Particle(r rune) Consumer[rune] {
	return token("'"+string(r)+"'", func(t *idl.Token) (rune, bool) {
		return t.Particle, t.Type == idl.TokenTypeParticle && t.Particle == r
	})
}

// AnyParticle matches any punctuation character.
func AnyParticle() Consumer[rune] {
	return token("punctuation", func(t *idl.Token) (rune, bool) {
		return t.Particle, t.Type == idl.TokenTypeParticle
	})
}

// GluedParticle matches any punctuation character that directly follows the
// previous token with no trivia in between.
func GluedParticle() Consumer[rune] {
	return token("adjacent punctuation", func(t *idl.Token) (rune, bool) {
		return t.Particle, t.Type == idl.TokenTypeParticle && t.Glued
	})
}

// GluedParticleOf matches r when it directly follows the previous token.
func GluedParticleOf(r rune) Consumer[rune] {
	return token("adjacent '"+string(r)+"'", func(t *idl.Token) (rune, bool) {
		return t.Particle, t.Type == idl.TokenTypeParticle && t.Glued && t.Particle == r
	})
}

// Custom wraps an arbitrary matching function. It is used for structural
// checks that span several tokens.
func Custom[T any](fn func(c *Cursor) (T, error)) Consumer[T] {
	return ConsumerFunc[T](fn)
}

// Dummy always succeeds with v and consumes nothing.
func Dummy[T any](v T) Consumer[T] {
	return ConsumerFunc[T](func(c *Cursor) (T, error) {
		return v, nil
	})
}
