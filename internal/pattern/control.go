package pattern

import (
	"strings"

	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/optional"
)

// Predicate is a lookahead check. A nil error means the predicate matched.
// Predicates are always evaluated through Check or one of the control
// combinators, which restore the cursor afterwards.
type Predicate func(c *Cursor) error

// Is matches when c would succeed at the current position.
func Is[T any](c Consumer[T]) Predicate {
	return func(cur *Cursor) error {
		_, err := c.Consume(cur)
		return err
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(c *Cursor) error {
		if test(c, p) == nil {
			return c.Fail(exc.CodeUnrecognizedToken, "unexpected %s", describe(c))
		}
		return nil
	}
}

// Any matches when one of ps matches.
func Any(ps ...Predicate) Predicate {
	return func(c *Cursor) error {
		var first error
		for _, p := range ps {
			err := test(c, p)
			if err == nil {
				return nil
			}
			if first == nil {
				first = err
			}
		}
		if first == nil {
			first = c.Fail(exc.CodeNoAlternative, "no alternative matched")
		}
		return first
	}
}

// Always matches everywhere.
func Always() Predicate {
	return func(c *Cursor) error {
		return nil
	}
}

// Check evaluates p without moving the cursor.
func Check(c *Cursor, p Predicate) bool {
	return test(c, p) == nil
}

func test(c *Cursor, p Predicate) error {
	m := c.Mark()
	depth := c.depth
	logger := c.logger
	// Lookahead runs are not traced.
	c.logger = nil
	err := p(c)
	c.logger = logger
	c.depth = depth
	c.Reset(m)
	return err
}

// Conditional runs body when p matches. A rejected predicate yields None and
// is not an error; a failure of body after selection is.
func Conditional[T any](p Predicate, body Consumer[T]) Consumer[optional.Optional[T]] {
	return ConsumerFunc[optional.Optional[T]](func(c *Cursor) (optional.Optional[T], error) {
		if test(c, p) != nil {
			return optional.None[T](), nil
		}
		v, err := body.Consume(c)
		if err != nil {
			return optional.None[T](), err
		}
		return optional.Some(v), nil
	})
}

// Required lifts c into the gated shape used by lists, selecting it
// unconditionally.
func Required[T any](c Consumer[T]) Consumer[optional.Optional[T]] {
	return Conditional(Always(), c)
}

// BranchIfElse runs then when cond matches and otherwise runs otherwise.
func BranchIfElse[T any](cond Predicate, then Consumer[T], otherwise Consumer[T]) Consumer[T] {
	return ConsumerFunc[T](func(c *Cursor) (T, error) {
		if test(c, cond) == nil {
			return then.Consume(c)
		}
		return otherwise.Consume(c)
	})
}

// Case is one alternative of Match.
type Case[T any] struct {
	// Label names the alternative in the error raised when nothing matches.
	Label string
	When  Predicate
	Then  Consumer[T]
}

func When[T any](label string, when Predicate, then Consumer[T]) Case[T] {
	return Case[T]{Label: label, When: when, Then: then}
}

// Match selects the first case, in declaration order, whose predicate
// matches and runs it. The selected case must succeed. Raises
// exc.CodeNoAlternative when no predicate matches.
func Match[T any](cases ...Case[T]) Consumer[T] {
	labels := make([]string, 0, len(cases))
	for _, cs := range cases {
		if cs.Label != "" {
			labels = append(labels, cs.Label)
		}
	}
	expected := strings.Join(labels, ", ")
	return ConsumerFunc[T](func(c *Cursor) (T, error) {
		for _, cs := range cases {
			if test(c, cs.When) == nil {
				return cs.Then.Consume(c)
			}
		}
		var zero T
		if expected == "" {
			return zero, c.Fail(exc.CodeNoAlternative, "unexpected %s, no alternative matched", describe(c))
		}
		return zero, c.Fail(exc.CodeNoAlternative, "expected one of %s, found %s", expected, describe(c))
	})
}

func describe(c *Cursor) string {
	t := c.Peek()
	if !t.IsPresent() {
		return "end of input"
	}
	return t.Value().String()
}

// End matches at the end of input.
func End() Predicate {
	return func(c *Cursor) error {
		if t := c.Peek(); t.IsPresent() {
			return c.Fail(exc.CodeUnrecognizedToken, "expected end of input, found %s", t.Value())
		}
		return nil
	}
}
