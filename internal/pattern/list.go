package pattern

import (
	"gopkg.keel-lang.org/keelc/internal/optional"
)

// Trail is the policy for a separator after the last element of a list.
type Trail uint8

const (
	// TrailNever requires every separator to be followed by an element.
	TrailNever Trail = iota
	// TrailOptional allows a final separator.
	TrailOptional
	// TrailAlways requires a separator after every element including the
	// last.
	TrailAlways
)

func (t Trail) String() string {
	switch t {
	case TrailNever:
		return "never"
	case TrailOptional:
		return "optional"
	case TrailAlways:
		return "always"
	default:
		return "unknown"
	}
}

// NonEmpty parses one or more elements separated by sep. Both elem and sep
// are gated: a None result ends the list instead of failing it.
func NonEmpty[T any, S any](elem Consumer[optional.Optional[T]], sep Consumer[optional.Optional[S]], trail Trail) Consumer[[]T] {
	return &list[T, S]{elem: elem, sep: sep, trail: trail, nonEmpty: true}
}

// MaybeEmpty parses zero or more elements separated by sep.
func MaybeEmpty[T any, S any](elem Consumer[optional.Optional[T]], sep Consumer[optional.Optional[S]], trail Trail) Consumer[[]T] {
	return &list[T, S]{elem: elem, sep: sep, trail: trail}
}

type list[T any, S any] struct {
	elem     Consumer[optional.Optional[T]]
	sep      Consumer[optional.Optional[S]]
	trail    Trail
	nonEmpty bool
}

func (self *list[T, S]) Consume(c *Cursor) ([]T, error) {
	out := []T{}
	for {
		e, err := self.elem.Consume(c)
		if err != nil {
			return nil, err
		}
		if !e.IsPresent() {
			if len(out) > 0 && self.trail == TrailNever {
				return nil, c.Expected("another element after separator")
			}
			break
		}
		out = append(out, e.Value())

		s, err := self.sep.Consume(c)
		if err != nil {
			return nil, err
		}
		if !s.IsPresent() {
			if self.trail == TrailAlways {
				return nil, c.Expected("separator")
			}
			break
		}
	}
	if self.nonEmpty && len(out) == 0 {
		return nil, c.Expected("at least one element")
	}
	return out, nil
}

// Many parses zero or more elements with no separator between them.
func Many[T any](elem Consumer[optional.Optional[T]]) Consumer[[]T] {
	return MaybeEmpty(elem, Required(Dummy(struct{}{})), TrailOptional)
}
