package iter

import (
	"gopkg.keel-lang.org/keelc/internal/optional"
)

// Mark is a saved Cursor position.
type Mark int

// Cursor is a read position over an in-memory slice. Unlike Iterator it can
// save and restore positions, which is what non-destructive lookahead needs.
// The underlying slice is never modified.
type Cursor[T any] struct {
	items []T
	pos   int
}

func NewCursor[T any](items []T) *Cursor[T] {
	return &Cursor[T]{items: items}
}

// Peek returns the current value without consuming it.
func (c *Cursor[T]) Peek() optional.Optional[T] {
	return c.PeekN(0)
}

// PeekN returns the value n positions past the current one.
func (c *Cursor[T]) PeekN(n int) optional.Optional[T] {
	i := c.pos + n
	if i < 0 || i >= len(c.items) {
		return optional.None[T]()
	}
	return optional.Some(c.items[i])
}

// Prev returns the most recently consumed value.
func (c *Cursor[T]) Prev() optional.Optional[T] {
	return c.PeekN(-1)
}

// Advance moves past the current value. Advancing at the end is a no-op.
func (c *Cursor[T]) Advance() {
	if c.pos < len(c.items) {
		c.pos = c.pos + 1
	}
}

func (c *Cursor[T]) Mark() Mark {
	return Mark(c.pos)
}

func (c *Cursor[T]) Reset(m Mark) {
	c.pos = int(m)
}

// Since returns the values consumed after m.
func (c *Cursor[T]) Since(m Mark) []T {
	if int(m) >= c.pos {
		return nil
	}
	return c.items[m:c.pos]
}

// Done reports whether every value has been consumed.
func (c *Cursor[T]) Done() bool {
	return c.pos >= len(c.items)
}
