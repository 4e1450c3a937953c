package pattern

// Ref is a placeholder for a consumer that does not exist yet. It can be
// used inside other patterns right away and is bound later with its
// Finalizer, which is how recursive rules are built.
type Ref[T any] struct {
	target Consumer[T]
}

// Finalizer binds a Ref to its target.
type Finalizer[T any] struct {
	ref *Ref[T]
}

func NewRef[T any]() (*Ref[T], Finalizer[T]) {
	r := &Ref[T]{}
	return r, Finalizer[T]{ref: r}
}

// Finalize binds the reference to target. A reference can be bound only
// once.
func (self Finalizer[T]) Finalize(target Consumer[T]) {
	if target == nil {
		panic("pattern: reference finalized with a nil consumer")
	}
	if self.ref.target != nil {
		panic("pattern: reference finalized twice")
	}
	self.ref.target = target
}

// Finalized reports whether the reference has been bound.
func (self *Ref[T]) Finalized() bool {
	return self.target != nil
}

// Consume delegates to the bound consumer. Consuming an unbound reference is
// a grammar construction bug and panics.
func (self *Ref[T]) Consume(c *Cursor) (T, error) {
	if self.target == nil {
		panic("pattern: reference used before it was finalized")
	}
	return self.target.Consume(c)
}
