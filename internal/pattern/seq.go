package pattern

import (
	"gopkg.keel-lang.org/keelc/internal/idl"
)

// The SeqN builders run their steps in order and pass every value, together
// with the span of all consumed tokens, to fn. The first failing step aborts
// the sequence.

func Seq1[A, R any](a Consumer[A], fn func(A, idl.Span) R) Consumer[R] {
	return ConsumerFunc[R](func(cur *Cursor) (R, error) {
		var zero R
		m := cur.Mark()
		va, err := a.Consume(cur)
		if err != nil {
			return zero, err
		}
		return fn(va, cur.SpanSince(m)), nil
	})
}

func Seq2[A, B, R any](a Consumer[A], b Consumer[B], fn func(A, B, idl.Span) R) Consumer[R] {
	return ConsumerFunc[R](func(cur *Cursor) (R, error) {
		var zero R
		m := cur.Mark()
		va, err := a.Consume(cur)
		if err != nil {
			return zero, err
		}
		vb, err := b.Consume(cur)
		if err != nil {
			return zero, err
		}
		return fn(va, vb, cur.SpanSince(m)), nil
	})
}

func Seq3[A, B, C, R any](a Consumer[A], b Consumer[B], c Consumer[C], fn func(A, B, C, idl.Span) R) Consumer[R] {
	return ConsumerFunc[R](func(cur *Cursor) (R, error) {
		var zero R
		m := cur.Mark()
		va, err := a.Consume(cur)
		if err != nil {
			return zero, err
		}
		vb, err := b.Consume(cur)
		if err != nil {
			return zero, err
		}
		vc, err := c.Consume(cur)
		if err != nil {
			return zero, err
		}
		return fn(va, vb, vc, cur.SpanSince(m)), nil
	})
}

func Seq4[A, B, C, D, R any](a Consumer[A], b Consumer[B], c Consumer[C], d Consumer[D], fn func(A, B, C, D, idl.Span) R) Consumer[R] {
	return ConsumerFunc[R](func(cur *Cursor) (R, error) {
		var zero R
		m := cur.Mark()
		va, err := a.Consume(cur)
		if err != nil {
			return zero, err
		}
		vb, err := b.Consume(cur)
		if err != nil {
			return zero, err
		}
		vc, err := c.Consume(cur)
		if err != nil {
			return zero, err
		}
		vd, err := d.Consume(cur)
		if err != nil {
			return zero, err
		}
		return fn(va, vb, vc, vd, cur.SpanSince(m)), nil
	})
}

func Seq5[A, B, C, D, E, R any](a Consumer[A], b Consumer[B], c Consumer[C], d Consumer[D], e Consumer[E], fn func(A, B, C, D, E, idl.Span) R) Consumer[R] {
	return ConsumerFunc[R](func(cur *Cursor) (R, error) {
		var zero R
		m := cur.Mark()
		va, err := a.Consume(cur)
		if err != nil {
			return zero, err
		}
		vb, err := b.Consume(cur)
		if err != nil {
			return zero, err
		}
		vc, err := c.Consume(cur)
		if err != nil {
			return zero, err
		}
		vd, err := d.Consume(cur)
		if err != nil {
			return zero, err
		}
		ve, err := e.Consume(cur)
		if err != nil {
			return zero, err
		}
		return fn(va, vb, vc, vd, ve, cur.SpanSince(m)), nil
	})
}

func Seq6[A, B, C, D, E, F, R any](a Consumer[A], b Consumer[B], c Consumer[C], d Consumer[D], e Consumer[E], f Consumer[F], fn func(A, B, C, D, E, F, idl.Span) R) Consumer[R] {
	return ConsumerFunc[R](func(cur *Cursor) (R, error) {
		var zero R
		m := cur.Mark()
		va, err := a.Consume(cur)
		if err != nil {
			return zero, err
		}
		vb, err := b.Consume(cur)
		if err != nil {
			return zero, err
		}
		vc, err := c.Consume(cur)
		if err != nil {
			return zero, err
		}
		vd, err := d.Consume(cur)
		if err != nil {
			return zero, err
		}
		ve, err := e.Consume(cur)
		if err != nil {
			return zero, err
		}
		vf, err := f.Consume(cur)
		if err != nil {
			return zero, err
		}
		return fn(va, vb, vc, vd, ve, vf, cur.SpanSince(m)), nil
	})
}
