package iter

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type elem struct {
	value int
}

func TestLookahead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	numValues := 10

	for x := 0; x < numValues; x = x + 1 {
		x := x
		t.Run(fmt.Sprintf("LA(%d)", x), func(t *testing.T) {
			elems := make([]*elem, 0, numValues)
			for y := 0; y < numValues; y = y + 1 {
				elems = append(elems, &elem{value: y})
			}
			iter := NewSlice(elems)
			look := NewLookahead(iter, uint8(x))
			for y := 0; y < numValues; y = y + 1 {
				val := look.Next(ctx)
				require.True(t, val.IsPresent())
				require.Equal(t, y, val.Value().value)

				expectedPeek := y + x
				peek := look.Lookahead(ctx, uint8(x))
				if expectedPeek < numValues {
					require.True(t, peek.IsPresent())
					require.Equal(t, expectedPeek, peek.Value().value)
				} else {
					require.False(t, peek.IsPresent())
				}
			}
			require.Nil(t, look.Close(ctx))
		})
	}
}

func TestLookaheadBeforeNext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	look := NewLookahead(NewSlice([]int{1, 2, 3}), 2)

	peek := look.Lookahead(ctx, 1)
	require.True(t, peek.IsPresent())
	require.Equal(t, 2, peek.Value())

	for _, expected := range []int{1, 2, 3} {
		val := look.Next(ctx)
		require.True(t, val.IsPresent())
		require.Equal(t, expected, val.Value())
		require.Equal(t, expected, look.Lookahead(ctx, 0).Value())
	}
	require.False(t, look.Next(ctx).IsPresent())
	require.Nil(t, look.Close(ctx))
}

func TestCollect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	out, err := Collect(ctx, NewSlice([]int{1, 2, 3}))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, out)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	out, err = Collect(cancelled, NewSlice([]int{1, 2, 3}))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []int{1}, out)
}

func TestCursor(t *testing.T) {
	t.Parallel()

	c := NewCursor([]string{"a", "b", "c"})
	require.False(t, c.Prev().IsPresent())
	require.Equal(t, "a", c.Peek().Value())
	require.Equal(t, "c", c.PeekN(2).Value())
	require.False(t, c.PeekN(3).IsPresent())

	m := c.Mark()
	c.Advance()
	c.Advance()
	require.Equal(t, "b", c.Prev().Value())
	require.Equal(t, []string{"a", "b"}, c.Since(m))

	c.Reset(m)
	require.Equal(t, "a", c.Peek().Value())
	require.Nil(t, c.Since(m))

	c.Advance()
	c.Advance()
	c.Advance()
	c.Advance()
	require.True(t, c.Done())
	require.False(t, c.Peek().IsPresent())
	require.Equal(t, "c", c.Prev().Value())
}

var benchEscapeValue *elem
var benchEscapeValuePeek *elem

func BenchmarkLookahead(b *testing.B) {
	ctx := context.Background()
	sliceSize := 1000
	slice := make([]*elem, sliceSize)
	for x := 0; x < sliceSize; x = x + 1 {
		slice[x] = &elem{value: x}
	}
	iter := NewSlice(slice)
	look := NewLookahead(iter, 1)

	var loopEscapeValue *elem
	var loopEscapeValuePeek *elem
	b.ResetTimer()
	for n := 0; n < b.N; n = n + 1 {
		for x := 0; x < sliceSize; x = x + 1 {
			loopEscapeValue = look.Next(ctx).Value()
			loopEscapeValuePeek = look.Lookahead(ctx, 1).Value()
		}
	}
	benchEscapeValue = loopEscapeValue
	benchEscapeValuePeek = loopEscapeValuePeek
}
