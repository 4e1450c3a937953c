package pattern

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.keel-lang.org/keelc/internal/idl"
)

// nested is a recursive rule: an identifier or a parenthesized list of
// nested values.
func nested() Consumer[string] {
	ref, fin := NewRef[string]()
	group := Seq3(
		Particle('('),
		MaybeEmpty(
			Conditional(Any(Is(Ident()), Is(Particle('('))), Consumer[string](ref)),
			Conditional(Is(Particle(',')), Particle(',')),
			TrailOptional,
		),
		Particle(')'),
		func(_ rune, members []string, _ rune, _ idl.Span) string {
			return "(" + strings.Join(members, " ") + ")"
		},
	)
	value := Named("value", BranchIfElse(Is(Particle('(')), group, Ident()))
	fin.Finalize(value)
	return ref
}

func TestRefRecursion(t *testing.T) {
	t.Parallel()

	v, err := Parse(nested(), cursor(t, "((a, b), c, ())"))
	require.NoError(t, err)
	require.Equal(t, "((a b) c ())", v)
}

func TestRefPanics(t *testing.T) {
	t.Parallel()

	ref, fin := NewRef[string]()
	require.False(t, ref.Finalized())
	require.PanicsWithValue(t, "pattern: reference used before it was finalized", func() {
		_, _ = ref.Consume(cursor(t, "a"))
	})

	fin.Finalize(Ident())
	require.True(t, ref.Finalized())
	v, err := ref.Consume(cursor(t, "a"))
	require.NoError(t, err)
	require.Equal(t, "a", v)

	require.PanicsWithValue(t, "pattern: reference finalized twice", func() {
		fin.Finalize(Ident())
	})
	require.Panics(t, func() {
		_, fin := NewRef[int]()
		fin.Finalize(nil)
	})
}
