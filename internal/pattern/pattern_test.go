package pattern

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/optional"
)

func cursor(t *testing.T, input string, options ...CursorOption) *Cursor {
	t.Helper()
	return NewCursor(tokens(input), append([]CursorOption{WithURI("/test.keel")}, options...)...)
}

func requireCode(t *testing.T, err error, code string) exc.Exception {
	t.Helper()
	require.Error(t, err)
	var e exc.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, code, e.Code())
	return e
}

func TestPrimitives(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		consumer Consumer[string]
		expected string
		code     string
	}{
		{
			name:     "identifier",
			input:    "abc",
			consumer: Ident(),
			expected: "abc",
		},
		{
			name:     "identifier rejects particle",
			input:    "(",
			consumer: Ident(),
			code:     exc.CodeUnrecognizedToken,
		},
		{
			name:     "identifier at end of input",
			input:    "",
			consumer: Ident(),
			code:     exc.CodeUnexpectedEOF,
		},
		{
			name:     "keyword",
			input:    "let",
			consumer: Keyword("let"),
			expected: "let",
		},
		{
			name:     "keyword rejects other identifier",
			input:    "lets",
			consumer: Keyword("let"),
			code:     exc.CodeUnrecognizedToken,
		},
		{
			name:     "literal",
			input:    "42",
			consumer: Map(Literal(), idl.Literal.String),
			expected: "42",
		},
		{
			name:     "particle",
			input:    "(",
			consumer: Map(Particle('('), func(r rune) string { return string(r) }),
			expected: "(",
		},
		{
			name:     "particle mismatch",
			input:    ")",
			consumer: Map(Particle('('), func(r rune) string { return string(r) }),
			code:     exc.CodeUnrecognizedToken,
		},
		{
			name:     "any particle",
			input:    "%",
			consumer: Map(AnyParticle(), func(r rune) string { return string(r) }),
			expected: "%",
		},
		{
			name:     "dummy",
			input:    "",
			consumer: Dummy("placeholder"),
			expected: "placeholder",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			c := cursor(t, testCase.input)
			m := c.Mark()
			v, err := testCase.consumer.Consume(c)
			if testCase.code != "" {
				requireCode(t, err, testCase.code)
				require.Equal(t, m, c.Mark())
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expected, v)
			require.True(t, c.Done())
		})
	}
}

func TestGluedParticle(t *testing.T) {
	t.Parallel()

	shift := Seq2(Particle('<'), GluedParticleOf('<'), func(a rune, b rune, span idl.Span) string {
		return string([]rune{a, b})
	})

	c := cursor(t, "<<")
	v, err := shift.Consume(c)
	require.NoError(t, err)
	require.Equal(t, "<<", v)

	c = cursor(t, "< <")
	_, err = shift.Consume(c)
	requireCode(t, err, exc.CodeUnrecognizedToken)

	// The first token of a file is never glued.
	c = cursor(t, "<")
	_, err = GluedParticle().Consume(c)
	requireCode(t, err, exc.CodeUnrecognizedToken)
}

func TestSequenceSpan(t *testing.T) {
	t.Parallel()

	pair := Seq3(Ident(), Particle(':'), Ident(), func(name string, _ rune, typ string, span idl.Span) Spanned[string] {
		return Spanned[string]{Value: name + "=" + typ, Span: span}
	})
	c := cursor(t, "  a : i32 rest")
	v, err := pair.Consume(c)
	require.NoError(t, err)
	require.Equal(t, "a=i32", v.Value)
	require.Equal(t, int64(2), v.Span.Start.Offset)
	require.Equal(t, int64(9), v.Span.End.Offset)

	// An empty match has an empty span at the current token.
	empty, err := WithSpan(Dummy(0)).Consume(c)
	require.NoError(t, err)
	require.True(t, empty.Span.Empty())
	require.Equal(t, int64(10), empty.Span.Start.Offset)
}

func TestMapErr(t *testing.T) {
	t.Parallel()

	even := MapErr(Literal(), func(l idl.Literal, span idl.Span) (int64, error) {
		if l.Int%2 != 0 {
			return 0, exc.New(exc.At("", span), exc.CodeInvalidNumber, "odd")
		}
		return l.Int, nil
	})
	v, err := even.Consume(cursor(t, "4"))
	require.NoError(t, err)
	require.Equal(t, int64(4), v)

	_, err = Named("even number", even).Consume(cursor(t, "3"))
	e := requireCode(t, err, exc.CodeInvalidNumber)
	require.Equal(t, []string{"even number"}, e.Context())
}

func TestErrorContext(t *testing.T) {
	t.Parallel()

	inner := Named("argument", Seq3(Ident(), Particle(':'), Ident(), func(a string, _ rune, b string, _ idl.Span) string {
		return a + b
	}))
	outer := Named("function", Seq2(Keyword("fn"), inner, func(_ string, v string, _ idl.Span) string {
		return v
	}))

	_, err := outer.Consume(cursor(t, "fn a : (\n"))
	e := requireCode(t, err, exc.CodeUnrecognizedToken)
	require.Equal(t, []string{"function", "argument"}, e.Context())
	// The span is the token where the deepest failure happened.
	span := e.Location().Span
	require.True(t, span.IsPresent())
	require.Equal(t, int64(7), span.Value().Start.Offset)
	require.Equal(t, "error: expected identifier, found '(' at /test.keel:1:8, while parsing function, while parsing argument [K0007]", e.Error())

	// Inline patterns add no context.
	_, err = Inline(inner).Consume(cursor(t, "a :"))
	e = requireCode(t, err, exc.CodeUnexpectedEOF)
	require.Equal(t, []string{"argument"}, e.Context())
	require.Equal(t, int64(3), e.Location().Span.Value().Start.Offset)
}

func TestErrorWithoutSpan(t *testing.T) {
	t.Parallel()

	_, err := Named("item", Ident()).Consume(cursor(t, ""))
	e := requireCode(t, err, exc.CodeUnexpectedEOF)
	require.False(t, e.Location().Span.IsPresent())
	require.Equal(t, "error: expected identifier, found end of input at /test.keel, while parsing item [K0005]", e.Error())
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	c := cursor(t, "let x")
	require.True(t, Check(c, Is(Keyword("let"))))
	require.False(t, Check(c, Is(Keyword("fn"))))
	require.True(t, Check(c, Not(Is(Keyword("fn")))))
	require.False(t, Check(c, Not(Is(Keyword("let")))))
	require.True(t, Check(c, Any(Is(Literal()), Is(Ident()))))
	require.False(t, Check(c, Any()))
	require.True(t, Check(c, Always()))
	// Two tokens of lookahead and the cursor is still at the start.
	require.True(t, Check(c, Is(Seq2(Keyword("let"), Ident(), func(string, string, idl.Span) bool { return true }))))
	require.Equal(t, "let", c.Peek().Value().Value)
}

func TestConditional(t *testing.T) {
	t.Parallel()

	typed := Conditional(Is(Particle(':')), Seq2(Particle(':'), Ident(), func(_ rune, typ string, _ idl.Span) string {
		return typ
	}))

	c := cursor(t, ": i32")
	v, err := typed.Consume(c)
	require.NoError(t, err)
	require.Equal(t, optional.Some("i32"), v)

	// Rejection is not an error and consumes nothing.
	c = cursor(t, "= 1")
	v, err = typed.Consume(c)
	require.NoError(t, err)
	require.False(t, v.IsPresent())
	require.Equal(t, "=", c.Peek().Value().Value)

	// Failure after selection is a hard error.
	c = cursor(t, ": 1")
	_, err = typed.Consume(c)
	requireCode(t, err, exc.CodeUnrecognizedToken)
}

func TestBranchIfElse(t *testing.T) {
	t.Parallel()

	tuple := Seq3(Particle('('), Ident(), Particle(')'), func(_ rune, v string, _ rune, _ idl.Span) string {
		return "tuple " + v
	})
	single := Map(Ident(), func(v string) string { return "single " + v })
	typ := BranchIfElse(Is(Particle('(')), tuple, single)

	v, err := typ.Consume(cursor(t, "(a)"))
	require.NoError(t, err)
	require.Equal(t, "tuple a", v)

	v, err = typ.Consume(cursor(t, "b"))
	require.NoError(t, err)
	require.Equal(t, "single b", v)
}

func TestMatchOrder(t *testing.T) {
	t.Parallel()

	ran := []string{}
	record := func(name string) Consumer[string] {
		return Custom(func(c *Cursor) (string, error) {
			ran = append(ran, name)
			c.Advance()
			return name, nil
		})
	}
	// Both predicates match an identifier; the first declared wins.
	m := Match(
		When("first", Is(Ident()), record("first")),
		When("second", Is(Ident()), record("second")),
		When("literal", Is(Literal()), record("literal")),
	)

	v, err := m.Consume(cursor(t, "x"))
	require.NoError(t, err)
	require.Equal(t, "first", v)
	require.Equal(t, []string{"first"}, ran)

	v, err = m.Consume(cursor(t, "1"))
	require.NoError(t, err)
	require.Equal(t, "literal", v)

	_, err = m.Consume(cursor(t, "("))
	e := requireCode(t, err, exc.CodeNoAlternative)
	require.Equal(t, "expected one of first, second, literal, found '('", e.Message())
}

func TestMatchCommits(t *testing.T) {
	t.Parallel()

	m := Match(
		When("let", Is(Keyword("let")), Seq2(Keyword("let"), Ident(), func(_ string, v string, _ idl.Span) string { return v })),
		When("any", Always(), Map(Literal(), idl.Literal.String)),
	)
	// Once "let" is selected its failure is final; the fallback is not tried.
	_, err := m.Consume(cursor(t, "let 1"))
	requireCode(t, err, exc.CodeUnrecognizedToken)
}

func TestParseRequiresEnd(t *testing.T) {
	t.Parallel()

	v, err := Parse[string](Ident(), cursor(t, "a"))
	require.NoError(t, err)
	require.Equal(t, "a", v)

	_, err = Parse[string](Ident(), cursor(t, "a b"))
	e := requireCode(t, err, exc.CodeUnrecognizedToken)
	require.Equal(t, int64(2), e.Location().Span.Value().Start.Offset)
}

func TestTracing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	item := Named("item", Ident())
	pair := Named("pair", Seq2(item, item, func(a string, b string, _ idl.Span) string { return a + b }))

	_, err := pair.Consume(cursor(t, "a b", WithLogger(logger)))
	require.NoError(t, err)
	out := buf.String()
	require.Equal(t, 3, strings.Count(out, "msg=enter"))
	require.Equal(t, 3, strings.Count(out, "msg=leave"))
	require.Contains(t, out, "rule=pair")

	buf.Reset()
	_, err = pair.Consume(cursor(t, "a (", WithLogger(logger)))
	require.Error(t, err)
	require.Equal(t, 2, strings.Count(buf.String(), "msg=fail"))
	require.Contains(t, buf.String(), "error=")

	// Lookahead is not traced.
	buf.Reset()
	require.True(t, Check(cursor(t, "a", WithLogger(logger)), Is(item)))
	require.Empty(t, buf.String())
}

func TestEnd(t *testing.T) {
	t.Parallel()

	require.True(t, Check(cursor(t, ""), End()))
	require.False(t, Check(cursor(t, "a"), End()))
}
