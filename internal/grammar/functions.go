package grammar

import (
	"gopkg.keel-lang.org/keelc/internal/ast"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/optional"
	"gopkg.keel-lang.org/keelc/internal/pattern"
)

type signature struct {
	name ast.Ident
	args []ast.Arg
}

func (b *builder) buildFunctions() {
	arg := pattern.Named("ident type pair", pattern.Seq3(
		b.ident,
		pattern.Particle(':'),
		b.fullType,
		func(name ast.Ident, _ rune, t ast.FullType, _ idl.Span) ast.Arg {
			return ast.Arg{Name: name, Type: t}
		},
	))
	args := pattern.Named("function args", pattern.MaybeEmpty(
		pattern.Conditional(pattern.Is(pattern.Ident()), arg),
		b.comma,
		pattern.TrailNever,
	))
	header := pattern.Seq5(
		pattern.Keyword("fn"),
		b.ident,
		pattern.Particle('('),
		args,
		pattern.Particle(')'),
		func(_ string, name ast.Ident, _ rune, args []ast.Arg, _ rune, _ idl.Span) signature {
			return signature{name: name, args: args}
		},
	)

	arrow := pattern.Seq2(pattern.Particle('-'), pattern.GluedParticleOf('>'), func(rune, rune, idl.Span) string {
		return "->"
	})
	ret := pattern.Seq1(
		pattern.Conditional(pattern.Is(arrow), pattern.Named("return type", pattern.Seq2(
			arrow,
			b.fullType,
			func(_ string, t ast.FullType, _ idl.Span) ast.FullType {
				return t
			},
		))),
		func(t optional.Optional[ast.FullType], span idl.Span) ast.FullType {
			if t.IsPresent() {
				return t.Value()
			}
			// Nothing was consumed so span is where the type would be.
			return ast.EmptyType(span)
		},
	)

	b.function = pattern.Named("function", pattern.Seq5(
		header,
		ret,
		pattern.Particle('{'),
		b.block,
		pattern.Particle('}'),
		func(sig signature, returns ast.FullType, _ rune, body ast.Block, _ rune, span idl.Span) ast.Func {
			return ast.Func{
				Name: sig.name,
				Args: sig.args,
				Ret:  returns,
				Body: body,
				Span: span,
			}
		},
	))

	b.moduleContent = pattern.Named("module content", pattern.Seq1(
		pattern.Many(pattern.Conditional(
			pattern.Not(pattern.End()),
			pattern.Match(pattern.When("function", pattern.Is(pattern.Keyword("fn")), b.function)),
		)),
		func(functions []ast.Func, span idl.Span) ast.ModuleContent {
			return ast.ModuleContent{Functions: functions, Span: span}
		},
	))
}
