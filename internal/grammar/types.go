package grammar

import (
	"gopkg.keel-lang.org/keelc/internal/ast"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/optional"
	"gopkg.keel-lang.org/keelc/internal/pattern"
)

// startsType matches the first token of a type: "(" for tuples and an
// identifier for named types.
func startsType() pattern.Predicate {
	return pattern.Any(pattern.Is(pattern.Particle('(')), pattern.Is(pattern.Ident()))
}

// typeList parses the comma separated members of generics and tuples. A
// trailing comma is allowed.
func (b *builder) typeList(member pattern.Consumer[ast.FullType]) pattern.Consumer[[]ast.FullType] {
	return pattern.MaybeEmpty(pattern.Conditional(startsType(), member), b.comma, pattern.TrailOptional)
}

func (b *builder) buildTypes() {
	ref, fin := pattern.NewRef[ast.FullType]()

	generics := pattern.Named("generics", pattern.Seq3(
		pattern.Particle('<'),
		b.typeList(ref),
		pattern.Particle('>'),
		func(_ rune, members []ast.FullType, _ rune, _ idl.Span) []ast.FullType {
			return members
		},
	))
	optionalGenerics := pattern.Named("optional generics", pattern.Conditional(pattern.Is(pattern.Particle('<')), generics))

	single := pattern.Named("single type", pattern.Seq2(
		b.item,
		optionalGenerics,
		func(base ast.Item, generics optional.Optional[[]ast.FullType], span idl.Span) ast.FullType {
			return ast.FullType{
				Type: ast.SingleType{Type: ast.Type{
					Generics: generics.ValueOr(nil),
					Base:     base,
					Span:     span,
				}},
				Span: span,
			}
		},
	))

	tuple := pattern.Named("tuple type", pattern.Seq3(
		pattern.Particle('('),
		b.typeList(ref),
		pattern.Particle(')'),
		func(_ rune, members []ast.FullType, _ rune, span idl.Span) ast.FullType {
			return ast.FullType{Type: ast.TupleType{Members: members}, Span: span}
		},
	))

	full := pattern.Named("type", pattern.BranchIfElse[ast.FullType](pattern.Is(pattern.Particle('(')), tuple, single))
	fin.Finalize(full)
	b.typeRef = ref
	b.fullType = ref
}
