// Package grammar assembles the Keel grammar from the pattern combinators.
package grammar

import (
	"sync"

	"gopkg.keel-lang.org/keelc/internal/ast"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/optional"
	"gopkg.keel-lang.org/keelc/internal/pattern"
)

// Patterns holds the entry rules of the grammar. The rules hold no parse
// state and can be shared by concurrent parses.
type Patterns struct {
	ModuleContent pattern.Consumer[ast.ModuleContent]
	Function      pattern.Consumer[ast.Func]
	Type          pattern.Consumer[ast.FullType]
	Expression    pattern.Consumer[ast.Expression]
	Statement     pattern.Consumer[ast.Statement]
	Block         pattern.Consumer[ast.Block]
	Item          pattern.Consumer[ast.Item]
}

// Build assembles a fresh grammar. Every recursive reference is finalized
// before Build returns.
func Build() *Patterns {
	b := &builder{}
	b.buildNames()
	b.buildTypes()
	b.buildExpressions()
	b.buildStatements()
	b.buildFunctions()
	if !b.typeRef.Finalized() || !b.exprRef.Finalized() {
		panic("grammar: recursive rule left unbound")
	}
	return &Patterns{
		ModuleContent: b.moduleContent,
		Function:      b.function,
		Type:          b.fullType,
		Expression:    b.expression,
		Statement:     b.statement,
		Block:         b.block,
		Item:          b.item,
	}
}

var defaultPatterns = sync.OnceValue(Build)

// ParseModuleContent parses the functions of one source file. Every token
// must be consumed.
func ParseModuleContent(tokens []*idl.Token, options ...pattern.CursorOption) (ast.ModuleContent, error) {
	return pattern.Parse(defaultPatterns().ModuleContent, pattern.NewCursor(tokens, options...))
}

// ParseFunction parses a single function definition. Every token must be
// consumed.
func ParseFunction(tokens []*idl.Token, options ...pattern.CursorOption) (ast.Func, error) {
	return pattern.Parse(defaultPatterns().Function, pattern.NewCursor(tokens, options...))
}

type builder struct {
	ident    pattern.Consumer[ast.Ident]
	pathSep  pattern.Consumer[string]
	item     pattern.Consumer[ast.Item]
	comma    pattern.Consumer[optional.Optional[rune]]
	fullType pattern.Consumer[ast.FullType]
	typeRef  *pattern.Ref[ast.FullType]

	expression pattern.Consumer[ast.Expression]
	exprRef    *pattern.Ref[ast.Expression]
	call       pattern.Consumer[ast.Expression]
	callAhead  pattern.Predicate

	statement pattern.Consumer[ast.Statement]
	block     pattern.Consumer[ast.Block]

	function      pattern.Consumer[ast.Func]
	moduleContent pattern.Consumer[ast.ModuleContent]
}

func (b *builder) buildNames() {
	b.ident = pattern.Seq1(pattern.Ident(), func(name string, span idl.Span) ast.Ident {
		return ast.Ident{Name: name, Span: span}
	})
	// "::" is two colons glued to each other and to the identifier before.
	b.pathSep = pattern.Seq2(pattern.GluedParticleOf(':'), pattern.GluedParticleOf(':'), func(rune, rune, idl.Span) string {
		return "::"
	})
	b.item = pattern.Named("item", pattern.Seq1(
		pattern.NonEmpty(
			pattern.Required(b.ident),
			pattern.Conditional(pattern.Is(b.pathSep), b.pathSep),
			pattern.TrailNever,
		),
		func(path []ast.Ident, span idl.Span) ast.Item {
			return ast.Item{Path: path, Span: span}
		},
	))
	b.comma = pattern.Conditional(pattern.Is(pattern.Particle(',')), pattern.Particle(','))
}
