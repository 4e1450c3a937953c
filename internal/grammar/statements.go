package grammar

import (
	"gopkg.keel-lang.org/keelc/internal/ast"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/optional"
	"gopkg.keel-lang.org/keelc/internal/pattern"
)

func (b *builder) buildStatements() {
	varType := pattern.Named("variable type", pattern.Seq2(
		pattern.Particle(':'),
		b.fullType,
		func(_ rune, t ast.FullType, _ idl.Span) ast.FullType {
			return t
		},
	))
	varCreate := pattern.Named("variable declaration", pattern.Seq6(
		pattern.Keyword("let"),
		pattern.Conditional(pattern.Is(pattern.Keyword("mut")), pattern.Keyword("mut")),
		b.item,
		pattern.Conditional(pattern.Is(pattern.Particle(':')), varType),
		pattern.Particle('='),
		b.expression,
		func(_ string, mut optional.Optional[string], name ast.Item, t optional.Optional[ast.FullType], _ rune, value ast.Expression, _ idl.Span) ast.Stmt {
			stmt := ast.VarCreate{Name: name, Mutable: mut.IsPresent(), Value: value}
			if t.IsPresent() {
				v := t.Value()
				stmt.Type = &v
			}
			return stmt
		},
	))

	// A compound operator is a run of glued punctuation ending in a glued
	// "=", as in "+=" or "<<=".
	compound := pattern.Named("compound operator", pattern.Seq2(
		pattern.MapErr(operatorRun(compoundChars), toOperator),
		pattern.GluedParticleOf('='),
		func(op ast.Operator, _ rune, _ idl.Span) *ast.Operator {
			return &op
		},
	))
	assignOp := pattern.BranchIfElse(
		pattern.Is(pattern.Particle('=')),
		pattern.Map(pattern.Particle('='), func(rune) *ast.Operator { return nil }),
		pattern.Consumer[*ast.Operator](compound),
	)
	varAssign := pattern.Named("variable assignment", pattern.Seq3(
		b.item,
		assignOp,
		b.expression,
		func(name ast.Item, op *ast.Operator, value ast.Expression, _ idl.Span) ast.Stmt {
			return ast.VarAssign{Name: name, Op: op, Value: value}
		},
	))
	call := pattern.Map(b.call, func(e ast.Expression) ast.Stmt {
		return ast.ExprStmt{Expr: e}
	})

	// Declaration order is priority order: a call is only tried when the
	// statement does not start with "let", and assignment is the fallback.
	// Every statement, including the last one, is terminated by ";".
	b.statement = pattern.Named("statement", pattern.Seq2(
		pattern.Match(
			pattern.When("variable declaration", pattern.Is(pattern.Keyword("let")), pattern.Consumer[ast.Stmt](varCreate)),
			pattern.When("function call", b.callAhead, call),
			pattern.When("variable assignment", pattern.Always(), pattern.Consumer[ast.Stmt](varAssign)),
		),
		pattern.Particle(';'),
		func(stmt ast.Stmt, _ rune, span idl.Span) ast.Statement {
			return ast.Statement{Stmt: stmt, Span: span}
		},
	))

	b.block = pattern.Named("block", pattern.Seq1(
		pattern.MaybeEmpty(
			pattern.Conditional(pattern.Is(pattern.Ident()), b.statement),
			pattern.Required(pattern.Dummy(struct{}{})),
			pattern.TrailAlways,
		),
		func(statements []ast.Statement, span idl.Span) ast.Block {
			return ast.Block{Statements: statements, Span: span}
		},
	))
}
