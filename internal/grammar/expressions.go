package grammar

import (
	"fmt"
	"strings"

	"gopkg.keel-lang.org/keelc/internal/ast"
	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/optional"
	"gopkg.keel-lang.org/keelc/internal/pattern"
)

const (
	// operatorChars may continue an operator run. "=" is included so that
	// runs like "<=" are reported as unknown operators.
	operatorChars = "+-*/<>=!&|^%~"
	// compoundChars may continue the operator of a compound assignment.
	compoundChars = "+-*/<>!&|^%~"
)

// Binding power of binary operators. Unary operators bind tighter than all
// of them.
var precedence = map[ast.Op]int{
	ast.OpLShift: 1,
	ast.OpRShift: 1,
	ast.OpAdd:    2,
	ast.OpSub:    2,
	ast.OpMul:    3,
	ast.OpDiv:    3,
}

// gluedParticleIn matches a punctuation character from chars that directly
// follows the previous token.
func gluedParticleIn(chars string) pattern.Consumer[rune] {
	return pattern.Custom(func(c *pattern.Cursor) (rune, error) {
		t := c.Peek()
		if t.IsPresent() {
			tok := t.Value()
			if tok.Type == idl.TokenTypeParticle && tok.Glued && strings.ContainsRune(chars, tok.Particle) {
				c.Advance()
				return tok.Particle, nil
			}
		}
		return 0, c.Expected("adjacent operator character")
	})
}

// operatorRun reads one punctuation character followed by every glued
// character from chars.
func operatorRun(chars string) pattern.Consumer[pattern.Spanned[[]rune]] {
	glued := gluedParticleIn(chars)
	return pattern.WithSpan(pattern.Seq2(
		pattern.AnyParticle(),
		pattern.Many(pattern.Conditional(pattern.Is(glued), glued)),
		func(first rune, rest []rune, _ idl.Span) []rune {
			return append([]rune{first}, rest...)
		},
	))
}

func toOperator(run pattern.Spanned[[]rune], _ idl.Span) (ast.Operator, error) {
	op, err := ast.OpFromChars(run.Value, run.Span)
	if err != nil {
		return ast.Operator{}, err
	}
	return ast.Operator{Op: op, Span: run.Span}, nil
}

// exprPart is either an operand or an operator of an unfolded expression.
type exprPart struct {
	isOp    bool
	operand ast.Expression
	op      ast.Operator
}

func (b *builder) buildExpressions() {
	ref, fin := pattern.NewRef[ast.Expression]()

	args := pattern.Named("args", pattern.MaybeEmpty(
		pattern.Conditional(pattern.Not(pattern.Is(pattern.Particle(')'))), pattern.Consumer[ast.Expression](ref)),
		b.comma,
		pattern.TrailNever,
	))
	b.call = pattern.Named("function call", pattern.Seq4(
		b.item,
		pattern.Particle('('),
		args,
		pattern.Particle(')'),
		func(fn ast.Item, _ rune, args []ast.Expression, _ rune, span idl.Span) ast.Expression {
			return ast.Expression{Expr: ast.CallExpr{Func: fn, Args: args}, Span: span}
		},
	))
	b.callAhead = pattern.Is(pattern.Custom(b.walkCall))

	literal := pattern.Seq1(pattern.Literal(), func(v idl.Literal, span idl.Span) exprPart {
		return exprPart{operand: ast.Expression{Expr: ast.LiteralExpr{Value: v}, Span: span}}
	})
	variable := pattern.Seq1(b.item, func(name ast.Item, span idl.Span) exprPart {
		return exprPart{operand: ast.Expression{Expr: ast.VariableExpr{Name: name}, Span: span}}
	})
	call := pattern.Map(b.call, func(e ast.Expression) exprPart {
		return exprPart{operand: e}
	})
	group := pattern.Seq3(
		pattern.Particle('('),
		pattern.Consumer[ast.Expression](ref),
		pattern.Particle(')'),
		func(_ rune, inner ast.Expression, _ rune, span idl.Span) exprPart {
			return exprPart{operand: ast.Expression{Expr: inner.Expr, Span: span}}
		},
	)
	operator := pattern.Map(
		pattern.Named("operator", pattern.MapErr(operatorRun(operatorChars), toOperator)),
		func(op ast.Operator) exprPart {
			return exprPart{isOp: true, op: op}
		},
	)

	part := pattern.Match(
		pattern.When("literal", pattern.Is(pattern.Literal()), literal),
		pattern.When("function call", b.callAhead, call),
		pattern.When("parenthesized expression", pattern.Is(pattern.Particle('(')), group),
		pattern.When("variable", pattern.Is(pattern.Ident()), variable),
		pattern.When("operator", pattern.Is(pattern.AnyParticle()), operator),
	)
	stop := pattern.Any(
		pattern.End(),
		pattern.Is(pattern.Particle(')')),
		pattern.Is(pattern.Particle(';')),
		pattern.Is(pattern.Particle(',')),
		pattern.Is(pattern.Particle('}')),
	)

	expression := pattern.Named("expression", pattern.MapErr(
		pattern.NonEmpty(
			pattern.Conditional(pattern.Not(stop), part),
			pattern.Required(pattern.Dummy(struct{}{})),
			pattern.TrailOptional,
		),
		fold,
	))
	fin.Finalize(expression)
	b.exprRef = ref
	b.expression = ref
}

// walkCall matches an item path followed by "(".
func (b *builder) walkCall(c *pattern.Cursor) (struct{}, error) {
	for {
		if _, err := pattern.Ident().Consume(c); err != nil {
			return struct{}{}, err
		}
		if !pattern.Check(c, pattern.Is(b.pathSep)) {
			break
		}
		if _, err := b.pathSep.Consume(c); err != nil {
			return struct{}{}, err
		}
	}
	_, err := pattern.Particle('(').Consume(c)
	return struct{}{}, err
}

// fold turns a flat run of operands and operators into a tree. An operator
// at the start or right after another operator is unary. Binary operators
// are left associative.
func fold(parts []exprPart, _ idl.Span) (ast.Expression, error) {
	f := &folder{parts: parts}
	return f.binary(1)
}

type folder struct {
	parts []exprPart
	pos   int
}

func (f *folder) binary(minPrec int) (ast.Expression, error) {
	left, err := f.unary()
	if err != nil {
		return ast.Expression{}, err
	}
	for f.pos < len(f.parts) {
		p := f.parts[f.pos]
		if !p.isOp {
			return ast.Expression{}, invalid(p.operand.Span, "missing operator before operand")
		}
		prec := precedence[p.op.Op]
		if prec < minPrec {
			break
		}
		f.pos = f.pos + 1
		right, err := f.binary(prec + 1)
		if err != nil {
			return ast.Expression{}, err
		}
		left = ast.Expression{
			Expr: ast.BinaryExpr{Op: p.op, Left: left, Right: right},
			Span: left.Span.Join(right.Span),
		}
	}
	return left, nil
}

func (f *folder) unary() (ast.Expression, error) {
	if f.pos >= len(f.parts) {
		// Only reachable after an operator since the run is never empty.
		last := f.parts[len(f.parts)-1].op
		return ast.Expression{}, invalid(last.Span, fmt.Sprintf("missing operand after operator '%s'", last.Op))
	}
	p := f.parts[f.pos]
	f.pos = f.pos + 1
	if !p.isOp {
		return p.operand, nil
	}
	if p.op.Op != ast.OpAdd && p.op.Op != ast.OpSub {
		return ast.Expression{}, invalid(p.op.Span, fmt.Sprintf("operator '%s' cannot be unary", p.op.Op))
	}
	operand, err := f.unary()
	if err != nil {
		return ast.Expression{}, err
	}
	return ast.Expression{
		Expr: ast.UnaryExpr{Op: p.op, Operand: operand},
		Span: p.op.Span.Join(operand.Span),
	}, nil
}

func invalid(span idl.Span, message string) error {
	return exc.New(exc.Location{Span: optional.Some(span)}, exc.CodeInvalidExpression, message)
}
