// Package dump renders parse results for people and tools: module trees as
// YAML or JSON, token streams, and diagnostics.
package dump

import (
	"fmt"

	"gopkg.keel-lang.org/keelc/internal/ast"
	"gopkg.keel-lang.org/keelc/internal/idl"
)

// Tree converts a module into nested maps and slices. Every node carries a
// "kind" and a "span". Functions and sub-modules are listed in name order.
func Tree(module *ast.Module) map[string]any {
	functions := make([]any, 0, len(module.Functions))
	for _, name := range module.FunctionNames() {
		functions = append(functions, function(module.Functions[name]))
	}
	modules := make([]any, 0, len(module.SubModules))
	for _, name := range module.SubModuleNames() {
		modules = append(modules, Tree(module.SubModules[name]))
	}
	return map[string]any{
		"kind":      "module",
		"name":      module.Name.Name,
		"span":      span(module.Span),
		"functions": functions,
		"modules":   modules,
	}
}

func span(s idl.Span) string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

func function(fn ast.Func) map[string]any {
	args := make([]any, 0, len(fn.Args))
	for _, arg := range fn.Args {
		args = append(args, map[string]any{
			"kind": "arg",
			"name": arg.Name.Name,
			"span": span(arg.Name.Span.Join(arg.Type.Span)),
			"type": fullType(arg.Type),
		})
	}
	return map[string]any{
		"kind":    "function",
		"name":    fn.Name.Name,
		"span":    span(fn.Span),
		"args":    args,
		"returns": fullType(fn.Ret),
		"body":    block(fn.Body),
	}
}

func fullType(t ast.FullType) map[string]any {
	switch tt := t.Type.(type) {
	case ast.SingleType:
		generics := make([]any, 0, len(tt.Type.Generics))
		for _, g := range tt.Type.Generics {
			generics = append(generics, fullType(g))
		}
		return map[string]any{
			"kind":     "type",
			"name":     tt.Type.Base.String(),
			"span":     span(t.Span),
			"generics": generics,
		}
	case ast.TupleType:
		members := make([]any, 0, len(tt.Members))
		for _, m := range tt.Members {
			members = append(members, fullType(m))
		}
		return map[string]any{
			"kind":    "tuple",
			"span":    span(t.Span),
			"members": members,
		}
	default:
		return map[string]any{"kind": "unknown", "span": span(t.Span)}
	}
}

func block(b ast.Block) []any {
	out := make([]any, 0, len(b.Statements))
	for _, s := range b.Statements {
		out = append(out, statement(s))
	}
	return out
}

func statement(s ast.Statement) map[string]any {
	switch stmt := s.Stmt.(type) {
	case ast.ExprStmt:
		return map[string]any{
			"kind": "expression statement",
			"span": span(s.Span),
			"expr": expression(stmt.Expr),
		}
	case ast.VarCreate:
		out := map[string]any{
			"kind":    "let",
			"span":    span(s.Span),
			"name":    stmt.Name.String(),
			"mutable": stmt.Mutable,
			"value":   expression(stmt.Value),
		}
		if stmt.Type != nil {
			out["type"] = fullType(*stmt.Type)
		}
		return out
	case ast.VarAssign:
		out := map[string]any{
			"kind":  "assign",
			"span":  span(s.Span),
			"name":  stmt.Name.String(),
			"value": expression(stmt.Value),
		}
		if stmt.Op != nil {
			out["op"] = stmt.Op.Op.String()
		}
		return out
	default:
		return map[string]any{"kind": "unknown", "span": span(s.Span)}
	}
}

func expression(e ast.Expression) map[string]any {
	switch expr := e.Expr.(type) {
	case ast.LiteralExpr:
		return map[string]any{
			"kind":  "literal",
			"span":  span(e.Span),
			"type":  expr.Value.Kind.String(),
			"value": literal(expr.Value),
		}
	case ast.VariableExpr:
		return map[string]any{
			"kind": "variable",
			"span": span(e.Span),
			"name": expr.Name.String(),
		}
	case ast.CallExpr:
		args := make([]any, 0, len(expr.Args))
		for _, arg := range expr.Args {
			args = append(args, expression(arg))
		}
		return map[string]any{
			"kind": "call",
			"span": span(e.Span),
			"func": expr.Func.String(),
			"args": args,
		}
	case ast.BinaryExpr:
		return map[string]any{
			"kind":  "binary",
			"span":  span(e.Span),
			"op":    expr.Op.Op.String(),
			"left":  expression(expr.Left),
			"right": expression(expr.Right),
		}
	case ast.UnaryExpr:
		return map[string]any{
			"kind":    "unary",
			"span":    span(e.Span),
			"op":      expr.Op.Op.String(),
			"operand": expression(expr.Operand),
		}
	default:
		return map[string]any{"kind": "unknown", "span": span(e.Span)}
	}
}

func literal(l idl.Literal) any {
	switch l.Kind {
	case idl.LiteralKindBool:
		return l.Bool
	case idl.LiteralKindInt:
		return l.Int
	case idl.LiteralKindFloat:
		return l.Float
	default:
		return l.Text
	}
}

// Counts tallies the functions, statements and expressions of a module tree,
// including those of its sub-modules.
func Counts(module *ast.Module) map[string]int {
	counts := map[string]int{}
	ast.Walk(module, func(node interface{}) bool {
		switch node.(type) {
		case *ast.Module:
			counts["modules"] = counts["modules"] + 1
		case ast.Func:
			counts["functions"] = counts["functions"] + 1
		case ast.Statement:
			counts["statements"] = counts["statements"] + 1
		case ast.Expression:
			counts["expressions"] = counts["expressions"] + 1
		}
		return true
	})
	return counts
}
