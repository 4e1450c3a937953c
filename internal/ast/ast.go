// Package ast defines the syntax tree produced by the Keel grammar. Every node
// carries the span of the tokens it was built from.
package ast

import (
	"strings"

	"gopkg.keel-lang.org/keelc/internal/idl"
)

type Ident struct {
	Name string
	Span idl.Span
}

// Item is a path of identifiers separated by "::".
type Item struct {
	Path []Ident
	Span idl.Span
}

func (i Item) String() string {
	parts := make([]string, 0, len(i.Path))
	for _, p := range i.Path {
		parts = append(parts, p.Name)
	}
	return strings.Join(parts, "::")
}

type FullType struct {
	Type TypeT
	Span idl.Span
}

// EmptyType is the empty tuple, used as the return type of functions that do
// not declare one.
func EmptyType(span idl.Span) FullType {
	return FullType{Type: TupleType{Members: []FullType{}}, Span: span}
}

// IsEmpty reports whether the type is the empty tuple.
func (t FullType) IsEmpty() bool {
	tuple, ok := t.Type.(TupleType)
	return ok && len(tuple.Members) == 0
}

// TypeT is either a SingleType or a TupleType.
type TypeT interface {
	isTypeT()
}

type SingleType struct {
	Type Type
}

type TupleType struct {
	Members []FullType
}

func (SingleType) isTypeT() {}
func (TupleType) isTypeT()  {}

// Type is a named type with optional generic arguments.
type Type struct {
	Generics []FullType
	Base     Item
	Span     idl.Span
}

type Arg struct {
	Name Ident
	Type FullType
}

type Func struct {
	Name Ident
	Args []Arg
	Ret  FullType
	Body Block
	Span idl.Span
}

type Block struct {
	Statements []Statement
	Span       idl.Span
}

type Statement struct {
	Stmt Stmt
	Span idl.Span
}

// Stmt is one of ExprStmt, VarCreate or VarAssign.
type Stmt interface {
	isStmt()
}

type ExprStmt struct {
	Expr Expression
}

// VarCreate is a "let" declaration. Type is nil when it is not declared.
type VarCreate struct {
	Name    Item
	Mutable bool
	Type    *FullType
	Value   Expression
}

// VarAssign is an assignment. Op is set for compound assignments like "+=".
type VarAssign struct {
	Name  Item
	Op    *Operator
	Value Expression
}

func (ExprStmt) isStmt()  {}
func (VarCreate) isStmt() {}
func (VarAssign) isStmt() {}

type Expression struct {
	Expr Expr
	Span idl.Span
}

// Expr is one of LiteralExpr, VariableExpr, CallExpr, BinaryExpr or
// UnaryExpr.
type Expr interface {
	isExpr()
}

type LiteralExpr struct {
	Value idl.Literal
}

type VariableExpr struct {
	Name Item
}

type CallExpr struct {
	Func Item
	Args []Expression
}

type BinaryExpr struct {
	Op    Operator
	Left  Expression
	Right Expression
}

type UnaryExpr struct {
	Op      Operator
	Operand Expression
}

func (LiteralExpr) isExpr()  {}
func (VariableExpr) isExpr() {}
func (CallExpr) isExpr()     {}
func (BinaryExpr) isExpr()   {}
func (UnaryExpr) isExpr()    {}

// ModuleContent is the result of parsing one source file.
type ModuleContent struct {
	Functions []Func
	Span      idl.Span
}
