// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"context"
	"fmt"

	"gopkg.keel-lang.org/keelc/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindKeel
)

func (k FileKind) String() string {
	switch k {
	case FileKindKeel:
		return "keel"
	case FileKindNone:
		return "none"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
}

type LexerFile interface {
	File
	Tokens(ctx context.Context) (Iterator[*Token], error)
}

type Lexer interface {
	Lex(ctx context.Context, f File) (LexerFile, error)
}

// Location is a point in a source file. Line and Column are 1-based, Offset is
// the 0-based byte offset.
type Location struct {
	Line   int32
	Column int32
	Offset int64
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span is the half-open range [Start, End) of a run of source text.
type Span struct {
	Start Location
	End   Location
}

func (s Span) String() string {
	return s.Start.String()
}

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	out := s
	if other.Start.Offset < out.Start.Offset {
		out.Start = other.Start
	}
	if other.End.Offset > out.End.Offset {
		out.End = other.End
	}
	return out
}

// Empty reports whether the span covers no source text.
func (s Span) Empty() bool {
	return s.Start.Offset == s.End.Offset
}

type TokenType uint16

const (
	TokenTypeUnknown    TokenType = 0
	TokenTypeIdentifier TokenType = 1
	TokenTypeParticle   TokenType = 2
	TokenTypeLiteral    TokenType = 3
)

func (t TokenType) String() string {
	switch t {
	case TokenTypeIdentifier:
		return "identifier"
	case TokenTypeParticle:
		return "particle"
	case TokenTypeLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

type Token struct {
	Span  Span
	Type  TokenType
	Value string
	// Particle is set for TokenTypeParticle.
	Particle rune
	// Glued is true when no trivia separates this token from the one before.
	Glued   bool
	Literal Literal
}

func (t *Token) String() string {
	switch t.Type {
	case TokenTypeParticle:
		return fmt.Sprintf("'%c'", t.Particle)
	case TokenTypeLiteral:
		return t.Literal.String()
	default:
		return fmt.Sprintf("%q", t.Value)
	}
}

type LiteralKind uint8

const (
	LiteralKindBool LiteralKind = iota + 1
	LiteralKindInt
	LiteralKindFloat
	LiteralKindString
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralKindBool:
		return "bool"
	case LiteralKindInt:
		return "int"
	case LiteralKindFloat:
		return "float"
	case LiteralKindString:
		return "string"
	default:
		return "none"
	}
}

// Literal is a literal value as produced by the lexer. The parser threads it
// through without interpreting it.
type Literal struct {
	Kind  LiteralKind
	Bool  bool
	Int   int64
	Float float64
	Text  string
}

func BoolLiteral(v bool) Literal {
	return Literal{Kind: LiteralKindBool, Bool: v}
}

func IntLiteral(v int64) Literal {
	return Literal{Kind: LiteralKindInt, Int: v}
}

func FloatLiteral(v float64) Literal {
	return Literal{Kind: LiteralKindFloat, Float: v}
}

func StringLiteral(v string) Literal {
	return Literal{Kind: LiteralKindString, Text: v}
}

func (l Literal) String() string {
	switch l.Kind {
	case LiteralKindBool:
		return fmt.Sprintf("%t", l.Bool)
	case LiteralKindInt:
		return fmt.Sprintf("%d", l.Int)
	case LiteralKindFloat:
		return fmt.Sprintf("%g", l.Float)
	case LiteralKindString:
		return fmt.Sprintf("%q", l.Text)
	default:
		return "<none>"
	}
}

type CompileRequest struct {
	Files      []string
	ModuleName string
	DumpTokens bool
}
