// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lexer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/iter"
	"gopkg.keel-lang.org/keelc/internal/optional"
)

const (
	lexerKeelLookahead = 3
)

var _ idl.Lexer = (*LexerKeel)(nil)

// LexerKeel implements a tokenizer for Keel sources. It produces three kinds
// of token: identifiers, literals, and single-character particles. Operators
// made of several characters are assembled by the parser from glued
// particles.
type LexerKeel struct {
	reporter exc.Reporter
}

func NewLexerKeel(reporter exc.Reporter) *LexerKeel {
	return &LexerKeel{reporter: reporter}
}

func (self *LexerKeel) Lex(ctx context.Context, f idl.File) (idl.LexerFile, error) {
	return &lexerFileKeel{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type lexerFileKeel struct {
	idl.File
	reporter exc.Reporter
}

func (self *lexerFileKeel) Tokens(ctx context.Context) (idl.Iterator[*idl.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	points := iter.NewLookahead(iter.NewUnicodeFileBody(ctx, b), lexerKeelLookahead)
	return &lexerFileKeelTokens{
		uri:      self.File.Path(ctx),
		body:     points,
		reporter: self.reporter,
		pos:      idl.Location{Line: 1, Column: 1},
		prevEnd:  -1,
	}, nil
}

type lexerFileKeelTokens struct {
	uri      string
	body     idl.Lookahead[idl.CodePoint]
	reporter exc.Reporter
	// pos is the location of the next unread code point.
	pos idl.Location
	// prevEnd is the end offset of the last emitted token, -1 before the first.
	prevEnd int64
	started bool
	err     exc.Exception
}

func (self *lexerFileKeelTokens) Next(ctx context.Context) optional.Optional[*idl.Token] {
	if self.err != nil {
		return optional.None[*idl.Token]()
	}
	for {
		n := self.peek(ctx, 1)
		if !n.IsPresent() {
			return optional.None[*idl.Token]()
		}
		r := rune(n.Value())
		start := self.pos
		switch {
		case r == 0xFEFF && start.Offset == 0:
			_ = self.next(ctx)
			self.pos.Column = 1
			continue
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			_ = self.next(ctx)
			continue
		case r == '/' && self.peekIs(ctx, 2, '/'):
			self.skipCommentLine(ctx)
			continue
		case r == '/' && self.peekIs(ctx, 2, '*'):
			if !self.skipCommentBlock(ctx, start) {
				return optional.None[*idl.Token]()
			}
			continue
		case r == '"':
			return self.emit(self.readText(ctx, start))
		case r >= '0' && r <= '9':
			return self.emit(self.readNumber(ctx, start))
		case r == '_' || unicode.IsLetter(r):
			return self.emit(self.readIdentifier(ctx, start))
		case unicode.IsPrint(r) && !unicode.IsSpace(r):
			_ = self.next(ctx)
			return self.emit(optional.Some(&idl.Token{
				Span:     idl.Span{Start: start, End: self.pos},
				Type:     idl.TokenTypeParticle,
				Value:    string(r),
				Particle: r,
			}))
		default:
			_ = self.next(ctx)
			return self.fail(start, exc.CodeUnrecognizedToken, fmt.Sprintf("unexpected character %U", r))
		}
	}
}

// emit sets the glue flag of a freshly read token.
func (self *lexerFileKeelTokens) emit(t optional.Optional[*idl.Token]) optional.Optional[*idl.Token] {
	if !t.IsPresent() {
		return t
	}
	tok := t.Value()
	tok.Glued = self.prevEnd >= 0 && tok.Span.Start.Offset == self.prevEnd
	self.prevEnd = tok.Span.End.Offset
	return t
}

func (self *lexerFileKeelTokens) readIdentifier(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	var builder strings.Builder
	for {
		n := self.peek(ctx, 1)
		if !n.IsPresent() {
			break
		}
		r := rune(n.Value())
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			break
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(r)
	}
	span := idl.Span{Start: start, End: self.pos}
	v := builder.String()
	switch v {
	case "true", "false":
		return optional.Some(&idl.Token{
			Span:    span,
			Type:    idl.TokenTypeLiteral,
			Value:   v,
			Literal: idl.BoolLiteral(v == "true"),
		})
	}
	return optional.Some(&idl.Token{
		Span:  span,
		Type:  idl.TokenTypeIdentifier,
		Value: v,
	})
}

func (self *lexerFileKeelTokens) skipCommentLine(ctx context.Context) {
	for {
		n := self.peek(ctx, 1)
		if !n.IsPresent() || n.Value() == '\n' || n.Value() == '\r' {
			return
		}
		_ = self.next(ctx)
	}
}

func (self *lexerFileKeelTokens) skipCommentBlock(ctx context.Context, start idl.Location) bool {
	_ = self.next(ctx)
	_ = self.next(ctx)
	for {
		n := self.peek(ctx, 1)
		if !n.IsPresent() {
			_ = self.fail(start, exc.CodeUnexpectedEOF, "EOF while reading comment block")
			return false
		}
		if n.Value() == '*' && self.peekIs(ctx, 2, '/') {
			_ = self.next(ctx)
			_ = self.next(ctx)
			return true
		}
		_ = self.next(ctx)
	}
}

func (self *lexerFileKeelTokens) readText(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_ = self.next(ctx)
	for {
		n := self.peek(ctx, 1)
		if !n.IsPresent() {
			return self.fail(start, exc.CodeUnexpectedEOF, "EOF while reading string literal")
		}
		r := rune(n.Value())
		switch r {
		case '\n', '\r':
			return self.fail(start, exc.CodeUnexpectedEOF, "newline in string literal")
		case '"':
			_ = self.next(ctx)
			v := builder.String()
			return optional.Some(&idl.Token{
				Span:    idl.Span{Start: start, End: self.pos},
				Type:    idl.TokenTypeLiteral,
				Value:   v,
				Literal: idl.StringLiteral(v),
			})
		case '\\':
			escStart := self.pos
			_ = self.next(ctx)
			e := self.peek(ctx, 1)
			if !e.IsPresent() {
				return self.fail(start, exc.CodeUnexpectedEOF, "EOF while reading string literal")
			}
			_ = self.next(ctx)
			switch rune(e.Value()) {
			case 'n':
				_, _ = builder.WriteRune('\n')
			case 't':
				_, _ = builder.WriteRune('\t')
			case 'r':
				_, _ = builder.WriteRune('\r')
			case '0':
				_, _ = builder.WriteRune(0)
			case '\\':
				_, _ = builder.WriteRune('\\')
			case '"':
				_, _ = builder.WriteRune('"')
			default:
				return self.fail(escStart, exc.CodeUnrecognizedToken, fmt.Sprintf("unknown escape sequence \\%c", rune(e.Value())))
			}
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(r)
		}
	}
}

func (self *lexerFileKeelTokens) readNumber(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	var builder strings.Builder
	first := self.next(ctx)
	_, _ = builder.WriteRune(rune(first.Value()))

	isDigit := isDecimalDigit
	prefixed := false
	if first.Value() == '0' {
		if n := self.peek(ctx, 1); n.IsPresent() {
			switch n.Value() {
			case 'x', 'X':
				isDigit = isHexDigit
				prefixed = true
			case 'o', 'O':
				isDigit = isOctalDigit
				prefixed = true
			case 'b', 'B':
				isDigit = isBinaryDigit
				prefixed = true
			}
			if prefixed {
				_ = self.next(ctx)
				_, _ = builder.WriteRune(rune(n.Value()))
			}
		}
	}
	self.readDigits(ctx, &builder, isDigit)

	float := false
	if !prefixed {
		if self.peekIs(ctx, 1, '.') && self.peekDigit(ctx, 2) {
			float = true
			_ = self.next(ctx)
			_, _ = builder.WriteRune('.')
			self.readDigits(ctx, &builder, isDecimalDigit)
		}
		if self.peekIs(ctx, 1, 'e') || self.peekIs(ctx, 1, 'E') {
			signed := self.peekIs(ctx, 2, '+') || self.peekIs(ctx, 2, '-')
			if self.peekDigit(ctx, 2) || (signed && self.peekDigit(ctx, 3)) {
				float = true
				e := self.next(ctx)
				_, _ = builder.WriteRune(rune(e.Value()))
				if signed {
					s := self.next(ctx)
					_, _ = builder.WriteRune(rune(s.Value()))
				}
				self.readDigits(ctx, &builder, isDecimalDigit)
			}
		}
	}
	if n := self.peek(ctx, 1); n.IsPresent() {
		r := rune(n.Value())
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return self.fail(start, exc.CodeInvalidNumber, fmt.Sprintf("invalid character %q in number literal", r))
		}
	}

	text := builder.String()
	span := idl.Span{Start: start, End: self.pos}
	if float {
		v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
		if err != nil {
			return self.fail(start, exc.CodeInvalidNumber, fmt.Sprintf("invalid float literal %s", text))
		}
		return optional.Some(&idl.Token{Span: span, Type: idl.TokenTypeLiteral, Value: text, Literal: idl.FloatLiteral(v)})
	}
	var v int64
	var err error
	if prefixed {
		v, err = strconv.ParseInt(text, 0, 64)
	} else {
		v, err = strconv.ParseInt(strings.ReplaceAll(text, "_", ""), 10, 64)
	}
	if err != nil {
		return self.fail(start, exc.CodeInvalidNumber, fmt.Sprintf("invalid integer literal %s", text))
	}
	return optional.Some(&idl.Token{Span: span, Type: idl.TokenTypeLiteral, Value: text, Literal: idl.IntLiteral(v)})
}

func (self *lexerFileKeelTokens) readDigits(ctx context.Context, builder *strings.Builder, isDigit func(rune) bool) {
	for {
		n := self.peek(ctx, 1)
		if !n.IsPresent() {
			return
		}
		r := rune(n.Value())
		if !isDigit(r) && r != '_' {
			return
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(r)
	}
}

func isDecimalDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDecimalDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isOctalDigit(r rune) bool {
	return r >= '0' && r <= '7'
}

func isBinaryDigit(r rune) bool {
	return r == '0' || r == '1'
}

// peek returns the code point n places ahead of the last one consumed; n=1 is
// the next unread code point.
func (self *lexerFileKeelTokens) peek(ctx context.Context, n uint8) optional.Optional[idl.CodePoint] {
	// Until the first Next the lookahead window starts at the first value
	// rather than at the current one.
	if !self.started {
		return self.body.Lookahead(ctx, n-1)
	}
	return self.body.Lookahead(ctx, n)
}

func (self *lexerFileKeelTokens) peekIs(ctx context.Context, n uint8, r rune) bool {
	p := self.peek(ctx, n)
	return p.IsPresent() && rune(p.Value()) == r
}

func (self *lexerFileKeelTokens) peekDigit(ctx context.Context, n uint8) bool {
	p := self.peek(ctx, n)
	return p.IsPresent() && isDecimalDigit(rune(p.Value()))
}

func (self *lexerFileKeelTokens) next(ctx context.Context) optional.Optional[idl.CodePoint] {
	n := self.body.Next(ctx)
	self.started = true
	if !n.IsPresent() {
		return n
	}
	r := rune(n.Value())
	self.pos.Offset = self.pos.Offset + int64(utf8.RuneLen(r))
	switch r {
	case '\n':
		self.newLine()
	case '\r':
		if !self.peekIs(ctx, 1, '\n') {
			self.newLine()
		}
	default:
		self.pos.Column = self.pos.Column + 1
	}
	return n
}

func (self *lexerFileKeelTokens) newLine() {
	self.pos.Line = self.pos.Line + 1
	self.pos.Column = 1
}

func (self *lexerFileKeelTokens) fail(at idl.Location, code string, message string) optional.Optional[*idl.Token] {
	self.err = exc.New(exc.At(self.uri, idl.Span{Start: at, End: self.pos}), code, message)
	_ = self.reporter.Report(self.err)
	return optional.None[*idl.Token]()
}

// Close returns the lexical error that ended the stream, if any. The error has
// already been reported.
func (self *lexerFileKeelTokens) Close(ctx context.Context) error {
	closeErr := self.body.Close(ctx)
	if self.err != nil {
		return self.err
	}
	return closeErr
}
