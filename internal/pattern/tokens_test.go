package pattern

import (
	"strconv"
	"unicode"

	"gopkg.keel-lang.org/keelc/internal/idl"
)

// tokens splits input into the token shapes the engine consumes without going
// through the Keel lexer. It knows single line ASCII only: identifiers,
// decimal integers, and one particle per other character.
func tokens(input string) []*idl.Token {
	runes := []rune(input)
	out := []*idl.Token{}
	prevEnd := int64(-1)
	at := func(x int) idl.Location {
		return idl.Location{Line: 1, Column: int32(x + 1), Offset: int64(x)}
	}
	for x := 0; x < len(runes); {
		r := runes[x]
		if unicode.IsSpace(r) {
			x = x + 1
			continue
		}
		start := x
		tok := &idl.Token{}
		switch {
		case r == '_' || unicode.IsLetter(r):
			for x < len(runes) && (runes[x] == '_' || unicode.IsLetter(runes[x]) || unicode.IsDigit(runes[x])) {
				x = x + 1
			}
			tok.Type = idl.TokenTypeIdentifier
			tok.Value = string(runes[start:x])
		case unicode.IsDigit(r):
			for x < len(runes) && unicode.IsDigit(runes[x]) {
				x = x + 1
			}
			v, _ := strconv.ParseInt(string(runes[start:x]), 10, 64)
			tok.Type = idl.TokenTypeLiteral
			tok.Value = string(runes[start:x])
			tok.Literal = idl.IntLiteral(v)
		default:
			x = x + 1
			tok.Type = idl.TokenTypeParticle
			tok.Value = string(r)
			tok.Particle = r
		}
		tok.Span = idl.Span{Start: at(start), End: at(x)}
		tok.Glued = prevEnd == int64(start)
		prevEnd = int64(x)
		out = append(out, tok)
	}
	return out
}
