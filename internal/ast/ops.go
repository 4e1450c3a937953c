package ast

import (
	"fmt"

	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/optional"
)

type Op uint8

const (
	OpAdd Op = iota + 1
	OpSub
	OpMul
	OpDiv
	OpLShift
	OpRShift
)

var opText = map[Op]string{
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpLShift: "<<",
	OpRShift: ">>",
}

var opNames = map[Op]string{
	OpAdd:    "Add",
	OpSub:    "Sub",
	OpMul:    "Mul",
	OpDiv:    "Div",
	OpLShift: "LShift",
	OpRShift: "RShift",
}

func (o Op) String() string {
	if s, ok := opText[o]; ok {
		return s
	}
	return fmt.Sprintf("op-%d", o)
}

// Name returns the identifier-like name of the operator, such as "LShift".
func (o Op) Name() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op%d", o)
}

type Operator struct {
	Op   Op
	Span idl.Span
}

// OpFromChars looks up the operator spelled by chars. The returned exception
// has no URI; callers that know the file add it.
func OpFromChars(chars []rune, span idl.Span) (Op, error) {
	text := string(chars)
	for op, s := range opText {
		if s == text {
			return op, nil
		}
	}
	return 0, exc.New(
		exc.Location{Span: optional.Some(span)},
		exc.CodeUnrecognizedOperator,
		fmt.Sprintf("operator '%s' not recognized", text),
	)
}
