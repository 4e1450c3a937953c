package dump

import (
	"fmt"
	"io"
	"text/tabwriter"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"gopkg.keel-lang.org/keelc/internal/ast"
	"gopkg.keel-lang.org/keelc/internal/idl"
)

// YAML writes the tree of module as a YAML document.
func YAML(w io.Writer, module *ast.Module) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Tree(module)); err != nil {
		return err
	}
	return enc.Close()
}

// JSON writes the tree of module as indented JSON.
func JSON(w io.Writer, module *ast.Module) error {
	s, err := structpb.NewStruct(Tree(module))
	if err != nil {
		return err
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

// Tokens writes one line per token: its span, type, whether it is glued to
// the token before it, and its text.
func Tokens(w io.Writer, tokens []*idl.Token) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, tok := range tokens {
		glued := ""
		if tok.Glued {
			glued = "glued"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", span(tok.Span), tok.Type, glued, tok); err != nil {
			return err
		}
	}
	return tw.Flush()
}
