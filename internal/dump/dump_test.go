package dump

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"gopkg.keel-lang.org/keelc/internal/ast"
	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/fs"
	"gopkg.keel-lang.org/keelc/internal/grammar"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/iter"
	"gopkg.keel-lang.org/keelc/internal/lexer"
)

const source = `fn add(a: int, b: Vec<int>) -> (int, bool) {
  let mut c: int = a + 1;
  c += -2;
  print(c, "s", true, 1.5);
}
`

func lex(t *testing.T, input string) []*idl.Token {
	t.Helper()
	ctx := context.Background()
	lf, err := lexer.NewLexerKeel(exc.NewReporter(nil)).Lex(ctx, fs.NewFileString("/main.keel", input, idl.FileKindKeel))
	require.NoError(t, err)
	stream, err := lf.Tokens(ctx)
	require.NoError(t, err)
	tokens, err := iter.Collect(ctx, stream)
	require.NoError(t, err)
	return tokens
}

func testModule(t *testing.T) *ast.Module {
	t.Helper()
	content, err := grammar.ParseModuleContent(lex(t, source))
	require.NoError(t, err)
	m, err := ast.NewModule(ast.Ident{Name: "main"}, content)
	require.NoError(t, err)
	root := ast.NewDirModule("demo")
	require.NoError(t, root.AddSubModule(m))
	return root
}

// at follows a path of map keys and slice indexes through a decoded tree.
func at(t *testing.T, v any, path ...any) any {
	t.Helper()
	for _, step := range path {
		switch s := step.(type) {
		case string:
			m, ok := v.(map[string]any)
			require.True(t, ok, "expected a map at %v", step)
			v = m[s]
		case int:
			l, ok := v.([]any)
			require.True(t, ok, "expected a list at %v", step)
			require.Less(t, s, len(l))
			v = l[s]
		}
	}
	return v
}

func checkTree(t *testing.T, tree any, number func(float64) any) {
	t.Helper()
	fn := at(t, tree, "modules", 0, "functions", 0)
	require.Equal(t, "demo", at(t, tree, "name"))
	require.Equal(t, "main", at(t, tree, "modules", 0, "name"))
	require.Equal(t, "add", at(t, fn, "name"))
	require.Equal(t, "1:1-5:2", at(t, fn, "span"))
	require.Equal(t, "Vec", at(t, fn, "args", 1, "type", "name"))
	require.Equal(t, "int", at(t, fn, "args", 1, "type", "generics", 0, "name"))
	require.Equal(t, "tuple", at(t, fn, "returns", "kind"))
	require.Equal(t, "bool", at(t, fn, "returns", "members", 1, "name"))

	let := at(t, fn, "body", 0)
	require.Equal(t, "let", at(t, let, "kind"))
	require.Equal(t, "2:3-2:26", at(t, let, "span"))
	require.Equal(t, true, at(t, let, "mutable"))
	require.Equal(t, "int", at(t, let, "type", "name"))
	require.Equal(t, "+", at(t, let, "value", "op"))
	require.Equal(t, "a", at(t, let, "value", "left", "name"))
	require.Equal(t, number(1), at(t, let, "value", "right", "value"))

	assign := at(t, fn, "body", 1)
	require.Equal(t, "assign", at(t, assign, "kind"))
	require.Equal(t, "+", at(t, assign, "op"))
	require.Equal(t, "unary", at(t, assign, "value", "kind"))
	require.Equal(t, "-", at(t, assign, "value", "op"))

	call := at(t, fn, "body", 2, "expr")
	require.Equal(t, "call", at(t, call, "kind"))
	require.Equal(t, "print", at(t, call, "func"))
	require.Equal(t, "s", at(t, call, "args", 1, "value"))
	require.Equal(t, true, at(t, call, "args", 2, "value"))
	require.Equal(t, "float", at(t, call, "args", 3, "type"))
	require.Equal(t, 1.5, at(t, call, "args", 3, "value"))
}

func TestYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, testModule(t)))
	var tree map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &tree))
	checkTree(t, tree, func(f float64) any { return int(f) })
}

func TestJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, testModule(t)))
	var tree map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &tree))
	checkTree(t, tree, func(f float64) any { return f })
}

func TestCounts(t *testing.T) {
	t.Parallel()

	require.Equal(t, map[string]int{
		"modules":     2,
		"functions":   1,
		"statements":  3,
		"expressions": 10,
	}, Counts(testModule(t)))
}

func TestTokens(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Tokens(&buf, lex(t, "fn f(x)")))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, []string{"1:1-1:3", "identifier", `"fn"`}, strings.Fields(lines[0]))
	require.Equal(t, []string{"1:4-1:5", "identifier", `"f"`}, strings.Fields(lines[1]))
	require.Equal(t, []string{"1:5-1:6", "particle", "glued", "'('"}, strings.Fields(lines[2]))
	require.Equal(t, []string{"1:7-1:8", "particle", "glued", "')'"}, strings.Fields(lines[4]))
}

var ansi = regexp.MustCompile("\x1b\\[[0-9;]*m")

func TestDiagnostics(t *testing.T) {
	t.Parallel()

	span := idl.Span{
		Start: idl.Location{Line: 2, Column: 11, Offset: 20},
		End:   idl.Location{Line: 2, Column: 12, Offset: 21},
	}
	errs := []exc.Exception{
		exc.WithContext(exc.New(exc.At("/main.keel", span), exc.CodeUnrecognizedToken, "expected separator, found '}'"), "block"),
		exc.New(exc.Location{URI: "/other.keel"}, exc.CodeUnexpectedEOF, "expected '}', found end of input"),
	}
	expected := "error: expected separator, found '}' at /main.keel:2:11, while parsing block [K0007]\n" +
		"error: expected '}', found end of input at /other.keel [K0005]\n" +
		"2 errors\n"

	var plain bytes.Buffer
	require.NoError(t, Diagnostics(&plain, errs, false))
	require.Equal(t, expected, plain.String())

	var colored bytes.Buffer
	require.NoError(t, Diagnostics(&colored, errs, true))
	require.Equal(t, expected, ansi.ReplaceAllString(colored.String(), ""))

	var single bytes.Buffer
	require.NoError(t, Diagnostics(&single, errs[1:], false))
	require.True(t, strings.HasSuffix(single.String(), "\n1 error\n"))

	var empty bytes.Buffer
	require.NoError(t, Diagnostics(&empty, nil, true))
	require.Empty(t, empty.String())
}

func TestTreeWithoutSpan(t *testing.T) {
	t.Parallel()

	tree := Tree(ast.NewDirModule("empty"))
	require.Equal(t, "module", tree["kind"])
	require.Equal(t, "0:0-0:0", tree["span"])
	require.Empty(t, tree["functions"])
}
