package compiler

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"runtime"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gopkg.keel-lang.org/keelc/internal/ast"
	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/grammar"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/iter"
	"gopkg.keel-lang.org/keelc/internal/lexer"
	"gopkg.keel-lang.org/keelc/internal/pattern"
	"gopkg.keel-lang.org/keelc/internal/target"
)

type Option func(c *Compiler) error

func OptionWithFS(fs idl.FileSystem) Option {
	return func(c *Compiler) error {
		c.FS = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(c *Compiler) error {
		c.LookupENV = lookupEnv
		return nil
	}
}

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *Compiler) error {
		c.Reporter = reporter
		return nil
	}
}

func OptionWithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) error {
		c.Logger = logger
		return nil
	}
}

func OptionWithMaxConcurrency(n int) Option {
	return func(c *Compiler) error {
		if n < 0 {
			return exc.New(exc.Location{}, exc.CodeInvalidConfig, "max concurrency must not be negative")
		}
		c.MaxConcurrency = n
		return nil
	}
}

// OptionWithTrace enables rule level tracing of the parser. Trace events are
// written to the compiler's logger at debug level.
func OptionWithTrace(enabled bool) Option {
	return func(c *Compiler) error {
		c.Trace = enabled
		return nil
	}
}

func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.LookupENV == nil {
		c.LookupENV = os.LookupEnv
	}
	if c.FS == nil {
		dfs, err := NewDefaultFS(c.LookupENV)
		if err != nil {
			return nil, err
		}
		c.FS = dfs
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter(nil)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

type Compiler struct {
	LookupENV      func(string) (string, bool)
	FS             idl.FileSystem
	MaxConcurrency int
	Reporter       exc.Reporter
	Logger         *slog.Logger
	Trace          bool
}

// CompileResponse holds the module tree built from the request targets. When
// the request only asked for tokens the module is nil and Tokens maps each
// file path to its token stream.
type CompileResponse struct {
	Module *ast.Module
	Tokens map[string][]*idl.Token
}

type resolved struct {
	uri   string
	files []idl.File
}

type fileResult struct {
	tokens  []*idl.Token
	content ast.ModuleContent
	ok      bool
}

func (self *Compiler) Compile(ctx context.Context, req *idl.CompileRequest) (*CompileResponse, error) {
	logger := self.Logger.With(slog.String("run", uuid.NewString()))
	targets := make([]resolved, 0, len(req.Files))
	var files []idl.File
	loaded := make(map[string]bool)
	for _, f := range req.Files {
		uri := target.Normalize(f)
		in, err := self.FS.Open(ctx, uri)
		if err != nil {
			_ = self.Reporter.Report(exc.InFile(err, uri))
			continue
		}
		t := resolved{uri: uri}
		for _, inf := range in {
			if inf.Kind(ctx) == idl.FileKindNone {
				continue
			}
			t.files = append(t.files, inf)
		}
		for _, inf := range t.files {
			if _, ok := loaded[inf.Path(ctx)]; ok {
				continue
			}
			loaded[inf.Path(ctx)] = true
			files = append(files, inf)
		}
		slices.SortFunc(t.files, func(a, b idl.File) int {
			return strings.Compare(a.Path(ctx), b.Path(ctx))
		})
		logger.Debug("resolved target", slog.String("target", uri), slog.Int("files", len(t.files)))
		targets = append(targets, t)
	}

	results := make(map[string]*fileResult, len(files))
	for _, f := range files {
		results[f.Path(ctx)] = &fileResult{}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(self.MaxConcurrency)
	for _, f := range files {
		f := f
		result := results[f.Path(ctx)]
		g.Go(func() error {
			return self.compileFile(gctx, logger, f, req.DumpTokens, result)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &CompileResponse{}
	if req.DumpTokens {
		out.Tokens = make(map[string][]*idl.Token, len(results))
		for p, r := range results {
			out.Tokens[p] = r.tokens
		}
	} else {
		out.Module = self.assemble(ctx, req.ModuleName, targets, results)
	}

	caught := self.Reporter.Reported()
	logger.Info("compiled", slog.Int("targets", len(targets)), slog.Int("files", len(files)), slog.Int("errors", len(caught)))
	if len(caught) > 0 {
		return out, MultiException(caught)
	}
	return out, nil
}

// compileFile lexes and parses one file into result. Exceptions in the source
// are sent to the reporter and do not stop the other files.
func (self *Compiler) compileFile(ctx context.Context, logger *slog.Logger, file idl.File, dumpTokens bool, result *fileResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	uri := file.Path(ctx)
	lf, err := lexer.NewLexerKeel(self.Reporter).Lex(ctx, file)
	if err != nil {
		return self.report(err, uri)
	}
	stream, err := lf.Tokens(ctx)
	if err != nil {
		return self.report(err, uri)
	}
	tokens, err := iter.Collect(ctx, stream)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		// Lexical errors are reported by the lexer itself.
		logger.Debug("lexing failed", slog.String("file", uri), slog.Any("error", err))
		return nil
	}
	result.tokens = tokens
	if dumpTokens {
		result.ok = true
		return nil
	}

	options := []pattern.CursorOption{pattern.WithURI(uri)}
	if self.Trace {
		options = append(options, pattern.WithLogger(logger.With(slog.String("file", uri))))
	}
	content, err := grammar.ParseModuleContent(tokens, options...)
	if err != nil {
		logger.Debug("parsing failed", slog.String("file", uri), slog.Any("error", err))
		return self.report(err, uri)
	}
	logger.Debug("parsed", slog.String("file", uri), slog.Int("tokens", len(tokens)), slog.Int("functions", len(content.Functions)))
	result.content = content
	result.ok = true
	return nil
}

// report records err against uri. The file is dropped from the module tree
// but its siblings are still compiled.
func (self *Compiler) report(err error, uri string) error {
	_ = self.Reporter.Report(exc.InFile(err, uri))
	return nil
}

// assemble builds the module tree. A file target becomes a module named by the
// file stem. A directory target becomes a module holding one sub-module per
// file, with nested directories as nested sub-modules. Several targets are
// gathered under one root module.
func (self *Compiler) assemble(ctx context.Context, name string, targets []resolved, results map[string]*fileResult) *ast.Module {
	modules := make([]*ast.Module, 0, len(targets))
	for _, t := range targets {
		if m := self.assembleTarget(ctx, t, results); m != nil {
			modules = append(modules, m)
		}
	}
	if len(modules) == 1 {
		if name != "" {
			modules[0].Name.Name = name
		}
		return modules[0]
	}
	if name == "" {
		name = "root"
	}
	root := ast.NewDirModule(name)
	for _, m := range modules {
		if err := root.AddSubModule(m); err != nil {
			_ = self.Reporter.Report(exc.InFile(err, name))
		}
	}
	return root
}

func (self *Compiler) assembleTarget(ctx context.Context, t resolved, results map[string]*fileResult) *ast.Module {
	if len(t.files) == 1 && t.files[0].Path(ctx) == t.uri {
		return self.fileModule(t.uri, results[t.uri])
	}
	root := ast.NewDirModule(stem(t.uri))
	dirs := map[string]*ast.Module{"": root}
	for _, f := range t.files {
		p := f.Path(ctx)
		rel := strings.TrimPrefix(strings.TrimPrefix(p, t.uri), "/")
		parent := self.dirModule(dirs, path.Dir(rel), p)
		if parent == nil {
			continue
		}
		m := self.fileModule(p, results[p])
		if m == nil {
			continue
		}
		if err := parent.AddSubModule(m); err != nil {
			_ = self.Reporter.Report(exc.InFile(err, p))
		}
	}
	return root
}

// dirModule returns the module for the relative directory dir, creating it and
// its parents as needed. It returns nil if the directory name collides with a
// module that came from a file.
func (self *Compiler) dirModule(dirs map[string]*ast.Module, dir string, uri string) *ast.Module {
	if dir == "." {
		dir = ""
	}
	if m, ok := dirs[dir]; ok {
		return m
	}
	parent := self.dirModule(dirs, path.Dir(dir), uri)
	if parent == nil {
		return nil
	}
	m := ast.NewDirModule(path.Base(dir))
	if err := parent.AddSubModule(m); err != nil {
		_ = self.Reporter.Report(exc.InFile(err, uri))
		return nil
	}
	dirs[dir] = m
	return m
}

func (self *Compiler) fileModule(uri string, result *fileResult) *ast.Module {
	if result == nil || !result.ok {
		return nil
	}
	m, err := ast.NewModule(ast.Ident{Name: stem(uri), Span: result.content.Span}, result.content)
	if err != nil {
		_ = self.Reporter.Report(exc.InFile(err, uri))
		return nil
	}
	return m
}

// stem is the base name of uri without its extension.
func stem(uri string) string {
	base := path.Base(uri)
	if base == "/" || base == "." {
		return "root"
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

type MultiException []exc.Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}
