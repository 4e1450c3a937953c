package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gopkg.keel-lang.org/keelc/internal/compiler"
	"gopkg.keel-lang.org/keelc/internal/config"
	"gopkg.keel-lang.org/keelc/internal/dump"
	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/fs"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/target"
	"gopkg.keel-lang.org/keelc/internal/watch"
)

// errFailed is returned by commands that have already printed their
// diagnostics.
var errFailed = errors.New("compilation failed")

type opts struct {
	ConfigPath string
	Roots      []string
	LogLevel   string
	Trace      bool
	Color      bool
	Format     string
	Output     string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	op := &opts{}
	root := &cobra.Command{
		Use:           "keelc",
		Short:         "Parse Keel sources",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	bindFlags(root.PersistentFlags(), op)

	parse := &cobra.Command{
		Use:   "parse [targets...]",
		Short: "Parse files or directories into a module tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), cmd.Flags(), op, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	parse.Flags().StringVar(&op.Format, "format", "yaml", "Tree output format: yaml, json or none.")
	parse.Flags().StringVar(&op.Output, "output", "-", "Output file or - for STDOUT.")

	tokens := &cobra.Command{
		Use:   "tokens [targets...]",
		Short: "Print the token stream of each file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd.Context(), cmd.Flags(), op, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch [targets...]",
		Short: "Parse again each time a source file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd.Flags(), op, args, cmd.ErrOrStderr())
		},
	}

	root.AddCommand(parse, tokens, watchCmd)
	return root
}

func bindFlags(flags *pflag.FlagSet, op *opts) {
	flags.StringVar(&op.ConfigPath, "config", config.FileName, "Project configuration file.")
	flags.StringSliceVar(&op.Roots, "root", nil, "Root search paths, searched before the configured roots.")
	flags.StringVar(&op.LogLevel, "log-level", "", "Log level: debug, info, warn or error.")
	flags.BoolVar(&op.Trace, "trace", false, "Log every grammar rule the parser enters.")
	flags.BoolVar(&op.Color, "color", false, "Style diagnostics for a terminal.")
}

// session is the configuration of one command run after flags have been
// applied over the project file.
type session struct {
	cfg    *config.Config
	roots  []string
	logger *slog.Logger
	trace  bool
}

func newSession(flags *pflag.FlagSet, op *opts, stderr io.Writer) (*session, error) {
	cfg, err := config.Load(op.ConfigPath)
	if err != nil {
		return nil, err
	}
	level := cfg.SlogLevel()
	if flags.Changed("log-level") {
		if level, err = config.ParseLevel(op.LogLevel); err != nil {
			return nil, exc.New(exc.Location{}, exc.CodeInvalidConfig, err.Error())
		}
	}
	trace := cfg.Log.Trace
	if flags.Changed("trace") {
		trace = op.Trace
	}
	if trace {
		level = slog.LevelDebug
	}
	roots := make([]string, 0, len(op.Roots)+len(cfg.Build.Roots))
	roots = append(roots, op.Roots...)
	roots = append(roots, cfg.Build.Roots...)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return &session{
		cfg:    cfg,
		roots:  roots,
		logger: logger.With(slog.String("component", "keelc")),
		trace:  trace,
	}, nil
}

func (self *session) compile(ctx context.Context, targets []string, dumpTokens bool) (*compiler.CompileResponse, error) {
	mf, err := compiler.NewRootsFS(self.roots)
	if err != nil {
		return nil, err
	}
	df, err := compiler.NewDefaultFS(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	mf = append(mf, df)

	c, err := compiler.New(
		compiler.OptionWithLookupEnv(os.LookupEnv),
		compiler.OptionWithFS(mf),
		compiler.OptionWithLogger(self.logger),
		compiler.OptionWithMaxConcurrency(self.cfg.Build.MaxConcurrency),
		compiler.OptionWithTrace(self.trace),
	)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		targets = []string{"/"}
	}
	name := ""
	if len(targets) == 1 && target.Normalize(targets[0]) == "/" {
		name = self.cfg.Project.Name
	}
	return c.Compile(ctx, &idl.CompileRequest{
		Files:      targets,
		ModuleName: name,
		DumpTokens: dumpTokens,
	})
}

// diagnose prints the exceptions carried by err. It returns errFailed when
// there were any and err itself when it is not a compilation error.
func diagnose(err error, stderr io.Writer, color bool) error {
	if err == nil {
		return nil
	}
	var me compiler.MultiException
	if !errors.As(err, &me) {
		return err
	}
	if derr := dump.Diagnostics(stderr, me, color); derr != nil {
		return derr
	}
	return errFailed
}

func runParse(ctx context.Context, flags *pflag.FlagSet, op *opts, targets []string, stdout io.Writer, stderr io.Writer) error {
	s, err := newSession(flags, op, stderr)
	if err != nil {
		return err
	}
	out, err := s.compile(ctx, targets, false)
	if err := diagnose(err, stderr, op.Color); err != nil {
		return err
	}

	counts := dump.Counts(out.Module)
	s.logger.Info("module tree built",
		slog.String("module", out.Module.Name.Name),
		slog.Int("modules", counts["modules"]),
		slog.Int("functions", counts["functions"]),
		slog.Int("statements", counts["statements"]),
	)

	var buf bytes.Buffer
	switch op.Format {
	case "yaml":
		err = dump.YAML(&buf, out.Module)
	case "json":
		err = dump.JSON(&buf, out.Module)
	case "none":
		return nil
	default:
		return exc.New(exc.Location{}, exc.CodeInvalidConfig, fmt.Sprintf("unknown format %q", op.Format))
	}
	if err != nil {
		return err
	}
	return writeOutput(ctx, op.Output, buf.String(), stdout)
}

// writeOutput writes content to the file named by output, or to stdout when
// output is "-".
func writeOutput(ctx context.Context, output string, content string, stdout io.Writer) error {
	if output == "-" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	out, err := fs.NewFileSystemLocal(filepath.Dir(abs))
	if err != nil {
		return err
	}
	return out.Write(ctx, filepath.Base(abs), content)
}

func runTokens(ctx context.Context, flags *pflag.FlagSet, op *opts, targets []string, stdout io.Writer, stderr io.Writer) error {
	s, err := newSession(flags, op, stderr)
	if err != nil {
		return err
	}
	out, err := s.compile(ctx, targets, true)
	if err := diagnose(err, stderr, op.Color); err != nil {
		return err
	}
	paths := make([]string, 0, len(out.Tokens))
	for p := range out.Tokens {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if _, err := fmt.Fprintf(stdout, "== %s\n", p); err != nil {
			return err
		}
		if err := dump.Tokens(stdout, out.Tokens[p]); err != nil {
			return err
		}
	}
	return nil
}

func runWatch(ctx context.Context, flags *pflag.FlagSet, op *opts, targets []string, stderr io.Writer) error {
	s, err := newSession(flags, op, stderr)
	if err != nil {
		return err
	}
	build := func(ctx context.Context) {
		_, err := s.compile(ctx, targets, false)
		if err := diagnose(err, stderr, op.Color); err != nil {
			if !errors.Is(err, errFailed) {
				s.logger.Error("build failed", slog.Any("error", err))
			}
			return
		}
		s.logger.Info("build succeeded")
	}
	build(ctx)
	return watch.New(s.roots, watch.OptionWithLogger(s.logger)).Run(ctx, build)
}
