package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/newarch/pkg/compat"
	"github.com/matzehuels/newarch/pkg/config"
	apperrors "github.com/matzehuels/newarch/pkg/errors"
	"github.com/matzehuels/newarch/pkg/manifest"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	deps        []string      // explicit dependency names
	json        bool          // print the result as JSON
	show        string        // comma-separated statuses to print
	details     bool          // print verdict details
	strict      bool          // fail when any dependency is not supported
	includeDev  bool          // also check devDependencies
	skip        []string      // extra skip patterns
	concurrency int           // dependencies resolved at once
	timeout     time.Duration // per-request timeout
	attempts    int           // attempts per request
}

// StrictError reports a --strict run with unsupported dependencies.
type StrictError struct {
	Names []string
}

func (e *StrictError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("1 dependency does not support the New Architecture: %s", e.Names[0])
	}
	return fmt.Sprintf("%d dependencies do not support the New Architecture", len(e.Names))
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check [path | dependency...]",
		Short: "Check dependencies for New Architecture support",
		Long: `Check reads package.json in the given project directory (default: the current
directory) and reports New Architecture support for each runtime dependency.
react and react-native themselves are never checked.

Dependency names can be given instead of a path, as arguments or with --dep.`,
		Example: `  newarch check
  newarch check ./apps/mobile --include-dev
  newarch check react-native-reanimated @react-navigation/native
  newarch check --json --show not-supported,not-found`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.deps, "dep", nil, "dependency to check (repeatable)")
	f.BoolVar(&opts.json, "json", false, "print the result as JSON")
	f.StringVar(&opts.show, "show", "", "statuses to print: supported,not-supported,not-found (default all)")
	f.BoolVar(&opts.details, "details", false, "print where each verdict came from")
	f.BoolVar(&opts.strict, "strict", false, "exit with status 1 if any dependency is not supported")
	f.BoolVar(&opts.includeDev, "include-dev", false, "also check devDependencies")
	f.StringSliceVar(&opts.skip, "skip", nil, "glob of dependency names to skip (repeatable)")
	f.IntVar(&opts.concurrency, "concurrency", compat.DefaultConcurrency, "dependencies checked at once")
	f.DurationVar(&opts.timeout, "timeout", 0, "timeout per request (default from config, 10s)")
	f.IntVar(&opts.attempts, "attempts", 0, "attempts per request (default from config, 3)")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, args []string, opts checkOpts) error {
	ctx := withLogger(cmd.Context(), c.Logger)
	logger := loggerFromContext(ctx)

	display, err := parseShow(opts.show)
	if err != nil {
		return err
	}
	display.details = opts.details

	input, err := resolveInput(args, opts.deps)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig(input.projectDir)
	if err != nil {
		return err
	}
	applyCheckFlags(cmd, &cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	names, err := input.dependencies(cfg)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		logger.Warn("no dependencies to check")
	}

	result, err := c.resolve(ctx, cfg, names)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		renderResult(out, result, display)
	}

	if opts.strict && result.NotSupported > 0 {
		return &StrictError{Names: result.NotSupportedNames}
	}
	return nil
}

// resolve runs the resolver with a live view on interactive terminals and
// debug log lines otherwise.
func (c *CLI) resolve(ctx context.Context, cfg config.Config, names []string) (*compat.Result, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	report := func(done, total int) {
		logger.Debug("progress", "done", done, "total", total)
	}
	if isTerminal(os.Stderr) && len(names) > 0 {
		view := startProgress(ctx, os.Stderr, len(names))
		defer view.stop()
		report = view.update
	}

	result, err := newResolver(cfg, logger, report).Resolve(ctx, names)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	prog.done(fmt.Sprintf("Checked %d dependencies", result.Total))
	return result, nil
}

// applyCheckFlags lets explicitly set flags override the config file.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config, opts checkOpts) {
	f := cmd.Flags()
	if f.Changed("include-dev") {
		cfg.IncludeDev = opts.includeDev
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if f.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if f.Changed("attempts") {
		cfg.Attempts = opts.attempts
	}
	cfg.Skip = append(cfg.Skip, opts.skip...)
}

// checkInput is either a manifest to read or an explicit list of names.
type checkInput struct {
	projectDir   string
	manifestPath string
	names        []string
}

// resolveInput decides what the check command's arguments mean. A single
// argument naming an existing file or directory is a project; anything
// else is a list of dependency names.
func resolveInput(args, deps []string) (checkInput, error) {
	names := append([]string(nil), deps...)
	if len(args) == 1 && len(deps) == 0 {
		if info, err := os.Stat(args[0]); err == nil {
			in := checkInput{projectDir: args[0], manifestPath: args[0]}
			if !info.IsDir() {
				in.projectDir = filepath.Dir(args[0])
			}
			return in, nil
		}
	}
	names = append(names, args...)

	if len(names) == 0 {
		return checkInput{projectDir: ".", manifestPath: "."}, nil
	}
	for _, n := range names {
		if err := apperrors.ValidateNpmPackageName(n); err != nil {
			return checkInput{}, err
		}
	}
	return checkInput{projectDir: ".", names: names}, nil
}

// dependencies returns the names to check after platform and skip filtering.
func (in checkInput) dependencies(cfg config.Config) ([]string, error) {
	if in.manifestPath == "" {
		var out []string
		for _, n := range in.names {
			if !cfg.MatchSkip(n) {
				out = append(out, n)
			}
		}
		return out, nil
	}

	pkg, err := manifest.Load(in.manifestPath)
	if err != nil {
		return nil, err
	}
	return pkg.Names(manifest.Filter{IncludeDev: cfg.IncludeDev, Skip: cfg.MatchSkip}), nil
}
