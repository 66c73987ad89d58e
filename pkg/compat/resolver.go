package compat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/matzehuels/newarch/pkg/errors"
	"github.com/matzehuels/newarch/pkg/integrations/directory"
	"github.com/matzehuels/newarch/pkg/observability"
)

// DefaultConcurrency bounds the number of dependencies resolved at once.
// Each in-flight dependency issues at most one request at a time.
const DefaultConcurrency = 8

// DirectoryLookup queries the primary compatibility registry.
// Implementations must be safe for concurrent use.
type DirectoryLookup interface {
	Lookup(ctx context.Context, name string) (directory.Entry, error)
}

// Options configures a [Resolver].
type Options struct {
	Concurrency int                   // Max dependencies in flight (default DefaultConcurrency)
	Branches    []string              // Manifest branches in priority order (default DefaultBranches)
	Markers     []string              // Native dependency markers (default DefaultMarkers)
	Logger      *log.Logger           // Diagnostics (optional)
	Progress    func(done, total int) // Called after each recorded verdict, possibly concurrently (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if len(opts.Branches) == 0 {
		opts.Branches = DefaultBranches
	}
	if len(opts.Markers) == 0 {
		opts.Markers = DefaultMarkers
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Progress == nil {
		opts.Progress = func(int, int) {}
	}
	return opts
}

// Resolver turns dependency names into verdicts by consulting the directory,
// then the package registry and the dependency's own manifest.
type Resolver struct {
	directory DirectoryLookup
	repos     *RepositoryStage
	analyzer  *Analyzer
	opts      Options
}

// NewResolver wires the three stages into a resolver.
//
// All three collaborators must be safe for concurrent use, as up to
// Options.Concurrency goroutines call them simultaneously.
func NewResolver(dir DirectoryLookup, repos RepositoryLookup, manifests ManifestSource, opts Options) *Resolver {
	opts = opts.WithDefaults()
	r := &Resolver{directory: dir, opts: opts}
	if repos != nil {
		r.repos = NewRepositoryStage(repos, opts.Logger)
	}
	if manifests != nil {
		r.analyzer = NewAnalyzer(manifests, opts.Branches, opts.Markers, opts.Logger)
	}
	return r
}

// Resolve classifies every name and aggregates the verdicts.
//
// Duplicate names are resolved once. A failure while resolving one name never
// affects another: it is logged and the name is recorded as not found. The
// only error returned is for a resolver missing one of its stages.
//
// Cancelling ctx does not abort in-flight names; names not yet started are
// recorded as not found with detail "canceled".
func (r *Resolver) Resolve(ctx context.Context, names []string) (*Result, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	unique := dedupe(names)
	total := len(unique)
	collector := NewCollector(total)
	hooks := observability.Resolve()
	start := time.Now()

	hooks.OnResolveStart(ctx, total)
	r.opts.Logger.Debug("resolving dependencies", "count", total, "concurrency", r.opts.Concurrency)

	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for _, name := range unique {
		if ctx.Err() != nil {
			r.record(ctx, collector, canceled(name), total, 0)
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				r.record(ctx, collector, canceled(name), total, 0)
				return nil
			}
			began := time.Now()
			v := r.resolve(ctx, name)
			r.record(ctx, collector, v, total, time.Since(began))
			return nil
		})
	}
	_ = g.Wait()

	result := collector.Result()
	hooks.OnResolveComplete(ctx, total, time.Since(start))
	r.opts.Logger.Debug("resolution complete",
		"supported", result.Supported,
		"not_supported", result.NotSupported,
		"not_found", result.NotFound,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return result, nil
}

// ResolveOne classifies a single name.
func (r *Resolver) ResolveOne(ctx context.Context, name string) (Verdict, error) {
	if err := r.validate(); err != nil {
		return Verdict{}, err
	}
	began := time.Now()
	v := r.resolve(ctx, name)
	observability.Resolve().OnVerdict(ctx, v.Name, v.Status.String(), string(v.Source), time.Since(began))
	return v, nil
}

func (r *Resolver) validate() error {
	if r == nil || r.directory == nil || r.repos == nil || r.analyzer == nil {
		return apperrors.New(apperrors.ErrCodeInternal, "resolver is missing a stage")
	}
	return nil
}

func (r *Resolver) record(ctx context.Context, c *Collector, v Verdict, total int, elapsed time.Duration) {
	done, err := c.Add(v)
	if err != nil {
		r.opts.Logger.Warn("verdict dropped", "dep", v.Name, "err", err)
		return
	}
	observability.Resolve().OnVerdict(ctx, v.Name, v.Status.String(), string(v.Source), elapsed)
	r.opts.Progress(done, total)
}

// resolve runs the fallback chain for one name and always returns a verdict.
func (r *Resolver) resolve(ctx context.Context, name string) Verdict {
	logger := r.opts.Logger.With("dep", name)

	entry, err := r.directory.Lookup(ctx, name)
	switch {
	case err != nil:
		logger.Debug("directory lookup failed", "code", apperrors.GetCode(err), "err", err)
	case entry.Found && entry.Supported:
		return Verdict{Name: name, Status: StatusSupported, Source: SourceDirectory, Detail: "listed as supported in the directory"}
	case entry.Found:
		return Verdict{Name: name, Status: StatusNotSupported, Source: SourceDirectory, Detail: "listed as not supported in the directory"}
	default:
		logger.Debug("not in directory")
	}

	ref := r.repos.Resolve(ctx, name)
	if ref == nil {
		return Verdict{Name: name, Status: StatusNotFound, Source: SourceNone, Detail: "no source repository"}
	}

	a := r.analyzer.Analyze(ctx, *ref)
	v := Verdict{Name: name, Status: a.Classification.Status(), Source: SourceManifest}
	switch a.Classification {
	case FullJS:
		v.Detail = fmt.Sprintf("no native dependencies in %s@%s", ref, a.Branch)
	case NativeDeps:
		v.Detail = fmt.Sprintf("depends on %s in %s@%s", a.Native, ref, a.Branch)
	case Unresolved:
		v.Source = SourceNone
		v.Detail = fmt.Sprintf("no manifest in %s on %s", ref, strings.Join(r.opts.Branches, ", "))
	}
	logger.Debug("classified from manifest", "classification", a.Classification, "branch", a.Branch)
	return v
}

func canceled(name string) Verdict {
	return Verdict{Name: name, Status: StatusNotFound, Source: SourceNone, Detail: "canceled"}
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
