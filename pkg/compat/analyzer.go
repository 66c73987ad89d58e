package compat

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/newarch/pkg/errors"
	"github.com/matzehuels/newarch/pkg/integrations"
	"github.com/matzehuels/newarch/pkg/integrations/github"
)

var (
	// DefaultBranches are tried in order when reading a dependency's manifest.
	DefaultBranches = []string{"main", "master"}

	// DefaultMarkers flag a declared dependency as native-platform code.
	DefaultMarkers = []string{"react-native"}
)

// ManifestSource fetches the package.json of a repository at a branch.
// Implementations must be safe for concurrent use.
type ManifestSource interface {
	FetchManifest(ctx context.Context, ref integrations.RepoRef, branch string) (*github.PackageManifest, error)
}

// Analysis is the outcome of [Analyzer.Analyze].
type Analysis struct {
	Classification Classification

	// Branch is the branch whose manifest was classified. Empty when Unresolved.
	Branch string

	// Native is the first declared dependency (in sorted order) that carries a
	// native marker. Empty unless Classification is NativeDeps.
	Native string

	// Err is the failure of the last branch tried. Set only when Unresolved.
	Err error
}

// Analyzer classifies a repository by the dependencies its manifest declares.
type Analyzer struct {
	source   ManifestSource
	branches []string
	markers  []string
	logger   *log.Logger
}

// NewAnalyzer creates an analyzer. Nil or empty branches and markers select
// [DefaultBranches] and [DefaultMarkers]; a nil logger discards output.
func NewAnalyzer(source ManifestSource, branches, markers []string, logger *log.Logger) *Analyzer {
	if len(branches) == 0 {
		branches = DefaultBranches
	}
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Analyzer{source: source, branches: branches, markers: markers, logger: logger}
}

// Analyze tries each branch in order and classifies the first manifest that
// can be fetched and decoded. Any failure moves on to the next branch; when
// all of them fail the result is Unresolved.
func (a *Analyzer) Analyze(ctx context.Context, ref integrations.RepoRef) Analysis {
	var last error
	for _, branch := range a.branches {
		m, err := a.source.FetchManifest(ctx, ref, branch)
		if err != nil {
			a.logger.Debug("manifest unavailable", "repo", ref.String(), "branch", branch, "code", apperrors.GetCode(err), "err", err)
			last = err
			continue
		}
		return a.classify(m, branch)
	}
	return Analysis{Classification: Unresolved, Err: last}
}

func (a *Analyzer) classify(m *github.PackageManifest, branch string) Analysis {
	for _, name := range m.Names() {
		if a.isNative(name) {
			return Analysis{Classification: NativeDeps, Branch: branch, Native: name}
		}
	}
	return Analysis{Classification: FullJS, Branch: branch}
}

func (a *Analyzer) isNative(name string) bool {
	for _, marker := range a.markers {
		if marker != "" && strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// RepositoryLookup recovers a dependency's source repository from its
// registry metadata. Implementations must be safe for concurrent use.
type RepositoryLookup interface {
	Repository(ctx context.Context, name string) (*integrations.RepoRef, error)
}

// RepositoryStage wraps a [RepositoryLookup] so that no error escapes it.
type RepositoryStage struct {
	lookup RepositoryLookup
	logger *log.Logger
}

// NewRepositoryStage creates a stage around lookup. A nil logger discards output.
func NewRepositoryStage(lookup RepositoryLookup, logger *log.Logger) *RepositoryStage {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &RepositoryStage{lookup: lookup, logger: logger}
}

// Resolve returns the repository of name, or nil when the registry has
// none or cannot be reached.
func (s *RepositoryStage) Resolve(ctx context.Context, name string) *integrations.RepoRef {
	ref, err := s.lookup.Repository(ctx, name)
	if err != nil {
		s.logger.Debug("repository lookup failed", "dep", name, "code", apperrors.GetCode(err), "err", err)
		return nil
	}
	return ref
}
