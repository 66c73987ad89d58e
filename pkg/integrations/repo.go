package integrations

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	apperrors "github.com/matzehuels/newarch/pkg/errors"
)

// RepoRef is a normalized source-repository address.
type RepoRef struct {
	URL       string `json:"url"`                 // Canonical https://host/owner/name
	Host      string `json:"host"`                // Lowercased host, e.g. github.com
	Owner     string `json:"owner"`               // Repository owner or group
	Name      string `json:"name"`                // Repository name without .git
	Directory string `json:"directory,omitempty"` // Package sub-directory inside a monorepo
}

// String returns the canonical repository URL.
func (r RepoRef) String() string { return r.URL }

var (
	scpLikeURL = regexp.MustCompile(`^[A-Za-z0-9._-]+@([^:/]+):(.+)$`)
	bareSlug   = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
)

var shorthandHosts = map[string]string{
	"github:":    "github.com",
	"gitlab:":    "gitlab.com",
	"bitbucket:": "bitbucket.org",
}

// NormalizeRepoURL converts the repository URL formats found in package
// manifests to canonical HTTPS form. It strips a git+ prefix and a trailing
// .git, rewrites git@host:, git:// and ssh:// forms, expands npm shorthands
// (github:owner/repo, owner/repo) and drops #fragments.
// Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "git+")

	for prefix, host := range shorthandHosts {
		if strings.HasPrefix(s, prefix) {
			s = "https://" + host + "/" + strings.TrimPrefix(s, prefix)
			break
		}
	}

	if m := scpLikeURL.FindStringSubmatch(s); m != nil {
		s = "https://" + m[1] + "/" + m[2]
	}
	switch {
	case strings.HasPrefix(s, "ssh://"):
		s = "https://" + strings.TrimPrefix(s, "ssh://")
	case strings.HasPrefix(s, "git://"):
		s = "https://" + strings.TrimPrefix(s, "git://")
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
	case bareSlug.MatchString(s) && !strings.Contains(strings.SplitN(s, "/", 2)[0], "."):
		s = "https://github.com/" + s
	default:
		s = "https://" + s
	}

	if u, err := url.Parse(s); err == nil && u.User != nil {
		u.User = nil
		s = u.String()
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "/")
	return strings.TrimSuffix(s, ".git")
}

// ParseRepoRef normalizes raw and splits it into host, owner and name.
// directory is the optional monorepo sub-directory (npm's
// repository.directory); it is cleaned and must stay inside the repository.
func ParseRepoRef(raw, directory string) (*RepoRef, error) {
	normalized := NormalizeRepoURL(raw)
	if normalized == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "empty repository URL")
	}

	u, err := url.Parse(normalized)
	if err != nil || u.Host == "" {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid repository URL %q", raw)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "repository URL %q has no owner/name", raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	owner := segments[0]
	name := strings.TrimSuffix(segments[1], ".git")

	ref := &RepoRef{
		URL:   "https://" + host + "/" + owner + "/" + name,
		Host:  host,
		Owner: owner,
		Name:  name,
	}

	if directory != "" {
		dir := strings.Trim(path.Clean("/"+directory), "/")
		if dir != "" && dir != "." {
			ref.Directory = dir
		}
	}
	return ref, nil
}
