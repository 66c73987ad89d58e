package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/matzehuels/newarch/pkg/errors"
	"github.com/matzehuels/newarch/pkg/integrations"
)

// DefaultRawURL serves raw file contents of GitHub repositories.
const DefaultRawURL = "https://raw.githubusercontent.com"

// layout describes how a source host serves a raw file at a branch.
// The address is base/owner/name/[marker/]branch/path.
type layout struct {
	base   string
	marker string
}

var defaultLayouts = map[string]layout{
	"github.com":    {base: DefaultRawURL},
	"gitlab.com":    {base: "https://gitlab.com", marker: "-/raw"},
	"bitbucket.org": {base: "https://bitbucket.org", marker: "raw"},
}

// RawClient fetches package.json files straight from source hosts.
type RawClient struct {
	*integrations.Client
	layouts map[string]layout
}

// RawOption configures a [RawClient].
type RawOption func(*RawClient)

// WithHostBase overrides the raw base address for a known host
// ("github.com", "gitlab.com" or "bitbucket.org"). Unknown hosts are ignored.
func WithHostBase(host, base string) RawOption {
	return func(c *RawClient) {
		l, ok := c.layouts[host]
		if !ok || base == "" {
			return
		}
		l.base = strings.TrimSuffix(base, "/")
		c.layouts[host] = l
	}
}

// NewRawClient creates a raw manifest client. rawBase overrides the GitHub
// raw base; pass "" for [DefaultRawURL].
func NewRawClient(base *integrations.Client, rawBase string, opts ...RawOption) *RawClient {
	c := &RawClient{
		Client:  base,
		layouts: make(map[string]layout, len(defaultLayouts)),
	}
	for host, l := range defaultLayouts {
		c.layouts[host] = l
	}
	WithHostBase("github.com", rawBase)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchManifest retrieves and decodes the package.json of ref at branch.
// Refs on hosts without a known raw layout fail with ErrCodeUnsupported.
func (c *RawClient) FetchManifest(ctx context.Context, ref integrations.RepoRef, branch string) (*PackageManifest, error) {
	rawURL, err := c.ManifestURL(ref, branch)
	if err != nil {
		return nil, err
	}

	var m PackageManifest
	if err := c.Get(ctx, rawURL, &m); err != nil {
		if apperrors.Is(err, apperrors.ErrCodeNotFound) {
			return nil, fmt.Errorf("%w: %s@%s", err, ref, branch)
		}
		return nil, err
	}
	return &m, nil
}

// ManifestURL returns the raw address of ref's package.json at branch.
func (c *RawClient) ManifestURL(ref integrations.RepoRef, branch string) (string, error) {
	l, ok := c.layouts[ref.Host]
	if !ok {
		return "", apperrors.New(apperrors.ErrCodeUnsupported, "no raw file layout for host %q", ref.Host)
	}
	if err := validateRef(ref); err != nil {
		return "", err
	}
	if branch == "" {
		return "", apperrors.New(apperrors.ErrCodeInvalidInput, "branch is required")
	}

	parts := []string{l.base, ref.Owner, ref.Name}
	if l.marker != "" {
		parts = append(parts, l.marker)
	}
	parts = append(parts, escapePath(branch))
	if ref.Directory != "" {
		parts = append(parts, escapePath(ref.Directory))
	}
	parts = append(parts, "package.json")
	return strings.Join(parts, "/"), nil
}

func validateRef(ref integrations.RepoRef) error {
	var err error
	if ref.Host == "github.com" {
		err = ValidateRepoRef(ref.Owner, ref.Name)
	} else {
		err = ValidateRepo(ref.Owner)
		if err == nil {
			err = ValidateRepo(ref.Name)
		}
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "repository %s", ref)
	}
	return nil
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
