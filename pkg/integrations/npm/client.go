package npm

import (
	"context"
	"net/url"
	"strings"

	apperrors "github.com/matzehuels/newarch/pkg/errors"
	"github.com/matzehuels/newarch/pkg/integrations"
)

// DefaultURL is the public npm registry.
const DefaultURL = "https://registry.npmjs.org"

// PackageInfo is the subset of registry metadata newarch needs.
type PackageInfo struct {
	Name       string
	Version    string // dist-tags.latest, empty if the registry has none
	Repository *integrations.RepoRef
	HomePage   string
}

type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a registry client on top of the shared fetcher.
// An empty baseURL selects [DefaultURL].
func NewClient(base *integrations.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		Client:  base,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchPackage retrieves the packument for pkg. A repository field that is
// present but unusable leaves Repository nil and is not an error.
func (c *Client) FetchPackage(ctx context.Context, pkg string) (*PackageInfo, error) {
	pkg = strings.TrimSpace(pkg)

	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+url.PathEscape(pkg), &data); err != nil {
		if apperrors.Is(err, apperrors.ErrCodeNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrCodeNotFound, err, "npm package %s", pkg)
		}
		return nil, err
	}

	latest := data.DistTags.Latest
	info := &PackageInfo{
		Name:     data.Name,
		Version:  latest,
		HomePage: data.HomePage,
	}

	repo := data.Repository
	if repo == nil {
		if v, ok := data.Versions[latest]; ok {
			repo = v.Repository
		}
	}
	rawURL, dir := extractRepository(repo)
	if rawURL != "" {
		if ref, err := integrations.ParseRepoRef(rawURL, dir); err == nil {
			info.Repository = ref
		}
	}
	return info, nil
}

// Repository returns the normalized source repository of pkg, or nil when
// the registry does not declare one.
func (c *Client) Repository(ctx context.Context, pkg string) (*integrations.RepoRef, error) {
	info, err := c.FetchPackage(ctx, pkg)
	if err != nil {
		return nil, err
	}
	return info.Repository, nil
}

// extractRepository reads npm's repository field, which is either a URL
// string or an object with url and optional directory.
func extractRepository(v any) (rawURL, directory string) {
	switch val := v.(type) {
	case string:
		return val, ""
	case map[string]any:
		u, _ := val["url"].(string)
		d, _ := val["directory"].(string)
		return u, d
	}
	return "", ""
}

type registryResponse struct {
	Name       string                    `json:"name"`
	HomePage   string                    `json:"homepage"`
	Repository any                       `json:"repository"`
	DistTags   distTags                  `json:"dist-tags"`
	Versions   map[string]versionDetails `json:"versions"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	Repository any `json:"repository"`
}
