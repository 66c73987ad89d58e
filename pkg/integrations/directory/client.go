package directory

import (
	"context"
	"net/url"
	"strings"

	"github.com/matzehuels/newarch/pkg/integrations"
)

// DefaultURL is the React Native Directory library search endpoint.
const DefaultURL = "https://reactnative.directory/api/libraries"

// Entry is the outcome of a directory lookup.
type Entry struct {
	// Found is true when the directory has a record carrying at least one
	// compatibility signal for the name.
	Found bool

	// Supported is the logical OR of the record's signals. Only meaningful
	// when Found is true.
	Supported bool

	// Package is the npm package name of the matched record, when reported.
	Package string
}

// Library is one record of the directory's search response.
type Library struct {
	NpmPkg          string      `json:"npmPkg,omitempty"`
	ExpoGo          *bool       `json:"expoGo,omitempty"`
	NewArchitecture *bool       `json:"newArchitecture,omitempty"`
	GitHub          *GitHubInfo `json:"github,omitempty"`
}

// GitHubInfo holds the signals the directory derives from the source repository.
type GitHubInfo struct {
	NewArchitecture *bool `json:"newArchitecture,omitempty"`
}

// Entry folds the record's three compatibility signals into an [Entry].
// A record without any of them is reported as not found.
func (l Library) Entry() Entry {
	signals := []*bool{l.ExpoGo, l.NewArchitecture}
	if l.GitHub != nil {
		signals = append(signals, l.GitHub.NewArchitecture)
	}

	e := Entry{Package: l.NpmPkg}
	for _, s := range signals {
		if s == nil {
			continue
		}
		e.Found = true
		e.Supported = e.Supported || *s
	}
	return e
}

type searchResponse struct {
	Libraries []Library `json:"libraries"`
}

type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a directory client on top of the shared fetcher.
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

// Lookup searches the directory for name and folds the first returned
// record into an [Entry]. An empty result is Entry{Found: false} with a nil
// error; fetch and decode failures are returned as errors.
func (c *Client) Lookup(ctx context.Context, name string) (Entry, error) {
	var resp searchResponse
	if err := c.Get(ctx, c.searchURL(name), &resp); err != nil {
		return Entry{}, err
	}
	if len(resp.Libraries) == 0 {
		return Entry{}, nil
	}
	return resp.Libraries[0].Entry(), nil
}

func (c *Client) searchURL(name string) string {
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + "search=" + url.QueryEscape(name)
}
