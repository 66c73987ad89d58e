package compat

import (
	"context"
	"sync"

	apperrors "github.com/matzehuels/newarch/pkg/errors"
	"github.com/matzehuels/newarch/pkg/integrations"
	"github.com/matzehuels/newarch/pkg/integrations/directory"
	"github.com/matzehuels/newarch/pkg/integrations/github"
)

// calls counts invocations per key; safe for concurrent use.
type calls struct {
	mu sync.Mutex
	n  map[string]int
}

func (c *calls) inc(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == nil {
		c.n = make(map[string]int)
	}
	c.n[key]++
}

func (c *calls) get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n[key]
}

type fakeDirectory struct {
	entries map[string]directory.Entry
	errs    map[string]error
	calls   calls
}

func (f *fakeDirectory) Lookup(_ context.Context, name string) (directory.Entry, error) {
	f.calls.inc(name)
	if err := f.errs[name]; err != nil {
		return directory.Entry{}, err
	}
	return f.entries[name], nil
}

type fakeRegistry struct {
	repos map[string]*integrations.RepoRef
	errs  map[string]error
	calls calls
}

func (f *fakeRegistry) Repository(_ context.Context, name string) (*integrations.RepoRef, error) {
	f.calls.inc(name)
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return f.repos[name], nil
}

// fakeManifests serves manifests keyed by "owner/name@branch".
type fakeManifests struct {
	manifests map[string]*github.PackageManifest
	calls     calls

	mu    sync.Mutex
	order []string
}

func (f *fakeManifests) FetchManifest(_ context.Context, ref integrations.RepoRef, branch string) (*github.PackageManifest, error) {
	key := ref.Owner + "/" + ref.Name + "@" + branch
	f.calls.inc(key)
	f.mu.Lock()
	f.order = append(f.order, key)
	f.mu.Unlock()
	if m, ok := f.manifests[key]; ok {
		return m, nil
	}
	return nil, apperrors.New(apperrors.ErrCodeNotFound, "no manifest at %s", key)
}

func repo(owner, name string) *integrations.RepoRef {
	return &integrations.RepoRef{
		URL:   "https://github.com/" + owner + "/" + name,
		Host:  "github.com",
		Owner: owner,
		Name:  name,
	}
}

func deps(names ...string) *github.PackageManifest {
	m := &github.PackageManifest{Dependencies: make(map[string]string, len(names))}
	for _, n := range names {
		m.Dependencies[n] = "*"
	}
	return m
}
