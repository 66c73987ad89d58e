package compat

import (
	"sort"
	"sync"

	apperrors "github.com/matzehuels/newarch/pkg/errors"
)

// Verdict is the recorded outcome for one dependency.
type Verdict struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Source Source `json:"source"`
	Detail string `json:"detail,omitempty"`
}

// Result aggregates the verdicts of one run.
//
// Total always equals Supported + NotSupported + NotFound, and every input
// name appears in exactly one of the three name lists. Lists are sorted.
type Result struct {
	Total        int `json:"total"`
	Supported    int `json:"supported"`
	NotSupported int `json:"notSupported"`
	NotFound     int `json:"notFound"`

	SupportedNames    []string `json:"supportedNames"`
	NotSupportedNames []string `json:"notSupportedNames"`
	NotFoundNames     []string `json:"notFoundNames"`

	Verdicts []Verdict `json:"verdicts"`
}

// Names returns the sorted names recorded with status s.
func (r *Result) Names(s Status) []string {
	switch s {
	case StatusSupported:
		return r.SupportedNames
	case StatusNotSupported:
		return r.NotSupportedNames
	case StatusNotFound:
		return r.NotFoundNames
	}
	return nil
}

// Count returns the number of dependencies recorded with status s.
func (r *Result) Count(s Status) int {
	return len(r.Names(s))
}

// Verdict returns the verdict recorded for name.
func (r *Result) Verdict(name string) (Verdict, bool) {
	i := sort.Search(len(r.Verdicts), func(i int) bool { return r.Verdicts[i].Name >= name })
	if i < len(r.Verdicts) && r.Verdicts[i].Name == name {
		return r.Verdicts[i], true
	}
	return Verdict{}, false
}

// Collector is the single aggregation point of a run. It is safe for
// concurrent use.
type Collector struct {
	mu       sync.Mutex
	verdicts map[string]Verdict
}

// NewCollector returns an empty collector sized for n verdicts.
func NewCollector(n int) *Collector {
	return &Collector{verdicts: make(map[string]Verdict, n)}
}

// Add records v and returns the number of verdicts recorded so far.
// A second verdict for the same name is rejected.
func (c *Collector) Add(v Verdict) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.verdicts[v.Name]; ok {
		return len(c.verdicts), apperrors.New(apperrors.ErrCodeInternal,
			"duplicate verdict for %s: already %s", v.Name, prev.Status)
	}
	c.verdicts[v.Name] = v
	return len(c.verdicts), nil
}

// Result builds the sorted aggregate of everything recorded so far.
func (c *Collector) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &Result{
		Total:             len(c.verdicts),
		SupportedNames:    []string{},
		NotSupportedNames: []string{},
		NotFoundNames:     []string{},
		Verdicts:          make([]Verdict, 0, len(c.verdicts)),
	}
	for _, v := range c.verdicts {
		r.Verdicts = append(r.Verdicts, v)
		switch v.Status {
		case StatusSupported:
			r.SupportedNames = append(r.SupportedNames, v.Name)
		case StatusNotSupported:
			r.NotSupportedNames = append(r.NotSupportedNames, v.Name)
		default:
			r.NotFoundNames = append(r.NotFoundNames, v.Name)
		}
	}

	sort.Strings(r.SupportedNames)
	sort.Strings(r.NotSupportedNames)
	sort.Strings(r.NotFoundNames)
	sort.Slice(r.Verdicts, func(i, j int) bool { return r.Verdicts[i].Name < r.Verdicts[j].Name })

	r.Supported = len(r.SupportedNames)
	r.NotSupported = len(r.NotSupportedNames)
	r.NotFound = len(r.NotFoundNames)
	return r
}
