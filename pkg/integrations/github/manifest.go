package github

import "sort"

// PackageManifest is the subset of a package.json the analyzer needs.
type PackageManifest struct {
	Name            string            `json:"name,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

// Names returns the sorted union of declared dependency and devDependency
// names. Version specifiers are ignored.
func (m *PackageManifest) Names() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(m.Dependencies)+len(m.DevDependencies))
	for name := range m.Dependencies {
		seen[name] = struct{}{}
	}
	for name := range m.DevDependencies {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
