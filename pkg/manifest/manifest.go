// Package manifest reads the dependency list of a React Native project from
// its package.json.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	apperrors "github.com/matzehuels/newarch/pkg/errors"
)

// FileName is the manifest file looked up inside a project directory.
const FileName = "package.json"

// Platform lists the first-party packages every React Native project
// declares. They are never checked.
var Platform = []string{"react-native", "react"}

// PackageJSON holds the parts of a project manifest that name dependencies.
type PackageJSON struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`

	// Path is the file the manifest was read from.
	Path string `json:"-"`
}

// Resolve returns the manifest path for p: p itself when it names a file,
// p/package.json when it names a directory.
func Resolve(p string) (string, error) {
	if p == "" {
		p = "."
	}
	info, err := os.Stat(p)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "cannot read %s", p)
	}
	if info.IsDir() {
		return filepath.Join(p, FileName), nil
	}
	return p, nil
}

// Load reads and decodes the manifest at p (a file or a project directory).
func Load(p string) (*PackageJSON, error) {
	path, err := Resolve(p)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "cannot read %s", path)
	}

	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "malformed %s", path)
	}
	pkg.Path = path
	return &pkg, nil
}

// Filter selects which declared dependencies are checked.
type Filter struct {
	// IncludeDev adds devDependencies to the runtime dependencies.
	IncludeDev bool

	// Skip reports names to leave out, in addition to [Platform].
	Skip func(name string) bool
}

// Names returns the sorted, deduplicated dependency names selected by f.
func (p *PackageJSON) Names(f Filter) []string {
	seen := make(map[string]struct{})
	add := func(deps map[string]string) {
		for name := range deps {
			seen[name] = struct{}{}
		}
	}
	add(p.Dependencies)
	if f.IncludeDev {
		add(p.DevDependencies)
	}
	for _, name := range Platform {
		delete(seen, name)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		if f.Skip != nil && f.Skip(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
