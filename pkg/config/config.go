// Package config loads newarch settings from an optional TOML file.
//
// A missing file is not an error: every field has a default, and CLI flags
// override whatever the file sets.
//
//	directory_url     = "https://reactnative.directory/api/libraries"
//	registry_url      = "https://registry.npmjs.org"
//	raw_url           = "https://raw.githubusercontent.com"
//	branches          = ["main", "master"]
//	native_markers    = ["react-native"]
//	skip              = ["@types/*", "eslint-*"]
//	include_dev       = false
//	timeout           = "10s"
//	attempts          = 3
//	retry_backoff     = "0s"
//	concurrency       = 8
//	breaker_threshold = 0
//	user_agent        = "newarch/1.0"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/newarch/pkg/compat"
	apperrors "github.com/matzehuels/newarch/pkg/errors"
	"github.com/matzehuels/newarch/pkg/httputil"
	"github.com/matzehuels/newarch/pkg/integrations"
	"github.com/matzehuels/newarch/pkg/integrations/directory"
	"github.com/matzehuels/newarch/pkg/integrations/github"
	"github.com/matzehuels/newarch/pkg/integrations/npm"
)

// FileName is the config file looked up in the project directory.
const FileName = "newarch.toml"

// Config holds every tunable of a run.
type Config struct {
	DirectoryURL string `toml:"directory_url"`
	RegistryURL  string `toml:"registry_url"`
	RawURL       string `toml:"raw_url"`

	Branches      []string `toml:"branches"`
	NativeMarkers []string `toml:"native_markers"`
	Skip          []string `toml:"skip"`
	IncludeDev    bool     `toml:"include_dev"`

	Timeout          time.Duration `toml:"timeout"`
	Attempts         int           `toml:"attempts"`
	RetryBackoff     time.Duration `toml:"retry_backoff"`
	Concurrency      int           `toml:"concurrency"`
	BreakerThreshold int           `toml:"breaker_threshold"`
	UserAgent        string        `toml:"user_agent"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DirectoryURL:  directory.DefaultURL,
		RegistryURL:   npm.DefaultURL,
		RawURL:        github.DefaultRawURL,
		Branches:      append([]string(nil), compat.DefaultBranches...),
		NativeMarkers: append([]string(nil), compat.DefaultMarkers...),
		Timeout:       integrations.DefaultTimeout,
		Attempts:      httputil.DefaultAttempts,
		Concurrency:   compat.DefaultConcurrency,
		UserAgent:     integrations.DefaultUserAgent,
	}
}

// Load reads the TOML file at p on top of [Default]. A missing file yields
// the defaults; an unreadable, malformed or invalid one is an
// ErrCodeInvalidConfig error.
func Load(p string) (Config, error) {
	cfg := Default()
	if p == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "cannot read %s", p)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "malformed %s", p)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown key %q", p, undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// Validate checks field ranges and URL schemes.
func (c Config) Validate() error {
	for _, u := range []struct{ key, val string }{
		{"directory_url", c.DirectoryURL},
		{"registry_url", c.RegistryURL},
		{"raw_url", c.RawURL},
	} {
		if err := apperrors.ValidateURL(u.val); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "%s", u.key)
		}
	}

	switch {
	case len(c.Branches) == 0:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "branches: at least one branch is required")
	case len(c.NativeMarkers) == 0:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "native_markers: at least one marker is required")
	case c.Timeout <= 0:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "timeout must be positive, got %s", c.Timeout)
	case c.Attempts < 1:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "attempts must be at least 1, got %d", c.Attempts)
	case c.RetryBackoff < 0:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "retry_backoff must not be negative")
	case c.Concurrency < 1:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "concurrency must be at least 1, got %d", c.Concurrency)
	case c.BreakerThreshold < 0:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "breaker_threshold must not be negative")
	}

	for _, b := range c.Branches {
		if b == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "branches: empty branch name")
		}
	}
	for _, m := range c.NativeMarkers {
		if m == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "native_markers: empty marker")
		}
	}
	for _, pattern := range c.Skip {
		if _, err := path.Match(pattern, ""); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "skip: bad pattern %q", pattern)
		}
	}
	return nil
}

// MatchSkip reports whether name matches any skip pattern. Patterns use
// path.Match syntax, so "@types/*" skips every package of the @types scope.
func (c Config) MatchSkip(name string) bool {
	for _, pattern := range c.Skip {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Policy returns the retry policy the settings describe.
func (c Config) Policy() httputil.Policy {
	return httputil.Policy{Attempts: c.Attempts, Backoff: c.RetryBackoff}
}

// ClientOptions returns the fetcher options the settings describe.
func (c Config) ClientOptions() []integrations.Option {
	opts := []integrations.Option{
		integrations.WithTimeout(c.Timeout),
		integrations.WithPolicy(c.Policy()),
		integrations.WithUserAgent(c.UserAgent),
	}
	if c.BreakerThreshold > 0 {
		opts = append(opts, integrations.WithBreaker(c.BreakerThreshold))
	}
	return opts
}
