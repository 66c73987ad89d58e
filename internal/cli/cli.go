// Package cli implements the newarch command-line interface.
package cli

import (
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/newarch/pkg/buildinfo"
	"github.com/matzehuels/newarch/pkg/compat"
	"github.com/matzehuels/newarch/pkg/config"
	"github.com/matzehuels/newarch/pkg/integrations"
	"github.com/matzehuels/newarch/pkg/integrations/directory"
	"github.com/matzehuels/newarch/pkg/integrations/github"
	"github.com/matzehuels/newarch/pkg/integrations/npm"
)

// appName is the application name used for display and completion scripts.
const appName = "newarch"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath overrides the project's newarch.toml.
	configPath string
}

// New creates a CLI whose logger writes to w at level. Every log line
// carries the id of the current run.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level).With("run", uuid.NewString()[:8]),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "newarch checks React Native dependencies for New Architecture support",
		Long: `newarch reads the dependencies of a React Native project and reports, for each
one, whether it supports the New Architecture. It asks the React Native
Directory first, then falls back to the package's own package.json, found
through the npm registry.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default <project>/"+config.FileName+")")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or newarch.toml inside projectDir.
func (c *CLI) loadConfig(projectDir string) (config.Config, error) {
	p := c.configPath
	if p == "" {
		p = filepath.Join(projectDir, config.FileName)
	}
	cfg, err := config.Load(p)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("configuration loaded", "path", p)
	return cfg, nil
}

// newResolver wires the three compatibility stages onto one shared fetcher.
func newResolver(cfg config.Config, logger *log.Logger, progress func(done, total int)) *compat.Resolver {
	base := integrations.NewClient(nil, cfg.ClientOptions()...)
	return compat.NewResolver(
		directory.NewClient(base, cfg.DirectoryURL),
		npm.NewClient(base, cfg.RegistryURL),
		github.NewRawClient(base, cfg.RawURL),
		compat.Options{
			Concurrency: cfg.Concurrency,
			Branches:    cfg.Branches,
			Markers:     cfg.NativeMarkers,
			Logger:      logger,
			Progress:    progress,
		},
	)
}
