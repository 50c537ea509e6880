package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/assetflow/internal/config"
)

// Global carries process-wide state into subcommands.
type Global struct {
	// Context is cancelled on SIGINT or SIGTERM.
	Context context.Context
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (relative to --dir)" default:"assetflow.yaml"`
	Dir     string           `short:"C" help:"Project root directory" default:"." type:"existingdir"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Dev   DevCmd   `cmd:"" default:"1" help:"Compile for development, then serve and watch with live reload"`
	Build BuildCmd `cmd:"" help:"Produce the distribution tree"`
	Init  InitCmd  `cmd:"" help:"Write a configuration file populated with the defaults"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// ConfigPath resolves the config file against the project root.
func (c *CLI) ConfigPath() string {
	if filepath.IsAbs(c.Config) {
		return c.Config
	}
	return filepath.Join(c.root(), c.Config)
}

// LoadConfig loads the configuration. A missing file is only tolerated at
// the default path.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if c.Config == config.DefaultPath {
		return config.LoadOrDefault(c.ConfigPath())
	}
	return config.Load(c.ConfigPath())
}

func (c *CLI) root() string {
	if c.Dir == "" {
		return "."
	}
	return c.Dir
}

func contextOf(g *Global) context.Context {
	if g == nil || g.Context == nil {
		return context.Background()
	}
	return g.Context
}
