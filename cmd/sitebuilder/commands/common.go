package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/mirror"
)

// LogLevelEnv overrides the log level chosen by --verbose.
const LogLevelEnv = "SITEBUILDER_LOG_LEVEL"

// Global is passed to every command's Run.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Config  string `short:"c" help:"Site configuration file" default:"site.yaml" type:"path"`
	Summary string `help:"Navigation manifest" default:"summary.yaml" type:"path"`
	Source  string `help:"Directory holding the Markdown documents" default:"src" type:"path"`

	Mirror    string `help:"Template mirror directory (default: $SITEBUILDER_MIRROR or the user config dir)"`
	Remote    string `help:"Template mirror remote URL"`
	Branch    string `help:"Template mirror branch"`
	GitBinary string `name:"git-binary" help:"Use this git executable instead of the built-in git implementation"`

	Build     BuildCmd     `cmd:"" help:"Build the site and generate the routing server"`
	Init      InitCmd      `cmd:"" help:"Scaffold a new project in the current directory"`
	Setup     SetupCmd     `cmd:"" help:"Install the template mirror"`
	Update    UpdateCmd    `cmd:"" help:"Fast-forward the template mirror to the remote branch"`
	Uninstall UninstallCmd `cmd:"" help:"Remove the template mirror"`
	Clean     CleanCmd     `cmd:"" help:"Remove the output directory"`
	Watch     WatchCmd     `cmd:"" help:"Build, then rebuild whenever sources change"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel honours SITEBUILDER_LOG_LEVEL before falling back to --verbose.
func parseLogLevel(verbose bool) slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// MirrorLocation resolves the template mirror from the global flags.
func (c *CLI) MirrorLocation() (config.MirrorLocation, error) {
	return config.ResolveMirrorLocation(c.Mirror, c.Remote, c.Branch)
}

// Port selects the git implementation.
func (c *CLI) Port() mirror.Port {
	if c.GitBinary != "" {
		return mirror.NewShell(c.GitBinary)
	}
	return mirror.GoGit{}
}

// Syncer returns the mirror state machine for the resolved location.
func (c *CLI) Syncer() (*mirror.Syncer, error) {
	loc, err := c.MirrorLocation()
	if err != nil {
		return nil, err
	}
	return mirror.NewSyncer(c.Port(), loc), nil
}
