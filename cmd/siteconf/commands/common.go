package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/history"
	"github.com/devscast/siteconf/internal/notify"
)

// DefaultHistoryPath is the run history database, relative to the site directory.
const DefaultHistoryPath = ".siteconf/history.db"

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"${config_file}" type:"path"`
	SiteDir   string           `name:"site-dir" help:"Site root (defaults to the configuration file's directory)" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging (same as --log-level debug)"`
	LogLevel  string           `name:"log-level" help:"Log level (debug, info, warn or error)" default:"info" enum:"debug,info,warn,error"`
	LogFormat string           `name:"log-format" help:"Log format (text or json)" default:"text" enum:"text,json"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Check   CheckCmd   `cmd:"" default:"1" help:"Validate the configuration and check the site's links"`
	Resolve ResolveCmd `cmd:"" help:"Print the configuration with defaults and derived values applied"`
	Routes  RoutesCmd  `cmd:"" help:"List the routes the site will serve"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Watch   WatchCmd   `cmd:"" help:"Re-check the site whenever it changes"`
	History HistoryCmd `cmd:"" help:"Show recorded check runs"`

	// logOutput is where AfterApply sends logs; nil means os.Stderr.
	logOutput io.Writer
}

// Vars returns the kong variables the CLI definition interpolates.
func Vars(versionLine string) kong.Vars {
	return kong.Vars{
		"version":      versionLine,
		"config_file":  config.DefaultConfigFile,
		"history_path": DefaultHistoryPath,
		"nats_subject": notify.DefaultSubject,
	}
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(c.NewLogger())
	return nil
}

// NewLogger builds the logger selected by --verbose and --log-format.
func (c *CLI) NewLogger() *slog.Logger {
	level := config.NormalizeLogLevel(c.LogLevel).SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	out := c.logOutput
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	if config.NormalizeLogFormat(c.LogFormat) == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// ResolveSiteDir returns --site-dir, or the configuration file's directory.
func (c *CLI) ResolveSiteDir() string {
	if c.SiteDir != "" {
		return c.SiteDir
	}
	return filepath.Dir(c.Config)
}

// resolvePath anchors a relative path at the site directory.
func (c *CLI) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ResolveSiteDir(), p)
}

func openHistory(path string) (*history.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return history.NewSQLiteStore(path)
}
