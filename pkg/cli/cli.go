package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Context is bound to every command's Run method.
type Context struct {
	Ctx    context.Context
	Stdout io.Writer
	Logger *slog.Logger
}

// CLI is the netblockr command tree.
type CLI struct {
	LogLevel string `help:"Log level (debug, info, warn, error)" enum:"debug,info,warn,error" default:"info" env:"NETBLOCKR_LOG_LEVEL"`

	Dump   DumpCmd   `cmd:"" help:"Print the netblock table as built"`
	Lookup LookupCmd `cmd:"" help:"Classify IPv4 addresses against a netblock table"`
	Audit  AuditCmd  `cmd:"" help:"Report netblocks the probe order makes unreachable or ambiguous"`
}

// DefaultConfigPaths are the JSON files that may set flag defaults, keyed by
// flag name (e.g. {"format": "csv"}). Missing files are ignored.
var DefaultConfigPaths = []string{".netblockr.json", "~/.netblockr.json"}

// LoadDotEnv exports the NETBLOCKR_* variables of .env files that exist.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// Execute parses args and runs the selected command. Flag defaults are read
// from the configPaths JSON files, then from NETBLOCKR_* variables. Logs go to
// stderr, results to stdout unless --output is set.
func Execute(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer, configPaths ...string) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("netblockr"),
		kong.Description("Classify IPv4 addresses by the netblocks that contain them."),
		kong.Writers(stdout, stderr),
		kong.Configuration(kong.JSON, configPaths...),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, cli.LogLevel)
	if err != nil {
		return err
	}

	return kctx.Run(&Context{
		Ctx:    ctx,
		Stdout: stdout,
		Logger: logger,
	})
}

func newLogger(out io.Writer, level string) (*slog.Logger, error) {
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	handler := log.NewWithOptions(out, log.Options{
		Level:           logLevel,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "netblockr",
	})
	return slog.New(handler), nil
}
