package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/ironsheep/colony-vision-mcp/internal/config"
	"github.com/ironsheep/colony-vision-mcp/internal/ocr"
	"github.com/ironsheep/colony-vision-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options are the command-line flags.
type options struct {
	version    bool
	help       bool
	configPath string
	logLevel   string
	logFormat  string
	workers    int
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("colony-vision-mcp", pflag.ContinueOnError)
	fs.BoolVarP(&opts.version, "version", "v", false, "print version information")
	fs.BoolVarP(&opts.help, "help", "h", false, "print this help message")
	fs.StringVar(&opts.configPath, "config", os.Getenv(config.EnvConfig), "YAML config file (env "+config.EnvConfig+")")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (env "+config.EnvLogLevel+")")
	fs.StringVar(&opts.logFormat, "log-format", "json", "log format on stderr: json or console")
	fs.IntVar(&opts.workers, "workers", 0, "concurrent analyses in batch runs (env "+config.EnvWorkers+")")
	return fs
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := newFlagSet(&opts)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stdout, fs)
			return nil
		}
		return err
	}

	if opts.version {
		printVersion(stdout)
		return nil
	}
	if opts.help {
		printHelp(stdout, fs)
		return nil
	}

	cfg, err := loadConfig(fs, &opts)
	if err != nil {
		return err
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log, err := newLogger(stderr, cfg.LogLevel, opts.logFormat)
	if err != nil {
		return err
	}

	ocrInfo := ocr.GetInfo()
	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Int("workers", cfg.Workers).
		Int("history_size", cfg.HistorySize).
		Str("tesseract", ocrInfo.Version).
		Msg("colony-vision-mcp starting")

	server.Version = Version
	srv := server.NewWithConfig(cfg, log)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// loadConfig layers the config file, environment and explicitly set flags,
// in that order.
func loadConfig(fs *pflag.FlagSet, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if fs.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	switch format {
	case "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "colony-vision-mcp %s\n", Version)
	fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "colony-vision-mcp - MCP server for bacterial colony counting")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: colony-vision-mcp [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This server communicates via MCP protocol over stdin/stdout.")
	fmt.Fprintln(w, "Configure it in your MCP client (e.g., Claude Desktop).")
}
