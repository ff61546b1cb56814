package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formflow/internal/config"
)

const usage = `Usage: %s <command> [flags]

Commands:
  run       fill a form in the terminal
  serve     serve form sessions over HTTP
  validate  check schema documents
  openapi   print the OpenAPI document of a schema
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintf(stderr, usage, filepath.Base(os.Args[0]))
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "run":
		return runTerminal(ctx, rest, stdout, stderr)
	case "serve":
		return runServe(ctx, rest, stderr)
	case "validate":
		return runValidate(ctx, rest, stdout, stderr)
	case "openapi":
		return runOpenAPI(ctx, rest, stdout, stderr)
	case "-h", "--help", "help":
		fmt.Fprintf(stdout, usage, filepath.Base(os.Args[0]))
		return nil
	default:
		fmt.Fprintf(stderr, usage, filepath.Base(os.Args[0]))
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// commonFlags are shared by every command that loads a schema.
type commonFlags struct {
	configPath string
	envFile    string
	schema     string
	logLevel   string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML config file")
	fs.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.StringVar(&c.schema, "schema", "", "schema document path or URL (overrides config)")
	fs.StringVar(&c.logLevel, "log-level", "", "log level (overrides config)")
}

// load resolves configuration: .env file, then YAML and FORMFLOW_* variables,
// then flags.
func (c *commonFlags) load(stderr io.Writer) (*config.Config, zerolog.Logger, error) {
	if err := config.LoadEnvFiles(c.envFile); err != nil {
		return nil, zerolog.Nop(), err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if c.schema != "" {
		cfg.Schema.Path = c.schema
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	return cfg, config.NewLogger(cfg.Logging, stderr), nil
}
