package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/komma/internal/config"
	"github.com/aleksaelezovic/komma/internal/storage"
	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Database   string
	Verbose    bool
	Format     string // "json" | "text"

	config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the komma CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "komma",
		Short: "komma - SPARQL query graphs and Manchester OWL syntax",
		Long: `Build and rewrite SPARQL query graphs, and parse, load and generate
OWL class expressions in Manchester syntax on top of a badger triple store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "badger directory (empty: in-memory)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewManchesterCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewSparqlCommand(opts))
	cmd.AddCommand(NewStoreCommand(opts))

	return cmd
}

// setup loads the configuration, applies flag overrides and installs the
// default logger
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("db") {
		cfg.Database = o.Database
	}

	level := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	o.config = cfg
	return nil
}

// Config returns the effective configuration. Commands built without the
// root command get the defaults.
func (o *RootOptions) Config() *config.Config {
	if o.config == nil {
		o.config = config.Default()
		if o.Database != "" {
			o.config.Database = o.Database
		}
	}
	return o.config
}

// withStore opens the configured triple store for the duration of fn
func (o *RootOptions) withStore(fn func(ts *store.TripleStore) error) error {
	path := o.Config().Database
	ts, err := storage.OpenTripleStore(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if closeErr := ts.Close(); closeErr != nil {
			slog.Error("error closing store", "path", path, "error", closeErr)
		}
	}()
	return fn(ts)
}

// namespaces returns the configured prefixes plus the store's bindings of
// prefixes the configuration does not mention
func (o *RootOptions) namespaces(ts *store.TripleStore) (*rdf.Namespaces, error) {
	ns := o.Config().Namespaces()
	if ts == nil {
		return ns, nil
	}
	stored, err := ts.Namespaces()
	if err != nil {
		return nil, err
	}
	ns.Merge(stored)
	return ns, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// readInput reads the named file, or standard input for "" and "-"
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", WrapExitError(ExitCommandError, "failed to read input", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return string(data), nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return containsString(ValidFormats, format)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
