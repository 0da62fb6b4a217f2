package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/store"
)

// NewStoreCommand creates the store command group.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Import, export and inspect the triple store",
	}
	cmd.AddCommand(newStoreImportCommand(rootOpts))
	cmd.AddCommand(newStoreExportCommand(rootOpts))
	cmd.AddCommand(newStorePrefixesCommand(rootOpts))
	return cmd
}

func newStoreImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.nt>",
		Short: "Import an N-Triples file",
		Long: `Import the triples of an N-Triples file into the store in a single
transaction. "-" reads standard input.

Example:
  komma --db ./data store import ontology.nt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreImport(rootOpts, cmd, args[0])
		},
	}
}

// importSummary is the JSON payload of store import
type importSummary struct {
	Imported int   `json:"imported"`
	Total    int64 `json:"total"`
}

func runStoreImport(opts *RootOptions, cmd *cobra.Command, path string) error {
	formatter := opts.formatter(cmd)
	input, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	triples, err := rdf.ParseNTriples(input)
	if err != nil {
		_ = formatter.Error(&CLIError{Message: err.Error()})
		return WrapExitError(ExitFailure, "invalid N-Triples", err)
	}

	return opts.withStore(func(ts *store.TripleStore) error {
		if err := ts.InsertTriples(triples); err != nil {
			return WrapExitError(ExitCommandError, "failed to import triples", err)
		}
		total, err := ts.Count()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to count triples", err)
		}
		formatter.VerboseLog("imported %s", path)

		summary := importSummary{Imported: len(triples), Total: total}
		text := fmt.Sprintf("imported %d triple(s); store holds %d\n", summary.Imported, summary.Total)
		return formatter.Success(text, summary)
	})
}

func newStoreExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "export",
		Short:         "Print every triple of the store as N-Triples",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			return rootOpts.withStore(func(ts *store.TripleStore) error {
				triples, err := ts.Match(nil, nil, nil)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read triples", err)
				}
				var sb strings.Builder
				if err := rdf.WriteNTriples(&sb, triples); err != nil {
					return WrapExitError(ExitCommandError, "failed to write triples", err)
				}
				return formatter.Success(sb.String(), formattedText{Text: sb.String()})
			})
		},
	}
}

func newStorePrefixesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "prefixes",
		Short:         "List the prefixes bound in the store",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			return rootOpts.withStore(func(ts *store.TripleStore) error {
				ns, err := ts.Namespaces()
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read prefixes", err)
				}
				var sb strings.Builder
				prefixes := make(map[string]string, ns.Len())
				ns.Each(func(prefix, namespace string) {
					fmt.Fprintf(&sb, "%s: <%s>\n", prefix, namespace)
					prefixes[prefix] = namespace
				})
				return formatter.Success(sb.String(), prefixes)
			})
		},
	}
}
