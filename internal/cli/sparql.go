package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
	"github.com/aleksaelezovic/komma/pkg/sparql/builder"
	"github.com/aleksaelezovic/komma/pkg/sparql/executor"
	"github.com/aleksaelezovic/komma/pkg/sparql/results"
	"github.com/aleksaelezovic/komma/pkg/store"
)

// SparqlOptions holds flags shared by the sparql subcommands.
type SparqlOptions struct {
	*RootOptions
	Run     bool
	Results string // csv | tsv | json | xml, empty for the table
}

// NewSparqlCommand creates the sparql command group.
func NewSparqlCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SparqlOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sparql",
		Short: "Rewrite and run SPARQL queries",
		Long: `Rewrite SPARQL queries with the query builder and print the result.

Queries are given as arguments; "-" reads the query from standard input.
With --run the rewritten query is evaluated against the store instead.
--results writes evaluated results in a W3C SPARQL result format.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Results != "" && !containsString(results.Formats, opts.Results) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid results format %q: must be one of %v", opts.Results, results.Formats))
			}
			if root := cmd.Root(); root.PersistentPreRunE != nil {
				return root.PersistentPreRunE(cmd, args)
			}
			return nil
		},
	}
	cmd.PersistentFlags().BoolVar(&opts.Run, "run", false, "evaluate the rewritten query against the store")
	cmd.PersistentFlags().StringVar(&opts.Results, "results", "", "result format (csv|tsv|json|xml)")

	cmd.AddCommand(newSparqlRewriteCommand(opts, "construct",
		"Convert a SELECT query into a CONSTRUCT query",
		func(b *builder.Builder) *builder.Builder { return b.ToConstructQuery() }))
	cmd.AddCommand(newSparqlRewriteCommand(opts, "fetch-types",
		"Add OPTIONAL rdf:type patterns for every result node",
		func(b *builder.Builder) *builder.Builder { return b.FetchTypes() }))
	cmd.AddCommand(newSparqlOptionalCommand(opts))
	cmd.AddCommand(newSparqlQueryCommand(opts))
	return cmd
}

func newSparqlRewriteCommand(opts *SparqlOptions, name, short string, rewrite func(*builder.Builder) *builder.Builder) *cobra.Command {
	return &cobra.Command{
		Use:           name + " <query>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseQuery(opts, cmd, args[0])
			if err != nil {
				return err
			}
			return emitQuery(opts, cmd, rewrite(b))
		},
	}
}

func newSparqlOptionalCommand(opts *SparqlOptions) *cobra.Command {
	var property, variable, param string

	cmd := &cobra.Command{
		Use:   "optional <query> <other>",
		Short: "Merge another query into a query as an OPTIONAL pattern",
		Long: `Merge <other> into <query> as an OPTIONAL pattern. Variables of <other>
are renamed apart; --param binds one of them to the first result node and
--property attaches --variable (or every entry of <other>) to the result nodes.

Example:
  komma sparql optional 'SELECT ?s { ?s a <urn:C> }' \
    'SELECT ?x ?l { ?x <urn:label> ?l }' --param x --variable l --property urn:label`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseQuery(opts, cmd, args[0])
			if err != nil {
				return err
			}
			other, err := parseQuery(opts, cmd, args[1])
			if err != nil {
				return err
			}
			return emitQuery(opts, cmd, b.OptionalBuilder(property, variable, param, other))
		},
	}

	cmd.Flags().StringVar(&property, "property", "", "IRI or prefixed name attaching the merged nodes")
	cmd.Flags().StringVar(&variable, "variable", "", "variable of <other> to attach")
	cmd.Flags().StringVar(&param, "param", "", "variable of <other> bound to the first result node")
	return cmd
}

func newSparqlQueryCommand(opts *SparqlOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <query>",
		Short: "Evaluate a query against the store",
		Long: `Evaluate a SELECT, ASK, CONSTRUCT or DESCRIBE query against the store.

Example:
  komma --db ./data sparql query 'SELECT ?c WHERE { ?c a <http://www.w3.org/2002/07/owl#Class> }'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseQuery(opts, cmd, args[0])
			if err != nil {
				return err
			}
			return runQuery(opts, cmd, b.Query())
		},
	}
}

func parseQuery(opts *SparqlOptions, cmd *cobra.Command, arg string) (*builder.Builder, error) {
	text := arg
	if arg == "-" {
		var err error
		if text, err = readInput(cmd, arg); err != nil {
			return nil, err
		}
	}
	b, err := builder.Parse(text)
	if err != nil {
		return nil, reportParseError(opts.formatter(cmd), err)
	}
	return b, nil
}

// queryText is the JSON payload of rewritten queries
type queryText struct {
	Query       string   `json:"query"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

func emitQuery(opts *SparqlOptions, cmd *cobra.Command, b *builder.Builder) error {
	formatter := opts.formatter(cmd)

	var diagnostics []string
	for _, d := range b.Diagnostics() {
		formatter.Warn("%s", d)
		diagnostics = append(diagnostics, d.String())
	}

	if opts.Run {
		return runQuery(opts, cmd, b.Build())
	}
	text := b.String()
	return formatter.Success(text, queryText{Query: text, Diagnostics: diagnostics})
}

// selectRows is the JSON payload of SELECT results
type selectRows struct {
	Variables []string            `json:"variables"`
	Bindings  []map[string]string `json:"bindings"`
}

func runQuery(opts *SparqlOptions, cmd *cobra.Command, q ast.Query) error {
	formatter := opts.formatter(cmd)

	return opts.withStore(func(ts *store.TripleStore) error {
		result, err := executor.NewExecutor(ts).Execute(q)
		if err != nil {
			return WrapExitError(ExitFailure, "query evaluation failed", err)
		}
		if opts.Results != "" {
			if err := results.Write(cmd.OutOrStdout(), opts.Results, result); err != nil {
				return WrapExitError(ExitCommandError, "failed to write results", err)
			}
			return nil
		}

		switch r := result.(type) {
		case *executor.SelectResult:
			rows := selectRows{Variables: r.Variables}
			for _, binding := range r.Bindings {
				row := make(map[string]string, len(binding.Vars))
				for name, term := range binding.Vars {
					row[name] = term.String()
				}
				rows.Bindings = append(rows.Bindings, row)
			}
			return formatter.Success(formatTable(rows), rows)
		case *executor.AskResult:
			return formatter.Success(fmt.Sprintf("%t\n", r.Result), r)
		case *executor.ConstructResult:
			var sb strings.Builder
			if err := rdf.WriteNTriples(&sb, r.Triples); err != nil {
				return WrapExitError(ExitCommandError, "failed to write triples", err)
			}
			lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
			if sb.Len() == 0 {
				lines = []string{}
			}
			return formatter.Success(sb.String(), map[string][]string{"triples": lines})
		default:
			return NewExitError(ExitCommandError, fmt.Sprintf("unexpected result %T", result))
		}
	})
}

// formatTable renders SELECT rows as a pipe table
func formatTable(rows selectRows) string {
	var sb strings.Builder
	sb.WriteString("|")
	for _, v := range rows.Variables {
		fmt.Fprintf(&sb, " %-20s |", v)
	}
	sb.WriteString("\n|")
	for range rows.Variables {
		sb.WriteString(strings.Repeat("-", 22) + "|")
	}
	sb.WriteString("\n")
	for _, row := range rows.Bindings {
		sb.WriteString("|")
		for _, v := range rows.Variables {
			fmt.Fprintf(&sb, " %-20s |", row[v])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
