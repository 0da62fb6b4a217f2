package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/komma/pkg/owl"
	"github.com/aleksaelezovic/komma/pkg/owl/manchester"
	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/parser"
	"github.com/aleksaelezovic/komma/pkg/store"
)

// NewManchesterCommand creates the manchester command group.
func NewManchesterCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manchester",
		Short: "Parse, format and load Manchester OWL syntax",
	}
	cmd.AddCommand(newManchesterFormatCommand(rootOpts))
	cmd.AddCommand(newManchesterLoadCommand(rootOpts))
	return cmd
}

func newManchesterFormatCommand(rootOpts *RootOptions) *cobra.Command {
	var description bool

	cmd := &cobra.Command{
		Use:   "format [file]",
		Short: "Parse Manchester syntax and print it in canonical form",
		Long: `Parse a Manchester syntax ontology document (or, with --description,
a single class expression) and print it back in canonical form.

Reads standard input when no file is given.

Example:
  komma manchester format ontology.omn
  echo ':Person and :hasPet some :Dog' | komma manchester format --description`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runManchesterFormat(rootOpts, cmd, path, description)
		},
	}

	cmd.Flags().BoolVar(&description, "description", false, "input is a single class expression")
	return cmd
}

// formattedText is the JSON payload of commands printing Manchester text
type formattedText struct {
	Text string `json:"text"`
}

func runManchesterFormat(opts *RootOptions, cmd *cobra.Command, path string, description bool) error {
	formatter := opts.formatter(cmd)
	input, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	ns := opts.Config().Namespaces()
	generator := manchester.NewGenerator(ns, manchester.WithIndentWidth(opts.Config().Indent))

	var text string
	if description {
		ce, err := manchester.ParseDescription(strings.TrimSpace(input), manchester.WithNamespaces(ns))
		if err != nil {
			return reportParseError(formatter, err)
		}
		text = generator.GenerateText(ce) + "\n"
	} else {
		p := manchester.NewParser(input, manchester.WithNamespaces(ns))
		doc, err := p.ParseDocument()
		if err != nil {
			return reportParseError(formatter, err)
		}
		text = manchester.NewGenerator(p.Namespaces(), manchester.WithIndentWidth(opts.Config().Indent)).GenerateText(doc)
	}
	return formatter.Success(text, formattedText{Text: text})
}

func newManchesterLoadCommand(rootOpts *RootOptions) *cobra.Command {
	var ntriples bool

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load a Manchester syntax ontology into the store",
		Long: `Parse a Manchester syntax ontology document and write its RDF statements
to the triple store. Document prefixes are bound in the store. Properties the
document does not declare are looked up in the store.

With --ntriples the statements are printed as N-Triples instead.

Example:
  komma --db ./data manchester load ontology.omn
  komma manchester load --ntriples ontology.omn`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManchesterLoad(rootOpts, cmd, args[0], ntriples)
		},
	}

	cmd.Flags().BoolVar(&ntriples, "ntriples", false, "print the statements instead of storing them")
	return cmd
}

// loadSummary is the JSON payload of manchester load
type loadSummary struct {
	Frames   int   `json:"frames"`
	Prefixes int   `json:"prefixes"`
	Triples  int64 `json:"triples"`
}

func runManchesterLoad(opts *RootOptions, cmd *cobra.Command, path string, ntriples bool) error {
	formatter := opts.formatter(cmd)
	input, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	if ntriples {
		graph := rdf.NewGraph()
		if _, err := manchester.Load(input, graph, manchester.WithNamespaces(opts.Config().Namespaces())); err != nil {
			return reportParseError(formatter, err)
		}
		var sb strings.Builder
		if err := rdf.WriteNTriples(&sb, graph.Triples()); err != nil {
			return WrapExitError(ExitCommandError, "failed to write statements", err)
		}
		return formatter.Success(sb.String(), formattedText{Text: sb.String()})
	}

	return opts.withStore(func(ts *store.TripleStore) error {
		ns, err := opts.namespaces(ts)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read prefixes", err)
		}
		doc, err := manchester.Load(input, ts,
			manchester.WithNamespaces(ns),
			manchester.WithPropertyKinds(ts))
		if err != nil {
			return reportParseError(formatter, err)
		}
		count, err := ts.Count()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to count triples", err)
		}

		summary := loadSummary{
			Frames:   len(doc.Ontology.Frames),
			Prefixes: doc.Namespaces.Len(),
			Triples:  count,
		}
		text := fmt.Sprintf("loaded %d frame(s), %d prefix(es); store holds %d triple(s)\n",
			summary.Frames, summary.Prefixes, summary.Triples)
		return formatter.Success(text, summary)
	})
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <iri>",
		Short: "Print the Manchester frame of an entity in the store",
		Long: `Decode the OWL description of an entity from the triple store and print
it as a Manchester syntax frame. The entity may be given as a full IRI, in
angle brackets or as a prefixed name.

Example:
  komma --db ./data describe :Person
  komma --db ./data describe '<http://example.org/Person>'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runDescribe(opts *RootOptions, cmd *cobra.Command, name string) error {
	formatter := opts.formatter(cmd)

	return opts.withStore(func(ts *store.TripleStore) error {
		ns, err := opts.namespaces(ts)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read prefixes", err)
		}
		iri, err := expandName(ns, name)
		if err != nil {
			return WrapExitError(ExitFailure, "invalid entity name", err)
		}

		frame, err := owl.NewDecoder(ts).DecodeFrame(rdf.NewNamedNode(iri))
		if errors.Is(err, owl.ErrNotDescribed) {
			_ = formatter.Error(&CLIError{Message: fmt.Sprintf("%s is not described in the store", name)})
			return WrapExitError(ExitFailure, "entity not described", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to decode entity", err)
		}

		text := manchester.NewGenerator(ns, manchester.WithIndentWidth(opts.Config().Indent)).GenerateText(frame)
		return formatter.Success(text, formattedText{Text: text})
	})
}

// expandName turns <iri>, prefix:local or a bare absolute IRI into an IRI
func expandName(ns *rdf.Namespaces, name string) (string, error) {
	if strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">") {
		return name[1 : len(name)-1], nil
	}
	if strings.Contains(name, "://") {
		return name, nil
	}
	return ns.Expand(name)
}

// reportParseError prints the position of a syntax error and wraps it
func reportParseError(formatter *OutputFormatter, err error) error {
	cliErr := &CLIError{Message: err.Error()}

	var manchesterErr *manchester.ParseError
	var sparqlErr *parser.ParseError
	switch {
	case errors.As(err, &manchesterErr):
		cliErr.Line, cliErr.Column = manchesterErr.Line, manchesterErr.Column
	case errors.As(err, &sparqlErr):
		cliErr.Line, cliErr.Column = sparqlErr.Line, sparqlErr.Column
	default:
		return WrapExitError(ExitCommandError, "command failed", err)
	}

	_ = formatter.Error(cliErr)
	return WrapExitError(ExitFailure, "parse failed", err)
}
