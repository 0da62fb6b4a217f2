package evaluator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aleksaelezovic/komma/pkg/rdf"
	"github.com/aleksaelezovic/komma/pkg/sparql/ast"
	"github.com/aleksaelezovic/komma/pkg/store"
)

// evaluateFunctionCall evaluates a function call expression
func (e *Evaluator) evaluateFunctionCall(expr *ast.FunctionCall, binding *store.Binding) (rdf.Term, error) {
	funcName := strings.ToUpper(expr.Name)

	switch funcName {
	// BOUND inspects the argument without evaluating it
	case "BOUND":
		return e.evaluateBound(expr.Arguments, binding)
	case "SAMETERM":
		return e.evaluateSameTerm(expr.Arguments, binding)
	}

	args, err := e.evaluateArguments(expr.Arguments, binding)
	if err != nil {
		return nil, err
	}

	switch funcName {
	// Type checking functions
	case "ISIRI", "ISURI":
		if err := arity(funcName, args, 1); err != nil {
			return nil, err
		}
		_, ok := args[0].(*rdf.NamedNode)
		return rdf.NewBooleanLiteral(ok), nil
	case "ISBLANK":
		if err := arity(funcName, args, 1); err != nil {
			return nil, err
		}
		_, ok := args[0].(*rdf.BlankNode)
		return rdf.NewBooleanLiteral(ok), nil
	case "ISLITERAL":
		if err := arity(funcName, args, 1); err != nil {
			return nil, err
		}
		_, ok := args[0].(*rdf.Literal)
		return rdf.NewBooleanLiteral(ok), nil
	case "ISNUMERIC":
		if err := arity(funcName, args, 1); err != nil {
			return nil, err
		}
		_, ok := extractNumeric(args[0])
		return rdf.NewBooleanLiteral(ok), nil

	// Value extraction functions
	case "STR":
		return e.evaluateStr(args)
	case "LANG":
		return e.evaluateLang(args)
	case "DATATYPE":
		return e.evaluateDatatype(args)

	// String functions
	case "STRLEN":
		return e.evaluateStrLen(args)
	case "SUBSTR":
		return e.evaluateSubStr(args)
	case "UCASE":
		return e.mapString(funcName, args, strings.ToUpper)
	case "LCASE":
		return e.mapString(funcName, args, strings.ToLower)
	case "CONCAT":
		return e.evaluateConcat(args)
	case "CONTAINS":
		return e.testStrings(funcName, args, strings.Contains)
	case "STRSTARTS":
		return e.testStrings(funcName, args, strings.HasPrefix)
	case "STRENDS":
		return e.testStrings(funcName, args, strings.HasSuffix)
	case "REGEX":
		return e.evaluateRegex(args)
	case "LANGMATCHES":
		return e.testStrings(funcName, args, langMatches)

	// Numeric functions
	case "ABS":
		return e.mapNumeric(funcName, args, math.Abs)
	case "CEIL":
		return e.mapNumeric(funcName, args, math.Ceil)
	case "FLOOR":
		return e.mapNumeric(funcName, args, math.Floor)
	case "ROUND":
		return e.mapNumeric(funcName, args, math.Round)
	}

	datatype, err := e.castTarget(expr.Name)
	if err != nil {
		return nil, err
	}
	return e.evaluateTypeCast(args, datatype)
}

func (e *Evaluator) evaluateArguments(exprs []ast.Expression, binding *store.Binding) ([]rdf.Term, error) {
	args := make([]rdf.Term, len(exprs))
	for i, expr := range exprs {
		term, err := e.Evaluate(expr, binding)
		if err != nil {
			return nil, err
		}
		args[i] = term
	}
	return args, nil
}

func arity(name string, args []rdf.Term, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s requires exactly %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

// castTarget resolves the name of an IRI function to a datatype IRI
func (e *Evaluator) castTarget(name string) (string, error) {
	if strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">") {
		name = name[1 : len(name)-1]
	} else if prefix, local, ok := strings.Cut(name, ":"); ok && !strings.Contains(local, "/") {
		iri, resolved := ast.ResolveIRI(&ast.QName{Prefix: prefix, Local: local}, e.prologue)
		if !resolved {
			return "", fmt.Errorf("unsupported function: %s", name)
		}
		name = iri
	}
	if !strings.HasPrefix(name, rdf.XSDNamespace) {
		return "", fmt.Errorf("unsupported function: %s", name)
	}
	return name, nil
}

func (e *Evaluator) evaluateBound(args []ast.Expression, binding *store.Binding) (rdf.Term, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("BOUND requires exactly 1 argument")
	}
	variable, ok := args[0].(*ast.Variable)
	if !ok {
		return nil, fmt.Errorf("BOUND requires a variable argument")
	}
	_, bound := binding.Vars[variable.Name]
	return rdf.NewBooleanLiteral(bound), nil
}

// sameTerm is strict equality without numeric coercion
func (e *Evaluator) evaluateSameTerm(args []ast.Expression, binding *store.Binding) (rdf.Term, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("sameTerm requires exactly 2 arguments")
	}
	terms, err := e.evaluateArguments(args, binding)
	if err != nil {
		return nil, err
	}
	return rdf.NewBooleanLiteral(terms[0].Equals(terms[1])), nil
}

func (e *Evaluator) evaluateStr(args []rdf.Term) (rdf.Term, error) {
	if err := arity("STR", args, 1); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case *rdf.NamedNode:
		return rdf.NewLiteral(t.IRI), nil
	case *rdf.Literal:
		return rdf.NewLiteral(t.Value), nil
	default:
		return nil, fmt.Errorf("STR is not defined for blank nodes")
	}
}

func (e *Evaluator) evaluateLang(args []rdf.Term) (rdf.Term, error) {
	if err := arity("LANG", args, 1); err != nil {
		return nil, err
	}
	lit, ok := args[0].(*rdf.Literal)
	if !ok {
		return nil, fmt.Errorf("LANG requires a literal argument")
	}
	return rdf.NewLiteral(lit.Language), nil
}

func (e *Evaluator) evaluateDatatype(args []rdf.Term) (rdf.Term, error) {
	if err := arity("DATATYPE", args, 1); err != nil {
		return nil, err
	}
	lit, ok := args[0].(*rdf.Literal)
	if !ok {
		return nil, fmt.Errorf("DATATYPE requires a literal argument")
	}
	return rdf.NewNamedNode(lit.DatatypeIRI()), nil
}

func (e *Evaluator) evaluateStrLen(args []rdf.Term) (rdf.Term, error) {
	if err := arity("STRLEN", args, 1); err != nil {
		return nil, err
	}
	str, err := e.extractString(args[0])
	if err != nil {
		return nil, err
	}
	return rdf.NewIntegerLiteral(int64(utf8.RuneCountInString(str))), nil
}

// SUBSTR uses 1-based character positions
func (e *Evaluator) evaluateSubStr(args []rdf.Term) (rdf.Term, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, fmt.Errorf("SUBSTR requires 2 or 3 arguments")
	}
	str, err := e.extractString(args[0])
	if err != nil {
		return nil, err
	}
	start, ok := extractNumeric(args[1])
	if !ok {
		return nil, fmt.Errorf("SUBSTR start must be numeric")
	}

	runes := []rune(str)
	from := int(math.Round(start)) - 1
	to := len(runes)
	if len(args) == 3 {
		length, ok := extractNumeric(args[2])
		if !ok {
			return nil, fmt.Errorf("SUBSTR length must be numeric")
		}
		to = from + int(math.Round(length))
	}
	from = max(from, 0)
	to = min(to, len(runes))
	if from >= to {
		return withLanguageOf(args[0], ""), nil
	}
	return withLanguageOf(args[0], string(runes[from:to])), nil
}

func (e *Evaluator) mapString(name string, args []rdf.Term, fn func(string) string) (rdf.Term, error) {
	if err := arity(name, args, 1); err != nil {
		return nil, err
	}
	str, err := e.extractString(args[0])
	if err != nil {
		return nil, err
	}
	return withLanguageOf(args[0], fn(str)), nil
}

func (e *Evaluator) evaluateConcat(args []rdf.Term) (rdf.Term, error) {
	var sb strings.Builder
	for _, arg := range args {
		str, err := e.extractString(arg)
		if err != nil {
			return nil, err
		}
		sb.WriteString(str)
	}
	return rdf.NewLiteral(sb.String()), nil
}

func (e *Evaluator) testStrings(name string, args []rdf.Term, test func(string, string) bool) (rdf.Term, error) {
	if err := arity(name, args, 2); err != nil {
		return nil, err
	}
	left, err := e.extractString(args[0])
	if err != nil {
		return nil, err
	}
	right, err := e.extractString(args[1])
	if err != nil {
		return nil, err
	}
	return rdf.NewBooleanLiteral(test(left, right)), nil
}

// langMatches implements basic language range matching: "*" matches any
// tag and "de" matches "de" and "de-CH"
func langMatches(tag, langRange string) bool {
	tag = strings.ToLower(tag)
	langRange = strings.ToLower(langRange)
	if langRange == "*" {
		return tag != ""
	}
	return tag == langRange || strings.HasPrefix(tag, langRange+"-")
}

func (e *Evaluator) mapNumeric(name string, args []rdf.Term, fn func(float64) float64) (rdf.Term, error) {
	if err := arity(name, args, 1); err != nil {
		return nil, err
	}
	val, ok := extractNumeric(args[0])
	if !ok {
		return nil, fmt.Errorf("%s requires a numeric argument", name)
	}
	return createNumericLiteral(fn(val), args[0], args[0]), nil
}

func (e *Evaluator) evaluateRegex(args []rdf.Term) (rdf.Term, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, fmt.Errorf("REGEX requires 2 or 3 arguments")
	}
	text, err := e.extractString(args[0])
	if err != nil {
		return nil, fmt.Errorf("REGEX text argument: %w", err)
	}
	pattern, err := e.extractString(args[1])
	if err != nil {
		return nil, fmt.Errorf("REGEX pattern argument: %w", err)
	}
	var flags string
	if len(args) == 3 {
		if flags, err = e.extractString(args[2]); err != nil {
			return nil, fmt.Errorf("REGEX flags argument: %w", err)
		}
	}

	// i, m, s and x map onto Go inline flags; q quotes the pattern
	var inline strings.Builder
	for _, flag := range flags {
		switch flag {
		case 'i', 'm', 's', 'x':
			inline.WriteRune(flag)
		case 'q':
			pattern = regexp.QuoteMeta(pattern)
		default:
			return nil, fmt.Errorf("unsupported REGEX flag: %c", flag)
		}
	}
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return rdf.NewBooleanLiteral(re.MatchString(text)), nil
}

func (e *Evaluator) evaluateTypeCast(args []rdf.Term, datatypeIRI string) (rdf.Term, error) {
	if err := arity(datatypeIRI, args, 1); err != nil {
		return nil, err
	}

	var value string
	switch t := args[0].(type) {
	case *rdf.Literal:
		value = strings.TrimSpace(t.Value)
	case *rdf.NamedNode:
		value = t.IRI
	default:
		return nil, fmt.Errorf("cannot cast %s to %s", args[0], datatypeIRI)
	}

	switch datatypeIRI {
	case rdf.XSDBoolean.IRI:
		switch value {
		case "true", "1":
			return rdf.NewBooleanLiteral(true), nil
		case "false", "0":
			return rdf.NewBooleanLiteral(false), nil
		}
		return nil, fmt.Errorf("cannot cast %q to xsd:boolean", value)
	case rdf.XSDInteger.IRI:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return rdf.NewIntegerLiteral(i), nil
		}
		if f, ok := extractNumeric(args[0]); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return rdf.NewIntegerLiteral(int64(math.Trunc(f))), nil
		}
		return nil, fmt.Errorf("cannot cast %q to xsd:integer", value)
	case rdf.XSDDecimal.IRI, rdf.XSDDouble.IRI, rdf.XSDFloat.IRI:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return nil, fmt.Errorf("cannot cast %q to %s", value, datatypeIRI)
		}
	}
	return rdf.NewLiteralWithDatatype(value, rdf.NewNamedNode(datatypeIRI)), nil
}

// withLanguageOf builds a string result keeping the language tag of source
func withLanguageOf(source rdf.Term, value string) rdf.Term {
	if lit, ok := source.(*rdf.Literal); ok && lit.Language != "" {
		return rdf.NewLiteralWithLanguage(value, lit.Language)
	}
	return rdf.NewLiteral(value)
}

// extractString returns the lexical form of a string literal
func (e *Evaluator) extractString(term rdf.Term) (string, error) {
	lit, ok := term.(*rdf.Literal)
	if !ok {
		return "", fmt.Errorf("expected string literal, got %s", term)
	}
	switch lit.DatatypeIRI() {
	case rdf.XSDString.IRI, rdf.RDFLangString.IRI:
		return lit.Value, nil
	default:
		return "", fmt.Errorf("expected string literal, got %s", term)
	}
}
