package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// AST types for Participle grammar

// setExpr is the root of the mask grammar: comma-separated filters
type setExpr struct {
	Filters []*filterExpr `parser:"@@ ( ',' @@ )*"`
}

// filterExpr is a single filter: [operator] literal
type filterExpr struct {
	Operator string `parser:"@Operator?"`
	Literal  string `parser:"@Literal"`
}

// itemExpr is a multi-value predicate: [operator] literal ( sep literal )*
type itemExpr struct {
	Operator string      `parser:"@Operator?"`
	First    string      `parser:"@Literal"`
	Rest     []*itemNext `parser:"@@*"`
}

type itemNext struct {
	Separator string `parser:"@Separator"`
	Literal   string `parser:"@Literal"`
}

// Build the lexer
// IMPORTANT: Operator alternatives are ordered longest first so ">=" is never split into ">" and "=".
// A literal may contain spaces (date-times) but never starts with an operator character.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Separator", Pattern: `[|&]`},
	{Name: "Operator", Pattern: `>=|<=|!=|==|>|<|=`},
	{Name: "Literal", Pattern: `[^\s,|&<>=!][^,|&]*`},
})

// Build the parsers
var (
	setParser = participle.MustBuild[setExpr](
		participle.Lexer(exprLexer),
		participle.Elide("Whitespace"),
	)
	filterParser = participle.MustBuild[filterExpr](
		participle.Lexer(exprLexer),
		participle.Elide("Whitespace"),
	)
	itemParser = participle.MustBuild[itemExpr](
		participle.Lexer(exprLexer),
		participle.Elide("Whitespace"),
	)
)

// Parser classifies literals and parses expressions against a fixed set of Tables.
// It is immutable and safe for concurrent use.
type Parser struct {
	tables Tables
}

// NewParser returns a parser over a private copy of t.
func NewParser(t Tables) (*Parser, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Parser{tables: t.Clone()}, nil
}

var defaultParser = &Parser{tables: DefaultTables()}

// Default returns the parser over DefaultTables.
func Default() *Parser { return defaultParser }

// Tables returns a copy of the parser's tables.
func (p *Parser) Tables() Tables { return p.tables.Clone() }

// Classify classifies text with the default tables.
func Classify(text string) (Value, error) { return defaultParser.Classify(text) }

// Parse parses a mask expression like ">=2024-10-01 08:00:00, !=G01, >15e" with the default tables.
func Parse(expr string) (*Set, error) { return defaultParser.Parse(expr) }

// ParseFilter parses a single filter like "!=G01" with the default tables.
func ParseFilter(expr string) (*Filter, error) { return defaultParser.ParseFilter(expr) }

// ParseItem parses a multi-value predicate like "==GPS|BDS|GLO" with the default tables.
func ParseItem(expr string) (*Item, error) { return defaultParser.ParseItem(expr) }

// Parse parses a comma-separated mask expression. Blank input yields an empty Set.
// The first failing token is reported as an *ExprError.
func (p *Parser) Parse(expr string) (*Set, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Set{}, nil
	}

	ast, err := setParser.ParseString("", expr)
	if err != nil {
		return nil, malformed(expr, err)
	}

	filters := make([]Filter, 0, len(ast.Filters))
	for i, fe := range ast.Filters {
		f, err := p.convertFilter(fe)
		if err != nil {
			return nil, &ExprError{Index: i, Token: fe.text(), Err: err}
		}
		filters = append(filters, f)
	}

	return &Set{filters: filters}, nil
}

// ParseFilter parses one filter expression.
func (p *Parser) ParseFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, &ExprError{Token: expr, Err: fmt.Errorf("%w: empty expression", ErrMalformedExpression)}
	}

	ast, err := filterParser.ParseString("", expr)
	if err != nil {
		return nil, &ExprError{Token: expr, Err: fmt.Errorf("%w: %v", ErrMalformedExpression, err)}
	}

	f, err := p.convertFilter(ast)
	if err != nil {
		return nil, &ExprError{Token: expr, Err: err}
	}
	return &f, nil
}

// ParseItem parses "[op]v1|v2|..." (Or) or "[op]v1&v2&..." (And).
// A single candidate is an Or item. Errors carry the candidate index.
func (p *Parser) ParseItem(expr string) (*Item, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, &ExprError{Token: expr, Err: fmt.Errorf("%w: empty expression", ErrMalformedExpression)}
	}

	ast, err := itemParser.ParseString("", expr)
	if err != nil {
		return nil, &ExprError{Token: expr, Err: fmt.Errorf("%w: %v", ErrMalformedExpression, err)}
	}

	comb := Or
	literals := []string{ast.First}
	for i, next := range ast.Rest {
		sep := Combinator(next.Separator)
		if i > 0 && sep != comb {
			return nil, &ExprError{Index: i + 1, Token: strings.TrimSpace(next.Literal),
				Err: fmt.Errorf("%w: mixed %q and %q separators", ErrMalformedExpression, comb, sep)}
		}
		comb = sep
		literals = append(literals, next.Literal)
	}

	values := make([]Value, 0, len(literals))
	for i, lit := range literals {
		lit = strings.TrimSpace(lit)
		v, err := p.Classify(lit)
		if err != nil {
			return nil, &ExprError{Index: i, Token: lit, Err: err}
		}
		values = append(values, v)
	}

	return NewItem(comparatorTokens[ast.Operator], comb, values...)
}

// convertFilter converts an AST filter to a domain Filter
func (p *Parser) convertFilter(fe *filterExpr) (Filter, error) {
	// Operator is already validated by the lexer; absence means Equal
	cmp := comparatorTokens[fe.Operator]

	v, err := p.Classify(strings.TrimSpace(fe.Literal))
	if err != nil {
		return Filter{}, err
	}
	return Filter{Comparator: cmp, Literal: v}, nil
}

func (fe *filterExpr) text() string {
	return fe.Operator + strings.TrimSpace(fe.Literal)
}

// malformed maps a grammar error to the comma-separated token it occurred in.
func malformed(expr string, err error) error {
	index := 0
	var perr interface{ Position() lexer.Position }
	if errors.As(err, &perr) {
		off := perr.Position().Offset
		if off > len(expr) {
			off = len(expr)
		}
		if off > 0 {
			index = strings.Count(expr[:off], ",")
		}
	}

	token := ""
	if tokens := strings.Split(expr, ","); index < len(tokens) {
		token = strings.TrimSpace(tokens[index])
	}

	return &ExprError{Index: index, Token: token, Err: fmt.Errorf("%w: %v", ErrMalformedExpression, err)}
}
