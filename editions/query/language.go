// Package query implements the edition filter language, e.g.
//
//	price <= 500000000000000000 && sold < 10 || creator = "0xabc..."
//
// and compiles it to SQL over the editions table of the sqlstore.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrUnknownField        = errors.New("unknown field")
	ErrInvalidValue        = errors.New("invalid value")
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

var lex = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\n\r]+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "And", Pattern: `&&`},
	{Name: "Or", Pattern: `\|\|`},
	{Name: "Neq", Pattern: `!=`},
	{Name: "Eq", Pattern: `=`},
	{Name: "Geqt", Pattern: `>=`},
	{Name: "Leqt", Pattern: `<=`},
	{Name: "Gt", Pattern: `>`},
	{Name: "Lt", Pattern: `<`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Number", Pattern: `0[xX][0-9a-fA-F]+|[0-9]+`},
	{Name: "All", Pattern: `\$all`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
})

type fieldKind int

const (
	numericField fieldKind = iota
	addressField
)

type field struct {
	column string
	kind   fieldKind
}

var fields = map[string]field{
	"id":        {"id", numericField},
	"media":     {"media_id", numericField},
	"supply":    {"supply", numericField},
	"sold":      {"sold", numericField},
	"price":     {"price", numericField},
	"withdrawn": {"withdrawn", numericField},
	"escrowed":  {"escrowed", numericField},
	"funds":     {"funds_address", addressField},
	"creator":   {"creator", addressField},
}

var operators = map[string]string{
	"=":  "=",
	"!=": "!=",
	"<":  "<",
	"<=": "<=",
	">":  ">",
	">=": ">=",
}

// EncodeNumber is the column encoding of numeric fields: fixed width hex, so
// text order equals numeric order.
func EncodeNumber(v *uint256.Int) string {
	return common.Hash(v.Bytes32()).Hex()
}

func DecodeNumber(s string) *uint256.Int {
	return new(uint256.Int).SetBytes(common.FromHex(s))
}

// EncodeAddress is the column encoding of address fields.
func EncodeAddress(a common.Address) string {
	return a.Hex()
}

type SelectQuery struct {
	Query string
	Args  []any
}

// QueryOptions pages through the result. A zero Limit returns everything.
type QueryOptions struct {
	Offset uint64
	Limit  uint64
}

type QueryBuilder struct {
	tableBuilder *strings.Builder
	args         []any
	needsComma   bool
	tableCounter uint64
}

func (b *QueryBuilder) nextTableName() string {
	b.tableCounter = b.tableCounter + 1
	return fmt.Sprintf("table_%d", b.tableCounter)
}

func (b *QueryBuilder) addTable(name string) {
	if b.needsComma {
		b.tableBuilder.WriteString(", ")
	} else {
		b.needsComma = true
	}
	b.tableBuilder.WriteString(name)
	b.tableBuilder.WriteString(" AS (")
}

func (b *QueryBuilder) combine(left, right, op string) string {
	tableName := b.nextTableName()
	b.addTable(tableName)
	b.tableBuilder.WriteString("SELECT * FROM ")
	b.tableBuilder.WriteString(left)
	b.tableBuilder.WriteString(" ")
	b.tableBuilder.WriteString(op)
	b.tableBuilder.WriteString(" SELECT * FROM ")
	b.tableBuilder.WriteString(right)
	b.tableBuilder.WriteString(")")
	return tableName
}

// TopLevel is either $all or a filter expression.
type TopLevel struct {
	All        bool        `parser:"  @All"`
	Expression *Expression `parser:"| @@"`
}

func (t *TopLevel) Evaluate(options QueryOptions) (*SelectQuery, error) {
	var sb strings.Builder
	b := QueryBuilder{tableBuilder: &sb}

	if t.All {
		sb.WriteString("SELECT id FROM editions")
	} else {
		sb.WriteString("WITH ")
		tableName, err := t.Expression.Or.Evaluate(&b)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" SELECT * FROM ")
		sb.WriteString(tableName)
	}

	sb.WriteString(" ORDER BY 1")

	if options.Limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		b.args = append(b.args, options.Limit, options.Offset)
	} else if options.Offset > 0 {
		sb.WriteString(" LIMIT -1 OFFSET ?")
		b.args = append(b.args, options.Offset)
	}

	return &SelectQuery{
		Query: sb.String(),
		Args:  b.args,
	}, nil
}

// Expression is the top-level rule.
type Expression struct {
	Or OrExpression `parser:"@@"`
}

// OrExpression handles expressions connected with ||.
type OrExpression struct {
	Left  AndExpression `parser:"@@"`
	Right []*OrRHS      `parser:"@@*"`
}

func (e *OrExpression) Evaluate(b *QueryBuilder) (string, error) {
	tableName, err := e.Left.Evaluate(b)
	if err != nil {
		return "", err
	}

	for _, rhs := range e.Right {
		rightTable, err := rhs.Expr.Evaluate(b)
		if err != nil {
			return "", err
		}
		tableName = b.combine(tableName, rightTable, "UNION")
	}

	return tableName, nil
}

// OrRHS represents the right-hand side of an OR.
type OrRHS struct {
	Expr AndExpression `parser:"Or @@"`
}

// AndExpression handles expressions connected with &&.
type AndExpression struct {
	Left  EqualExpr `parser:"@@"`
	Right []*AndRHS `parser:"@@*"`
}

func (e *AndExpression) Evaluate(b *QueryBuilder) (string, error) {
	tableName, err := e.Left.Evaluate(b)
	if err != nil {
		return "", err
	}

	for _, rhs := range e.Right {
		rightTable, err := rhs.Expr.Evaluate(b)
		if err != nil {
			return "", err
		}
		tableName = b.combine(tableName, rightTable, "INTERSECT")
	}

	return tableName, nil
}

// AndRHS represents the right-hand side of an AND.
type AndRHS struct {
	Expr EqualExpr `parser:"And @@"`
}

// EqualExpr can be either a comparison or a parenthesized expression.
type EqualExpr struct {
	Paren      *Expression `parser:"  LParen @@ RParen"`
	Comparison *Comparison `parser:"| @@"`
}

func (e *EqualExpr) Evaluate(b *QueryBuilder) (string, error) {
	if e.Paren != nil {
		return e.Paren.Or.Evaluate(b)
	}
	return e.Comparison.Evaluate(b)
}

// Comparison compares a field with a literal, e.g. sold < 10.
type Comparison struct {
	Var   string `parser:"@Ident"`
	Op    string `parser:"@(Neq | Eq | Geqt | Leqt | Gt | Lt)"`
	Value Value  `parser:"@@"`
}

// parseNumber accepts decimal and 0x prefixed hex literals.
func parseNumber(s string) (*uint256.Int, error) {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		digits := strings.TrimLeft(s[2:], "0")
		if digits == "" {
			digits = "0"
		}
		return uint256.FromHex("0x" + digits)
	}
	return uint256.FromDecimal(s)
}

func (e *Comparison) Evaluate(b *QueryBuilder) (string, error) {
	f, ok := fields[e.Var]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, e.Var)
	}

	op := operators[e.Op]

	var arg string
	switch f.kind {
	case numericField:
		if e.Value.Number == nil {
			return "", fmt.Errorf("%w: %s needs a number", ErrInvalidValue, e.Var)
		}
		v, err := parseNumber(*e.Value.Number)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrInvalidValue, *e.Value.Number, err)
		}
		arg = EncodeNumber(v)
	case addressField:
		if op != "=" && op != "!=" {
			return "", fmt.Errorf("%w: %s on %s", ErrUnsupportedOperator, e.Op, e.Var)
		}
		if e.Value.String == nil || !common.IsHexAddress(*e.Value.String) {
			return "", fmt.Errorf("%w: %s needs a quoted address", ErrInvalidValue, e.Var)
		}
		arg = EncodeAddress(common.HexToAddress(*e.Value.String))
	}

	tableName := b.nextTableName()
	b.addTable(tableName)
	b.tableBuilder.WriteString("SELECT id FROM editions WHERE ")
	b.tableBuilder.WriteString(f.column)
	b.tableBuilder.WriteString(" ")
	b.tableBuilder.WriteString(op)
	b.tableBuilder.WriteString(" ?)")

	b.args = append(b.args, arg)

	return tableName, nil
}

// Value is a literal value (a number or a string).
type Value struct {
	String *string `parser:"  @String"`
	Number *string `parser:"| @Number"`
}

var Parser = participle.MustBuild[TopLevel](
	participle.Lexer(lex),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

func Parse(s string) (*TopLevel, error) {
	v, err := Parser.ParseString("", s)
	return v, err
}
