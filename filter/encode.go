package filter

import (
	"fmt"
	"strings"
)

// EncoderOptions configures encoding behavior.
type EncoderOptions struct {
	// ColumnMapping maps original column names to target names.
	// Columns not in the map use their original names.
	ColumnMapping map[string]string
}

// Encoder renders filter expressions as SQL-style text for diagnostics.
type Encoder struct {
	opts EncoderOptions
}

// NewEncoder creates an encoder. opts may be nil for defaults.
func NewEncoder(opts *EncoderOptions) *Encoder {
	e := &Encoder{}
	if opts != nil {
		e.opts = *opts
	}
	return e
}

// Encode converts a single expression to SQL-style text.
// Returns empty string if the expression is nil or unsupported.
func (e *Encoder) Encode(expr Expression) string {
	switch x := expr.(type) {
	case nil:
		return ""
	case *ColumnExpression:
		name := x.Name
		if mapped, ok := e.opts.ColumnMapping[name]; ok {
			name = mapped
		}
		return quoteIdentifier(name)
	case *ConstantExpression:
		return e.encodeConstant(x)
	case *ComparisonExpression:
		op, ok := comparisonOps[x.Type()]
		if !ok {
			return ""
		}
		left, right := e.Encode(x.Left), e.Encode(x.Right)
		if left == "" || right == "" {
			return ""
		}
		return left + " " + op + " " + right
	case *ConjunctionExpression:
		return e.encodeConjunction(x)
	case *OperatorExpression:
		child := e.Encode(x.Child)
		if child == "" {
			return ""
		}
		switch x.Type() {
		case TypeOperatorNot:
			return "NOT (" + child + ")"
		case TypeOperatorIsNull:
			return child + " IS NULL"
		case TypeOperatorIsNotNull:
			return child + " IS NOT NULL"
		}
		return ""
	}
	return ""
}

// EncodeFilters renders filters as a WHERE clause body (without the WHERE
// keyword), combining them with AND. Returns empty string if no filter can
// be encoded.
func (e *Encoder) EncodeFilters(filters []Expression) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		if s := e.Encode(f); s != "" {
			parts = append(parts, "("+s+")")
		}
	}
	return strings.Join(parts, " AND ")
}

var comparisonOps = map[ExpressionType]string{
	TypeCompareEqual:              "=",
	TypeCompareNotEqual:           "<>",
	TypeCompareLessThan:           "<",
	TypeCompareGreaterThan:        ">",
	TypeCompareLessThanOrEqual:    "<=",
	TypeCompareGreaterThanOrEqual: ">=",
}

func (e *Encoder) encodeConstant(c *ConstantExpression) string {
	if c.IsNull {
		return "NULL"
	}
	switch v := c.Value.(type) {
	case string:
		return quoteLiteral(v)
	case []byte:
		return quoteLiteral(string(v))
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (e *Encoder) encodeConjunction(c *ConjunctionExpression) string {
	op := " AND "
	if c.Type() == TypeConjunctionOr {
		op = " OR "
	}
	parts := make([]string, 0, len(c.Children))
	for _, child := range c.Children {
		s := e.Encode(child)
		if s == "" {
			// For OR a missing child widens the predicate incorrectly,
			// so the whole conjunction is dropped. For AND it is safe
			// to keep the remaining children.
			if c.Type() == TypeConjunctionOr {
				return ""
			}
			continue
		}
		parts = append(parts, "("+s+")")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, op)
}

// escapeString escapes single quotes in a string value for SQL.
func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quoteLiteral returns a SQL string literal with proper escaping.
func quoteLiteral(s string) string {
	return "'" + escapeString(s) + "'"
}

// quoteIdentifier returns a quoted identifier if needed.
func quoteIdentifier(name string) string {
	if needsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// needsQuoting returns true if the identifier needs quoting.
func needsQuoting(name string) bool {
	if len(name) == 0 {
		return true
	}
	c := name[0]
	if !isLetter(c) && c != '_' {
		return true
	}
	for i := 1; i < len(name); i++ {
		c = name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return true
		}
	}
	switch strings.ToUpper(name) {
	case "SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "NULL", "TRUE", "FALSE",
		"IN", "IS", "LIKE", "BETWEEN", "CASE", "WHEN", "THEN", "ELSE", "END",
		"ORDER", "BY", "GROUP", "LIMIT", "CAST", "DATE", "TIME", "TIMESTAMP":
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
