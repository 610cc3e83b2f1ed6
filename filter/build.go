package filter

// Column returns a reference to the named column.
func Column(name string) *ColumnExpression {
	return &ColumnExpression{BaseExpression{TypeColumnRef}, name}
}

// Literal returns a constant expression holding v.
// Supported value types: string, bool, integer and float types, []byte.
func Literal(v any) *ConstantExpression {
	return &ConstantExpression{BaseExpression: BaseExpression{TypeValueConstant}, Value: v}
}

// Null returns a constant expression representing SQL NULL.
func Null() *ConstantExpression {
	return &ConstantExpression{BaseExpression: BaseExpression{TypeValueConstant}, IsNull: true}
}

// True returns the constant-true predicate.
func True() *ConstantExpression { return Literal(true) }

func compare(t ExpressionType, left, right Expression) *ComparisonExpression {
	return &ComparisonExpression{BaseExpression{t}, left, right}
}

// Equal returns left = right.
func Equal(left, right Expression) *ComparisonExpression {
	return compare(TypeCompareEqual, left, right)
}

// NotEqual returns left <> right.
func NotEqual(left, right Expression) *ComparisonExpression {
	return compare(TypeCompareNotEqual, left, right)
}

// LessThan returns left < right.
func LessThan(left, right Expression) *ComparisonExpression {
	return compare(TypeCompareLessThan, left, right)
}

// GreaterThan returns left > right.
func GreaterThan(left, right Expression) *ComparisonExpression {
	return compare(TypeCompareGreaterThan, left, right)
}

// LessThanOrEqual returns left <= right.
func LessThanOrEqual(left, right Expression) *ComparisonExpression {
	return compare(TypeCompareLessThanOrEqual, left, right)
}

// GreaterThanOrEqual returns left >= right.
func GreaterThanOrEqual(left, right Expression) *ComparisonExpression {
	return compare(TypeCompareGreaterThanOrEqual, left, right)
}

// And combines children with logical AND. With zero children it returns the
// constant-true predicate; with one child it returns the child unchanged.
func And(children ...Expression) Expression {
	return conjunction(TypeConjunctionAnd, children)
}

// Or combines children with logical OR. With zero children it returns the
// constant-true predicate; with one child it returns the child unchanged.
func Or(children ...Expression) Expression {
	return conjunction(TypeConjunctionOr, children)
}

func conjunction(t ExpressionType, children []Expression) Expression {
	switch len(children) {
	case 0:
		return True()
	case 1:
		return children[0]
	}
	return &ConjunctionExpression{BaseExpression{t}, children}
}

// Not negates the child expression.
func Not(child Expression) *OperatorExpression {
	return &OperatorExpression{BaseExpression{TypeOperatorNot}, child}
}

// IsNull returns child IS NULL.
func IsNull(child Expression) *OperatorExpression {
	return &OperatorExpression{BaseExpression{TypeOperatorIsNull}, child}
}

// IsNotNull returns child IS NOT NULL.
func IsNotNull(child Expression) *OperatorExpression {
	return &OperatorExpression{BaseExpression{TypeOperatorIsNotNull}, child}
}

// Conjunction combines all filters with logical AND into a single pushed-down
// predicate. An empty or nil filter list yields the constant-true predicate.
func Conjunction(filters []Expression) Expression {
	return And(filters...)
}
