package dialect

import "fmt"

// Operator is a filter comparison derived from a filter-key suffix.
type Operator string

const (
	OpEq   Operator = "eq"
	OpNe   Operator = "ne"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpIn   Operator = "in"
	OpLike Operator = "like"
)

var operatorSymbols = map[Operator]string{
	OpEq:   "=",
	OpNe:   "<>",
	OpLt:   "<",
	OpLte:  "<=",
	OpGt:   ">",
	OpGte:  ">=",
	OpIn:   "IN",
	OpLike: "LIKE",
}

// LookupOperator maps a suffix tag such as "lte" to its Operator.
func LookupOperator(tag string) (Operator, error) {
	op := Operator(tag)
	if _, ok := operatorSymbols[op]; !ok {
		return "", fmt.Errorf("unsupported operator %q", tag)
	}
	return op, nil
}

// Symbol returns the SQL comparison for the operator.
func (op Operator) Symbol() string {
	return operatorSymbols[op]
}

// Ordered reports whether the operator compares by ordering rather than identity.
func (op Operator) Ordered() bool {
	switch op {
	case OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}
