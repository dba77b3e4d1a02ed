package dialect

import "fmt"

// ScalarType is the semantic type of a column.
type ScalarType string

const (
	Int   ScalarType = "int"
	Str   ScalarType = "str"
	Float ScalarType = "float"
	Bool  ScalarType = "bool"
)

var scalarTypes = map[string]ScalarType{
	"int":   Int,
	"str":   Str,
	"float": Float,
	"bool":  Bool,
}

// ParseScalar maps a type name from a descriptor to its ScalarType.
func ParseScalar(name string) (ScalarType, error) {
	if t, ok := scalarTypes[name]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unrecognized type %q", name)
}

// Valid reports whether t is one of the registered scalar types.
func (t ScalarType) Valid() bool {
	_, ok := scalarTypes[string(t)]
	return ok
}
