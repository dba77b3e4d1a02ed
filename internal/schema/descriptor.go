package schema

import (
	"fmt"
	"regexp"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/Akash-nath29/akron/internal/dialect"
)

// Descriptor is a parsed column type descriptor: "<scalar>" or
// "<scalar>-><table>.<column>".
type Descriptor struct {
	Type      dialect.ScalarType
	Reference *Reference
}

func (d Descriptor) String() string {
	if d.Reference == nil {
		return string(d.Type)
	}
	return fmt.Sprintf("%s->%s.%s", d.Type, d.Reference.Table, d.Reference.Column)
}

var descriptorLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Arrow", Pattern: `->`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

type descriptorAST struct {
	Scalar    string        `parser:"@Ident"`
	Reference *referenceAST `parser:"( Arrow @@ )?"`
}

type referenceAST struct {
	Table  string `parser:"@Ident Dot"`
	Column string `parser:"@Ident"`
}

var descriptorParser = participle.MustBuild[descriptorAST](
	participle.Lexer(descriptorLexer),
	participle.Elide("Whitespace"),
)

// ParseDescriptor parses a type descriptor. It only checks syntax and the
// scalar name; references are resolved by the Catalog.
func ParseDescriptor(s string) (Descriptor, error) {
	ast, err := descriptorParser.ParseString("", s)
	if err != nil {
		return Descriptor{}, fmt.Errorf("invalid type descriptor %q: %w", s, err)
	}

	scalar, err := dialect.ParseScalar(ast.Scalar)
	if err != nil {
		return Descriptor{}, fmt.Errorf("invalid type descriptor %q: %w", s, err)
	}

	d := Descriptor{Type: scalar}
	if ast.Reference != nil {
		d.Reference = &Reference{Table: ast.Reference.Table, Column: ast.Reference.Column}
	}
	return d, nil
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is usable as a table or column name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
