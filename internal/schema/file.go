package schema

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	dberrors "github.com/Akash-nath29/akron/internal/errors"
)

// File is a declarative schema document. JSON documents are accepted as well
// since yaml.v3 parses them.
//
//	database:
//	  provider: sqlite
//	  url: sqlite:///app.db
//	tables:
//	  users:
//	    columns:
//	      id: int
//	      email: {type: str, unique: true, nullable: false}
//	    indexes:
//	      - columns: [email]
//	  posts:
//	    columns:
//	      id: int
//	      author_id: int
//	    foreign_keys:
//	      author_id: {references: users, column: id}
type File struct {
	Database FileDatabase `yaml:"database"`
	Tables   FileTables   `yaml:"tables"`

	// Source is the path the file was loaded from, empty for parsed bytes.
	Source string `yaml:"-"`
	// Checksum is the hex BLAKE3 digest of the raw document.
	Checksum string `yaml:"-"`
}

// FileDatabase names the target database of a schema file.
type FileDatabase struct {
	Provider string `yaml:"provider"`
	URL      string `yaml:"url"`
}

// FileTables keeps tables in document order.
type FileTables []FileTable

// FileTable is one table of a schema file.
type FileTable struct {
	Name        string                    `yaml:"-"`
	Columns     FileColumns               `yaml:"columns"`
	ForeignKeys map[string]FileForeignKey `yaml:"foreign_keys"`
	Indexes     []FileIndex               `yaml:"indexes"`
}

// FileColumns keeps columns in document order.
type FileColumns []FileColumn

// FileColumn accepts either a bare descriptor or a mapping.
type FileColumn struct {
	Name       string `yaml:"-"`
	Type       string `yaml:"type"`
	Nullable   *bool  `yaml:"nullable"`
	Unique     bool   `yaml:"unique"`
	PrimaryKey bool   `yaml:"primary_key"`
}

// FileForeignKey points a column at another table's column.
type FileForeignKey struct {
	References string `yaml:"references"`
	Column     string `yaml:"column"`
}

// FileIndex declares a secondary index.
type FileIndex struct {
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique"`
}

func (ts *FileTables) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: tables must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var t FileTable
		if err := node.Content[i+1].Decode(&t); err != nil {
			return err
		}
		t.Name = node.Content[i].Value
		*ts = append(*ts, t)
	}
	return nil
}

func (cs *FileColumns) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: columns must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var c FileColumn
		value := node.Content[i+1]
		if value.Kind == yaml.ScalarNode {
			c.Type = value.Value
		} else if err := value.Decode(&c); err != nil {
			return err
		}
		c.Name = node.Content[i].Value
		*cs = append(*cs, c)
	}
	return nil
}

// LoadFile reads and parses a schema file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	f.Source = path
	return f, nil
}

// ParseFile parses a schema document.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	sum := blake3.Sum256(data)
	f.Checksum = hex.EncodeToString(sum[:])
	return &f, nil
}

// TableDef is a table ready for Catalog.Define.
type TableDef struct {
	Name    string
	Columns []ColumnDef
	Indexes []FileIndex
}

// Definitions converts the file into table definitions ordered so that every
// referenced table precedes the tables referencing it.
func (f *File) Definitions() ([]TableDef, error) {
	defs := make([]TableDef, 0, len(f.Tables))
	byName := make(map[string]int, len(f.Tables))

	for _, t := range f.Tables {
		if _, dup := byName[t.Name]; dup {
			return nil, dberrors.Schemaf(t.Name, "table defined twice in schema file")
		}
		def := TableDef{Name: t.Name, Indexes: t.Indexes}
		for _, c := range t.Columns {
			desc := c.Type
			if fk, ok := t.ForeignKeys[c.Name]; ok {
				desc = fmt.Sprintf("%s->%s.%s", c.Type, fk.References, fk.Column)
			}
			def.Columns = append(def.Columns, ColumnDef{
				Name:       c.Name,
				Descriptor: desc,
				NotNull:    c.Nullable != nil && !*c.Nullable,
				Unique:     c.Unique,
				PrimaryKey: c.PrimaryKey,
			})
		}
		for col := range t.ForeignKeys {
			if !t.Columns.has(col) {
				return nil, &dberrors.SchemaError{Table: t.Name, Column: col, Message: "foreign key on undeclared column"}
			}
		}
		byName[t.Name] = len(defs)
		defs = append(defs, def)
	}

	return orderDefinitions(defs, byName)
}

func (cs FileColumns) has(name string) bool {
	for _, c := range cs {
		if c.Name == name {
			return true
		}
	}
	return false
}

func orderDefinitions(defs []TableDef, byName map[string]int) ([]TableDef, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(defs))
	ordered := make([]TableDef, 0, len(defs))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return dberrors.Schemaf(defs[i].Name, "circular foreign key references")
		}
		state[i] = visiting
		for _, col := range defs[i].Columns {
			desc, err := ParseDescriptor(col.Descriptor)
			if err != nil {
				return &dberrors.SchemaError{Table: defs[i].Name, Column: col.Name, Message: err.Error()}
			}
			if desc.Reference == nil || desc.Reference.Table == defs[i].Name {
				continue
			}
			if j, ok := byName[desc.Reference.Table]; ok {
				if err := visit(j); err != nil {
					return err
				}
			}
		}
		state[i] = done
		ordered = append(ordered, defs[i])
		return nil
	}

	for i := range defs {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}
