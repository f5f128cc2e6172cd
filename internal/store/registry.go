package store

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm/schema"
)

// TableSpec declares a table and the record type stored in it.
// Model must be a pointer to a zero value of that type.
type TableSpec struct {
	Name  string
	Model any
}

// table is a declared table with its resolved column names
type table struct {
	name      string
	modelType reflect.Type
	// columns maps every accepted field name (db name, Go name, json name)
	// to the column it refers to
	columns map[string]string
}

// newModel returns a pointer to a fresh zero record
func (t *table) newModel() any {
	return reflect.New(t.modelType).Interface()
}

// column resolves a field name to its column
func (t *table) column(field string) (string, bool) {
	col, ok := t.columns[field]
	return col, ok
}

// registry holds declared tables indexed by name
type registry struct {
	tables map[string]*table
}

func newRegistry() *registry {
	return &registry{tables: make(map[string]*table)}
}

// register parses spec's model and adds it. Duplicate names are rejected.
func (r *registry) register(spec TableSpec, cache *sync.Map, namer schema.Namer) error {
	if _, exists := r.tables[spec.Name]; exists {
		return fmt.Errorf("table already registered: %s", spec.Name)
	}

	sch, err := schema.Parse(spec.Model, cache, namer)
	if err != nil {
		return fmt.Errorf("failed to parse schema for %s: %w", spec.Name, err)
	}

	columns := make(map[string]string)
	for _, field := range sch.Fields {
		if field.DBName == "" {
			continue
		}
		columns[field.DBName] = field.DBName
		columns[field.Name] = field.DBName
		if jsonName := strings.Split(field.StructField.Tag.Get("json"), ",")[0]; jsonName != "" && jsonName != "-" {
			columns[jsonName] = field.DBName
		}
	}
	if _, ok := columns["id"]; !ok {
		return fmt.Errorf("table %s has no id column", spec.Name)
	}

	r.tables[spec.Name] = &table{
		name:      spec.Name,
		modelType: sch.ModelType,
		columns:   columns,
	}
	return nil
}

func (r *registry) get(name string) (*table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// names returns the declared table names sorted for deterministic ordering
func (r *registry) names() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
