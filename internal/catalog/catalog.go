package catalog

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/containerd/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"

	"github.com/roach88/sieve/internal/ir"
)

const (
	queryTag  = "query"
	columnTag = "db"
)

// Property describes one queryable field of a record type.
// Properties are immutable once discovered.
type Property struct {
	Name   string       // canonical name (field name or query tag)
	Column string       // storage column (db tag or lower-cased name)
	Kind   ir.Kind      // declared kind
	Type   reflect.Type // declared Go type
	index  []int
}

// Value returns the canonical value of the property for record.
// record must be a value (or pointer to a value) of the entry's type.
// ok is false when the record is a nil pointer or the field sits behind a
// nil embedded pointer.
func (p Property) Value(record reflect.Value) (v any, ok bool) {
	for record.Kind() == reflect.Pointer || record.Kind() == reflect.Interface {
		if record.IsNil() {
			return nil, false
		}
		record = record.Elem()
	}
	if !record.IsValid() {
		return nil, false
	}
	field, err := record.FieldByIndexErr(p.index)
	if err != nil {
		return nil, false
	}
	return p.Kind.Canonical(field), true
}

// Entry holds the ordered properties of one record type.
type Entry struct {
	Type       reflect.Type
	Properties []Property
	byName     map[string]int
}

// Lookup resolves a property by case-insensitive exact name.
func (e *Entry) Lookup(name string) (Property, bool) {
	i, ok := e.byName[foldName(name)]
	if !ok {
		return Property{}, false
	}
	return e.Properties[i], true
}

// Find resolves a property by name or returns an ir.ErrCodeUnknownProperty error.
func (e *Entry) Find(name string) (Property, error) {
	p, ok := e.Lookup(name)
	if !ok {
		return Property{}, ir.NewUnknownPropertyError(name)
	}
	return p, nil
}

// Names returns the canonical property names in declaration order.
func (e *Entry) Names() []string {
	names := make([]string, len(e.Properties))
	for i, p := range e.Properties {
		names[i] = p.Name
	}
	return names
}

// Catalog caches property entries per record type.
//
// Thread-safety: Catalog is safe for concurrent use. The zero value is not
// usable; create one with New.
type Catalog struct {
	entries     sync.Map // reflect.Type -> *Entry
	group       singleflight.Group
	discoveries atomic.Int64
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// Entry returns the entry for t, discovering it on first use.
// Pointer types resolve to their element type.
func (c *Catalog) Entry(t reflect.Type) (*Entry, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record type %v is not a struct", t)
	}

	if e, ok := c.entries.Load(t); ok {
		return e.(*Entry), nil
	}

	v, err, _ := c.group.Do(t.PkgPath()+"."+t.String(), func() (any, error) {
		return c.publish(t)
	})
	if err != nil {
		return nil, err
	}
	// Distinct function-local types can share a name; never hand back
	// another type's entry.
	if e := v.(*Entry); e.Type == t {
		return e, nil
	}
	return c.publish(t)
}

// publish discovers t and stores it unless another caller already did.
func (c *Catalog) publish(t reflect.Type) (*Entry, error) {
	if e, ok := c.entries.Load(t); ok {
		return e.(*Entry), nil
	}
	e, err := discover(t)
	if err != nil {
		return nil, err
	}
	actual, loaded := c.entries.LoadOrStore(t, e)
	if !loaded {
		c.discoveries.Add(1)
		log.L.WithField("type", t.String()).
			WithField("properties", len(e.Properties)).
			Debug("discovered queryable properties")
	}
	return actual.(*Entry), nil
}

// Properties returns the ordered properties of t.
func (c *Catalog) Properties(t reflect.Type) ([]Property, error) {
	e, err := c.Entry(t)
	if err != nil {
		return nil, err
	}
	return e.Properties, nil
}

// Find resolves name against the properties of t.
func (c *Catalog) Find(t reflect.Type, name string) (Property, error) {
	e, err := c.Entry(t)
	if err != nil {
		return Property{}, err
	}
	return e.Find(name)
}

// Discoveries returns how many entries the catalog has built.
func (c *Catalog) Discoveries() int64 {
	return c.discoveries.Load()
}

// For returns the entry for the record type T.
func For[T any](c *Catalog) (*Entry, error) {
	return c.Entry(reflect.TypeFor[T]())
}

// discover reflects over the visible fields of t.
func discover(t reflect.Type) (*Entry, error) {
	e := &Entry{
		Type:   t,
		byName: make(map[string]int),
	}

	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name, ok := propertyName(f)
		if !ok {
			continue
		}

		key := foldName(name)
		if _, dup := e.byName[key]; dup {
			return nil, fmt.Errorf("record type %v: duplicate property name %q", t, name)
		}

		e.byName[key] = len(e.Properties)
		e.Properties = append(e.Properties, Property{
			Name:   name,
			Column: columnName(f, name),
			Kind:   ir.KindOf(f.Type),
			Type:   f.Type,
			index:  f.Index,
		})
	}

	return e, nil
}

// propertyName applies the query tag. ok is false for non-queryable and
// non-persisted (db:"-") fields.
func propertyName(f reflect.StructField) (string, bool) {
	if col, _, _ := strings.Cut(f.Tag.Get(columnTag), ","); col == "-" {
		return "", false
	}
	tag, _, _ := strings.Cut(f.Tag.Get(queryTag), ",")
	switch tag {
	case "-":
		return "", false
	case "":
		return f.Name, true
	default:
		return tag, true
	}
}

func columnName(f reflect.StructField, name string) string {
	col, _, _ := strings.Cut(f.Tag.Get(columnTag), ",")
	if col == "" {
		return strings.ToLower(name)
	}
	return col
}

// foldName produces the case-insensitive lookup key.
// cases.Caser is stateful, so a fresh one is used per call.
func foldName(name string) string {
	return cases.Fold().String(name)
}
