package schema

import (
	"github.com/cockroachdb/errors"

	"github.com/seitarof/gen-derive/internal/typeexpr"
)

// TypeDescriptor is the structural description of one user type.
type TypeDescriptor struct {
	Name       string
	PkgPath    string
	PkgName    string
	Generics   []GenericParam
	Fields     []FieldDescriptor
	Attributes []Attribute
}

// GenericParam is a declared type parameter. Bounds is the declared
// constraint text, passed through unchanged.
type GenericParam struct {
	Name   string
	Bounds string
}

// FieldDescriptor is one struct field in declaration order.
type FieldDescriptor struct {
	Name       string
	Type       *typeexpr.Expr
	Attributes []Attribute
}

// Attribute is one namespaced key/value annotation. Origin locates the
// annotation for diagnostics and may be empty.
type Attribute struct {
	Namespace string
	Key       string
	Value     string
	Origin    string
}

// ParamNames returns generic parameter identifiers in declaration order.
func (d *TypeDescriptor) ParamNames() []string {
	names := make([]string, 0, len(d.Generics))
	for _, g := range d.Generics {
		names = append(names, g.Name)
	}
	return names
}

// IsGeneric reports whether the type declares type parameters.
func (d *TypeDescriptor) IsGeneric() bool {
	return len(d.Generics) > 0
}

// Validate checks the identity invariants of the descriptor.
func (d *TypeDescriptor) Validate() error {
	if d.Name == "" {
		return errors.New("type descriptor has no name")
	}
	params := make(map[string]bool, len(d.Generics))
	for _, g := range d.Generics {
		if g.Name == "" {
			return errors.Newf("type %s: generic parameter without name", d.Name)
		}
		if params[g.Name] {
			return errors.Newf("type %s: duplicate generic parameter %q", d.Name, g.Name)
		}
		params[g.Name] = true
	}
	fields := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Type == nil {
			return errors.Newf("type %s: field %q has no type", d.Name, f.Name)
		}
		if f.Name == "_" {
			continue
		}
		if fields[f.Name] {
			return errors.Newf("type %s: duplicate field %q", d.Name, f.Name)
		}
		fields[f.Name] = true
	}
	return nil
}
