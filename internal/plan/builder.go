package plan

import (
	"github.com/seitarof/gen-derive/internal/attrs"
	"github.com/seitarof/gen-derive/internal/classify"
	"github.com/seitarof/gen-derive/internal/schema"
	"github.com/seitarof/gen-derive/internal/typeexpr"
)

// Storage is the initial state of a builder slot.
type Storage int

const (
	// StorageAbsent starts empty and records presence once set.
	StorageAbsent Storage = iota
	// StorageEmptySeq starts as an empty sequence.
	StorageEmptySeq
	// StorageZero holds the zero value and is never set.
	StorageZero
)

func (s Storage) String() string {
	switch s {
	case StorageAbsent:
		return "absent"
	case StorageEmptySeq:
		return "empty-seq"
	default:
		return "zero"
	}
}

// MarshalText renders the storage by name in plan output.
func (s Storage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SetterShape describes what a setter does to its slot.
type SetterShape int

const (
	// SetterAssign stores one value and marks the slot present.
	SetterAssign SetterShape = iota
	// SetterBulk replaces the whole sequence.
	SetterBulk
	// SetterAppend appends one element and keeps prior contents.
	SetterAppend
)

func (s SetterShape) String() string {
	switch s {
	case SetterAssign:
		return "assign"
	case SetterBulk:
		return "bulk"
	default:
		return "append"
	}
}

// MarshalText renders the shape by name in plan output.
func (s SetterShape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Setter is one generated builder method.
type Setter struct {
	Name  string         `yaml:"name"`
	Shape SetterShape    `yaml:"shape"`
	Param *typeexpr.Expr `yaml:"-"`
	// ParamType is Param rendered for plan output.
	ParamType string `yaml:"param"`
}

// BuilderField is the plan for one field of the target type.
type BuilderField struct {
	Name    string         `yaml:"name"`
	Kind    classify.Kind  `yaml:"kind"`
	Type    *typeexpr.Expr `yaml:"-"`
	Inner   *typeexpr.Expr `yaml:"-"`
	TypeStr string         `yaml:"type"`
	Storage Storage        `yaml:"storage"`
	Setters []Setter       `yaml:"setters,omitempty"`
	// Missing is the finalization error message of a required field.
	Missing string `yaml:"missing,omitempty"`
}

// BuilderPlan describes a staged builder for one type.
type BuilderPlan struct {
	TypeName    string                `yaml:"type"`
	BuilderName string                `yaml:"builder"`
	Generics    []schema.GenericParam `yaml:"generics,omitempty"`
	Fields      []BuilderField        `yaml:"fields"`
	// Checks lists required fields verified at finalization, in
	// declaration order. Every missing one is reported.
	Checks []string `yaml:"checks,omitempty"`
}

// MissingFieldMessage is the finalization error for an unset field.
func MissingFieldMessage(field string) string {
	return "missing field " + field
}

// PlanBuilder turns field classifications into a builder plan.
func PlanBuilder(desc *schema.TypeDescriptor, classes []classify.Classification, cfg *attrs.TypeConfig) *BuilderPlan {
	p := &BuilderPlan{
		TypeName:    desc.Name,
		BuilderName: desc.Name + "Builder",
		Generics:    desc.Generics,
		Fields:      make([]BuilderField, 0, len(classes)),
	}
	for i, cl := range classes {
		var fc attrs.FieldConfig
		if i < len(cfg.Fields) {
			fc = cfg.Fields[i]
		}
		bf := BuilderField{
			Name:    cl.Field,
			Kind:    cl.Kind,
			Type:    cl.Type,
			Inner:   cl.Inner,
			TypeStr: cl.Type.String(),
		}
		if cl.Field == "_" {
			// Blank fields cannot be addressed; they keep their zero value.
			bf.Storage = StorageZero
			p.Fields = append(p.Fields, bf)
			continue
		}
		switch cl.Kind {
		case classify.Required:
			bf.Storage = StorageAbsent
			bf.Setters = []Setter{newSetter(SetterName(cl.Field), SetterAssign, cl.Inner)}
			bf.Missing = MissingFieldMessage(cl.Field)
			p.Checks = append(p.Checks, cl.Field)
		case classify.Optional:
			bf.Storage = StorageAbsent
			bf.Setters = []Setter{newSetter(SetterName(cl.Field), SetterAssign, cl.Inner)}
		case classify.Repeated:
			bf.Storage = StorageEmptySeq
			bf.Setters = []Setter{newSetter(SetterName(cl.Field), SetterBulk, cl.Type)}
			if fc.HasEach && SetterName(fc.Each) != SetterName(cl.Field) {
				bf.Setters = append(bf.Setters, newSetter(SetterName(fc.Each), SetterAppend, cl.Inner))
			}
		case classify.Marker:
			bf.Storage = StorageZero
		}
		p.Fields = append(p.Fields, bf)
	}
	return p
}

func newSetter(name string, shape SetterShape, param *typeexpr.Expr) Setter {
	return Setter{Name: name, Shape: shape, Param: param, ParamType: param.String()}
}

// FinalizerName is the builder method that assembles the value.
const FinalizerName = "Build"

// Conflicts returns setter names generated more than once, which happens
// when an alias collides with another field's setter, and setters named
// like the finalizer.
func (p *BuilderPlan) Conflicts() []string {
	seen := map[string]bool{FinalizerName: true}
	var out []string
	for _, f := range p.Fields {
		for _, s := range f.Setters {
			if seen[s.Name] {
				out = append(out, s.Name)
			}
			seen[s.Name] = true
		}
	}
	return out
}
