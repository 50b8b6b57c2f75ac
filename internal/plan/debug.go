package plan

import (
	"github.com/seitarof/gen-derive/internal/attrs"
	"github.com/seitarof/gen-derive/internal/bounds"
	"github.com/seitarof/gen-derive/internal/classify"
	"github.com/seitarof/gen-derive/internal/schema"
	"github.com/seitarof/gen-derive/internal/typeexpr"
)

// Directive selects how a field is rendered.
type Directive int

const (
	// DirectiveDefault renders the value with the capability's standard
	// representation.
	DirectiveDefault Directive = iota
	// DirectiveTemplate applies the field's format override to the value.
	DirectiveTemplate
)

func (d Directive) String() string {
	if d == DirectiveTemplate {
		return "template"
	}
	return "default"
}

// MarshalText renders the directive by name in plan output.
func (d Directive) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DebugField is the rendering plan of one field.
type DebugField struct {
	Name      string         `yaml:"name"`
	Kind      classify.Kind  `yaml:"kind"`
	Type      *typeexpr.Expr `yaml:"-"`
	TypeStr   string         `yaml:"type"`
	Directive Directive      `yaml:"directive"`
	Template  string         `yaml:"template,omitempty"`
}

// DebugPlan describes a debug formatter for one type. It applies only to
// instantiations satisfying Bounds.
type DebugPlan struct {
	TypeName string                `yaml:"type"`
	Generics []schema.GenericParam `yaml:"generics,omitempty"`
	Bounds   bounds.Bounds         `yaml:"bounds"`
	Fields   []DebugField          `yaml:"fields"`
}

// PlanDebug builds the formatter plan. Marker fields are rendered like any
// other field.
func PlanDebug(desc *schema.TypeDescriptor, classes []classify.Classification, b bounds.Bounds, cfg *attrs.TypeConfig) *DebugPlan {
	p := &DebugPlan{
		TypeName: desc.Name,
		Generics: desc.Generics,
		Bounds:   b,
		Fields:   make([]DebugField, 0, len(classes)),
	}
	for i, cl := range classes {
		df := DebugField{Name: cl.Field, Kind: cl.Kind, Type: cl.Type, TypeStr: cl.Type.String()}
		if i < len(cfg.Fields) && cfg.Fields[i].HasFormat {
			df.Directive = DirectiveTemplate
			df.Template = cfg.Fields[i].Format
		}
		p.Fields = append(p.Fields, df)
	}
	return p
}
