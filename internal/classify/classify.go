package classify

import (
	"fmt"
	"slices"

	"github.com/seitarof/gen-derive/internal/attrs"
	"github.com/seitarof/gen-derive/internal/schema"
	"github.com/seitarof/gen-derive/internal/typeexpr"
)

// Kind is the role a field plays in generated code.
type Kind int

const (
	Required Kind = iota
	Optional
	Repeated
	Marker
)

func (k Kind) String() string {
	switch k {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	case Marker:
		return "marker"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in plan output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classification is the derived role of one field.
type Classification struct {
	Field string
	Kind  Kind
	// Type is the declared field type.
	Type *typeexpr.Expr
	// Inner is the value type for Required and Optional, and the element
	// type for Repeated.
	Inner *typeexpr.Expr
	// Param is the referenced type parameter of a Marker.
	Param string
}

// Classifier assigns exactly one Kind to every field.
type Classifier struct {
	wrappers typeexpr.WrapperSet
}

// New returns a classifier using the given wrapper names.
func New(w typeexpr.WrapperSet) *Classifier {
	return &Classifier{wrappers: w}
}

// Classify applies, in order: marker of a bare declared parameter,
// optional, repeated, and required as the fallback.
func (c *Classifier) Classify(field schema.FieldDescriptor, params []string) Classification {
	out := Classification{Field: field.Name, Type: field.Type}
	if inner, ok := c.wrappers.MatchMarker(field.Type); ok && inner.IsBare() && slices.Contains(params, inner.Path[0]) {
		out.Kind = Marker
		out.Param = inner.Path[0]
		return out
	}
	if inner, ok := c.wrappers.MatchOptional(field.Type); ok {
		out.Kind = Optional
		out.Inner = inner
		return out
	}
	if inner, ok := c.wrappers.MatchRepeated(field.Type); ok {
		out.Kind = Repeated
		out.Inner = inner
		return out
	}
	out.Kind = Required
	out.Inner = field.Type
	return out
}

// ClassifyAll classifies every field of desc in declaration order and
// checks that repeated-element aliases only sit on repeated fields.
func (c *Classifier) ClassifyAll(desc *schema.TypeDescriptor, cfg *attrs.TypeConfig) ([]Classification, error) {
	params := desc.ParamNames()
	out := make([]Classification, 0, len(desc.Fields))
	for i, f := range desc.Fields {
		cl := c.Classify(f, params)
		if i < len(cfg.Fields) && cfg.Fields[i].HasEach && cl.Kind != Repeated {
			return nil, attrs.NewConfigError(desc.Name, f.Name, "builder(each)",
				fmt.Sprintf("alias requires a repeated field, got %s type %s", cl.Kind, f.Type),
				"declare the field as a slice, e.g. []T")
		}
		out = append(out, cl)
	}
	return out, nil
}

// Wrappers returns the wrapper names the classifier matches.
func (c *Classifier) Wrappers() typeexpr.WrapperSet {
	return c.wrappers
}
