package bounds

import (
	"strings"

	"github.com/seitarof/gen-derive/internal/attrs"
	"github.com/seitarof/gen-derive/internal/classify"
	"github.com/seitarof/gen-derive/internal/schema"
	"github.com/seitarof/gen-derive/internal/typeexpr"
)

// DefaultCapability is the formatting capability required by debug output.
const DefaultCapability = "fmt.Stringer"

// Obligation requires Subject to satisfy Capability. Param is set when the
// subject is a bare type parameter.
type Obligation struct {
	Param      string         `yaml:"param,omitempty"`
	Subject    *typeexpr.Expr `yaml:"-"`
	Capability string         `yaml:"capability"`
}

// Associated reports whether the obligation targets an associated type.
func (o Obligation) Associated() bool {
	return o.Param == ""
}

// SubjectString renders the constrained expression.
func (o Obligation) SubjectString() string {
	if o.Param != "" {
		return o.Param
	}
	return o.Subject.String()
}

// MarshalYAML renders the subject as text.
func (o Obligation) MarshalYAML() (any, error) {
	return struct {
		Subject    string `yaml:"subject"`
		Associated bool   `yaml:"associated,omitempty"`
		Capability string `yaml:"capability"`
	}{o.SubjectString(), o.Associated(), o.Capability}, nil
}

// Bounds is the constraint set attached to a debug implementation.
type Bounds struct {
	// Override is the author-supplied clause. When Overridden is set no
	// inference ran and Obligations is empty.
	Override    string       `yaml:"override,omitempty"`
	Overridden  bool         `yaml:"overridden"`
	Obligations []Obligation `yaml:"obligations"`
}

// ForParam reports whether param carries an obligation.
func (b Bounds) ForParam(param string) bool {
	for _, o := range b.Obligations {
		if o.Param == param {
			return true
		}
	}
	return false
}

// Associated returns the obligations on associated types.
func (b Bounds) Associated() []Obligation {
	var out []Obligation
	for _, o := range b.Obligations {
		if o.Associated() {
			out = append(out, o)
		}
	}
	return out
}

// Clause renders the constraint set. An override is returned verbatim.
func (b Bounds) Clause() string {
	if b.Overridden {
		return b.Override
	}
	parts := make([]string, 0, len(b.Obligations))
	for _, o := range b.Obligations {
		parts = append(parts, o.SubjectString()+": "+o.Capability)
	}
	return strings.Join(parts, ", ")
}

// Engine infers the minimal obligations for formatting a type.
type Engine struct {
	wrappers   typeexpr.WrapperSet
	capability string
}

// NewEngine returns an engine requiring capability. An empty capability
// selects DefaultCapability.
func NewEngine(w typeexpr.WrapperSet, capability string) *Engine {
	if capability == "" {
		capability = DefaultCapability
	}
	return &Engine{wrappers: w, capability: capability}
}

// Infer computes the obligations of desc. Parameters come first in
// declaration order, then associated types in discovery order.
func (e *Engine) Infer(desc *schema.TypeDescriptor, classes []classify.Classification, cfg *attrs.TypeConfig) Bounds {
	if cfg != nil && cfg.HasBound {
		return Bounds{Override: cfg.Bound, Overridden: true}
	}

	var out Bounds
	for _, g := range desc.Generics {
		if e.requires(g.Name, classes) {
			out.Obligations = append(out.Obligations, Obligation{Param: g.Name, Capability: e.capability})
		}
	}

	params := desc.ParamNames()
	seen := map[string]bool{}
	var assoc []*typeexpr.Expr
	for _, cl := range classes {
		typeexpr.CollectAssociatedInto(cl.Type, params, seen, &assoc)
	}
	for _, a := range assoc {
		out.Obligations = append(out.Obligations, Obligation{Subject: a, Capability: e.capability})
	}
	return out
}

// requires reports whether some non-marker field mentions param directly.
func (e *Engine) requires(param string, classes []classify.Classification) bool {
	for _, cl := range classes {
		if cl.Kind == classify.Marker {
			continue
		}
		if e.wrappers.Mentions(cl.Type, param) {
			return true
		}
	}
	return false
}

// Capability returns the capability the engine requires.
func (e *Engine) Capability() string {
	return e.capability
}
