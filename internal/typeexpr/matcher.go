package typeexpr

import "slices"

// WrapperSet lists the named wrappers recognized for each shape. Named
// wrappers are matched on the last path segment, so both Optional[T] and
// opt.Optional[T] qualify.
type WrapperSet struct {
	Marker   []string `yaml:"marker"`
	Optional []string `yaml:"optional"`
	Repeated []string `yaml:"repeated"`
}

// DefaultWrappers returns the built-in wrapper names.
func DefaultWrappers() WrapperSet {
	return WrapperSet{
		Marker:   []string{"Marker", "PhantomData"},
		Optional: []string{"Optional", "Option"},
		Repeated: []string{"Repeated", "Vec"},
	}
}

// MatchWrapper returns the single generic argument of e when its last path
// segment is name and it carries exactly one argument.
func MatchWrapper(e *Expr, name string) (*Expr, bool) {
	if e == nil || e.Kind != KindNamed || len(e.Path) == 0 {
		return nil, false
	}
	if e.Last() != name || len(e.Args) != 1 {
		return nil, false
	}
	return e.Args[0], true
}

func matchAny(e *Expr, names []string) (*Expr, bool) {
	for _, name := range names {
		if inner, ok := MatchWrapper(e, name); ok {
			return inner, true
		}
	}
	return nil, false
}

// MatchMarker matches Marker-style named wrappers and zero-length arrays.
func (w WrapperSet) MatchMarker(e *Expr) (*Expr, bool) {
	if e != nil && e.Kind == KindArray && e.Len == "0" {
		return e.Elem, true
	}
	return matchAny(e, w.Marker)
}

// MatchOptional matches Optional-style named wrappers and pointers.
func (w WrapperSet) MatchOptional(e *Expr) (*Expr, bool) {
	if e != nil && e.Kind == KindPointer {
		return e.Elem, true
	}
	return matchAny(e, w.Optional)
}

// MatchRepeated matches Repeated-style named wrappers and slices.
func (w WrapperSet) MatchRepeated(e *Expr) (*Expr, bool) {
	if e != nil && e.Kind == KindSlice {
		return e.Elem, true
	}
	return matchAny(e, w.Repeated)
}

// IsMarkerName reports whether name is a configured marker wrapper.
func (w WrapperSet) IsMarkerName(name string) bool {
	return slices.Contains(w.Marker, name)
}

// CollectAssociated walks e and returns every multi-segment path rooted at
// one of params, deduplicated, in discovery order. Nested arguments are
// visited before the expression that holds them.
func CollectAssociated(e *Expr, params []string) []*Expr {
	var out []*Expr
	seen := map[string]bool{}
	collectAssociated(e, params, seen, &out)
	return out
}

// CollectAssociatedInto is CollectAssociated with a caller-owned result,
// used to gather references across several fields.
func CollectAssociatedInto(e *Expr, params []string, seen map[string]bool, out *[]*Expr) {
	collectAssociated(e, params, seen, out)
}

func collectAssociated(e *Expr, params []string, seen map[string]bool, out *[]*Expr) {
	if e == nil {
		return
	}
	for _, child := range children(e) {
		collectAssociated(child, params, seen, out)
	}
	if e.Kind != KindNamed || len(e.Path) < 2 {
		return
	}
	if !slices.Contains(params, e.Path[0]) {
		return
	}
	key := e.String()
	if seen[key] {
		return
	}
	seen[key] = true
	*out = append(*out, e)
}

// Mentions reports whether e refers to the bare type parameter param
// outside any marker context. Associated paths such as param.Output are
// not bare mentions.
func (w WrapperSet) Mentions(e *Expr, param string) bool {
	if e == nil {
		return false
	}
	if _, ok := w.MatchMarker(e); ok {
		return false
	}
	if e.Kind == KindNamed && len(e.Path) == 1 && e.Path[0] == param {
		return true
	}
	for _, child := range children(e) {
		if w.Mentions(child, param) {
			return true
		}
	}
	return false
}

func children(e *Expr) []*Expr {
	switch e.Kind {
	case KindNamed:
		return e.Args
	case KindPointer, KindSlice, KindArray, KindChan:
		return []*Expr{e.Elem}
	case KindMap:
		return []*Expr{e.Key, e.Elem}
	case KindFunc:
		out := make([]*Expr, 0, len(e.Params)+len(e.Results))
		out = append(out, e.Params...)
		return append(out, e.Results...)
	case KindStruct, KindInterface:
		var out []*Expr
		for _, m := range e.Members {
			if m.Type != nil {
				out = append(out, m.Type)
			}
			for _, t := range m.Terms {
				out = append(out, t.Type)
			}
		}
		return out
	default:
		return nil
	}
}
