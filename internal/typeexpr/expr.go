package typeexpr

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"

	"github.com/cockroachdb/errors"
)

// Expr is a parsed type expression.
type Expr struct {
	Kind Kind
	// Path holds the segments of a named type. Args belong to the last
	// segment only.
	Path []string
	Args []*Expr
	// Elem is the element of pointer, slice, array, map and chan shapes.
	Elem *Expr
	Key  *Expr
	Len  string
	// Params and Results hold function signatures. When Variadic is set
	// the last param is the element type of the trailing ...X.
	Params   []*Expr
	Results  []*Expr
	Variadic bool
	// Members holds the fields of a struct literal or the methods and
	// embedded elements of an interface literal.
	Members []Member
	// Raw is the channel direction prefix of a chan shape.
	Raw string
}

// Member is one entry of a struct or interface literal.
type Member struct {
	// Names holds field names, or the method name. Empty for embedded
	// fields and interface elements.
	Names []string
	// Type is the field type or the method signature (a func shape).
	Type *Expr
	// Tag is the struct tag literal as written, quotes included.
	Tag string
	// Terms holds the union terms of an interface element. Type is nil
	// when Terms is set.
	Terms []Term
}

// Term is one term of an interface union element such as ~int | string.
type Term struct {
	Tilde bool
	Type  *Expr
}

// Kind is the shape category of an Expr.
type Kind int

const (
	KindNamed Kind = iota
	KindPointer
	KindSlice
	KindArray
	KindMap
	KindChan
	KindFunc
	KindStruct
	KindInterface
)

var kindNames = [...]string{"named", "pointer", "slice", "array", "map", "chan", "func", "struct", "interface"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Named returns a named type expression.
func Named(path string, args ...*Expr) *Expr {
	return &Expr{Kind: KindNamed, Path: strings.Split(path, "."), Args: args}
}

// Parse parses a type expression written in Go syntax.
func Parse(src string) (*Expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, errors.New("empty type expression")
	}
	node, err := parser.ParseExprFrom(token.NewFileSet(), "", src, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "parse type %q", src)
	}
	return FromAST(node)
}

// MustParse is like Parse but panics on error.
func MustParse(src string) *Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// FromAST converts a syntactic Go type into an Expr. Selector chains become
// multi-segment paths, so T.Output keeps both segments.
func FromAST(node ast.Expr) (*Expr, error) {
	switch n := node.(type) {
	case *ast.ParenExpr:
		return FromAST(n.X)
	case *ast.Ident:
		return &Expr{Kind: KindNamed, Path: []string{n.Name}}, nil
	case *ast.SelectorExpr:
		base, err := FromAST(n.X)
		if err != nil {
			return nil, err
		}
		if base.Kind != KindNamed || len(base.Args) > 0 {
			return nil, errors.Newf("unsupported selector on %s", base)
		}
		base.Path = append(base.Path, n.Sel.Name)
		return base, nil
	case *ast.IndexExpr:
		return instantiate(n.X, []ast.Expr{n.Index})
	case *ast.IndexListExpr:
		return instantiate(n.X, n.Indices)
	case *ast.StarExpr:
		elem, err := FromAST(n.X)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: KindPointer, Elem: elem}, nil
	case *ast.ArrayType:
		elem, err := FromAST(n.Elt)
		if err != nil {
			return nil, err
		}
		if n.Len == nil {
			return &Expr{Kind: KindSlice, Elem: elem}, nil
		}
		return &Expr{Kind: KindArray, Elem: elem, Len: exprString(n.Len)}, nil
	case *ast.MapType:
		key, err := FromAST(n.Key)
		if err != nil {
			return nil, err
		}
		elem, err := FromAST(n.Value)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: KindMap, Key: key, Elem: elem}, nil
	case *ast.ChanType:
		elem, err := FromAST(n.Value)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: KindChan, Elem: elem, Raw: chanPrefix(n.Dir)}, nil
	case *ast.FuncType:
		return funcExpr(n)
	case *ast.StructType:
		return structExpr(n)
	case *ast.InterfaceType:
		return interfaceExpr(n)
	default:
		return nil, errors.Newf("unsupported type expression %T", node)
	}
}

func instantiate(base ast.Expr, indices []ast.Expr) (*Expr, error) {
	e, err := FromAST(base)
	if err != nil {
		return nil, err
	}
	if e.Kind != KindNamed || len(e.Args) > 0 {
		return nil, errors.Newf("cannot instantiate %s", e)
	}
	for _, idx := range indices {
		arg, err := FromAST(idx)
		if err != nil {
			return nil, err
		}
		e.Args = append(e.Args, arg)
	}
	return e, nil
}

func funcExpr(n *ast.FuncType) (*Expr, error) {
	params, variadic, err := fieldListExprs(n.Params)
	if err != nil {
		return nil, err
	}
	results, _, err := fieldListExprs(n.Results)
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: KindFunc, Params: params, Results: results, Variadic: variadic}, nil
}

// fieldListExprs flattens a parameter list. A trailing ...X contributes X
// and reports variadic.
func fieldListExprs(fl *ast.FieldList) ([]*Expr, bool, error) {
	if fl == nil {
		return nil, false, nil
	}
	var out []*Expr
	variadic := false
	for i, f := range fl.List {
		typ := f.Type
		if ell, ok := typ.(*ast.Ellipsis); ok {
			if i != len(fl.List)-1 || len(f.Names) > 1 {
				return nil, false, errors.New("can only use ... with final parameter")
			}
			typ = ell.Elt
			variadic = true
		}
		e, err := FromAST(typ)
		if err != nil {
			return nil, false, err
		}
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			out = append(out, e)
		}
	}
	return out, variadic, nil
}

func structExpr(n *ast.StructType) (*Expr, error) {
	e := &Expr{Kind: KindStruct}
	for _, f := range n.Fields.List {
		typ, err := FromAST(f.Type)
		if err != nil {
			return nil, err
		}
		m := Member{Names: identNames(f.Names), Type: typ}
		if f.Tag != nil {
			m.Tag = f.Tag.Value
		}
		e.Members = append(e.Members, m)
	}
	return e, nil
}

func interfaceExpr(n *ast.InterfaceType) (*Expr, error) {
	e := &Expr{Kind: KindInterface}
	for _, f := range n.Methods.List {
		if len(f.Names) > 0 {
			sig, err := FromAST(f.Type)
			if err != nil {
				return nil, err
			}
			e.Members = append(e.Members, Member{Names: identNames(f.Names), Type: sig})
			continue
		}
		terms, err := unionTerms(f.Type, nil)
		if err != nil {
			return nil, err
		}
		e.Members = append(e.Members, Member{Terms: terms})
	}
	return e, nil
}

func unionTerms(node ast.Expr, out []Term) ([]Term, error) {
	switch n := node.(type) {
	case *ast.ParenExpr:
		return unionTerms(n.X, out)
	case *ast.BinaryExpr:
		if n.Op != token.OR {
			return nil, errors.Newf("unsupported interface element operator %s", n.Op)
		}
		left, err := unionTerms(n.X, out)
		if err != nil {
			return nil, err
		}
		return unionTerms(n.Y, left)
	case *ast.UnaryExpr:
		if n.Op != token.TILDE {
			return nil, errors.Newf("unsupported interface element operator %s", n.Op)
		}
		t, err := FromAST(n.X)
		if err != nil {
			return nil, err
		}
		return append(out, Term{Tilde: true, Type: t}), nil
	default:
		t, err := FromAST(n)
		if err != nil {
			return nil, err
		}
		return append(out, Term{Type: t}), nil
	}
}

func identNames(idents []*ast.Ident) []string {
	if len(idents) == 0 {
		return nil
	}
	out := make([]string, 0, len(idents))
	for _, id := range idents {
		out = append(out, id.Name)
	}
	return out
}

func chanPrefix(dir ast.ChanDir) string {
	switch dir {
	case ast.SEND:
		return "chan<- "
	case ast.RECV:
		return "<-chan "
	default:
		return "chan "
	}
}

// IsBare reports whether e is a single-segment name without arguments.
func (e *Expr) IsBare() bool {
	return e != nil && e.Kind == KindNamed && len(e.Path) == 1 && len(e.Args) == 0
}

// Head returns the first path segment of a named type.
func (e *Expr) Head() string {
	if e == nil || e.Kind != KindNamed || len(e.Path) == 0 {
		return ""
	}
	return e.Path[0]
}

// Last returns the last path segment of a named type.
func (e *Expr) Last() string {
	if e == nil || e.Kind != KindNamed || len(e.Path) == 0 {
		return ""
	}
	return e.Path[len(e.Path)-1]
}

// String renders e in canonical Go syntax.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	switch e.Kind {
	case KindNamed:
		b.WriteString(strings.Join(e.Path, "."))
		if len(e.Args) > 0 {
			b.WriteByte('[')
			writeList(b, e.Args)
			b.WriteByte(']')
		}
	case KindPointer:
		b.WriteByte('*')
		e.Elem.write(b)
	case KindSlice:
		b.WriteString("[]")
		e.Elem.write(b)
	case KindArray:
		b.WriteString("[" + e.Len + "]")
		e.Elem.write(b)
	case KindMap:
		b.WriteString("map[")
		e.Key.write(b)
		b.WriteByte(']')
		e.Elem.write(b)
	case KindChan:
		b.WriteString(e.Raw)
		// chan <-chan T would parse as chan<- chan T.
		if e.Raw == chanPrefix(ast.SEND|ast.RECV) && e.Elem.Kind == KindChan && e.Elem.Raw == chanPrefix(ast.RECV) {
			b.WriteByte('(')
			e.Elem.write(b)
			b.WriteByte(')')
			return
		}
		e.Elem.write(b)
	case KindFunc:
		b.WriteString("func")
		e.writeSignature(b)
	case KindStruct:
		b.WriteString("struct{")
		for i, m := range e.Members {
			b.WriteString(memberSep(i))
			if len(m.Names) > 0 {
				b.WriteString(strings.Join(m.Names, ", "))
				b.WriteByte(' ')
			}
			m.Type.write(b)
			if m.Tag != "" {
				b.WriteByte(' ')
				b.WriteString(m.Tag)
			}
		}
		writeClose(b, len(e.Members))
	case KindInterface:
		b.WriteString("interface{")
		for i, m := range e.Members {
			b.WriteString(memberSep(i))
			if len(m.Names) > 0 {
				b.WriteString(m.Names[0])
				m.Type.writeSignature(b)
				continue
			}
			for j, t := range m.Terms {
				if j > 0 {
					b.WriteString(" | ")
				}
				if t.Tilde {
					b.WriteByte('~')
				}
				t.Type.write(b)
			}
		}
		writeClose(b, len(e.Members))
	}
}

func (e *Expr) writeSignature(b *strings.Builder) {
	b.WriteByte('(')
	for i, p := range e.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if e.Variadic && i == len(e.Params)-1 {
			b.WriteString("...")
		}
		p.write(b)
	}
	b.WriteByte(')')
	switch len(e.Results) {
	case 0:
	case 1:
		b.WriteByte(' ')
		e.Results[0].write(b)
	default:
		b.WriteString(" (")
		writeList(b, e.Results)
		b.WriteByte(')')
	}
}

func memberSep(i int) string {
	if i == 0 {
		return " "
	}
	return "; "
}

func writeClose(b *strings.Builder, n int) {
	if n > 0 {
		b.WriteByte(' ')
	}
	b.WriteByte('}')
}

func writeList(b *strings.Builder, list []*Expr) {
	for i, e := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		e.write(b)
	}
}

// Clone returns a deep copy of e.
func (e *Expr) Clone() *Expr {
	if e == nil {
		return nil
	}
	out := *e
	out.Path = append([]string(nil), e.Path...)
	out.Args = cloneList(e.Args)
	out.Params = cloneList(e.Params)
	out.Results = cloneList(e.Results)
	out.Elem = e.Elem.Clone()
	out.Key = e.Key.Clone()
	if e.Members != nil {
		out.Members = make([]Member, len(e.Members))
		for i, m := range e.Members {
			out.Members[i] = Member{Names: append([]string(nil), m.Names...), Type: m.Type.Clone(), Tag: m.Tag}
			for _, t := range m.Terms {
				out.Members[i].Terms = append(out.Members[i].Terms, Term{Tilde: t.Tilde, Type: t.Type.Clone()})
			}
		}
	}
	return &out
}

func cloneList(list []*Expr) []*Expr {
	if list == nil {
		return nil
	}
	out := make([]*Expr, len(list))
	for i, e := range list {
		out[i] = e.Clone()
	}
	return out
}

func exprString(n ast.Expr) string {
	return types.ExprString(n)
}
