package parser

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strconv"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"

	"github.com/seitarof/gen-derive/internal/attrs"
	"github.com/seitarof/gen-derive/internal/schema"
	"github.com/seitarof/gen-derive/internal/typeexpr"
)

// Parser extracts type descriptors from Go packages.
type Parser interface {
	Parse(pkgPath string, typeName string) (*schema.TypeDescriptor, error)
	ParseAll(pkgPath string) ([]*schema.TypeDescriptor, error)
}

type parserImpl struct {
	cache map[string]*packages.Package
}

// New returns default parser.
func New() Parser {
	return &parserImpl{cache: map[string]*packages.Package{}}
}

// Parse returns the descriptor of one struct type, with or without
// directives.
func (p *parserImpl) Parse(pkgPath string, typeName string) (*schema.TypeDescriptor, error) {
	pkg, err := p.loadPackage(pkgPath)
	if err != nil {
		return nil, err
	}

	var found *schema.TypeDescriptor
	err = walkTypeSpecs(pkg, func(spec *ast.TypeSpec, doc *ast.CommentGroup) error {
		if found != nil || spec.Name.Name != typeName {
			return nil
		}
		st, ok := spec.Type.(*ast.StructType)
		if !ok {
			return errors.Newf("%q in package %q is not a struct type", typeName, pkgPath)
		}
		desc, err := describe(pkg, spec, st, doc)
		if err != nil {
			return err
		}
		found = desc
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.Newf("struct %q not found in package %q", typeName, pkgPath)
	}
	return found, nil
}

// ParseAll returns every struct type carrying a derive directive, in
// source order.
func (p *parserImpl) ParseAll(pkgPath string) ([]*schema.TypeDescriptor, error) {
	pkg, err := p.loadPackage(pkgPath)
	if err != nil {
		return nil, err
	}

	var out []*schema.TypeDescriptor
	err = walkTypeSpecs(pkg, func(spec *ast.TypeSpec, doc *ast.CommentGroup) error {
		st, ok := spec.Type.(*ast.StructType)
		if !ok || !hasDirective(doc) {
			return nil
		}
		desc, err := describe(pkg, spec, st, doc)
		if err != nil {
			return err
		}
		out = append(out, desc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parserImpl) loadPackage(pkgPath string) (*packages.Package, error) {
	if cached, ok := p.cache[pkgPath]; ok {
		return cached, nil
	}

	// Syntax only: associated-type paths such as T.Output do not
	// type-check, and the analysis never needs type information.
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedSyntax |
			packages.NeedModule,
		Fset: token.NewFileSet(),
	}

	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		return nil, errors.Wrapf(err, "load package %q", pkgPath)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, errors.Newf("package %q has errors", pkgPath)
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("package %q not found", pkgPath)
	}
	p.cache[pkgPath] = pkgs[0]
	return pkgs[0], nil
}

func walkTypeSpecs(pkg *packages.Package, fn func(*ast.TypeSpec, *ast.CommentGroup) error) error {
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, s := range gd.Specs {
				spec := s.(*ast.TypeSpec)
				doc := spec.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				if err := fn(spec, doc); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if _, ok, _ := attrs.ParseDirective(c.Text, ""); ok {
			return true
		}
	}
	return false
}

func describe(pkg *packages.Package, spec *ast.TypeSpec, st *ast.StructType, doc *ast.CommentGroup) (*schema.TypeDescriptor, error) {
	desc := &schema.TypeDescriptor{
		Name:    spec.Name.Name,
		PkgPath: pkg.PkgPath,
		PkgName: pkg.Name,
	}

	if spec.TypeParams != nil {
		for _, tp := range spec.TypeParams.List {
			bound := types.ExprString(tp.Type)
			for _, name := range tp.Names {
				desc.Generics = append(desc.Generics, schema.GenericParam{Name: name.Name, Bounds: bound})
			}
		}
	}

	if doc != nil {
		for _, c := range doc.List {
			got, ok, err := attrs.ParseDirective(c.Text, position(pkg, c.Pos()))
			if err != nil {
				return nil, err
			}
			if ok {
				desc.Attributes = append(desc.Attributes, got...)
			}
		}
	}

	for _, field := range st.Fields.List {
		te, err := typeexpr.FromAST(field.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: type %s", position(pkg, field.Pos()), desc.Name)
		}

		names := fieldNames(field, te)
		var fieldAttrs []schema.Attribute
		if field.Tag != nil {
			tag, err := strconv.Unquote(field.Tag.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: struct tag", position(pkg, field.Tag.Pos()))
			}
			fieldAttrs, err = attrs.ParseTag(tag, position(pkg, field.Tag.Pos()))
			if err != nil {
				return nil, err
			}
		}
		for _, name := range names {
			desc.Fields = append(desc.Fields, schema.FieldDescriptor{
				Name:       name,
				Type:       te.Clone(),
				Attributes: fieldAttrs,
			})
		}
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// fieldNames returns declared names, or the type name of an embedded field.
func fieldNames(field *ast.Field, te *typeexpr.Expr) []string {
	if len(field.Names) == 0 {
		base := te
		if base.Kind == typeexpr.KindPointer {
			base = base.Elem
		}
		return []string{base.Last()}
	}
	names := make([]string, 0, len(field.Names))
	for _, n := range field.Names {
		names = append(names, n.Name)
	}
	return names
}

func position(pkg *packages.Package, pos token.Pos) string {
	if pkg.Fset == nil || !pos.IsValid() {
		return ""
	}
	p := pkg.Fset.Position(pos)
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}
