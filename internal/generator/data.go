package generator

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/seitarof/gen-derive/internal/analysis"
	"github.com/seitarof/gen-derive/internal/bounds"
	"github.com/seitarof/gen-derive/internal/classify"
	"github.com/seitarof/gen-derive/internal/plan"
	"github.com/seitarof/gen-derive/internal/schema"
	"github.com/seitarof/gen-derive/internal/typeexpr"
)

type templateData struct {
	Package  string
	Builders []builderData
	Debugs   []debugData
}

type builderData struct {
	TypeName    string
	BuilderName string
	TypeParams  string
	TypeArgs    string
	Slots       []slotData
	Setters     []setterData
	Checks      []checkData
	Assigns     []string
}

type slotData struct {
	Name string
	Type string
	Init string
}

type setterData struct {
	Field  string
	Method string
	Param  string
	Body   string
}

type checkData struct {
	Slot    string
	Message string
}

type debugData struct {
	TypeName   string
	FuncName   string
	TypeParams string
	TypeArgs   string
	Clause     string
	Parts      []string
}

func buildTemplateData(results []*analysis.Result, capability string) (templateData, error) {
	var data templateData
	for _, res := range results {
		if res == nil || res.Type == nil {
			continue
		}
		if data.Package == "" {
			data.Package = res.Type.PkgName
		}
		if res.Builder != nil {
			bd, err := builderTemplateData(res.Builder)
			if err != nil {
				return data, errors.Wrapf(err, "builder for %s", res.Name)
			}
			data.Builders = append(data.Builders, bd)
		}
		if res.Debug != nil {
			dd, err := debugTemplateData(res.Debug, capability)
			if err != nil {
				return data, errors.Wrapf(err, "debug for %s", res.Name)
			}
			data.Debugs = append(data.Debugs, dd)
		}
	}
	if data.Package == "" {
		return data, errors.New("no package name for generated file")
	}
	return data, nil
}

func builderTemplateData(p *plan.BuilderPlan) (builderData, error) {
	bd := builderData{
		TypeName:    p.TypeName,
		BuilderName: p.BuilderName,
		TypeParams:  declaredParams(p.Generics),
		TypeArgs:    typeArgs(p.Generics),
	}
	for _, f := range p.Fields {
		if f.Storage == plan.StorageZero {
			continue
		}
		slot := slotName(f.Name)
		ptrField := f.Type.Kind == typeexpr.KindPointer
		sliceField := f.Type.Kind == typeexpr.KindSlice

		switch f.Kind {
		case classify.Required:
			bd.Slots = append(bd.Slots, slotData{Name: slot, Type: "*" + f.Inner.String()})
			bd.Assigns = append(bd.Assigns, "v."+f.Name+" = *b."+slot)
			bd.Checks = append(bd.Checks, checkData{Slot: slot, Message: strconv.Quote(f.Missing)})
		case classify.Optional:
			bd.Slots = append(bd.Slots, slotData{Name: slot, Type: f.Type.String()})
			if ptrField {
				bd.Assigns = append(bd.Assigns,
					"if b."+slot+" != nil {\n\tcp := *b."+slot+"\n\tv."+f.Name+" = &cp\n}")
			} else {
				bd.Assigns = append(bd.Assigns, "v."+f.Name+" = b."+slot)
			}
		case classify.Repeated:
			slotType := f.Type.String()
			init := ""
			if sliceField {
				init = "make(" + slotType + ", 0)"
				bd.Assigns = append(bd.Assigns, "v."+f.Name+" = slices.Clone(b."+slot+")")
			} else {
				bd.Assigns = append(bd.Assigns, "v."+f.Name+" = b."+slot)
			}
			bd.Slots = append(bd.Slots, slotData{Name: slot, Type: slotType, Init: init})
		}

		for _, s := range f.Setters {
			sd := setterData{Field: f.Name, Method: s.Name}
			switch s.Shape {
			case plan.SetterAssign:
				if f.Kind == classify.Optional && !ptrField {
					// A named optional wrapper is stored as given.
					sd.Param = f.Type.String()
					sd.Body = "b." + slot + " = v"
				} else {
					sd.Param = s.Param.String()
					sd.Body = "b." + slot + " = &v"
				}
			case plan.SetterBulk:
				sd.Param = s.Param.String()
				sd.Body = "b." + slot + " = v"
			case plan.SetterAppend:
				if !sliceField {
					return bd, errors.WithHint(
						errors.Newf("field %s: appender %s needs a slice field, got %s", f.Name, s.Name, f.Type),
						"declare the field as []T or drop the each alias")
				}
				sd.Param = s.Param.String()
				sd.Body = "b." + slot + " = append(b." + slot + ", v)"
			}
			bd.Setters = append(bd.Setters, sd)
		}
	}
	return bd, nil
}

func debugTemplateData(p *plan.DebugPlan, capability string) (debugData, error) {
	dd := debugData{
		TypeName: p.TypeName,
		FuncName: "Debug" + p.TypeName,
		TypeArgs: typeArgs(p.Generics),
		Clause:   p.Bounds.Clause(),
	}

	if assoc := p.Bounds.Associated(); len(assoc) > 0 {
		subjects := make([]string, 0, len(assoc))
		for _, o := range assoc {
			subjects = append(subjects, o.SubjectString())
		}
		return dd, errors.WithHint(
			errors.Newf("associated-type obligations cannot be expressed as Go constraints: %s", strings.Join(subjects, ", ")),
			`add //derive:debug bound="..." with the full type-parameter list, or emit plans with --emit=plan`)
	}

	switch {
	case p.Bounds.Overridden:
		dd.TypeParams = "[" + p.Bounds.Override + "]"
	default:
		dd.TypeParams = inferredParams(p.Generics, p.Bounds, capability)
	}

	for _, f := range p.Fields {
		label := strconv.Quote(f.Name + ": ")
		if f.Name == "_" {
			// Blank fields have no value to read.
			dd.Parts = append(dd.Parts, strconv.Quote(f.Name+": "+f.TypeStr))
			continue
		}
		switch f.Directive {
		case plan.DirectiveTemplate:
			dd.Parts = append(dd.Parts, label+" + fmt.Sprintf("+strconv.Quote(f.Template)+", v."+f.Name+")")
		default:
			dd.Parts = append(dd.Parts, label+" + fmt.Sprint(v."+f.Name+")")
		}
	}
	return dd, nil
}

func declaredParams(generics []schema.GenericParam) string {
	if len(generics) == 0 {
		return ""
	}
	parts := make([]string, 0, len(generics))
	for _, g := range generics {
		parts = append(parts, g.Name+" "+declaredBound(g))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func inferredParams(generics []schema.GenericParam, b bounds.Bounds, capability string) string {
	if len(generics) == 0 {
		return ""
	}
	if capability == "" {
		capability = bounds.DefaultCapability
	}
	parts := make([]string, 0, len(generics))
	for _, g := range generics {
		bound := declaredBound(g)
		if b.ForParam(g.Name) {
			if bound == "any" || bound == "interface{}" {
				bound = capability
			} else {
				bound = "interface{ " + bound + "; " + capability + " }"
			}
		}
		parts = append(parts, g.Name+" "+bound)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func declaredBound(g schema.GenericParam) string {
	if strings.TrimSpace(g.Bounds) == "" {
		return "any"
	}
	return g.Bounds
}

func typeArgs(generics []schema.GenericParam) string {
	if len(generics) == 0 {
		return ""
	}
	names := make([]string, 0, len(generics))
	for _, g := range generics {
		names = append(names, g.Name)
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// slotName is the builder's storage field for f. Lower-casing an exported
// name can produce a keyword such as type or func.
func slotName(field string) string {
	name := plan.StorageName(field)
	if token.IsKeyword(name) {
		return name + "_"
	}
	return name
}
