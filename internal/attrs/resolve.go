package attrs

import (
	"go/token"
	"strings"

	"github.com/seitarof/gen-derive/internal/schema"
)

// FieldConfig is the resolved configuration of one field.
type FieldConfig struct {
	Field string
	// Each names the per-element appender of a repeated field.
	Each    string
	HasEach bool
	// Format is a fmt template applied to the field value.
	Format    string
	HasFormat bool
}

// TypeConfig is the resolved configuration of one type.
type TypeConfig struct {
	Builder bool
	Debug   bool
	// Bound is the verbatim type-parameter list replacing bound inference.
	Bound    string
	HasBound bool
	Fields   []FieldConfig
}

// Resolve validates every annotation of desc and returns the resolved
// configuration. The first violation is returned as a ConfigError.
func Resolve(desc *schema.TypeDescriptor) (*TypeConfig, error) {
	cfg, err := resolveType(desc)
	if err != nil {
		return nil, err
	}
	cfg.Fields = make([]FieldConfig, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		fc, err := ResolveField(desc.Name, f)
		if err != nil {
			return nil, err
		}
		cfg.Fields = append(cfg.Fields, fc)
	}
	return cfg, nil
}

func resolveType(desc *schema.TypeDescriptor) (*TypeConfig, error) {
	cfg := &TypeConfig{}
	seen := map[string]bool{}
	for _, a := range desc.Attributes {
		id := a.Namespace + "(" + a.Key + ")"
		if seen[id] {
			return nil, NewConfigError(desc.Name, "", id, "duplicate annotation", "")
		}
		seen[id] = true

		switch a.Namespace {
		case NamespaceDerive:
			switch a.Key {
			case NamespaceBuilder:
				cfg.Builder = true
			case NamespaceDebug:
				cfg.Debug = true
			default:
				return nil, NewConfigError(desc.Name, "", id, "unknown generator "+quote(a.Key),
					"supported generators are builder and debug")
			}
		case NamespaceDebug:
			if a.Key != KeyBound {
				return nil, NewConfigError(desc.Name, "", id, "unknown key "+quote(a.Key),
					`type-level debug accepts only bound="..."`)
			}
			if strings.TrimSpace(a.Value) == "" {
				return nil, NewConfigError(desc.Name, "", id, "malformed override: empty constraint clause",
					`write the full type-parameter list, e.g. bound="T fmt.Stringer"`)
			}
			cfg.Bound = strings.TrimSpace(a.Value)
			cfg.HasBound = true
		case NamespaceBuilder:
			return nil, NewConfigError(desc.Name, "", id, "unknown key "+quote(a.Key),
				"the builder generator takes no type-level options")
		}
	}
	return cfg, nil
}

// ResolveField validates the annotations of one field.
func ResolveField(typeName string, f schema.FieldDescriptor) (FieldConfig, error) {
	fc := FieldConfig{Field: f.Name}
	for _, a := range f.Attributes {
		id := a.Namespace + "(" + a.Key + ")"
		switch {
		case a.Namespace == NamespaceBuilder && a.Key == KeyEach:
			if fc.HasEach {
				return fc, NewConfigError(typeName, f.Name, id, "duplicate annotation", "")
			}
			if !token.IsIdentifier(a.Value) {
				return fc, NewConfigError(typeName, f.Name, id, "alias "+quote(a.Value)+" is not an identifier",
					`use builder:"each=Name"`)
			}
			fc.Each, fc.HasEach = a.Value, true
		case a.Namespace == NamespaceDebug && a.Key == KeyFormat:
			if fc.HasFormat {
				return fc, NewConfigError(typeName, f.Name, id, "duplicate annotation", "")
			}
			if err := checkTemplate(a.Value); err != "" {
				return fc, NewConfigError(typeName, f.Name, id, err,
					"the template receives the field value as its only argument")
			}
			fc.Format, fc.HasFormat = a.Value, true
		case a.Namespace == NamespaceBuilder || a.Namespace == NamespaceDebug:
			return fc, NewConfigError(typeName, f.Name, id, "unknown key "+quote(a.Key), "")
		}
	}
	return fc, nil
}

// checkTemplate requires exactly one formatting verb. %% is a literal.
// Star widths and explicit argument indexes are rejected since they read
// operands other than the field value.
func checkTemplate(s string) string {
	verbs := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+1 == len(s) {
			return "malformed template: trailing %"
		}
		if s[i+1] == '%' {
			i++
			continue
		}
		j := i + 1
		for j < len(s) && strings.IndexByte("+-# 0123456789.", s[j]) >= 0 {
			j++
		}
		if j == len(s) {
			return "malformed template: verb missing after %"
		}
		switch s[j] {
		case '*':
			return "malformed template: * width or precision takes an extra operand"
		case '[':
			return "malformed template: explicit argument index"
		}
		verbs++
		i = j
	}
	if verbs != 1 {
		return "malformed template: want exactly one verb"
	}
	return ""
}

func quote(s string) string {
	return `"` + s + `"`
}
