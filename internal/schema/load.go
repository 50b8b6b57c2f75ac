package schema

import (
	"bytes"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/seitarof/gen-derive/internal/typeexpr"
)

// descriptorFile is the on-disk form of a descriptor list. Type expressions
// are written in Go syntax.
type descriptorFile struct {
	Package struct {
		Path string `yaml:"path"`
		Name string `yaml:"name"`
	} `yaml:"package"`
	Types []typeDoc `yaml:"types"`
}

type typeDoc struct {
	Name       string         `yaml:"name"`
	Generics   []genericDoc   `yaml:"generics"`
	Attributes []attributeDoc `yaml:"attributes"`
	Fields     []fieldDoc     `yaml:"fields"`
}

type genericDoc struct {
	Name   string `yaml:"name"`
	Bounds string `yaml:"bounds"`
}

type fieldDoc struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Attributes []attributeDoc `yaml:"attributes"`
}

type attributeDoc struct {
	Namespace string `yaml:"namespace"`
	Key       string `yaml:"key"`
	Value     string `yaml:"value"`
}

// LoadDescriptors reads a YAML descriptor file.
func LoadDescriptors(path string) ([]*TypeDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read descriptor %q", path)
	}
	descs, err := DecodeDescriptors(data)
	if err != nil {
		return nil, errors.Wrapf(err, "descriptor %q", path)
	}
	return descs, nil
}

// DecodeDescriptors decodes a YAML descriptor document.
func DecodeDescriptors(data []byte) ([]*TypeDescriptor, error) {
	var file descriptorFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}

	out := make([]*TypeDescriptor, 0, len(file.Types))
	for i, td := range file.Types {
		desc, err := td.descriptor(file.Package.Path, file.Package.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "types[%d]", i)
		}
		if err := desc.Validate(); err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

func (td typeDoc) descriptor(pkgPath, pkgName string) (*TypeDescriptor, error) {
	desc := &TypeDescriptor{
		Name:       td.Name,
		PkgPath:    pkgPath,
		PkgName:    pkgName,
		Attributes: convertAttributes(td.Attributes, td.Name),
	}
	for _, g := range td.Generics {
		desc.Generics = append(desc.Generics, GenericParam(g))
	}
	for _, f := range td.Fields {
		te, err := typeexpr.Parse(f.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", f.Name)
		}
		desc.Fields = append(desc.Fields, FieldDescriptor{
			Name:       f.Name,
			Type:       te,
			Attributes: convertAttributes(f.Attributes, td.Name+"."+f.Name),
		})
	}
	return desc, nil
}

func convertAttributes(docs []attributeDoc, origin string) []Attribute {
	if len(docs) == 0 {
		return nil
	}
	out := make([]Attribute, 0, len(docs))
	for _, a := range docs {
		out = append(out, Attribute{Namespace: a.Namespace, Key: a.Key, Value: a.Value, Origin: origin})
	}
	return out
}
