package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitarof/gen-derive/internal/attrs"
	"github.com/seitarof/gen-derive/internal/schema"
)

const (
	basicPkg = "github.com/seitarof/gen-derive/testdata/derivebasic"
	assocPkg = "github.com/seitarof/gen-derive/testdata/deriveassoc"
	embedPkg = "github.com/seitarof/gen-derive/testdata/deriveembed"
	execPkg  = "github.com/seitarof/gen-derive/testdata/deriveexec"
)

func TestParse_Command(t *testing.T) {
	desc, err := New().Parse(basicPkg, "Command")
	require.NoError(t, err)

	assert.Equal(t, "Command", desc.Name)
	assert.Equal(t, basicPkg, desc.PkgPath)
	assert.Equal(t, "derivebasic", desc.PkgName)
	require.Len(t, desc.Attributes, 1)
	assert.Equal(t, attrs.NamespaceDerive, desc.Attributes[0].Namespace)
	assert.Equal(t, "builder", desc.Attributes[0].Key)

	require.Len(t, desc.Fields, 3)
	assert.Equal(t, "Executable", desc.Fields[0].Name)
	assert.Equal(t, "[]string", desc.Fields[1].Type.String())
	require.Len(t, desc.Fields[1].Attributes, 1, "json tag is ignored")
	assert.Equal(t, "Arg", desc.Fields[1].Attributes[0].Value)
	assert.Contains(t, desc.Fields[1].Attributes[0].Origin, "types.go:")
	assert.Equal(t, "*string", desc.Fields[2].Type.String())
}

func TestParse_GenericsAndBound(t *testing.T) {
	desc, err := New().Parse(basicPkg, "Labeled")
	require.NoError(t, err)

	assert.Equal(t, []schema.GenericParam{{Name: "T", Bounds: "any"}}, desc.Generics)
	require.Len(t, desc.Attributes, 2)
	assert.Equal(t, "bound", desc.Attributes[1].Key)
	assert.Equal(t, "T fmt.Stringer", desc.Attributes[1].Value)
}

func TestParse_NotFound(t *testing.T) {
	_, err := New().Parse(basicPkg, "NotExist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestParse_NotStruct(t *testing.T) {
	_, err := New().Parse(basicPkg, "Name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a struct type")
}

func TestParse_WithoutDirective(t *testing.T) {
	desc, err := New().Parse(basicPkg, "Plain")
	require.NoError(t, err)
	assert.Empty(t, desc.Attributes)
}

func TestParseAll_SourceOrder(t *testing.T) {
	descs, err := New().ParseAll(basicPkg)
	require.NoError(t, err)

	var names []string
	for _, d := range descs {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Command", "Wrapper", "Phantom", "Labeled"}, names)
}

func TestParseAll_AssociatedPaths(t *testing.T) {
	descs, err := New().ParseAll(assocPkg)
	require.NoError(t, err)
	require.Len(t, descs, 1)

	p := descs[0]
	assert.Equal(t, []string{"S", "T"}, p.ParamNames())
	assert.Equal(t, []string{"S", "Output"}, p.Fields[0].Type.Path)
	assert.Equal(t, "[]T.Item", p.Fields[1].Type.String())
}

func TestParse_EmbeddedAndMultiName(t *testing.T) {
	desc, err := New().Parse(embedPkg, "Point")
	require.NoError(t, err)

	var names []string
	for _, f := range desc.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Base", "X", "Y", "Tags"}, names)
	assert.Len(t, desc.Attributes, 2)
}

func TestParse_CachesPackages(t *testing.T) {
	p := New().(*parserImpl)
	_, err := p.Parse(basicPkg, "Command")
	require.NoError(t, err)
	_, err = p.Parse(basicPkg, "Wrapper")
	require.NoError(t, err)
	assert.Len(t, p.cache, 1)
}

func TestParse_VariadicAndStructLiteral(t *testing.T) {
	desc, err := New().Parse(execPkg, "Hook")
	require.NoError(t, err)
	require.Len(t, desc.Fields, 3)

	assert.Equal(t, "func(string, ...any)", desc.Fields[1].Type.String())
	assert.True(t, desc.Fields[1].Type.Variadic)
	assert.Equal(t, "struct{ Owner string `json:\"owner\"` }", desc.Fields[2].Type.String())
}

func TestParseAll_VariadicFieldDoesNotAbort(t *testing.T) {
	descs, err := New().ParseAll(execPkg)
	require.NoError(t, err)

	var names []string
	for _, d := range descs {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Command", "Hook", "Phantom", "Wrapper"}, names)
}
