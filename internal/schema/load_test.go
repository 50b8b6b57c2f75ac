package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitarof/gen-derive/internal/typeexpr"
)

const commandYAML = `
package:
  path: example.com/cmd
  name: cmd
types:
  - name: Command
    attributes:
      - {namespace: derive, key: builder}
    fields:
      - name: executable
        type: string
      - name: args
        type: "[]string"
        attributes:
          - {namespace: builder, key: each, value: arg}
      - name: env
        type: "*string"
  - name: Wrapper
    generics:
      - {name: T, bounds: any}
    fields:
      - name: value
        type: T.Output
`

func TestDecodeDescriptors(t *testing.T) {
	descs, err := DecodeDescriptors([]byte(commandYAML))
	require.NoError(t, err)
	require.Len(t, descs, 2)

	cmd := descs[0]
	assert.Equal(t, "Command", cmd.Name)
	assert.Equal(t, "example.com/cmd", cmd.PkgPath)
	require.Len(t, cmd.Fields, 3)
	assert.Equal(t, "[]string", cmd.Fields[1].Type.String())
	require.Len(t, cmd.Fields[1].Attributes, 1)
	assert.Equal(t, "arg", cmd.Fields[1].Attributes[0].Value)
	assert.Equal(t, "Command.args", cmd.Fields[1].Attributes[0].Origin)

	wrapper := descs[1]
	assert.Equal(t, []string{"T"}, wrapper.ParamNames())
	assert.Equal(t, typeexpr.KindNamed, wrapper.Fields[0].Type.Kind)
	assert.Equal(t, []string{"T", "Output"}, wrapper.Fields[0].Type.Path)
}

func TestDecodeDescriptors_UnknownKey(t *testing.T) {
	_, err := DecodeDescriptors([]byte("types:\n  - name: A\n    feilds: []\n"))
	assert.Error(t, err)
}

func TestDecodeDescriptors_BadType(t *testing.T) {
	_, err := DecodeDescriptors([]byte("types:\n  - name: A\n    fields:\n      - {name: x, type: \"[]\"}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "x"`)
}

func TestLoadDescriptors_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte(commandYAML), 0o644))

	descs, err := LoadDescriptors(path)
	require.NoError(t, err)
	assert.Len(t, descs, 2)

	_, err = LoadDescriptors(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	str := typeexpr.MustParse("string")
	tests := []struct {
		name string
		desc TypeDescriptor
		ok   bool
	}{
		{name: "valid", desc: TypeDescriptor{Name: "A", Fields: []FieldDescriptor{{Name: "x", Type: str}}}, ok: true},
		{name: "no name", desc: TypeDescriptor{}},
		{name: "duplicate param", desc: TypeDescriptor{Name: "A", Generics: []GenericParam{{Name: "T"}, {Name: "T"}}}},
		{name: "duplicate field", desc: TypeDescriptor{Name: "A", Fields: []FieldDescriptor{{Name: "x", Type: str}, {Name: "x", Type: str}}}},
		{name: "blank fields repeat", desc: TypeDescriptor{Name: "A", Fields: []FieldDescriptor{{Name: "_", Type: str}, {Name: "_", Type: str}}}, ok: true},
		{name: "missing type", desc: TypeDescriptor{Name: "A", Fields: []FieldDescriptor{{Name: "x"}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.desc.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
