package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/seitarof/gen-derive/internal/attrs"
	"github.com/seitarof/gen-derive/internal/schema"
	"github.com/seitarof/gen-derive/internal/typeexpr"
)

func derive(kinds ...string) []schema.Attribute {
	out := make([]schema.Attribute, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, schema.Attribute{Namespace: attrs.NamespaceDerive, Key: k})
	}
	return out
}

func wrapper(fields ...schema.FieldDescriptor) *schema.TypeDescriptor {
	return &schema.TypeDescriptor{
		Name:       "Wrapper",
		Generics:   []schema.GenericParam{{Name: "T", Bounds: "any"}},
		Fields:     fields,
		Attributes: derive("debug"),
	}
}

func f(name, typ string, attrs ...schema.Attribute) schema.FieldDescriptor {
	return schema.FieldDescriptor{Name: name, Type: typeexpr.MustParse(typ), Attributes: attrs}
}

func newAnalyzer(sink Sink) Analyzer {
	return New(Options{Wrappers: typeexpr.DefaultWrappers(), Sink: sink})
}

func TestAnalyze_DebugBoundExamples(t *testing.T) {
	tests := []struct {
		name   string
		fields []schema.FieldDescriptor
		want   string
	}{
		{name: "marker only", fields: []schema.FieldDescriptor{f("m", "Marker[T]")}, want: ""},
		{name: "marker and value", fields: []schema.FieldDescriptor{f("m", "Marker[T]"), f("value", "T")}, want: "T: fmt.Stringer"},
		{name: "associated", fields: []schema.FieldDescriptor{f("out", "T.Output")}, want: "T.Output: fmt.Stringer"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := newAnalyzer(nil).Analyze(wrapper(tc.fields...))
			require.NoError(t, err)
			require.NotNil(t, res.Debug)
			assert.Nil(t, res.Builder)
			assert.Equal(t, tc.want, res.Debug.Bounds.Clause())
		})
	}
}

func TestAnalyze_FormattedAssociatedFieldKeepsObligation(t *testing.T) {
	desc := wrapper(f("out", "T.Output", schema.Attribute{Namespace: "debug", Key: "format", Value: "<%v>"}))
	res, err := newAnalyzer(nil).Analyze(desc)
	require.NoError(t, err)
	assert.Equal(t, "T.Output: fmt.Stringer", res.Debug.Bounds.Clause())
	assert.Equal(t, "<%v>", res.Debug.Fields[0].Template)
}

func TestAnalyze_Override(t *testing.T) {
	desc := wrapper(f("value", "T"), f("out", "T.Output"))
	desc.Attributes = append(desc.Attributes, schema.Attribute{Namespace: "debug", Key: "bound", Value: "T Debugger"})

	res, err := newAnalyzer(nil).Analyze(desc)
	require.NoError(t, err)
	assert.True(t, res.Debug.Bounds.Overridden)
	assert.Equal(t, "T Debugger", res.Debug.Bounds.Clause())
}

func TestAnalyze_BuilderCommand(t *testing.T) {
	desc := &schema.TypeDescriptor{
		Name:       "Command",
		Attributes: derive("builder"),
		Fields: []schema.FieldDescriptor{
			f("executable", "string"),
			f("args", "[]string", schema.Attribute{Namespace: "builder", Key: "each", Value: "arg"}),
			f("env", "*string"),
		},
	}
	sink := &RecordingSink{}
	res, err := newAnalyzer(sink).Analyze(desc)
	require.NoError(t, err)
	require.NotNil(t, res.Builder)
	assert.Nil(t, res.Debug)
	assert.Equal(t, []string{"executable"}, res.Builder.Checks)

	var steps []string
	for _, e := range sink.Entries() {
		steps = append(steps, e.Message)
	}
	assert.Contains(t, steps, "resolved attributes")
	assert.Contains(t, steps, "classified field")
}

func TestAnalyze_NothingRequested(t *testing.T) {
	desc := &schema.TypeDescriptor{Name: "Plain", Fields: []schema.FieldDescriptor{f("x", "int")}}
	sink := &RecordingSink{}
	res, err := newAnalyzer(sink).Analyze(desc)
	require.NoError(t, err)
	assert.Nil(t, res.Builder)
	assert.Nil(t, res.Debug)

	entries := sink.Entries()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, Entry{Type: "Plain", Level: "warn", Message: "no derivation requested"}, last)
}

func TestAnalyze_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		desc *schema.TypeDescriptor
		want string
	}{
		{
			name: "alias on optional",
			desc: &schema.TypeDescriptor{
				Name:       "Command",
				Attributes: derive("builder"),
				Fields:     []schema.FieldDescriptor{f("env", "*string", schema.Attribute{Namespace: "builder", Key: "each", Value: "e"})},
			},
			want: "field env: builder(each): alias requires a repeated field",
		},
		{
			name: "setter collision",
			desc: &schema.TypeDescriptor{
				Name:       "Command",
				Attributes: derive("builder"),
				Fields: []schema.FieldDescriptor{
					f("arg", "string"),
					f("args", "[]string", schema.Attribute{Namespace: "builder", Key: "each", Value: "arg"}),
				},
			},
			want: "setter name collision: Arg",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newAnalyzer(nil).Analyze(tc.desc)
			require.Error(t, err)
			assert.True(t, attrs.IsConfigError(err))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestAnalyze_InvalidDescriptor(t *testing.T) {
	desc := wrapper(f("x", "int"), f("x", "int"))
	_, err := newAnalyzer(nil).Analyze(desc)
	assert.Error(t, err)
}

func TestAnalyzeAll_OrderAndDeterminism(t *testing.T) {
	var descs []*schema.TypeDescriptor
	for _, name := range []string{"A", "B", "C", "D"} {
		d := wrapper(f("value", "T"), f("out", "T.Output"))
		d.Name = name
		d.Attributes = derive("debug", "builder")
		descs = append(descs, d)
	}

	a := New(Options{Wrappers: typeexpr.DefaultWrappers(), Parallelism: 2})
	first, err := a.AnalyzeAll(context.Background(), descs)
	require.NoError(t, err)
	require.Len(t, first, 4)
	for i, res := range first {
		assert.Equal(t, descs[i].Name, res.Name)
	}

	second, err := a.AnalyzeAll(context.Background(), descs)
	require.NoError(t, err)
	b1, err := yaml.Marshal(first)
	require.NoError(t, err)
	b2, err := yaml.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
}

func TestAnalyzeAll_Error(t *testing.T) {
	bad := wrapper(f("x", "int", schema.Attribute{Namespace: "debug", Key: "colour"}))
	bad.Name = "Bad"
	_, err := newAnalyzer(nil).AnalyzeAll(context.Background(), []*schema.TypeDescriptor{wrapper(f("x", "int")), bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyze Bad")
	assert.True(t, attrs.IsConfigError(err))
}
