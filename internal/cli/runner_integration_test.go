package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seitarof/gen-derive/internal/generator"
	"github.com/seitarof/gen-derive/internal/parser"
	"github.com/seitarof/gen-derive/internal/typeexpr"
)

func newIntegrationRunner(logger *zap.Logger) Runner {
	return NewRunner(
		parser.New(),
		generator.New(generator.NewGoimportsFormatter(), generator.NewFileWriter()),
		generator.NewPlanGenerator(generator.NewFileWriter()),
		logger,
	)
}

func TestRunner_Run_GeneratesBuildersAndDebug(t *testing.T) {
	out := filepath.Join(t.TempDir(), "derivebasic_gen.go")
	cfg := &Config{
		SrcPath:  "github.com/seitarof/gen-derive/testdata/derivebasic",
		Filename: out,
		Emit:     EmitGo,
		Wrappers: typeexpr.DefaultWrappers(),
	}

	require.NoError(t, newIntegrationRunner(nil).Run(context.Background(), cfg))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	got := string(content)

	checks := []string{
		"package derivebasic",
		"func NewCommandBuilder() *CommandBuilder",
		"func (b *CommandBuilder) Arg(v string) *CommandBuilder",
		"func (b *CommandBuilder) Env(v string) *CommandBuilder",
		"func DebugWrapper[T fmt.Stringer](v Wrapper[T]) string",
		"func DebugPhantom[T any](v Phantom[T]) string",
		`fmt.Sprintf("0x%X", v.Count)`,
		"func DebugLabeled[T fmt.Stringer](v Labeled[T]) string",
	}
	for _, check := range checks {
		if !strings.Contains(got, check) {
			t.Fatalf("generated code does not contain %q\n%s", check, got)
		}
	}
}

func TestRunner_Run_EmbeddedAndDegenerateAlias(t *testing.T) {
	out := filepath.Join(t.TempDir(), "deriveembed_gen.go")
	cfg := &Config{
		SrcPath:  "github.com/seitarof/gen-derive/testdata/deriveembed",
		Filename: out,
		Emit:     EmitGo,
		Wrappers: typeexpr.DefaultWrappers(),
	}
	require.NoError(t, newIntegrationRunner(nil).Run(context.Background(), cfg))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	got := string(content)
	assert.Contains(t, got, "func (b *PointBuilder) Base(v Base) *PointBuilder")
	assert.Contains(t, got, "func (b *PointBuilder) Tags(v []string) *PointBuilder")
	assert.NotContains(t, got, "append(b.tags, v)")
	assert.Contains(t, got, "func DebugPoint(v Point) string")
}

func TestRunner_Run_AssociatedTypesNeedPlanEmit(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		SrcPath:  "github.com/seitarof/gen-derive/testdata/deriveassoc",
		Filename: filepath.Join(dir, "deriveassoc_gen.go"),
		Emit:     EmitGo,
		Wrappers: typeexpr.DefaultWrappers(),
	}
	err := newIntegrationRunner(nil).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "associated-type obligations")

	cfg.Emit = EmitPlan
	cfg.Filename = filepath.Join(dir, "deriveassoc.plan.yaml")
	require.NoError(t, newIntegrationRunner(nil).Run(context.Background(), cfg))

	content, err := os.ReadFile(cfg.Filename)
	require.NoError(t, err)
	got := string(content)
	assert.Contains(t, got, "subject: S.Output")
	assert.Contains(t, got, "subject: T.Item")
	assert.Less(t, strings.Index(got, "subject: S.Output"), strings.Index(got, "subject: T.Item"))
}

func TestRunner_Run_Descriptor(t *testing.T) {
	out := filepath.Join(t.TempDir(), "pipeline.plan.yaml")
	cfg := &Config{
		Descriptor: filepath.Join("..", "..", "testdata", "descriptors", "pipeline.yaml"),
		Filename:   out,
		Emit:       EmitPlan,
		Wrappers:   typeexpr.DefaultWrappers(),
	}
	require.NoError(t, newIntegrationRunner(nil).Run(context.Background(), cfg))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	got := string(content)
	assert.Contains(t, got, "name: Pipeline")
	assert.Contains(t, got, "subject: S.Output")
	assert.Contains(t, got, "name: Request")
	assert.Contains(t, got, "name: Header")
	assert.Contains(t, got, "shape: append")
}

func TestRunner_Run_LogsNoDerivationRequested(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := &Config{
		SrcPath:  "github.com/seitarof/gen-derive/testdata/derivebasic",
		Types:    []string{"Command", "Plain"},
		Filename: filepath.Join(t.TempDir(), "named_gen.go"),
		Emit:     EmitGo,
		Wrappers: typeexpr.DefaultWrappers(),
	}
	require.NoError(t, newIntegrationRunner(zap.New(core)).Run(context.Background(), cfg))

	warned := logs.FilterMessage("no derivation requested").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "Plain", warned[0].ContextMap()["type"])
	assert.Equal(t, 1, logs.FilterMessage("generated").Len())
}
