package analysis

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seitarof/gen-derive/internal/attrs"
	"github.com/seitarof/gen-derive/internal/bounds"
	"github.com/seitarof/gen-derive/internal/classify"
	"github.com/seitarof/gen-derive/internal/plan"
	"github.com/seitarof/gen-derive/internal/schema"
	"github.com/seitarof/gen-derive/internal/typeexpr"
)

// Result holds the plans requested by one type. Either plan may be nil.
type Result struct {
	Type    *schema.TypeDescriptor `yaml:"-"`
	Name    string                 `yaml:"name"`
	Builder *plan.BuilderPlan      `yaml:"builder,omitempty"`
	Debug   *plan.DebugPlan        `yaml:"debug,omitempty"`
}

// Analyzer runs the analysis pipeline for single types.
type Analyzer interface {
	Analyze(desc *schema.TypeDescriptor) (*Result, error)
	AnalyzeAll(ctx context.Context, descs []*schema.TypeDescriptor) ([]*Result, error)
}

// Options configures an Analyzer.
type Options struct {
	Wrappers   typeexpr.WrapperSet
	Capability string
	Sink       Sink
	// Parallelism bounds concurrent invocations in AnalyzeAll. Zero means
	// no limit.
	Parallelism int
}

type analyzerImpl struct {
	classifier *classify.Classifier
	engine     *bounds.Engine
	sink       Sink
	limit      int
}

// New builds an Analyzer.
func New(opts Options) Analyzer {
	sink := opts.Sink
	if sink == nil {
		sink = NewZapSink(nil)
	}
	return &analyzerImpl{
		classifier: classify.New(opts.Wrappers),
		engine:     bounds.NewEngine(opts.Wrappers, opts.Capability),
		sink:       sink,
		limit:      opts.Parallelism,
	}
}

// Analyze resolves annotations, classifies fields and plans the requested
// generators. Errors abort only this type.
func (a *analyzerImpl) Analyze(desc *schema.TypeDescriptor) (*Result, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	cfg, err := attrs.Resolve(desc)
	if err != nil {
		return nil, err
	}
	a.sink.Debug(desc.Name, "resolved attributes",
		zap.Bool("builder", cfg.Builder),
		zap.Bool("debug", cfg.Debug),
		zap.Bool("bound_override", cfg.HasBound))

	classes, err := a.classifier.ClassifyAll(desc, cfg)
	if err != nil {
		return nil, err
	}
	for _, cl := range classes {
		a.sink.Debug(desc.Name, "classified field",
			zap.String("field", cl.Field),
			zap.Stringer("kind", cl.Kind),
			zap.Stringer("field_type", cl.Type))
	}

	res := &Result{Type: desc, Name: desc.Name}
	if !cfg.Builder && !cfg.Debug {
		a.sink.Warn(desc.Name, "no derivation requested")
		return res, nil
	}

	if cfg.Builder {
		bp := plan.PlanBuilder(desc, classes, cfg)
		if conflicts := bp.Conflicts(); len(conflicts) > 0 {
			return nil, attrs.NewConfigError(desc.Name, "", "builder(each)",
				"setter name collision: "+strings.Join(conflicts, ", "),
				"choose an alias that differs from every other field name")
		}
		res.Builder = bp
	}

	if cfg.Debug {
		b := a.engine.Infer(desc, classes, cfg)
		a.sink.Debug(desc.Name, "inferred bounds",
			zap.Bool("overridden", b.Overridden),
			zap.String("clause", b.Clause()))
		res.Debug = plan.PlanDebug(desc, classes, b, cfg)
	}
	return res, nil
}

// AnalyzeAll analyzes independent types concurrently. Results keep input
// order. The first error cancels the remaining work.
func (a *analyzerImpl) AnalyzeAll(ctx context.Context, descs []*schema.TypeDescriptor) ([]*Result, error) {
	results := make([]*Result, len(descs))
	g, ctx := errgroup.WithContext(ctx)
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}
	for i, desc := range descs {
		i, desc := i, desc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.Analyze(desc)
			if err != nil {
				return errors.Wrapf(err, "analyze %s", desc.Name)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
