package cli

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/seitarof/gen-derive/internal/analysis"
	"github.com/seitarof/gen-derive/internal/generator"
	"github.com/seitarof/gen-derive/internal/parser"
	"github.com/seitarof/gen-derive/internal/schema"
)

// Runner orchestrates parser/analysis/generator layers.
type Runner interface {
	Run(ctx context.Context, cfg *Config) error
}

type runnerImpl struct {
	parser  parser.Parser
	goGen   generator.Generator
	planGen generator.Generator
	logger  *zap.Logger
}

// NewRunner creates a default runner implementation. goGen serves
// --emit=go and planGen serves --emit=plan.
func NewRunner(p parser.Parser, goGen, planGen generator.Generator, logger *zap.Logger) Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &runnerImpl{
		parser:  p,
		goGen:   goGen,
		planGen: planGen,
		logger:  logger,
	}
}

// Run executes a single generation cycle.
func (r *runnerImpl) Run(ctx context.Context, cfg *Config) error {
	descs, err := r.load(cfg)
	if err != nil {
		return err
	}
	if len(descs) == 0 {
		return errors.WithHint(
			errors.Newf("no annotated types found in %q", source(cfg)),
			"add a //derive:builder or //derive:debug directive above a struct type")
	}
	r.logger.Debug("loaded types", zap.String("source", source(cfg)), zap.Int("count", len(descs)))

	a := analysis.New(analysis.Options{
		Wrappers:    cfg.Wrappers,
		Capability:  cfg.Capability(),
		Sink:        analysis.NewZapSink(r.logger),
		Parallelism: cfg.Parallelism,
	})
	results, err := a.AnalyzeAll(ctx, descs)
	if err != nil {
		return err
	}

	gen := r.goGen
	if cfg.Emit == EmitPlan {
		gen = r.planGen
	}
	if err := gen.Generate(cfg, results); err != nil {
		return errors.Wrap(err, "generate")
	}
	r.logger.Info("generated",
		zap.String("emit", cfg.Emit),
		zap.String("output", cfg.OutputFilename()),
		zap.Int("types", len(results)))
	return nil
}

func (r *runnerImpl) load(cfg *Config) ([]*schema.TypeDescriptor, error) {
	if cfg.Descriptor != "" {
		descs, err := schema.LoadDescriptors(cfg.Descriptor)
		if err != nil {
			return nil, err
		}
		return filterTypes(descs, cfg.Types)
	}

	if len(cfg.Types) == 0 {
		descs, err := r.parser.ParseAll(cfg.SrcPath)
		if err != nil {
			return nil, errors.Wrap(err, "parse")
		}
		return descs, nil
	}

	descs := make([]*schema.TypeDescriptor, 0, len(cfg.Types))
	for _, name := range cfg.Types {
		desc, err := r.parser.Parse(cfg.SrcPath, name)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", name)
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

func filterTypes(descs []*schema.TypeDescriptor, names []string) ([]*schema.TypeDescriptor, error) {
	if len(names) == 0 {
		return descs, nil
	}
	byName := make(map[string]*schema.TypeDescriptor, len(descs))
	for _, d := range descs {
		byName[d.Name] = d
	}
	out := make([]*schema.TypeDescriptor, 0, len(names))
	for _, name := range names {
		d, ok := byName[name]
		if !ok {
			return nil, errors.Newf("type %q not found in descriptor file", name)
		}
		out = append(out, d)
	}
	return out, nil
}

func source(cfg *Config) string {
	if cfg.Descriptor != "" {
		return cfg.Descriptor
	}
	return cfg.SrcPath
}
