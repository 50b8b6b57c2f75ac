package generator

import (
	"bytes"
	"embed"
	"os"
	"text/template"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/imports"
	"gopkg.in/yaml.v3"

	"github.com/seitarof/gen-derive/internal/analysis"
)

//go:embed templates/*.go.tmpl
var templateFS embed.FS

// Generator writes code or plans for analysis results.
type Generator interface {
	Generate(cfg Config, results []*analysis.Result) error
}

// Config is the minimum config contract required by generator.
type Config interface {
	OutputFilename() string
	Capability() string
}

// Formatter formats generated Go code and organizes imports.
type Formatter interface {
	Format(filename string, src []byte) ([]byte, error)
}

// FileWriter writes generated code to disk.
type FileWriter interface {
	Write(filename string, data []byte) error
}

type generatorImpl struct {
	formatter Formatter
	writer    FileWriter
	tmpl      *template.Template
}

type planGenerator struct {
	writer FileWriter
}

type goimportsFormatter struct{}

type fileWriter struct{}

// New creates a Go code generator.
func New(f Formatter, w FileWriter) Generator {
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.go.tmpl"))
	return &generatorImpl{formatter: f, writer: w, tmpl: tmpl}
}

// NewPlanGenerator creates a generator that writes the plans as YAML for an
// external emitter.
func NewPlanGenerator(w FileWriter) Generator {
	return &planGenerator{writer: w}
}

// NewGoimportsFormatter creates a formatter backed by goimports.
func NewGoimportsFormatter() Formatter {
	return &goimportsFormatter{}
}

// NewFileWriter creates a plain file writer.
func NewFileWriter() FileWriter {
	return &fileWriter{}
}

func (g *generatorImpl) Generate(cfg Config, results []*analysis.Result) error {
	data, err := buildTemplateData(results, cfg.Capability())
	if err != nil {
		return err
	}
	if len(data.Builders) == 0 && len(data.Debugs) == 0 {
		return errors.New("no derivations requested")
	}

	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "file.go.tmpl", data); err != nil {
		return errors.Wrap(err, "template")
	}

	formatted, err := g.formatter.Format(cfg.OutputFilename(), buf.Bytes())
	if err != nil {
		return errors.Wrapf(err, "format\n%s", buf.String())
	}
	if err := g.writer.Write(cfg.OutputFilename(), formatted); err != nil {
		return errors.Wrap(err, "write")
	}
	return nil
}

type planDocument struct {
	Types []*analysis.Result `yaml:"types"`
}

func (g *planGenerator) Generate(cfg Config, results []*analysis.Result) error {
	if len(results) == 0 {
		return errors.New("no analysis results")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(planDocument{Types: results}); err != nil {
		return errors.Wrap(err, "encode plans")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "encode plans")
	}
	if err := g.writer.Write(cfg.OutputFilename(), buf.Bytes()); err != nil {
		return errors.Wrap(err, "write")
	}
	return nil
}

func (f *goimportsFormatter) Format(filename string, src []byte) ([]byte, error) {
	return imports.Process(filename, src, nil)
}

func (w *fileWriter) Write(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0o644)
}
