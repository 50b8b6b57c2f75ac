package cli

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"

	"github.com/seitarof/gen-derive/internal/typeexpr"
)

// ParseArgs parses command line arguments into Config.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{Wrappers: typeexpr.DefaultWrappers()}

	fs := pflag.NewFlagSet("gen-derive", pflag.ContinueOnError)
	fs.StringVar(&cfg.SrcPath, "src-path", "", "package path to scan for //derive: directives")
	fs.StringArrayVar(&cfg.Types, "type", nil, "struct type to process (repeatable, default all annotated types)")
	fs.StringVar(&cfg.Descriptor, "descriptor", "", "YAML descriptor file used instead of --src-path")
	fs.StringVarP(&cfg.Filename, "filename", "o", "", "output file name")
	fs.StringVar(&cfg.Emit, "emit", EmitGo, "output kind: go or plan")
	fs.StringVar(&cfg.CapabilityName, "capability", "", "constraint required of debug-rendered type parameters (default fmt.Stringer)")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML config file")
	fs.IntVar(&cfg.Parallelism, "parallelism", 0, "maximum types analyzed concurrently (0 = unlimited)")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "log analysis steps")
	fs.BoolVarP(&cfg.ShowVersion, "version", "v", false, "show version")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}

	cfg.SrcPath = strings.TrimSpace(cfg.SrcPath)
	cfg.Descriptor = strings.TrimSpace(cfg.Descriptor)
	switch {
	case cfg.SrcPath == "" && cfg.Descriptor == "":
		return nil, errors.New("one of --src-path or --descriptor is required")
	case cfg.SrcPath != "" && cfg.Descriptor != "":
		return nil, errors.New("--src-path and --descriptor are mutually exclusive")
	}
	if strings.TrimSpace(cfg.Filename) == "" {
		return nil, errors.New("--filename is required")
	}
	if cfg.Emit != EmitGo && cfg.Emit != EmitPlan {
		return nil, errors.Newf("--emit must be %q or %q, got %q", EmitGo, EmitPlan, cfg.Emit)
	}
	if cfg.Parallelism < 0 {
		return nil, errors.New("--parallelism must not be negative")
	}
	cfg.Types = trimList(cfg.Types)

	if cfg.ConfigFile != "" {
		fc, err := LoadFileConfig(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		fc.Apply(cfg)
	}
	return cfg, nil
}

func trimList(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		for _, part := range strings.Split(p, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
