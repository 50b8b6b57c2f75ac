package cli

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/seitarof/gen-derive/internal/bounds"
	"github.com/seitarof/gen-derive/internal/typeexpr"
)

// Emit modes.
const (
	EmitGo   = "go"
	EmitPlan = "plan"
)

// Config stores CLI options for a single generation run.
type Config struct {
	SrcPath        string
	Types          []string
	Descriptor     string
	Filename       string
	Emit           string
	CapabilityName string
	ConfigFile     string
	Verbose        bool
	ShowVersion    bool
	Parallelism    int

	// Wrappers holds the recognised wrapper names, defaults merged with
	// the config file.
	Wrappers typeexpr.WrapperSet
}

// OutputFilename returns destination file path for generator layer.
func (c *Config) OutputFilename() string {
	return c.Filename
}

// Capability returns the constraint required of debug-rendered parameters.
func (c *Config) Capability() string {
	if c.CapabilityName == "" {
		return bounds.DefaultCapability
	}
	return c.CapabilityName
}

// FileConfig is the YAML config file layout.
type FileConfig struct {
	Capability string              `yaml:"capability"`
	Wrappers   typeexpr.WrapperSet `yaml:"wrappers"`
}

// LoadFileConfig reads a YAML config file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %q", path)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.Wrapf(err, "decode config %q", path)
	}
	return &fc, nil
}

// Apply merges fc into cfg. Flags win over the file; non-empty wrapper
// lists replace the defaults.
func (fc *FileConfig) Apply(cfg *Config) {
	if cfg.CapabilityName == "" {
		cfg.CapabilityName = fc.Capability
	}
	if len(fc.Wrappers.Marker) > 0 {
		cfg.Wrappers.Marker = fc.Wrappers.Marker
	}
	if len(fc.Wrappers.Optional) > 0 {
		cfg.Wrappers.Optional = fc.Wrappers.Optional
	}
	if len(fc.Wrappers.Repeated) > 0 {
		cfg.Wrappers.Repeated = fc.Wrappers.Repeated
	}
}
