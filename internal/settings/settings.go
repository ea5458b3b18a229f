// Package settings loads the persistent configuration of the CLI from a TOML or YAML file.
package settings

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/atlanticdynamic/coderunner/internal/document"
	"github.com/atlanticdynamic/coderunner/internal/interpolation"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a settings file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Defaults for unset keys.
const (
	DefaultInterpreter  = "sh"
	DefaultConfigTag    = "CodeRunnerCONFIG"
	DefaultOutputTag    = "CodeRunnerOUT"
	DefaultTailLines    = 3
	DefaultRunDirectory = ".CodeRunner"
	DefaultTranscript   = "stderr"
	DefaultLogFormat    = "text"
)

// Settings is the persistent configuration. Fields tagged env_interpolation accept
// `${VAR}` and `${VAR:default}` references to the environment.
type Settings struct {
	Verbose      bool              `toml:"verbose"       yaml:"verbose"`
	LogLevel     string            `toml:"log_level"     yaml:"log_level"     env_interpolation:"yes"`
	LogFormat    string            `toml:"log_format"    yaml:"log_format"`
	BlockScope   string            `toml:"block_scope"   yaml:"block_scope"`
	HeaderScope  string            `toml:"header_scope"  yaml:"header_scope"`
	Commands     map[string]string `toml:"commands"      yaml:"commands"      env_interpolation:"yes"`
	Interpreter  string            `toml:"interpreter"   yaml:"interpreter"`
	ConfigTag    string            `toml:"config_tag"    yaml:"config_tag"`
	OutputTag    string            `toml:"output_tag"    yaml:"output_tag"`
	TailLines    int               `toml:"tail_lines"    yaml:"tail_lines"`
	RunDirectory string            `toml:"run_directory" yaml:"run_directory" env_interpolation:"yes"`
	Transcript   string            `toml:"transcript"    yaml:"transcript"    env_interpolation:"yes"`

	// Source is the file the settings were read from, empty for defaults.
	Source string `toml:"-" yaml:"-"`
}

// Default returns settings with every key at its default.
func Default() *Settings {
	s := &Settings{TailLines: DefaultTailLines}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.BlockScope == "" {
		s.BlockScope = document.ScopeFencedBlock
	}
	if s.HeaderScope == "" {
		s.HeaderScope = document.ScopeHeading
	}
	if len(s.Commands) == 0 {
		s.Commands = map[string]string{DefaultInterpreter: "/bin/sh"}
	}
	if s.Interpreter == "" {
		s.Interpreter = DefaultInterpreter
	}
	if s.ConfigTag == "" {
		s.ConfigTag = DefaultConfigTag
	}
	if s.OutputTag == "" {
		s.OutputTag = DefaultOutputTag
	}
	if s.RunDirectory == "" {
		s.RunDirectory = DefaultRunDirectory
	}
	if s.Transcript == "" {
		s.Transcript = DefaultTranscript
	}
	if s.LogFormat == "" {
		s.LogFormat = DefaultLogFormat
	}
}

// FormatFromPath picks the syntax from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedExtension, filepath.Ext(path))
}

// Load reads settings from path. An empty path yields the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		return Default(), nil
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// Parse decodes data in the given format. Unknown keys are rejected, environment references
// expanded, and unset keys filled with defaults.
func Parse(data []byte, format Format) (*Settings, error) {
	s := &Settings{TailLines: DefaultTailLines}

	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(s); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// an empty document decodes to io.EOF
		if err := dec.Decode(s); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, format)
	}

	if err := interpolation.InterpolateStruct(s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	s.applyDefaults()
	return s, nil
}

// Shell returns the executable configured for the selected interpreter.
func (s *Settings) Shell() string {
	return s.Commands[s.Interpreter]
}

// CommandsCopy returns a copy of the interpreter mapping.
func (s *Settings) CommandsCopy() map[string]string {
	return maps.Clone(s.Commands)
}
