// Package config loads project settings from .ngtmpls.hcl or .ngtmpls.yaml and
// indentation from .editorconfig.
package config

import (
	"bytes"
	"context"
	"go/token"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/ngtmpls/pkg/dom"
	"github.com/walteh/ngtmpls/pkg/projector"
)

const (
	HCLFileName          = ".ngtmpls.hcl"
	YAMLFileName         = ".ngtmpls.yaml"
	EditorConfigFileName = ".editorconfig"
)

// Tag maps a custom element to its Go type in the element package.
type Tag struct {
	Name string `json:"name" hcl:"name,label" yaml:"name"`
	Type string `json:"type" hcl:"type,attr" yaml:"type"`
}

type Config struct {
	ElementPackage string   `json:"element_package,omitempty" hcl:"element_package,optional" yaml:"element_package,omitempty"`
	Receiver       string   `json:"receiver,omitempty" hcl:"receiver,optional" yaml:"receiver,omitempty"`
	EventParam     string   `json:"event_param,omitempty" hcl:"event_param,optional" yaml:"event_param,omitempty"`
	Include        []string `json:"include,omitempty" hcl:"include,optional" yaml:"include,omitempty"`
	Exclude        []string `json:"exclude,omitempty" hcl:"exclude,optional" yaml:"exclude,omitempty"`
	Tags           []*Tag   `json:"tags,omitempty" hcl:"tag,block" yaml:"tags,omitempty"`

	// Indent comes from .editorconfig, never from the project file.
	Indent string `json:"-" yaml:"-"`
	// Path is the file the config was loaded from, empty for defaults.
	Path string `json:"-" yaml:"-"`
}

func Default() *Config {
	return &Config{}
}

// Load reads a config file, choosing the format by extension.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg *Config
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		cfg, err = parseYAML(data)
	} else {
		cfg, err = parseHCL(data, path)
	}
	if err != nil {
		return nil, err
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func parseYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

func parseHCL(data []byte, path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_element_package": cty.StringVal(projector.DefaultElementPackage),
		},
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, ctx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}
	return &cfg, nil
}

// Validate reports every setting that cannot end up in generated Go code.
func (c *Config) Validate() error {
	var result *multierror.Error

	ident := func(what, v string) {
		if v != "" && !token.IsIdentifier(v) {
			result = multierror.Append(result, errors.Errorf("%s %q is not a Go identifier", what, v))
		}
	}
	ident("element_package", c.ElementPackage)
	ident("receiver", c.Receiver)
	ident("event_param", c.EventParam)

	seen := map[string]bool{}
	for _, t := range c.Tags {
		name := strings.ToLower(t.Name)
		if name == "" {
			result = multierror.Append(result, errors.New("tag with an empty name"))
			continue
		}
		if seen[name] {
			result = multierror.Append(result, errors.Errorf("tag %q declared twice", t.Name))
		}
		seen[name] = true
		if !token.IsIdentifier(t.Type) || !token.IsExported(t.Type) {
			result = multierror.Append(result, errors.Errorf("tag %q: type %q is not an exported Go identifier", t.Name, t.Type))
		}
	}

	return result.ErrorOrNil()
}

// CustomElements maps custom tag names to their types.
func (c *Config) CustomElements() map[string]string {
	out := make(map[string]string, len(c.Tags))
	for _, t := range c.Tags {
		out[t.Name] = t.Type
	}
	return out
}

func (c *Config) ProjectorOptions() projector.Options {
	return projector.Options{
		Receiver:       c.Receiver,
		ElementPackage: c.ElementPackage,
		EventParam:     c.EventParam,
		Indent:         c.Indent,
		Elements:       dom.NewCatalog(c.CustomElements()),
	}
}

// Discover walks up from dir to the file system root and loads the first
// project file found, falling back to defaults. The indent is then resolved
// from .editorconfig for Go files in dir.
func Discover(ctx context.Context, fs afero.Fs, dir string) (*Config, error) {
	cfg := Default()

	for d := filepath.Clean(dir); ; d = filepath.Dir(d) {
		found := ""
		for _, name := range []string{HCLFileName, YAMLFileName} {
			if ok, _ := afero.Exists(fs, filepath.Join(d, name)); ok {
				found = filepath.Join(d, name)
				break
			}
		}
		if found != "" {
			loaded, err := Load(fs, found)
			if err != nil {
				return nil, err
			}
			cfg = loaded
			break
		}
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}

	indent, err := EditorIndent(fs, filepath.Join(dir, "component.go"))
	if err != nil {
		return nil, err
	}
	cfg.Indent = indent

	zerolog.Ctx(ctx).Debug().
		Str("dir", dir).
		Str("config", cfg.Path).
		Int("tags", len(cfg.Tags)).
		Str("indent", strconv.Quote(cfg.Indent)).
		Msg("discovered config")

	return cfg, nil
}

// EditorIndent resolves the indentation for fileName from the .editorconfig
// files above it. It returns "" when none of them says anything.
func EditorIndent(fs afero.Fs, fileName string) (string, error) {
	var files []string
	for d := filepath.Dir(filepath.Clean(fileName)); ; d = filepath.Dir(d) {
		p := filepath.Join(d, EditorConfigFileName)
		if ok, _ := afero.Exists(fs, p); ok {
			files = append(files, p)
		}
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}

	var style, size string
	// nearest file wins, so apply from the outermost in
	sort.SliceStable(files, func(i, j int) bool { return len(files[i]) < len(files[j]) })
	for i := len(files) - 1; i >= 0; i-- {
		def, root, err := definitionFor(fs, files[i], fileName)
		if err != nil {
			return "", err
		}
		if style == "" {
			style = def.IndentStyle
		}
		if size == "" {
			size = def.IndentSize
		}
		if root {
			break
		}
	}

	switch {
	case style == editorconfig.IndentStyleTab, size == "tab":
		return "\t", nil
	case size != "":
		n, err := strconv.Atoi(size)
		if err != nil || n < 1 {
			return "", errors.Errorf("invalid indent_size %q", size)
		}
		return strings.Repeat(" ", n), nil
	}
	return "", nil
}

func definitionFor(fs afero.Fs, configPath, fileName string) (*editorconfig.Definition, bool, error) {
	f, err := fs.Open(configPath)
	if err != nil {
		return nil, false, errors.Errorf("opening %s: %w", configPath, err)
	}
	defer f.Close()

	ec, err := editorconfig.Parse(f)
	if err != nil {
		return nil, false, errors.Errorf("parsing %s: %w", configPath, err)
	}

	rel, err := filepath.Rel(filepath.Dir(configPath), fileName)
	if err != nil {
		return nil, false, errors.Errorf("relative path of %s: %w", fileName, err)
	}

	def, err := ec.GetDefinitionForFilename(filepath.ToSlash(rel))
	if err != nil {
		return nil, false, errors.Errorf("matching %s in %s: %w", rel, configPath, err)
	}
	return def, ec.Root, nil
}
