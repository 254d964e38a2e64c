package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/dkoosis/tabledoc/pkg/column"
	"github.com/dkoosis/tabledoc/pkg/render"
)

// Defaults.
const (
	DefaultFormat     = string(render.Markdown)
	DefaultOutputDir  = "build/docs/tables"
	DefaultLayout     = string(render.PerSuite)
	DefaultTheme      = "default"
	DefaultIndexTitle = "Table Tests"
	DefaultIndexDepth = 1
)

// Config is the validated settings for one generation run. IndexDepth is
// how many levels the index lists, 0 meaning all of them. TemplateDir holds
// suite.<format>.tmpl and index.<format>.tmpl files for template formats.
type Config struct {
	Format             string
	InputDir           string
	OutputDir          string
	ExpectationPattern string
	ScenarioColumn     string
	Layout             string
	Align              bool
	Index              bool
	IndexTitle         string
	IndexDepth         int
	TemplateDir        string
	Theme              string
	Debug              bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Format:     DefaultFormat,
		OutputDir:  DefaultOutputDir,
		Layout:     DefaultLayout,
		Index:      true,
		IndexTitle: DefaultIndexTitle,
		IndexDepth: DefaultIndexDepth,
		Theme:      DefaultTheme,
	}
}

// Error is a configuration problem. It aborts a run before any row is
// ingested.
type Error struct {
	Field string
	Value string
	Err   error
}

func (e *Error) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Validate checks every field and returns the first problem as *Error.
func (c Config) Validate() error {
	if _, err := render.ResolveFormat(c.Format, c.TemplateDir); err != nil {
		return &Error{Field: "format", Value: c.Format, Err: err}
	}
	if _, err := column.New(c.ExpectationPattern); err != nil {
		return &Error{Field: "expectationPattern", Value: c.ExpectationPattern, Err: errors.Unwrap(err)}
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return &Error{Field: "outputDir", Err: errors.New("must not be empty")}
	}
	if _, err := ParseLayout(c.Layout); err != nil {
		return &Error{Field: "layout", Value: c.Layout, Err: err}
	}
	if c.IndexDepth < 0 {
		return &Error{Field: "indexDepth", Value: strconv.Itoa(c.IndexDepth), Err: errors.New("must be 0 (all levels) or positive")}
	}
	return nil
}

// RenderFormat returns the resolved format; call Validate first.
func (c Config) RenderFormat() render.Format {
	f, _ := render.ResolveFormat(c.Format, c.TemplateDir)
	return f
}

// RenderIndexDepth maps IndexDepth 0 to every level.
func (c Config) RenderIndexDepth() int {
	if c.IndexDepth == 0 {
		return render.MaxIndexDepth
	}
	return c.IndexDepth
}

// RenderLayout returns the parsed layout; call Validate first.
func (c Config) RenderLayout() render.Layout {
	l, _ := ParseLayout(c.Layout)
	return l
}

// ParseLayout accepts per-suite (default) or consolidated.
func ParseLayout(s string) (render.Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(render.PerSuite):
		return render.PerSuite, nil
	case string(render.Consolidated), "single":
		return render.Consolidated, nil
	}
	return "", fmt.Errorf("unknown layout (expected %s or %s)", render.PerSuite, render.Consolidated)
}

// Overrides is one layer of optional settings. Nil fields are unset. The
// same shape is read from the YAML file, the environment, property maps
// and CLI flags.
type Overrides struct {
	Format             *string `yaml:"format" env:"TABLEDOC_FORMAT,noinit" mapstructure:"format"`
	InputDir           *string `yaml:"inputDir" env:"TABLEDOC_INPUT_DIR,noinit" mapstructure:"inputDir"`
	OutputDir          *string `yaml:"outputDir" env:"TABLEDOC_OUTPUT_DIR,noinit" mapstructure:"outputDir"`
	ExpectationPattern *string `yaml:"expectationPattern" env:"TABLEDOC_EXPECTATION_PATTERN,noinit" mapstructure:"expectationPattern"`
	ScenarioColumn     *string `yaml:"scenarioColumn" env:"TABLEDOC_SCENARIO_COLUMN,noinit" mapstructure:"scenarioColumn"`
	Layout             *string `yaml:"layout" env:"TABLEDOC_LAYOUT,noinit" mapstructure:"layout"`
	Align              *bool   `yaml:"align" env:"TABLEDOC_ALIGN,noinit" mapstructure:"align"`
	Index              *bool   `yaml:"index" env:"TABLEDOC_INDEX,noinit" mapstructure:"index"`
	IndexTitle         *string `yaml:"indexTitle" env:"TABLEDOC_INDEX_TITLE,noinit" mapstructure:"indexTitle"`
	IndexDepth         *int    `yaml:"indexDepth" env:"TABLEDOC_INDEX_DEPTH,noinit" mapstructure:"indexDepth"`
	TemplateDir        *string `yaml:"templateDir" env:"TABLEDOC_TEMPLATE_DIR,noinit" mapstructure:"templateDir"`
	Theme              *string `yaml:"theme" env:"TABLEDOC_THEME,noinit" mapstructure:"theme"`
	Debug              *bool   `yaml:"debug" env:"TABLEDOC_DEBUG,noinit" mapstructure:"debug"`
}

// apply copies every set field of o onto c and records src for it.
func (o Overrides) apply(c *Config, sources map[string]Source, src Source) {
	setString := func(key string, dst *string, v *string) {
		if v != nil {
			*dst = *v
			sources[key] = src
		}
	}
	setBool := func(key string, dst *bool, v *bool) {
		if v != nil {
			*dst = *v
			sources[key] = src
		}
	}
	setString("format", &c.Format, o.Format)
	setString("inputDir", &c.InputDir, o.InputDir)
	setString("outputDir", &c.OutputDir, o.OutputDir)
	setString("expectationPattern", &c.ExpectationPattern, o.ExpectationPattern)
	setString("scenarioColumn", &c.ScenarioColumn, o.ScenarioColumn)
	setString("layout", &c.Layout, o.Layout)
	setBool("align", &c.Align, o.Align)
	setBool("index", &c.Index, o.Index)
	setString("indexTitle", &c.IndexTitle, o.IndexTitle)
	if o.IndexDepth != nil {
		c.IndexDepth = *o.IndexDepth
		sources["indexDepth"] = src
	}
	setString("templateDir", &c.TemplateDir, o.TemplateDir)
	setString("theme", &c.Theme, o.Theme)
	setBool("debug", &c.Debug, o.Debug)
}

// FromProperties builds a validated Config from a loose property map, as
// handed over by build tool plugins. Keys match the YAML keys; values are
// converted with weak typing, so "true" and "false" are accepted for
// booleans.
func FromProperties(props map[string]any) (Config, error) {
	var o Overrides
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &o,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(props); err != nil {
		return Config{}, &Error{Field: "properties", Err: err}
	}
	cfg := Default()
	o.apply(&cfg, map[string]Source{}, SourceProperties)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
