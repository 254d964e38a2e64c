package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Source names where a resolved value came from.
type Source string

const (
	SourceCLI        Source = "cli"
	SourceEnv        Source = "env"
	SourceFile       Source = "file"
	SourceProperties Source = "properties"
	SourceDefault    Source = "default"
)

// FileName is the config file looked up in the working directory and in
// the user config directory.
const FileName = ".tabledoc.yaml"

// Resolved is a validated Config plus where each value came from.
type Resolved struct {
	Config
	// File is the config file that was read, if any.
	File    string
	Sources map[string]Source
}

// SourceOf returns the source of key, or SourceDefault.
func (r *Resolved) SourceOf(key string) Source {
	if s, ok := r.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Log writes each resolved value and its source at debug level.
func (r *Resolved) Log(ctx context.Context) {
	log := clog.FromContext(ctx)
	if r.File != "" {
		log.Debugf("config file: %s", r.File)
	}
	keys := []string{"format", "inputDir", "outputDir", "expectationPattern", "scenarioColumn", "layout", "align", "index", "indexTitle", "indexDepth", "templateDir", "theme", "debug"}
	values := map[string]any{
		"format": r.Format, "inputDir": r.InputDir, "outputDir": r.OutputDir,
		"expectationPattern": r.ExpectationPattern, "scenarioColumn": r.ScenarioColumn,
		"layout": r.Layout, "align": r.Align, "index": r.Index, "indexTitle": r.IndexTitle,
		"indexDepth": r.IndexDepth, "templateDir": r.TemplateDir,
		"theme": r.Theme, "debug": r.Debug,
	}
	for _, k := range keys {
		log.Debugf("config %s=%v (%s)", k, values[k], r.SourceOf(k))
	}
}

// ResolveConfig merges defaults, the config file, the environment and cli
// in increasing priority and validates the result.
func ResolveConfig(ctx context.Context, cli Overrides) (*Resolved, error) {
	path, err := FindConfigFile()
	if err != nil {
		return nil, err
	}
	var file Overrides
	if path != "" {
		if file, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	env, err := LoadEnv(ctx, nil)
	if err != nil {
		return nil, err
	}
	return Resolve(path, file, env, cli)
}

// Resolve merges already loaded layers. It is ResolveConfig without I/O.
func Resolve(path string, file, env, cli Overrides) (*Resolved, error) {
	r := &Resolved{Config: Default(), File: path, Sources: make(map[string]Source)}
	file.apply(&r.Config, r.Sources, SourceFile)
	env.apply(&r.Config, r.Sources, SourceEnv)
	cli.apply(&r.Config, r.Sources, SourceCLI)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// FindConfigFile returns ./.tabledoc.yaml if present, else the copy under
// the user config directory, else "".
func FindConfigFile() (string, error) {
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", &Error{Field: "config file", Value: FileName, Err: err}
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return "", nil
	}
	xdgPath := filepath.Join(configHome, "tabledoc", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath, nil
	}
	return "", nil
}

// LoadFile reads one YAML config file. Unknown keys are rejected.
func LoadFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, &Error{Field: "config file", Value: path, Err: err}
	}
	var o Overrides
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return Overrides{}, &Error{Field: "config file", Value: path, Err: err}
	}
	return o, nil
}

// LoadEnv reads TABLEDOC_* variables. A nil lookuper reads the process
// environment.
func LoadEnv(ctx context.Context, lookuper envconfig.Lookuper) (Overrides, error) {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	var o Overrides
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &o, Lookuper: lookuper}); err != nil {
		return Overrides{}, &Error{Field: "environment", Err: err}
	}
	return o, nil
}

// InputSource says how the input directory was chosen.
type InputSource string

const (
	InputConfigured InputSource = "configured"
	InputFallback   InputSource = "fallback"
	InputNone       InputSource = "none"
)

// FallbackInputDirs are tried, relative to the base directory, when no
// input directory is configured.
var FallbackInputDirs = []string{"build/tabledoc", "target/tabledoc"}

// ResolveInputDir picks the directory to read record spools from. A
// configured directory wins and must exist. Otherwise the first fallback
// that contains a spool file is used.
func ResolveInputDir(base, configured string, hasRecords func(dir string) bool) (string, InputSource, error) {
	if configured != "" {
		dir := configured
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}
		info, err := os.Stat(dir)
		if err != nil {
			return "", InputNone, &Error{Field: "inputDir", Value: configured, Err: err}
		}
		if !info.IsDir() {
			return "", InputNone, &Error{Field: "inputDir", Value: configured, Err: fmt.Errorf("not a directory")}
		}
		return dir, InputConfigured, nil
	}

	for _, c := range FallbackInputDirs {
		dir := filepath.Join(base, c)
		if info, err := os.Stat(dir); err == nil && info.IsDir() && hasRecords(dir) {
			return dir, InputFallback, nil
		}
	}
	return "", InputNone, nil
}
