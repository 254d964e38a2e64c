package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestResolve_PriorityOrder(t *testing.T) {
	tests := []struct {
		name       string
		file       Overrides
		env        Overrides
		cli        Overrides
		wantFormat string
		wantSource Source
	}{
		{
			name:       "defaults when nothing is set",
			wantFormat: "markdown",
			wantSource: SourceDefault,
		},
		{
			name:       "file over defaults",
			file:       Overrides{Format: ptr("asciidoc")},
			wantFormat: "asciidoc",
			wantSource: SourceFile,
		},
		{
			name:       "env over file",
			file:       Overrides{Format: ptr("asciidoc")},
			env:        Overrides{Format: ptr("md")},
			wantFormat: "md",
			wantSource: SourceEnv,
		},
		{
			name:       "cli over env",
			env:        Overrides{Format: ptr("md")},
			cli:        Overrides{Format: ptr("adoc")},
			wantFormat: "adoc",
			wantSource: SourceCLI,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Resolve("", tt.file, tt.env, tt.cli)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, r.Format)
			assert.Equal(t, tt.wantSource, r.SourceOf("format"))
		})
	}
}

func TestResolve_FalseOverridesTrueDefault(t *testing.T) {
	r, err := Resolve("", Overrides{Index: ptr(false)}, Overrides{}, Overrides{})
	require.NoError(t, err)
	assert.False(t, r.Index)
	assert.Equal(t, SourceFile, r.SourceOf("index"))
}

func TestResolve_InvalidValueFails(t *testing.T) {
	_, err := Resolve("", Overrides{}, Overrides{ExpectationPattern: ptr("(")}, Overrides{})
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "expectationPattern", cfgErr.Field)
}

func TestLoadEnv(t *testing.T) {
	o, err := LoadEnv(context.Background(), envconfig.MapLookuper(map[string]string{
		"TABLEDOC_FORMAT":       "asciidoc",
		"TABLEDOC_OUTPUT_DIR":   "docs",
		"TABLEDOC_INDEX":        "false",
		"TABLEDOC_INDEX_DEPTH":  "3",
		"TABLEDOC_TEMPLATE_DIR": "templates",
	}))
	require.NoError(t, err)
	require.NotNil(t, o.Format)
	assert.Equal(t, "asciidoc", *o.Format)
	assert.Equal(t, "docs", *o.OutputDir)
	assert.False(t, *o.Index)
	assert.Equal(t, 3, *o.IndexDepth)
	assert.Equal(t, "templates", *o.TemplateDir)
	assert.Nil(t, o.Layout, "unset variables stay nil")
	assert.Nil(t, o.Align)
}

func TestLoadEnv_BadBoolean(t *testing.T) {
	_, err := LoadEnv(context.Background(), envconfig.MapLookuper(map[string]string{"TABLEDOC_ALIGN": "maybe"}))
	var cfgErr *Error
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("format: asciidoc\nexpectationPattern: \"Expected.*\"\nlayout: consolidated\n"), 0o600))

	o, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "asciidoc", *o.Format)
	assert.Equal(t, "Expected.*", *o.ExpectationPattern)
	assert.Equal(t, "consolidated", *o.Layout)
	assert.Nil(t, o.OutputDir)
}

func TestLoadFile_EmptyAndUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err := LoadFile(empty)
	require.NoError(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("outputDirectory: x\n"), 0o600))
	_, err = LoadFile(unknown)
	var cfgErr *Error
	assert.True(t, errors.As(err, &cfgErr))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestFindConfigFile_PrefersLocalFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("format: md\n"), 0o600))

	got, err := FindConfigFile()
	require.NoError(t, err)
	assert.Equal(t, FileName, got)
}

func TestFindConfigFile_UsesXDGWhenLocalMissing(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	xdgRoot := filepath.Join(dir, "xdg")
	require.NoError(t, os.MkdirAll(filepath.Join(xdgRoot, "tabledoc"), 0o755))
	want := filepath.Join(xdgRoot, "tabledoc", FileName)
	require.NoError(t, os.WriteFile(want, []byte("format: md\n"), 0o600))
	t.Setenv("XDG_CONFIG_HOME", xdgRoot)
	t.Setenv("HOME", filepath.Join(dir, "home"))

	got, err := FindConfigFile()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveConfig_ReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "none"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("format: asciidoc\noutputDir: from-file\n"), 0o600))
	t.Setenv("TABLEDOC_OUTPUT_DIR", "from-env")

	r, err := ResolveConfig(context.Background(), Overrides{Align: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, FileName, r.File)
	assert.Equal(t, "asciidoc", r.Format)
	assert.Equal(t, SourceFile, r.SourceOf("format"))
	assert.Equal(t, "from-env", r.OutputDir)
	assert.Equal(t, SourceEnv, r.SourceOf("outputDir"))
	assert.True(t, r.Align)
	assert.Equal(t, SourceCLI, r.SourceOf("align"))
}

func TestResolveInputDir(t *testing.T) {
	base := t.TempDir()
	always := func(string) bool { return true }

	dir, src, err := ResolveInputDir(base, "", always)
	require.NoError(t, err)
	assert.Equal(t, InputNone, src)
	assert.Empty(t, dir)

	require.NoError(t, os.MkdirAll(filepath.Join(base, "target", "tabledoc"), 0o755))
	dir, src, err = ResolveInputDir(base, "", always)
	require.NoError(t, err)
	assert.Equal(t, InputFallback, src)
	assert.Equal(t, filepath.Join(base, "target", "tabledoc"), dir)

	require.NoError(t, os.MkdirAll(filepath.Join(base, "build", "tabledoc"), 0o755))
	dir, _, err = ResolveInputDir(base, "", func(d string) bool { return filepath.Base(filepath.Dir(d)) == "target" })
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "target", "tabledoc"), dir, "fallbacks without records are skipped")

	dir, src, err = ResolveInputDir(base, "build/tabledoc", always)
	require.NoError(t, err)
	assert.Equal(t, InputConfigured, src)
	assert.Equal(t, filepath.Join(base, "build", "tabledoc"), dir)

	_, _, err = ResolveInputDir(base, "missing", always)
	var cfgErr *Error
	assert.True(t, errors.As(err, &cfgErr))
}
