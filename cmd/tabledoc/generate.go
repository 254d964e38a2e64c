package main

import (
	"fmt"
	"path/filepath"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dkoosis/tabledoc"
	"github.com/dkoosis/tabledoc/internal/config"
	"github.com/dkoosis/tabledoc/internal/metrics"
	"github.com/dkoosis/tabledoc/pkg/render"
	"github.com/dkoosis/tabledoc/pkg/spool"
)

type generateOptions struct {
	format             string
	inputDir           string
	outputDir          string
	expectationPattern string
	scenarioColumn     string
	layout             string
	align              bool
	index              bool
	indexTitle         string
	indexDepth         int
	templateDir        string
	theme              string
	debug              bool
	metricsFile        string
	failOnRows         bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render spooled row records into documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}
	opts.bind(cmd)
	return cmd
}

func (o *generateOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.format, "format", config.DefaultFormat, "Output format: markdown, asciidoc or a template format")
	f.StringVar(&o.templateDir, "template-dir", "", "Directory of suite.<format>.tmpl and index.<format>.tmpl files")
	f.StringVar(&o.inputDir, "input-dir", "", "Directory holding record spool files (default: build/tabledoc or target/tabledoc)")
	f.StringVarP(&o.outputDir, "output-dir", "o", config.DefaultOutputDir, "Directory receiving documents")
	f.StringVar(&o.expectationPattern, "expectation-pattern", "", "Regular expression matching expectation column headers")
	f.StringVar(&o.scenarioColumn, "scenario-column", "", "Column holding the row's scenario name")
	f.StringVar(&o.layout, "layout", config.DefaultLayout, "Document layout: per-suite or consolidated")
	f.BoolVar(&o.align, "align", false, "Pad Markdown table cells to equal width")
	f.BoolVar(&o.index, "index", true, "Write an index document linking all suites")
	f.StringVar(&o.indexTitle, "index-title", config.DefaultIndexTitle, "Heading of the index or consolidated document")
	f.IntVar(&o.indexDepth, "index-depth", config.DefaultIndexDepth, "Index levels: 1 suites, 2 scenarios, 3 tables, 0 all")
	f.StringVar(&o.theme, "theme", config.DefaultTheme, "Summary theme: default, orca, mono")
	f.BoolVar(&o.debug, "debug", false, "Log resolved configuration and every file written")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Write run counters to this file in Prometheus textfile format")
	f.BoolVar(&o.failOnRows, "fail-on-failed-rows", false, "Exit 1 when any table row did not pass")
}

// overrides returns the flags the user actually set.
func (o *generateOptions) overrides(flags *pflag.FlagSet) config.Overrides {
	var ov config.Overrides
	str := func(name string, v *string) *string {
		if flags.Changed(name) {
			return v
		}
		return nil
	}
	boolean := func(name string, v *bool) *bool {
		if flags.Changed(name) {
			return v
		}
		return nil
	}
	ov.Format = str("format", &o.format)
	ov.InputDir = str("input-dir", &o.inputDir)
	ov.OutputDir = str("output-dir", &o.outputDir)
	ov.ExpectationPattern = str("expectation-pattern", &o.expectationPattern)
	ov.ScenarioColumn = str("scenario-column", &o.scenarioColumn)
	ov.Layout = str("layout", &o.layout)
	ov.Align = boolean("align", &o.align)
	ov.Index = boolean("index", &o.index)
	ov.IndexTitle = str("index-title", &o.indexTitle)
	if flags.Changed("index-depth") {
		ov.IndexDepth = &o.indexDepth
	}
	ov.TemplateDir = str("template-dir", &o.templateDir)
	ov.Theme = str("theme", &o.theme)
	ov.Debug = boolean("debug", &o.debug)
	return ov
}

func (o *generateOptions) run(cmd *cobra.Command) error {
	ctx := withLogger(cmd.Context(), cmd.ErrOrStderr(), o.debug)

	resolved, err := config.ResolveConfig(ctx, o.overrides(cmd.Flags()))
	if err != nil {
		return err
	}
	if resolved.Debug {
		ctx = withLogger(cmd.Context(), cmd.ErrOrStderr(), true)
	}
	resolved.Log(ctx)
	log := clog.FromContext(ctx)

	cfg := resolved.Config
	dir, source, err := config.ResolveInputDir(".", cfg.InputDir, func(dir string) bool {
		files, err := spool.Files(ctx, dir)
		return err == nil && len(files) > 0
	})
	if err != nil {
		return err
	}
	cfg.InputDir = dir
	switch source {
	case config.InputNone:
		log.Warnf("no input directory found (tried %v); writing only what was ingested", config.FallbackInputDirs)
	default:
		log.Infof("input directory %s (%s)", dir, source)
	}

	rec := metrics.New()
	eng, err := tabledoc.New(cfg, tabledoc.WithMetrics(rec))
	if err != nil {
		return err
	}
	res, err := eng.Run(ctx)
	if err != nil {
		return err
	}

	if o.metricsFile != "" {
		if err := rec.WriteFile(o.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	theme := render.ThemeByName(cfg.Theme)
	if !isTTYWriter(out) {
		theme = render.MonoTheme()
	}
	fmt.Fprint(out, render.NewTerminal(theme, termWidth(out)).Summary(res.Tree))
	if err := writeSummaryTable(out, res, cfg.OutputDir); err != nil {
		return err
	}

	if o.failOnRows && res.Failed() {
		return &exitError{code: 1}
	}
	return nil
}

func displayPath(outputDir, rel string) string {
	return filepath.ToSlash(filepath.Join(outputDir, filepath.FromSlash(rel)))
}
