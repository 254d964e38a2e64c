// Package config resolves tabledoc settings.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--format, --output-dir, --expectation-pattern, ...)
//  2. Environment variables (TABLEDOC_FORMAT, TABLEDOC_OUTPUT_DIR, ...)
//  3. YAML config file (.tabledoc.yaml in the working directory or
//     $XDG_CONFIG_HOME/tabledoc/.tabledoc.yaml)
//  4. Defaults
//
// A value set by a higher-priority source replaces lower ones; the source
// of every resolved value is kept for --debug output.
//
// Build plugins that hold loose property maps use FromProperties instead.
//
// # Environment Variables
//
//   - TABLEDOC_FORMAT: markdown or asciidoc (aliases: md, adoc, structured-markup),
//     or a template format found in TABLEDOC_TEMPLATE_DIR
//   - TABLEDOC_TEMPLATE_DIR: directory of suite.<format>.tmpl and index.<format>.tmpl files
//   - TABLEDOC_INPUT_DIR: directory holding record spool files
//   - TABLEDOC_OUTPUT_DIR: directory receiving documents
//   - TABLEDOC_EXPECTATION_PATTERN: regular expression naming expectation columns
//   - TABLEDOC_SCENARIO_COLUMN: column shown with the scenario role
//   - TABLEDOC_LAYOUT: per-suite or consolidated
//   - TABLEDOC_INDEX_DEPTH: index levels (1 suites, 2 scenarios, 3 tables, 0 all)
//   - TABLEDOC_ALIGN, TABLEDOC_INDEX, TABLEDOC_DEBUG: booleans
//   - TABLEDOC_THEME: CLI summary theme (default, orca, mono)
package config
