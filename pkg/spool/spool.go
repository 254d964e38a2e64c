// Package spool reads and writes the partial-results files that test
// workers leave in the input directory: YAML streams with one row record
// (or table declaration) per document.
package spool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dkoosis/tabledoc/pkg/aggregate"
	"github.com/dkoosis/tabledoc/pkg/record"
)

// Kinds of spool documents.
const (
	KindRow   = "row"
	KindTable = "table"
)

// Entry is one document of a spool stream. Kind defaults to "row".
type Entry struct {
	Kind       string `yaml:"kind,omitempty"`
	record.Row `yaml:",inline"`
}

// IsTable reports whether the entry declares a table rather than a row.
func (e Entry) IsTable() bool { return e.Kind == KindTable }

// TableRef converts a table declaration for the aggregator.
func (e Entry) TableRef() aggregate.TableRef {
	return aggregate.TableRef{
		Suite:       e.Suite,
		Scenario:    e.Scenario,
		Table:       e.Table,
		Title:       e.TableTitle,
		Description: e.TableDescription,
	}
}

// SyntaxError wraps a YAML error that ended a spool stream.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string { return "decoding spool document: " + e.Err.Error() }

func (e *SyntaxError) Unwrap() error { return e.Err }

// ProcessFunc receives each decoded entry.
type ProcessFunc func(Entry) error

// Decode reads every document in r and calls fn for each. Documents with an
// unknown kind or mistyped fields are counted as malformed and skipped; YAML
// syntax errors end the stream because the decoder cannot resynchronize.
func Decode(r io.Reader, fn ProcessFunc) (int, error) {
	dec := yaml.NewDecoder(r)
	var malformed int
	for {
		var e Entry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return malformed, nil
		}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			// The document was parsed; only its fields did not fit.
			malformed++
			continue
		}
		if err != nil {
			return malformed, &SyntaxError{Err: err}
		}
		switch e.Kind {
		case "", KindRow:
			e.Kind = KindRow
		case KindTable:
		default:
			malformed++
			continue
		}
		if err := fn(e); err != nil {
			return malformed, err
		}
	}
}

// DecodeFile is Decode over a named file.
func DecodeFile(path string, fn ProcessFunc) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n, err := Decode(f, fn)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// IsSpoolFile reports whether name has a spool file extension.
func IsSpoolFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Files lists spool files under dir in lexical order.
func Files(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() && IsSpoolFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing spool files in %s: %w", dir, err)
	}
	return files, nil
}
