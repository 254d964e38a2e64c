package spool

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dkoosis/tabledoc/pkg/aggregate"
	"github.com/dkoosis/tabledoc/pkg/record"
)

// Writer appends entries to a uniquely named spool file so that several
// test processes can share one input directory. Safe for concurrent use.
type Writer struct {
	mu   sync.Mutex
	path string
	f    *os.File
	enc  *yaml.Encoder
}

// NewWriter creates dir if needed and opens records-<uuid>.yaml inside it.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating spool directory: %w", err)
	}
	path := filepath.Join(dir, "records-"+uuid.NewString()+".yaml")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating spool file: %w", err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return &Writer{path: path, f: f, enc: enc}, nil
}

// Path returns the file being written.
func (w *Writer) Path() string { return w.path }

// Append writes one row record.
func (w *Writer) Append(r record.Row) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return w.encode(Entry{Row: r})
}

// Declare writes a table declaration.
func (w *Writer) Declare(ref aggregate.TableRef) error {
	return w.encode(Entry{Kind: KindTable, Row: record.Row{
		Suite:            ref.Suite,
		Scenario:         ref.Scenario,
		Table:            ref.Table,
		TableTitle:       ref.Title,
		TableDescription: ref.Description,
	}})
}

func (w *Writer) encode(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return fmt.Errorf("spool writer %s is closed", w.path)
	}
	if err := w.enc.Encode(e); err != nil {
		return fmt.Errorf("writing spool entry: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return nil
	}
	encErr := w.enc.Close()
	w.enc = nil
	if err := w.f.Close(); err != nil {
		return err
	}
	return encErr
}
