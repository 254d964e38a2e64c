// tabledoc turns table-driven test results into Markdown or AsciiDoc.
//
// Usage:
//
//	tabledoc --input-dir build/tabledoc --output-dir docs/tables
//	tabledoc generate --format asciidoc --expectation-pattern '.*\?$'
//	tabledoc preview docs/tables/math-test.md
//
// Exit codes: 0 when every document was written, 1 when the run failed,
// 2 on configuration errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chainguard-dev/clog"
	"golang.org/x/term"

	"github.com/dkoosis/tabledoc/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// exitError carries an exit code chosen by a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "tabledoc: %v\n", err)
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return 2
	}
	return 1
}

// withLogger installs a text logger on stderr into ctx.
func withLogger(ctx context.Context, stderr io.Writer, debug bool) context.Context {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := clog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return clog.WithLogger(ctx, logger)
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width for w, defaulting to 80.
func termWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return 80
}
