package tabledoc

import (
	"context"
	"errors"
	"runtime"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/tabledoc/pkg/aggregate"
	"github.com/dkoosis/tabledoc/pkg/spool"
)

// IngestDir reads every spool file under dir, one goroutine per file up to
// GOMAXPROCS. Invalid rows and undecodable documents are logged and
// counted; only I/O errors and cancellation stop the read.
func (e *Engine) IngestDir(ctx context.Context, dir string) error {
	files, err := spool.Files(ctx, dir)
	if err != nil {
		return err
	}
	log := clog.FromContext(ctx)
	log.Infof("reading %d spool files from %s", len(files), dir)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range files {
		g.Go(func() error {
			return e.ingestFile(ctx, path)
		})
	}
	return g.Wait()
}

func (e *Engine) ingestFile(ctx context.Context, path string) error {
	log := clog.FromContext(ctx)
	var rejected int
	malformed, err := spool.DecodeFile(path, func(entry spool.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsTable() {
			return e.Declare(entry.TableRef())
		}
		err := e.Ingest(entry.Row)
		var ce *aggregate.ConsistencyError
		switch {
		case err == nil:
		case errors.As(err, &ce):
			log.Warnf("%s: %v", path, ce)
		default:
			log.Warnf("%s: skipping row: %v", path, err)
			rejected++
		}
		return nil
	})

	var syntax *spool.SyntaxError
	if errors.As(err, &syntax) {
		// The decoder cannot resume after a syntax error; the rest of the
		// file is lost but other files still count.
		log.Warnf("%v", err)
		malformed++
		err = nil
	}
	if malformed > 0 {
		log.Warnf("%s: skipped %d malformed documents", path, malformed)
	}

	e.mu.Lock()
	e.rejected += rejected
	e.malformed += malformed
	e.mu.Unlock()
	return err
}
