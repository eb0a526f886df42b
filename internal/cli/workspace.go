package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/config"
	"github.com/roach88/trustlab/internal/export"
	"github.com/roach88/trustlab/internal/session"
	"github.com/roach88/trustlab/internal/store"
)

// backend is the persistence the commands need: the session record plus
// the export log.
type backend interface {
	session.Store
	export.Log
	ListExports(ctx context.Context, experimentID string) ([]store.ExportRecord, error)
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

var (
	_ backend = (*store.Store)(nil)
	_ backend = (*store.Memory)(nil)
)

// workspace is everything one command invocation works on.
type workspace struct {
	cat     *catalog.Catalog
	backend backend
	clock   session.Clock
	machine *session.Machine
}

// loadCatalog returns the catalog selected by --catalog.
func (o *RootOptions) loadCatalog() (*catalog.Catalog, error) {
	if o.Catalog == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadFile(o.Catalog)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "failed to load catalog", Err: err, Reason: ErrCodeCatalog}
	}
	return cat, nil
}

// storage says which backends a command can work with.
type storage int

const (
	// durableOnly commands apply one input per process and rely on the
	// database to carry the session to the next command.
	durableOnly storage = iota
	// memoryOK commands keep the session for their whole lifetime, so the
	// ephemeral in-memory store is usable.
	memoryOK
)

// openWorkspace loads the catalog, opens the store and builds a machine.
// The caller must Close the workspace.
func openWorkspace(opts *RootOptions, want storage) (*workspace, error) {
	cfg := opts.config()
	if cfg.Ephemeral && want == durableOnly {
		return nil, &ExitError{
			Code: ExitCommandError,
			Message: fmt.Sprintf("%s is set: the in-memory session would be lost when this command exits; "+
				"unset it or use \"trustlab run\"", config.EnvEphemeral),
			Reason: ErrCodeEphemeral,
		}
	}

	cat, err := opts.loadCatalog()
	if err != nil {
		return nil, err
	}

	var b backend
	if cfg.Ephemeral {
		slog.Debug("using in-memory store")
		b = store.NewMemory()
	} else {
		slog.Debug("opening database", "path", opts.DB)
		st, err := store.Open(opts.DB)
		if err != nil {
			return nil, &ExitError{Code: ExitCommandError, Message: "failed to open database", Err: err, Reason: ErrCodeDatabase}
		}
		b = st
	}

	clock := opts.Clock
	if clock == nil {
		clock = session.SystemClock{}
	}
	tz := cfg.Timezone
	if tz == "" {
		tz = config.LocalTimezone()
	}

	machineOpts := []session.Option{
		session.WithClock(clock),
		session.WithEnv(session.Env{UserAgent: cfg.UserAgent, Timezone: tz}),
		session.WithLogger(slog.Default()),
	}
	if opts.IDs != nil {
		machineOpts = append(machineOpts, session.WithIDGenerator(opts.IDs))
	}

	return &workspace{
		cat:     cat,
		backend: b,
		clock:   clock,
		machine: session.New(cat, b, machineOpts...),
	}, nil
}

// Close releases the store.
func (w *workspace) Close() {
	if err := w.backend.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// now is the workspace clock reading.
func (w *workspace) now() time.Time {
	return w.clock.Now()
}
