package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	apperrors "github.com/agbru/fizzfib/internal/errors"
	"github.com/agbru/fizzfib/internal/logging"
	"github.com/agbru/fizzfib/internal/server"
	"github.com/agbru/fizzfib/internal/stats"
)

// runServe starts the HTTP API and blocks until SIGINT or SIGTERM.
func (a *Application) runServe(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	st, closeStats, err := a.openStats(ctx)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error opening statistics store: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	defer closeStats()

	fmt.Fprintf(out, "fizzfib %s listening on %s\n", Version, a.Config.Addr)
	srv := server.NewServer(a.Factory, st, a.Config, server.WithLogger(a.Logger))
	if err := srv.ListenAndServe(ctx); err != nil {
		a.Logger.Error("server stopped", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// openStats opens the SQLite store named by --stats-db, or an in-memory
// counter when none is configured.
func (a *Application) openStats(ctx context.Context) (stats.Service, func(), error) {
	if a.Config.StatsDB == "" {
		return &stats.Memory{}, func() {}, nil
	}
	db, err := stats.Open(ctx, a.Config.StatsDB)
	if err != nil {
		return nil, nil, err
	}
	a.Logger.Info("request statistics persisted", logging.String("path", a.Config.StatsDB))
	return db, func() {
		if err := db.Close(); err != nil {
			a.Logger.Warn("closing statistics store", logging.Err(err))
		}
	}, nil
}
