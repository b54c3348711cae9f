package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/client/config"
	"github.com/dmitrijs2005/healthkeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/healthkeeper/internal/client/services"
	"github.com/dmitrijs2005/healthkeeper/internal/client/session"
	"github.com/dmitrijs2005/healthkeeper/internal/filex"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/dmitrijs2005/healthkeeper/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	resolver *services.SessionResolver
	facade   *services.IdentityFacade
	registry *prometheus.Registry
	reader   *bufio.Reader
	closers  []func() error
}

// NewApp opens the session store, dials the gateway and assembles the
// session resolver. Close releases what it opened.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, fmt.Errorf("error preparing database directory: %w", err)
	}

	db, err := kv.OpenSQLite(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	gw, err := client.NewGRPCGateway(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewCollector(reg)
	reader := bufio.NewReader(os.Stdin)
	store := kv.NewSQLiteRepository(db)

	cache := session.NewCache(store, session.NewGlobal(), logger, m)
	consent := NewTerminalConsent(reader, os.Stdout, int(os.Stdin.Fd()))
	resolver := services.NewSessionResolver(gw, cache, consent, logger,
		services.WithMaxUnverifiedTrust(c.MaxUnverifiedTrust),
		services.WithMetrics(m),
	)

	return &App{
		config:   c,
		logger:   logger,
		resolver: resolver,
		facade:   services.NewIdentityFacade(resolver, store, logger),
		registry: reg,
		reader:   reader,
		closers:  []func() error{gw.Close, db.Close},
	}, nil
}

// Run verifies the saved session and then serves the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if a.config.MetricsAddr != "" {
		a.serveMetrics(ctx)
	}

	printlnFn("Welcome to healthkeeper (type 'help' for commands)")
	_ = a.AutoLogin(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) serveMetrics(ctx context.Context) {
	srv := &http.Server{
		Addr:              a.config.MetricsAddr,
		Handler:           metrics.SetupMetricsRoute(a.registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info(ctx, "serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "metrics server stopped", "error", err.Error())
		}
	}()
	a.closers = append([]func() error{srv.Close}, a.closers...)
}

// Close releases the gateway connection and the session store.
func (a *App) Close() error {
	var err error
	for _, c := range a.closers {
		err = multierr.Append(err, c())
	}
	a.closers = nil
	return err
}
