// Package shell runs the pharmdesk terminal shell: the persistent chrome
// (sidebar, nav, topbar, content region), the login view and the host that
// mounts one module at a time.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmitrijs2005/pharmdesk/internal/api"
	"github.com/dmitrijs2005/pharmdesk/internal/buildinfo"
	"github.com/dmitrijs2005/pharmdesk/internal/config"
	"github.com/dmitrijs2005/pharmdesk/internal/filex"
	"github.com/dmitrijs2005/pharmdesk/internal/logging"
	"github.com/dmitrijs2005/pharmdesk/internal/prefs"
	"github.com/dmitrijs2005/pharmdesk/internal/registry"
	"github.com/dmitrijs2005/pharmdesk/internal/session"
	"github.com/dmitrijs2005/pharmdesk/internal/timex"
)

// App owns the single lifecycle of the shell's state: preference store,
// session, api client and the Bubble Tea program.
type App struct {
	config     *config.Config
	logger     logging.Logger
	registry   *registry.Registry
	prefs      *prefs.Store
	controller *session.Controller
	client     *api.Client
	closers    []io.Closer
}

// NewApp wires the shell. A preference database that cannot be opened is
// not fatal: the shell runs with in-memory preferences.
func NewApp(c *config.Config, reg *registry.Registry, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	ctx := context.Background()
	app := &App{config: c, logger: logger, registry: reg}

	backend, err := openPrefs(ctx, c.PrefsPath)
	if err != nil {
		logger.Warn(ctx, "preferences unavailable, using memory", "path", c.PrefsPath, "error", err)
		app.prefs = prefs.NewStore(nil, logger)
	} else {
		app.prefs = prefs.NewStore(backend, logger)
		app.closers = append(app.closers, backend)
	}

	if c.Reset {
		app.prefs.Reset(prefs.AllKeys...)
		logger.Info(ctx, "preferences reset")
	}

	sess := session.New(app.prefs, logger)
	client, err := api.NewClient(c.APIOrigin, sess, api.WithLogger(logger.With("component", "api")))
	if err != nil {
		app.Close()
		return nil, err
	}
	app.client = client
	app.controller = session.NewController(sess, client, logger.With("component", "session"))

	return app, nil
}

func openPrefs(ctx context.Context, path string) (*prefs.SQLiteBackend, error) {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	return prefs.OpenSQLite(ctx, path)
}

// programRef lets goroutines reach the program once it exists.
type programRef struct {
	p atomic.Pointer[tea.Program]
}

// send never blocks the caller. Program.Send is unbuffered and Update may be
// the caller, so the send happens on its own goroutine.
func (r *programRef) send(msg tea.Msg) {
	if p := r.p.Load(); p != nil {
		go p.Send(msg)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Model builds the shell model bound to ctx and notify.
func (app *App) Model(ctx context.Context, notify func(tea.Msg)) *Model {
	return NewModel(Deps{
		Context:       ctx,
		Registry:      app.registry,
		Controller:    app.controller,
		API:           app.client,
		Prefs:         app.prefs,
		Logger:        app.logger.With("component", "shell"),
		Clock:         timex.Clock{},
		Brand:         app.config.Brand,
		Version:       buildinfo.Short(),
		ToastDuration: app.config.ToastDuration,
		Notify:        notify,
	})
}

// Run starts the full-screen program and blocks until the user quits or
// ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	defer app.Close()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	app.logger.Info(ctx, "starting shell", "origin", app.client.Origin(), "version", buildinfo.Version)

	ref := &programRef{}
	m := app.Model(ctx, ref.send)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	ref.p.Store(p)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("shell: %w", err)
	}
	app.logger.Info(ctx, "shell stopped")
	return nil
}

func (app *App) Close() {
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}
