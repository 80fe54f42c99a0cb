package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/client/config"
	"github.com/dmitrijs2005/gophsession/internal/client/lifecycle"
	"github.com/dmitrijs2005/gophsession/internal/client/services"
	"github.com/dmitrijs2005/gophsession/internal/client/session"
	"github.com/dmitrijs2005/gophsession/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	log         logging.Logger
	reader      *bufio.Reader
	out         io.Writer
	closeStore  func() error

	mu   sync.Mutex
	mode Mode
	view string
}

// NewApp opens the session store, restores the persisted session and
// connects the transport.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repo, closeStore, err := openStore(ctx, c)
	if err != nil {
		log.Error(ctx, "error opening session store", "backend", c.StorageBackend, "err", err)
		return nil, err
	}

	sess, err := session.Load(ctx, repo)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("load session: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr,
		client.WithTokenSource(sess.AccessToken),
		client.WithCookieJar(client.NewMetadataJar(repo)),
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log.With("component", "transport")),
	)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	app := &App{
		config:     c,
		log:        log,
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		closeStore: closeStore,
		view:       lifecycle.RouteHome,
	}
	app.authService = services.NewAuthService(apiClient, sess, app, app,
		services.WithLogger(log),
		services.WithRequestTimeout(c.RequestTimeout),
		services.WithRecheckInterval(c.RecheckInterval),
	)
	return app, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", string(mode))
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Run resumes the persisted session, starts the connectivity watcher and
// blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	if err := a.authService.Init(ctx); err != nil {
		a.log.Error(ctx, "session init failed", "err", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

// Root prints the banner and runs the REPL on the app's input.
func (a *App) Root(ctx context.Context) {
	a.printf("Welcome to gophsession CLI (type 'help' for commands)\n")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close(ctx context.Context) {
	if err := a.authService.Close(ctx); err != nil {
		a.log.Warn(ctx, "closing transport", "err", err)
	}
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil {
			a.log.Warn(ctx, "closing session store", "err", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.State().IsLoggedIn()
}

func (a *App) getStatus() string {
	s := ""
	if u := a.authService.State().User; u != nil {
		s = u.Email + " "
	}
	if m := a.Mode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s) ", s)
	}
	return s + a.Current().Name
}

func (a *App) printf(format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// mode on reachability changes.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
