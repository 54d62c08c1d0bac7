// Command sokoban starts the Sokoban game server.
//
// Commands:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "validate" – checks level files and reports the problems found
//  4. "new-level" – prints a level template to start editing from
//
// Flags control host/port, the levels directory, the session store, logging,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/sokoban/api"
	"github.com/wricardo/sokoban/game/config"
	"github.com/wricardo/sokoban/game/service"
	"github.com/wricardo/sokoban/game/session"
	"github.com/wricardo/sokoban/transport/mcp"
	"github.com/wricardo/sokoban/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Sokoban Server"
)

// Session store kinds accepted by --store
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

const (
	sessionMaxAge        = 24 * time.Hour
	sessionCleanupPeriod = time.Hour
	filesystemSyncPeriod = 5 * time.Second
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:           "sokoban",
		Usage:          AppName,
		Version:        Version,
		Flags:          globalFlags(),
		Before:         setupLogging,
		DefaultCommand: "server",
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServerCommand,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runStdioMCPCommand,
			},
			validateCommand(),
			newLevelCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
		&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
		&cli.StringFlag{Name: "levels-dir", Value: "levels", Usage: "Directory containing level files", Sources: cli.EnvVars("LEVELS_DIR")},
		&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for file and sqlite session stores", Sources: cli.EnvVars("SESSIONS_DIR")},
		&cli.StringFlag{Name: "store", Value: StoreFile, Usage: "Session store: file, sqlite, postgres or memory", Sources: cli.EnvVars("SESSION_STORE")},
		&cli.StringFlag{Name: "database-url", Usage: "SQLite path or PostgreSQL DSN for the session store", Sources: cli.EnvVars("DATABASE_URL")},
		&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level (trace, debug, info, warn, error)", Sources: cli.EnvVars("LOG_LEVEL")},
		&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
	}
}

// setupLogging configures the global zerolog logger
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := zerolog.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, fmt.Errorf("invalid log level %q: %w", cmd.String("log-level"), err)
	}
	if cmd.Bool("debug") {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return ctx, nil
}

// options are the settings shared by the commands that run a game service
type options struct {
	Host        string
	Port        int
	LevelsDir   string
	SessionsDir string
	Store       string
	DatabaseURL string
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		Host:        cmd.String("host"),
		Port:        cmd.Int("port"),
		LevelsDir:   cmd.String("levels-dir"),
		SessionsDir: cmd.String("sessions-dir"),
		Store:       cmd.String("store"),
		DatabaseURL: cmd.String("database-url"),
	}
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// services holds the wired game stack
type services struct {
	game     service.GameService
	configs  *config.Manager
	sessions *session.Manager
	store    session.SessionPersistence
	closers  []func() error
}

// Close saves every session and releases the session store
func (s *services) Close() error {
	var errs []error
	if err := s.sessions.SaveAllSessions(); err != nil {
		errs = append(errs, err)
	}
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// newPersistence opens the session store selected by opts.Store.
// A nil store means sessions live in memory only.
func newPersistence(opts options, configs *config.Manager) (session.SessionPersistence, func() error, error) {
	switch opts.Store {
	case StoreMemory:
		return nil, nil, nil
	case StoreFile, "":
		p, err := session.NewFilePersistence(opts.SessionsDir, configs)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	case StoreSQLite:
		path := opts.DatabaseURL
		if path == "" {
			path = filepath.Join(opts.SessionsDir, "sessions.db")
		}
		p, err := session.NewSQLitePersistence(path, configs)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case StorePostgres:
		if opts.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("--database-url is required for the %s store", StorePostgres)
		}
		p, err := session.NewPostgresPersistence(opts.DatabaseURL, configs)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown session store %q (use file, sqlite, postgres or memory)", opts.Store)
}

// initializeServices wires level/session managers and the game service
func initializeServices(opts options) (*services, error) {
	configManager, err := config.NewManager(opts.LevelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	store, closer, err := newPersistence(opts, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	svcs := &services{configs: configManager, store: store}
	if closer != nil {
		svcs.closers = append(svcs.closers, closer)
	}

	if store != nil {
		svcs.sessions = session.NewManagerWithPersistence(store)
		if err := svcs.sessions.LoadPersistedSessions(); err != nil {
			log.Warn().Err(err).Msg("failed to load persisted sessions")
		}
	} else {
		svcs.sessions = session.NewManager()
	}

	svcs.game = service.NewGameService(svcs.sessions, configManager)

	log.Info().
		Str("levels_dir", opts.LevelsDir).
		Str("store", opts.Store).
		Str("default_level", configManager.DefaultID()).
		Int("sessions", svcs.sessions.Count()).
		Msg("services initialized")
	return svcs, nil
}

// startBackgroundRoutines runs session maintenance until ctx is cancelled
func startBackgroundRoutines(ctx context.Context, svcs *services, opts options) {
	go sessionCleanupRoutine(ctx, svcs.sessions, sessionCleanupPeriod, sessionMaxAge)
	if opts.Store == StoreFile || opts.Store == "" {
		go filesystemSyncRoutine(ctx, svcs.sessions, svcs.store, filesystemSyncPeriod)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(maxAge)
		}
	}
}

// filesystemSyncRoutine removes sessions from memory when their files are deleted
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, every time.Duration) {
	if persistence == nil {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneOrphanedSessions(manager, persistence)
		}
	}
}

// pruneOrphanedSessions drops in-memory sessions whose persisted copy is gone
func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Info().Str("session", sess.ID).Msg("pruned session from memory (file deleted)")
		}
	}
	return pruned
}

// newHTTPHandler combines the REST API, WebSocket hub and the /mcp endpoint
func newHTTPHandler(game service.GameService, hub *websocket.Hub, baseURL string) http.Handler {
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/mcp", server.NewStreamableHTTPServer(mcpClient.GetMCPServer(), server.WithEndpointPath("/mcp")))
	mainRouter.Handle("/", api.NewServer(game, hub))
	return mainRouter
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	svcs, err := initializeServices(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := svcs.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close services")
		}
	}()

	startBackgroundRoutines(ctx, svcs, opts)
	return runHTTPServer(ctx, opts, svcs.game, ngrokSettingsFrom(cmd))
}

// runHTTPServer serves the REST API, WebSocket hub and /mcp endpoint until ctx
// is cancelled. If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, opts options, game service.GameService, tunnel ngrokSettings) error {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := opts.addr()
	handler := newHTTPHandler(game, hub, "http://"+addr)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("ws", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if tunnel.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, tunnel, handler)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-serveErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn().Err(shutdownErr).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return err
}

// ngrokSettings configures the optional public tunnel
type ngrokSettings struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

func ngrokSettingsFrom(cmd *cli.Command) ngrokSettings {
	return ngrokSettings{
		Enabled:   cmd.Bool("ngrok"),
		AuthToken: cmd.String("ngrok-auth"),
		Domain:    cmd.String("ngrok-domain"),
	}
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is cancelled
func runNgrokTunnel(ctx context.Context, settings ngrokSettings, handler http.Handler) {
	if settings.AuthToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	var endpoint ngrokConfig.Tunnel
	if settings.Domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.Domain))
	} else {
		endpoint = ngrokConfig.HTTPEndpoint()
	}

	log.Info().Str("domain", settings.Domain).Msg("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(settings.AuthToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("ws", ngrokURL+"/ws?session=<session_id>").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Warn().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// externalAPIAvailable reports whether a game server already answers at baseURL
func externalAPIAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPCommand runs an MCP stdio server. It reuses a game server already
// listening on --host/--port; otherwise it starts an internal HTTP API bound to
// a random loopback port and targets that.
func runStdioMCPCommand(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	baseURL := "http://" + opts.addr()

	if externalAPIAvailable(ctx, baseURL) {
		log.Info().Str("url", baseURL).Msg("external API server found, using it for MCP")
	} else {
		log.Info().Msg("no external API server found, starting internal HTTP server")

		svcs, err := initializeServices(opts)
		if err != nil {
			return err
		}
		defer func() {
			if err := svcs.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close services")
			}
		}()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svcs.game, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		log.Info().Str("url", baseURL).Msg("internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")
	return server.ServeStdio(mcpClient.GetMCPServer())
}
