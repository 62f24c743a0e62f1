// shopdash is an admin dashboard for a small web shop. It runs as a local
// TUI or CLI, or as an SSH server that serves both.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/cli"
	"github.com/johan-st/shopdash/internal/config"
	"github.com/johan-st/shopdash/internal/history"
	"github.com/johan-st/shopdash/internal/querycache"
	"github.com/johan-st/shopdash/internal/server"
	"github.com/johan-st/shopdash/internal/store"
	"github.com/johan-st/shopdash/internal/tui"
	"golang.org/x/term"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	sshMode := flag.Bool("ssh", false, "run SSH server mode")
	configPath := flag.String("config", "", "path to config file")
	dbPath := flag.String("db", "", "path to the shop database (overrides config)")
	seed := flag.Bool("seed", false, "fill an empty database with demo records")
	showVersion := flag.Bool("version", false, "show version information")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("shopdash %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", buildDate)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *seed {
		cfg.Store.Seed = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	switch {
	case *sshMode:
		err = runSSHServer(ctx, cfg)
	case len(args) > 0:
		err = runLocalCLI(ctx, cfg, args)
		var exitErr *cli.ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
	default:
		err = runLocalTUI(ctx, cfg)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func printUsage() {
	fmt.Println("shopdash - store admin dashboard")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  shopdash                          Interactive TUI mode")
	fmt.Println("  shopdash <command> [args]         CLI mode (run and exit)")
	fmt.Println("  shopdash -ssh -config <file>      SSH server mode")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  shopdash -seed                    Open the demo shop in the TUI")
	fmt.Println("  shopdash list products --search=boots")
	fmt.Println("  shopdash export orders --format=json")
	fmt.Println("  shopdash help                     List all commands")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

// newLogger builds the process logger from the log section. quiet sends
// output nowhere unless a log file is configured, for the local TUI which
// owns the terminal.
func newLogger(cfg *config.Config, quiet bool) (*log.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case quiet:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "shopdash",
	})
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Log.Format == "json" {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger, closeFn, nil
}

// app holds what every mode shares.
type app struct {
	store   *store.Store
	history *history.Store
	catalog *catalog.Catalog
	logger  *log.Logger
	close   func()
}

func open(ctx context.Context, cfg *config.Config, quiet bool) (*app, error) {
	logger, closeLog, err := newLogger(cfg, quiet)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store.Path, logger)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if cfg.Store.Seed {
		if err := st.Seed(ctx); err != nil {
			st.Close()
			closeLog()
			return nil, fmt.Errorf("failed to seed store: %w", err)
		}
	}

	hist, err := history.NewStore(filepath.Join(cfg.GetDataDir(), "history.db"))
	if err != nil {
		st.Close()
		closeLog()
		return nil, fmt.Errorf("failed to initialize history store: %w", err)
	}

	cat, err := catalog.New(ctx, catalog.Deps{
		Store:    st,
		History:  hist,
		Cache:    querycache.New(cfg.CacheTTL()),
		Resolver: cfg.BuildResolver(),
		Logger:   logger,
		PageSize: cfg.UISettings().PageSize,
	})
	if err != nil {
		hist.Close()
		st.Close()
		closeLog()
		return nil, err
	}

	return &app{
		store:   st,
		history: hist,
		catalog: cat,
		logger:  logger,
		close: func() {
			hist.Close()
			st.Close()
			closeLog()
		},
	}, nil
}

// localSession opens a session for the local user so record locks and
// audit entries can be traced like those of SSH sessions.
func localSession(ctx context.Context, a *app, cfg *config.Config) (context.Context, *server.SessionManager, func()) {
	user := access.LocalUser(cfg.Server.Local.User)
	sm := server.NewSessionManager(a.history, a.store.Locks, a.logger)
	session := sm.CreateSession(ctx, user, "local")

	ctx = access.WithUser(ctx, user)
	ctx = access.WithSession(ctx, session.Info())
	return ctx, sm, func() { sm.EndSession(context.Background(), session.ID) }
}

// runLocalCLI runs a CLI command in local mode
func runLocalCLI(ctx context.Context, cfg *config.Config, args []string) error {
	a, err := open(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, sm, end := localSession(ctx, a, cfg)
	defer end()

	user, _ := access.UserFromContext(ctx)
	handler := cli.NewHandler(a.catalog, version).WithSessions(sm)
	return handler.HandleLocal(ctx, cli.NewLocalContext(user, args, os.Stdout, os.Stderr))
}

// runLocalTUI runs the interactive TUI in local mode
func runLocalTUI(ctx context.Context, cfg *config.Config) error {
	a, err := open(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, _, end := localSession(ctx, a, cfg)
	defer end()

	// Get terminal size
	width, height := 80, 24
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			width, height = w, h
		}
	}

	model := tui.NewApp(ctx, a.catalog, tui.OptionsFromConfig(cfg), width, height)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// runSSHServer runs the SSH server mode
func runSSHServer(ctx context.Context, cfg *config.Config) error {
	a, err := open(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	// Start config watcher for hot-reloading
	reload := func() error {
		if err := cfg.Reload(); err != nil {
			return err
		}
		a.catalog.SetResolver(cfg.BuildResolver())
		return nil
	}
	if cfg.Path() != "" {
		watcher, err := config.NewWatcher(cfg, a.logger)
		if err != nil {
			a.logger.Warn("failed to create config watcher", "err", err)
		} else {
			watcher.OnReload(func(newCfg *config.Config) {
				a.logger.Info("config reloaded, updating access rules")
				a.catalog.SetResolver(newCfg.BuildResolver())
			})
			if err := watcher.Start(); err != nil {
				a.logger.Warn("failed to start config watcher", "err", err)
			} else {
				defer watcher.Stop()
			}
		}
	}

	sshServer := server.NewServer(cfg, a.catalog, a.logger)
	cliHandler := cli.NewHandler(a.catalog, version).
		WithSessions(sshServer.GetSessionManager()).
		WithReload(reload)
	sshServer.SetCLIHandler(cliHandler.Handle)
	sshServer.SetTUIHandler(tui.Handler(a.catalog, cfg))

	a.logger.Info("starting SSH server", "addr", cfg.Server.SSH.Listen, "store", a.store.Path())
	return sshServer.Run(ctx)
}
