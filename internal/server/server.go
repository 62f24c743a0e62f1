// Package server serves the dashboard over SSH: interactive sessions get
// the TUI, sessions with a command get the CLI.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/config"
)

// Server is the SSH server.
type Server struct {
	config        *config.Config
	catalog       *catalog.Catalog
	sessionMgr    *SessionManager
	authenticator *Authenticator
	logger        *log.Logger
	sshServer     *ssh.Server
	tuiHandler    bubbletea.Handler
	cliHandler    func(ssh.Session)
}

// NewServer creates a new SSH server.
func NewServer(cfg *config.Config, cat *catalog.Catalog, logger *log.Logger) *Server {
	logger = logger.WithPrefix("ssh")
	return &Server{
		config:        cfg,
		catalog:       cat,
		sessionMgr:    NewSessionManager(cat.History(), cat.Store().Locks, logger),
		authenticator: NewAuthenticator(cfg, logger),
		logger:        logger,
	}
}

// SetTUIHandler sets the Bubble Tea handler for interactive sessions.
func (s *Server) SetTUIHandler(handler bubbletea.Handler) {
	s.tuiHandler = handler
}

// SetCLIHandler sets the handler for CLI commands.
func (s *Server) SetCLIHandler(handler func(ssh.Session)) {
	s.cliHandler = handler
}

func (s *Server) build() (*ssh.Server, error) {
	keyDir := filepath.Dir(s.config.Server.SSH.HostKeyPath)
	if err := os.MkdirAll(keyDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create host key directory: %w", err)
	}

	// Order matters: last middleware wraps first
	middleware := []wish.Middleware{
		s.routingMiddleware(),
		SessionMiddleware(s.sessionMgr),
		CatalogMiddleware(s.catalog),
		LoggingMiddleware(s.logger),
	}

	opts := []ssh.Option{
		wish.WithAddress(s.config.Server.SSH.Listen),
		wish.WithHostKeyPath(s.config.Server.SSH.HostKeyPath),
		wish.WithPublicKeyAuth(s.authenticator.PublicKeyHandler()),
		wish.WithMiddleware(middleware...),
	}
	if handler := s.authenticator.KeyboardInteractiveHandler(); handler != nil {
		opts = append(opts, wish.WithKeyboardInteractiveAuth(handler))
	}
	if d := s.config.GetIdleTimeout(); d > 0 {
		opts = append(opts, wish.WithIdleTimeout(d))
	}
	if d := s.config.GetMaxTimeout(); d > 0 {
		opts = append(opts, wish.WithMaxTimeout(d))
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH server: %w", err)
	}
	return server, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server, err := s.build()
	if err != nil {
		return err
	}
	s.sshServer = server

	s.logger.Info("starting SSH server", "listen", s.config.Server.SSH.Listen)
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down SSH server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.sshServer != nil {
		return s.sshServer.Shutdown(ctx)
	}
	return nil
}

// GetAddr returns the server's listen address string.
func (s *Server) GetAddr() string {
	if s.sshServer != nil {
		return s.sshServer.Addr
	}
	return ""
}

// routingMiddleware routes requests to either TUI or CLI handler.
func (s *Server) routingMiddleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			if len(sess.Command()) > 0 {
				if s.cliHandler == nil {
					wish.Fatalln(sess, "CLI commands are not available")
					return
				}
				s.cliHandler(sess)
				return
			}

			if _, _, hasPty := sess.Pty(); !hasPty {
				wish.Fatalln(sess, "PTY required for interactive mode. Use -t flag or provide a command.")
				return
			}
			if s.tuiHandler == nil {
				wish.Fatalln(sess, "TUI is not available")
				return
			}
			bubbletea.Middleware(s.tuiHandler)(next)(sess)
		}
	}
}

// GetSessionManager returns the session manager.
func (s *Server) GetSessionManager() *SessionManager {
	return s.sessionMgr
}
