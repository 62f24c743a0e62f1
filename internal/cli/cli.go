// Package cli implements the command-line interface for both SSH and local modes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/ssh"
	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/form"
	"github.com/johan-st/shopdash/internal/server"
	"github.com/johan-st/shopdash/internal/store"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// ExitCodeError reports a failed command and its exit code.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("command failed with exit code %d", e.Code)
}

// Handler handles CLI commands over SSH or locally.
type Handler struct {
	catalog  *catalog.Catalog
	sessions *server.SessionManager
	reload   func() error
	version  string
}

// NewHandler creates a new CLI handler.
func NewHandler(cat *catalog.Catalog, version string) *Handler {
	return &Handler{catalog: cat, version: version}
}

// WithSessions enables the sessions command.
func (h *Handler) WithSessions(sm *server.SessionManager) *Handler {
	h.sessions = sm
	return h
}

// WithReload enables the reload-config command.
func (h *Handler) WithReload(fn func() error) *Handler {
	h.reload = fn
	return h
}

// LocalContext wraps command execution for local (non-SSH) mode.
type LocalContext struct {
	User *access.UserInfo
	Args []string
	Out  io.Writer
	Err  io.Writer
}

// NewLocalContext creates a context for local CLI execution.
func NewLocalContext(user *access.UserInfo, args []string, out, errOut io.Writer) *LocalContext {
	return &LocalContext{
		User: user,
		Args: args,
		Out:  out,
		Err:  errOut,
	}
}

// HandleLocal processes a CLI command in local mode (no SSH session).
func (h *Handler) HandleLocal(ctx context.Context, lctx *LocalContext) error {
	if len(lctx.Args) == 0 {
		fmt.Fprintln(lctx.Out, "No command specified. Run 'help' for usage.")
		return nil
	}

	cctx := &CommandContext{
		Ctx:  access.WithUser(ctx, lctx.User),
		User: lctx.User,
		Args: lctx.Args[1:],
		Out:  lctx.Out,
		Err:  lctx.Err,
	}
	h.routeCommand(lctx.Args[0], cctx)

	if cctx.exitCode != ExitOK {
		return &ExitCodeError{Code: cctx.exitCode}
	}
	return nil
}

// Handle processes an SSH session with a CLI command.
func (h *Handler) Handle(s ssh.Session) {
	cmd := s.Command()
	if len(cmd) == 0 {
		fmt.Fprintln(s, "No command specified. Run 'help' for usage.")
		return
	}

	ctx := &CommandContext{
		Ctx:         server.RequestContext(s),
		Session:     s,
		User:        server.GetUserFromContext(s.Context()),
		SessionInfo: server.GetSessionFromSSH(s),
		Args:        cmd[1:],
		Out:         s,
		Err:         s.Stderr(),
	}
	h.routeCommand(cmd[0], ctx)
	s.Exit(ctx.exitCode)
}

// routeCommand routes a command to its handler.
func (h *Handler) routeCommand(cmd string, ctx *CommandContext) {
	switch cmd {
	// Catalog commands
	case "resources", "ls":
		h.cmdResources(ctx)
	case "list":
		h.cmdList(ctx)
	case "get":
		h.cmdGet(ctx)

	// Data commands
	case "create":
		h.cmdCreate(ctx)
	case "update":
		h.cmdUpdate(ctx)
	case "delete":
		h.cmdDelete(ctx)
	case "activate":
		h.cmdSetActive(ctx, true)
	case "deactivate":
		h.cmdSetActive(ctx, false)
	case "deactivate-all":
		h.cmdDeactivateAll(ctx)
	case "export":
		h.cmdExport(ctx)

	// Shop commands
	case "settings":
		h.cmdSettings(ctx)
	case "stats":
		h.cmdStats(ctx)

	// Admin commands
	case "sessions":
		h.cmdSessions(ctx)
	case "audit":
		h.cmdAudit(ctx)
	case "reload-config":
		h.cmdReloadConfig(ctx)

	// Utility commands
	case "whoami":
		h.cmdWhoami(ctx)
	case "help":
		h.cmdHelp(ctx)
	case "version":
		h.cmdVersion(ctx)

	default:
		fmt.Fprintf(ctx.Err, "Unknown command: %s\n", cmd)
		fmt.Fprintln(ctx.Err, "Run 'help' for usage.")
		ctx.Exit(ExitUsage)
	}
}

// CommandContext provides context for command execution.
type CommandContext struct {
	Ctx         context.Context
	Session     ssh.Session // nil in local mode
	User        *access.UserInfo
	SessionInfo *server.Session
	Args        []string
	Out         io.Writer
	Err         io.Writer
	exitCode    int
}

// Exit sets the exit code (used instead of calling Session.Exit directly).
func (c *CommandContext) Exit(code int) {
	c.exitCode = code
}

// GetSessionID returns the session ID or empty string.
func (c *CommandContext) GetSessionID() string {
	if c.SessionInfo != nil {
		return c.SessionInfo.ID
	}
	return ""
}

// Usage prints a usage line and exits with the usage code.
func (c *CommandContext) Usage(line string) {
	fmt.Fprintln(c.Err, "Usage: "+line)
	c.Exit(ExitUsage)
}

// GetFlag returns a flag value from args (e.g., --format=json).
func (c *CommandContext) GetFlag(name string) string {
	values := c.GetFlags(name)
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

// GetFlags returns every value of a repeatable flag.
func (c *CommandContext) GetFlags(name string) []string {
	prefix := "--" + name + "="
	shortPrefix := "-" + name + "="
	var out []string
	for _, arg := range c.Args {
		switch {
		case strings.HasPrefix(arg, prefix):
			out = append(out, strings.TrimPrefix(arg, prefix))
		case strings.HasPrefix(arg, shortPrefix):
			out = append(out, strings.TrimPrefix(arg, shortPrefix))
		}
	}
	return out
}

// IntFlag returns a numeric flag, or fallback if it is absent or invalid.
func (c *CommandContext) IntFlag(name string, fallback int) int {
	if n, err := strconv.Atoi(c.GetFlag(name)); err == nil {
		return n
	}
	return fallback
}

// HasFlag checks if a boolean flag is present.
func (c *CommandContext) HasFlag(name string) bool {
	flag := "--" + name
	shortFlag := "-" + name
	for _, arg := range c.Args {
		if arg == flag || arg == shortFlag {
			return true
		}
	}
	return false
}

// GetPositionalArgs returns args that are not flags.
func (c *CommandContext) GetPositionalArgs() []string {
	var result []string
	for _, arg := range c.Args {
		if !strings.HasPrefix(arg, "-") {
			result = append(result, arg)
		}
	}
	return result
}

// RequireAdmin checks if user has admin access.
func (c *CommandContext) RequireAdmin() bool {
	if c.User == nil || !c.User.IsAdmin {
		fmt.Fprintln(c.Err, "Access denied: admin access required")
		c.Exit(ExitError)
		return false
	}
	return true
}

// Fail reports err in a form suited to its kind and sets exit code 1.
func (c *CommandContext) Fail(err error) {
	var (
		denied     *access.DeniedError
		invalid    form.ValidationErrors
		submission *form.SubmissionError
		locked     *store.LockError
	)
	switch {
	case errors.As(err, &denied):
		fmt.Fprintf(c.Err, "Access denied: %s\n", denied.Error())
	case errors.As(err, &invalid):
		fmt.Fprintln(c.Err, "Validation failed:")
		for _, e := range invalid {
			fmt.Fprintf(c.Err, "  %s: %s\n", e.Field, e.Message)
		}
	case errors.As(err, &locked):
		fmt.Fprintf(c.Err, "Locked: %s\n", locked.Error())
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintf(c.Err, "Not found: %v\n", err)
	case errors.As(err, &submission):
		fmt.Fprintf(c.Err, "%s (%v)\n", form.SubmissionMessage, errors.Unwrap(submission))
	default:
		fmt.Fprintf(c.Err, "Error: %v\n", err)
	}
	c.Exit(ExitError)
}

// collection resolves the resource named by the first positional argument.
func (h *Handler) collection(ctx *CommandContext, usage string) (catalog.Collection, []string, bool) {
	args := ctx.GetPositionalArgs()
	if len(args) == 0 {
		ctx.Usage(usage)
		return nil, nil, false
	}
	c, ok := h.catalog.Collection(args[0])
	if !ok {
		fmt.Fprintf(ctx.Err, "Unknown resource: %s\n", args[0])
		fmt.Fprintln(ctx.Err, "Run 'resources' to list them.")
		ctx.Exit(ExitUsage)
		return nil, nil, false
	}
	return c, args[1:], true
}
