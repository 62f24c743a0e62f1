package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/johan-st/shopdash/internal/history"
	"github.com/johan-st/shopdash/internal/server"
)

// cmdSessions lists active sessions (admin only).
func (h *Handler) cmdSessions(ctx *CommandContext) {
	if !ctx.RequireAdmin() {
		return
	}

	sm := h.sessions
	if sm == nil && ctx.Session != nil {
		sm = server.GetSessionMgrFromSSH(ctx.Session)
	}
	if sm == nil {
		fmt.Fprintln(ctx.Err, "Session management not available")
		ctx.Exit(ExitError)
		return
	}

	sessions := sm.ListActiveSessions()
	if len(sessions) == 0 {
		fmt.Fprintln(ctx.Out, "No active sessions")
		return
	}

	if ctx.GetFlag("format") == "json" {
		result := make([]map[string]any, 0, len(sessions))
		for _, s := range sessions {
			result = append(result, map[string]any{
				"id":          s.ID,
				"user":        s.User.DisplayName(),
				"remote_addr": s.RemoteAddr,
				"started":     s.StartTime,
				"idle":        s.IdleTime().String(),
			})
		}
		printJSON(ctx.Out, result)
		return
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.ID[:8],
			s.User.DisplayName(),
			s.RemoteAddr,
			formatDuration(s.Duration()),
			formatDuration(s.IdleTime()),
		})
	}
	printTable(ctx.Out, []string{"ID", "User", "Remote", "Duration", "Idle"}, rows)
}

// cmdAudit shows the audit log (admin only).
func (h *Handler) cmdAudit(ctx *CommandContext) {
	if !ctx.RequireAdmin() {
		return
	}
	hist := h.catalog.History()
	if hist == nil {
		fmt.Fprintln(ctx.Err, "Audit log not available")
		ctx.Exit(ExitError)
		return
	}

	filter := history.AuditFilter{
		SessionID: ctx.GetFlag("session"),
		Action:    ctx.GetFlag("action"),
		Resource:  ctx.GetFlag("resource"),
		Limit:     ctx.IntFlag("limit", 50),
	}
	if since := ctx.GetFlag("since"); since != "" {
		d, err := time.ParseDuration(since)
		if err != nil {
			fmt.Fprintf(ctx.Err, "Invalid --since %q: %v\n", since, err)
			ctx.Exit(ExitUsage)
			return
		}
		filter.Since = time.Now().Add(-d)
	}

	records, err := hist.ListAuditLog(ctx.Ctx, filter)
	if err != nil {
		ctx.Fail(err)
		return
	}

	if ctx.GetFlag("format") == "json" {
		printJSON(ctx.Out, records)
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(ctx.Out, "No audit entries")
		return
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			humanize.Time(r.CreatedAt.Time),
			r.Actor,
			r.Action,
			r.Resource,
			r.RecordID,
			r.Details,
		})
	}
	printTable(ctx.Out, []string{"When", "Actor", "Action", "Resource", "Record", "Details"}, rows)
}

// cmdReloadConfig reloads the configuration file (admin only).
func (h *Handler) cmdReloadConfig(ctx *CommandContext) {
	if !ctx.RequireAdmin() {
		return
	}
	if h.reload == nil {
		fmt.Fprintln(ctx.Err, "Config reload not available")
		ctx.Exit(ExitError)
		return
	}
	if err := h.reload(); err != nil {
		fmt.Fprintf(ctx.Err, "Error reloading config: %v\n", err)
		ctx.Exit(ExitError)
		return
	}
	fmt.Fprintln(ctx.Out, "Configuration reloaded")
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
