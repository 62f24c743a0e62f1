package cli

import (
	"fmt"
	"strings"
)

// cmdWhoami shows the current user and their access.
func (h *Handler) cmdWhoami(ctx *CommandContext) {
	if ctx.User == nil {
		fmt.Fprintln(ctx.Out, "Unknown user")
		return
	}

	u := ctx.User
	switch {
	case u.IsAnonymous:
		fmt.Fprintf(ctx.Out, "Anonymous user: %s\n", u.AnonymousName)
	default:
		fmt.Fprintf(ctx.Out, "User: %s\n", u.Name)
	}
	if u.IsAdmin {
		fmt.Fprintln(ctx.Out, "Role: admin")
	}
	if u.PublicKeyFP != "" {
		fmt.Fprintf(ctx.Out, "Key: %s\n", u.PublicKeyFP)
	}
	if id := ctx.GetSessionID(); id != "" {
		fmt.Fprintf(ctx.Out, "Session: %s\n", id)
	}

	var access []string
	for _, c := range h.catalog.Visible(ctx.Ctx) {
		access = append(access, fmt.Sprintf("%s=%s", c.Name(), c.Level(ctx.Ctx)))
	}
	if len(access) == 0 {
		fmt.Fprintln(ctx.Out, "Access: none")
		return
	}
	fmt.Fprintf(ctx.Out, "Access: %s\n", strings.Join(access, ", "))
}

// cmdHelp shows help information.
func (h *Handler) cmdHelp(ctx *CommandContext) {
	fmt.Fprint(ctx.Out, helpText)
}

// cmdVersion shows version information.
func (h *Handler) cmdVersion(ctx *CommandContext) {
	fmt.Fprintf(ctx.Out, "shopdash %s\n", h.version)
}

const helpText = `shopdash - store admin dashboard

Usage: ssh -p 2222 host <command> [args]
       shopdash <command> [args]

Catalog:
  resources                      List resources you can access
  list <resource>                Show one page of records
      --page=N --limit=N --search=Q --format=table|json|csv
  get <resource> <id>            Show one record as JSON

Data:
  create <resource>              Create a record
      --set=field=value ...  or  --json='{"field":"value"}'
  update <resource> <id>         Change fields of a record
      --set=field=value ...  or  --json='{...}'
  delete <resource> <id> --confirm
  activate <resource> <id>
  deactivate <resource> <id>
  deactivate-all <resource> --confirm   (admin)
  export <resource> [--format=csv|json]

Shop:
  settings [--set=field=value ...] [--format=json]
  stats [--format=json]

Admin:
  sessions [--format=json]       List active sessions
  audit [--limit=N] [--action=A] [--resource=R] [--since=24h] [--format=json]
  reload-config                  Reload the configuration file

Other:
  whoami                         Show your user and access
  version                        Show version
  help                           Show this help

Run without a command for the interactive dashboard.
`
