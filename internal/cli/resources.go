package cli

import (
	"fmt"

	"github.com/johan-st/shopdash/internal/store"
)

// cmdResources lists the resources the user can read.
func (h *Handler) cmdResources(ctx *CommandContext) {
	visible := h.catalog.Visible(ctx.Ctx)

	if ctx.GetFlag("format") == "json" {
		result := make([]map[string]any, 0, len(visible))
		for _, c := range visible {
			result = append(result, map[string]any{
				"name":      c.Name(),
				"title":     c.Title(),
				"mode":      c.Mode().String(),
				"read_only": c.ReadOnly(),
				"access":    c.Level(ctx.Ctx).String(),
			})
		}
		printJSON(ctx.Out, result)
		return
	}

	if len(visible) == 0 {
		fmt.Fprintln(ctx.Out, "No accessible resources")
		return
	}

	rows := make([][]string, 0, len(visible))
	for _, c := range visible {
		access := c.Level(ctx.Ctx).String()
		if c.ReadOnly() {
			access += " (read-only resource)"
		}
		rows = append(rows, []string{c.Name(), c.Title(), c.Mode().String(), access})
	}
	printTable(ctx.Out, []string{"Name", "Title", "Mode", "Access"}, rows)
}

// cmdList shows one page of a resource.
func (h *Handler) cmdList(ctx *CommandContext) {
	const usage = "list <resource> [--page=N] [--limit=N] [--search=Q] [--format=table|json|csv]"
	c, _, ok := h.collection(ctx, usage)
	if !ok {
		return
	}

	q := store.PageQuery{
		Page:   ctx.IntFlag("page", 1),
		Limit:  ctx.IntFlag("limit", h.catalog.PageSize()),
		Search: ctx.GetFlag("search"),
	}
	l, err := c.List(ctx.Ctx, q)
	if err != nil {
		ctx.Fail(err)
		return
	}

	switch format := ctx.GetFlag("format"); format {
	case "json":
		printJSON(ctx.Out, map[string]any{
			"resource":    c.Name(),
			"page":        l.Page.CurrentPage,
			"page_size":   l.Page.PageSize,
			"total_items": l.Page.TotalItems,
			"total_pages": l.Page.TotalPages(),
			"query":       l.Query,
			"items":       l.Records,
		})
	case "csv":
		if err := printCSV(ctx.Out, append([]string{"ID"}, l.Headers...), prependIDs(l.IDs, l.Rows)); err != nil {
			ctx.Fail(err)
		}
	case "", "table":
		printListing(ctx.Out, l)
	default:
		ctx.Usage(usage)
	}
}

// cmdGet prints one record as JSON.
func (h *Handler) cmdGet(ctx *CommandContext) {
	c, args, ok := h.collection(ctx, "get <resource> <id>")
	if !ok {
		return
	}
	if len(args) == 0 {
		ctx.Usage("get <resource> <id>")
		return
	}

	rec, err := c.Record(ctx.Ctx, args[0])
	if err != nil {
		ctx.Fail(err)
		return
	}
	printJSON(ctx.Out, rec)
}

func prependIDs(ids []string, rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string{ids[i]}, row...)
	}
	return out
}
