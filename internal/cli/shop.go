package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/johan-st/shopdash/internal/form"
	"github.com/johan-st/shopdash/internal/shop"
)

// cmdSettings shows or changes the site settings.
func (h *Handler) cmdSettings(ctx *CommandContext) {
	settings := h.catalog.Settings

	if sets := ctx.GetFlags("set"); len(sets) > 0 {
		raw := form.Values{}
		for _, pair := range sets {
			k, v, ok := strings.Cut(pair, "=")
			if !ok || k == "" {
				ctx.Usage("settings [--set=field=value ...] [--format=json]")
				return
			}
			raw[k] = v
		}
		if err := settings.Submit(ctx.Ctx, raw); err != nil {
			ctx.Fail(err)
			return
		}
		fmt.Fprintln(ctx.Out, "Settings saved")
		return
	}

	current, err := settings.Get(ctx.Ctx)
	if err != nil {
		ctx.Fail(err)
		return
	}
	if ctx.GetFlag("format") == "json" {
		printJSON(ctx.Out, current)
		return
	}

	values := shop.SettingsValues(current)
	var rows [][]string
	for _, f := range settings.Schema().Fields() {
		rows = append(rows, []string{f.Name, f.Label, values[f.Name]})
	}
	printTable(ctx.Out, []string{"Field", "Label", "Value"}, rows)
	if !current.UpdatedAt.IsZero() {
		fmt.Fprintf(ctx.Out, "\nLast saved %s\n", humanize.Time(current.UpdatedAt.Time))
	}
}

// cmdStats prints the dashboard summary.
func (h *Handler) cmdStats(ctx *CommandContext) {
	st, err := h.catalog.Stats(ctx.Ctx)
	if err != nil {
		ctx.Fail(err)
		return
	}

	if ctx.GetFlag("format") == "json" {
		printJSON(ctx.Out, st)
		return
	}

	f := h.catalog.Format()
	var rows [][]string
	for _, c := range h.catalog.Collections() {
		if n, ok := st.Counts[c.Name()]; ok {
			rows = append(rows, []string{c.Title(), shop.Count(n)})
		}
	}
	printTable(ctx.Out, []string{"Resource", "Records"}, rows)

	fmt.Fprintln(ctx.Out)
	if _, ok := st.Counts[shop.ResOrders]; ok {
		fmt.Fprintf(ctx.Out, "Revenue:       %s\n", f.Money(st.Revenue))
	}
	fmt.Fprintf(ctx.Out, "Database size: %s\n", humanize.Bytes(uint64(st.StoreSize)))

	if len(st.Recent) > 0 {
		fmt.Fprintln(ctx.Out, "\nRecent orders:")
		var recent [][]string
		for _, o := range st.Recent {
			status := ""
			if o.Status != nil {
				status = *o.Status
			}
			recent = append(recent, []string{o.ID, f.Ago(o.OrderDate.Time), f.Money(o.Total), status})
		}
		printTable(ctx.Out, []string{"Order", "Placed", "Amount", "Status"}, recent)
	}
}
