package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/johan-st/shopdash/internal/form"
)

// inputValues collects raw form values from --json='{...}' and repeated
// --set=field=value flags. --set wins over --json.
func inputValues(ctx *CommandContext) (form.Values, error) {
	values := form.Values{}

	if raw := ctx.GetFlag("json"); raw != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return nil, fmt.Errorf("parsing --json: %w", err)
		}
		for k, v := range obj {
			values[k] = rawString(v)
		}
	}

	for _, pair := range ctx.GetFlags("set") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, want field=value", pair)
		}
		values[k] = v
	}
	return values, nil
}

// rawString turns a decoded JSON value back into form input.
func rawString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		data, _ := json.Marshal(val)
		return string(data)
	}
}

// cmdCreate creates a record through the resource form.
func (h *Handler) cmdCreate(ctx *CommandContext) {
	const usage = "create <resource> --json='{\"field\":\"value\"}' | --set=field=value ..."
	c, _, ok := h.collection(ctx, usage)
	if !ok {
		return
	}

	values, err := inputValues(ctx)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		ctx.Exit(ExitUsage)
		return
	}
	if len(values) == 0 {
		ctx.Usage(usage)
		return
	}

	id, err := c.Submit(ctx.Ctx, "", values)
	if err != nil {
		ctx.Fail(err)
		return
	}

	if ctx.GetFlag("format") == "json" {
		printJSON(ctx.Out, map[string]any{"id": id})
		return
	}
	fmt.Fprintf(ctx.Out, "Created %s %s\n", c.Singular(), id)
}

// cmdUpdate changes fields of a record through the resource form.
func (h *Handler) cmdUpdate(ctx *CommandContext) {
	const usage = "update <resource> <id> --set=field=value ... | --json='{...}'"
	c, args, ok := h.collection(ctx, usage)
	if !ok {
		return
	}
	if len(args) == 0 {
		ctx.Usage(usage)
		return
	}

	values, err := inputValues(ctx)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		ctx.Exit(ExitUsage)
		return
	}
	if len(values) == 0 {
		ctx.Usage(usage)
		return
	}

	if _, err := c.Submit(ctx.Ctx, args[0], values); err != nil {
		ctx.Fail(err)
		return
	}
	fmt.Fprintf(ctx.Out, "Updated %s %s\n", c.Singular(), args[0])
}

// cmdDelete deletes a record.
func (h *Handler) cmdDelete(ctx *CommandContext) {
	const usage = "delete <resource> <id> --confirm"
	c, args, ok := h.collection(ctx, usage)
	if !ok {
		return
	}
	if len(args) == 0 {
		ctx.Usage(usage)
		return
	}
	if !ctx.HasFlag("confirm") && !ctx.HasFlag("force") {
		fmt.Fprintln(ctx.Err, "Delete requires --confirm flag")
		ctx.Exit(ExitUsage)
		return
	}

	if err := c.Delete(ctx.Ctx, args[0]); err != nil {
		ctx.Fail(err)
		return
	}
	fmt.Fprintf(ctx.Out, "Deleted %s %s\n", c.Singular(), args[0])
}

// cmdSetActive activates or deactivates a record.
func (h *Handler) cmdSetActive(ctx *CommandContext, active bool) {
	verb := "deactivate"
	if active {
		verb = "activate"
	}
	c, args, ok := h.collection(ctx, verb+" <resource> <id>")
	if !ok {
		return
	}
	if len(args) == 0 {
		ctx.Usage(verb + " <resource> <id>")
		return
	}

	if err := c.SetActive(ctx.Ctx, args[0], active); err != nil {
		ctx.Fail(err)
		return
	}
	state := "inactive"
	if active {
		state = "active"
	}
	fmt.Fprintf(ctx.Out, "%s %s is now %s\n", c.Singular(), args[0], state)
}

// cmdDeactivateAll deactivates every record of a resource.
func (h *Handler) cmdDeactivateAll(ctx *CommandContext) {
	const usage = "deactivate-all <resource> --confirm"
	c, _, ok := h.collection(ctx, usage)
	if !ok {
		return
	}
	if !ctx.HasFlag("confirm") {
		fmt.Fprintln(ctx.Err, "deactivate-all requires --confirm flag")
		ctx.Exit(ExitUsage)
		return
	}

	n, err := c.DeactivateAll(ctx.Ctx)
	if err != nil {
		ctx.Fail(err)
		return
	}
	fmt.Fprintf(ctx.Out, "Deactivated %d %s\n", n, c.Title())
}

// cmdExport writes a whole resource to stdout.
func (h *Handler) cmdExport(ctx *CommandContext) {
	const usage = "export <resource> [--format=csv|json]"
	c, _, ok := h.collection(ctx, usage)
	if !ok {
		return
	}

	format := ctx.GetFlag("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		fmt.Fprintf(ctx.Err, "Unknown format: %s (use csv or json)\n", format)
		ctx.Exit(ExitUsage)
		return
	}

	l, err := c.Export(ctx.Ctx)
	if err != nil {
		ctx.Fail(err)
		return
	}

	if format == "json" {
		printJSON(ctx.Out, l.Records)
		return
	}
	if err := printCSV(ctx.Out, append([]string{"ID"}, l.Headers...), prependIDs(l.IDs, l.Rows)); err != nil {
		ctx.Fail(err)
	}
}
