package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/querycache"
	"github.com/johan-st/shopdash/internal/testutil"
)

var (
	adminUser  = access.LocalUser("admin")
	readerUser = &access.UserInfo{Name: "reader"}
	writerUser = &access.UserInfo{Name: "writer"}
	anonUser   = &access.UserInfo{IsAnonymous: true, AnonymousName: "calm-otter-07"}
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	r := access.NewResolver()
	r.AddUserRule("reader", "*", access.ReadOnly)
	r.AddUserRule("writer", "*", access.ReadWrite)

	cat, err := catalog.New(context.Background(), catalog.Deps{
		Store:    testutil.Store(t, true),
		History:  testutil.History(t),
		Cache:    querycache.New(time.Minute),
		Resolver: r,
		Logger:   testutil.Logger(),
		PageSize: 5,
	})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return NewHandler(cat, "test")
}

// run executes a command line and returns stdout, stderr and the exit code.
func run(t *testing.T, h *Handler, user *access.UserInfo, args ...string) (string, string, int) {
	t.Helper()
	var runErr error
	stdout, stderr := testutil.CaptureOutput(func(out, errOut io.Writer) {
		runErr = h.HandleLocal(context.Background(), NewLocalContext(user, args, out, errOut))
	})

	code := ExitOK
	var exitErr *ExitCodeError
	if errors.As(runErr, &exitErr) {
		code = exitErr.Code
	} else if runErr != nil {
		t.Fatalf("HandleLocal() error = %v", runErr)
	}
	return stdout, stderr, code
}

func TestUtilityCommands(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name     string
		args     []string
		wantOut  string
		wantErr  string
		wantCode int
	}{
		{"version", []string{"version"}, "shopdash test", "", ExitOK},
		{"help", []string{"help"}, "deactivate-all", "", ExitOK},
		{"unknown", []string{"frobnicate"}, "", "Unknown command: frobnicate", ExitUsage},
		{"unknown resource", []string{"list", "widgets"}, "", "Unknown resource: widgets", ExitUsage},
		{"missing resource", []string{"list"}, "", "Usage: list", ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, code := run(t, h, adminUser, tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.wantCode, errOut)
			}
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("stdout = %q, want to contain %q", out, tt.wantOut)
			}
			if !strings.Contains(errOut, tt.wantErr) {
				t.Errorf("stderr = %q, want to contain %q", errOut, tt.wantErr)
			}
		})
	}
}

func TestResources(t *testing.T) {
	h := newTestHandler(t)

	out, _, code := run(t, h, readerUser, "resources")
	if code != ExitOK {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{"products", "promotions", "server", "client", "read-only"} {
		if !strings.Contains(out, want) {
			t.Errorf("resources output missing %q:\n%s", want, out)
		}
	}

	out, _, _ = run(t, h, anonUser, "resources")
	if !strings.Contains(out, "No accessible resources") {
		t.Errorf("anonymous resources = %q", out)
	}
}

func TestList(t *testing.T) {
	h := newTestHandler(t)

	out, _, code := run(t, h, readerUser, "list", "products", "--page=3")
	if code != ExitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "Page 3 of 3 (12 items)") {
		t.Errorf("page bar missing:\n%s", out)
	}
	if !strings.Contains(out, "DESCRIPTION") {
		t.Errorf("headers missing:\n%s", out)
	}

	out, _, _ = run(t, h, readerUser, "list", "products", "--search=nothing-like-this")
	if !strings.Contains(out, "No results found.") {
		t.Errorf("empty search output = %q", out)
	}

	out, _, _ = run(t, h, readerUser, "list", "shipping", "--format=csv")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "ID,Name,Price" {
		t.Errorf("csv header = %q", lines[0])
	}
	if len(lines) != 5 {
		t.Errorf("csv lines = %d, want 5", len(lines))
	}

	_, _, code = run(t, h, anonUser, "list", "products")
	if code != ExitError {
		t.Errorf("anonymous list exit code = %d, want %d", code, ExitError)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	h := newTestHandler(t)

	_, errOut, code := run(t, h, readerUser, "create", "categories", "--set=category_name=Garden")
	if code != ExitError || !strings.Contains(errOut, "Access denied") {
		t.Errorf("reader create: code %d stderr %q", code, errOut)
	}

	_, errOut, code = run(t, h, writerUser, "create", "categories", "--set=category_name=G")
	if code != ExitError || !strings.Contains(errOut, "Name must be at least 2 characters.") {
		t.Errorf("invalid create: code %d stderr %q", code, errOut)
	}

	out, errOut, code := run(t, h, writerUser, "create", "categories", "--set=category_name=Garden", "--format=json")
	if code != ExitOK {
		t.Fatalf("create: code %d stderr %q", code, errOut)
	}
	id := between(out, `"id": "`, `"`)
	if id == "" {
		t.Fatalf("create output has no id: %q", out)
	}

	out, errOut, code = run(t, h, writerUser, "update", "categories", id, `--json={"category_name":"Gardening"}`)
	if code != ExitOK {
		t.Fatalf("update: code %d stderr %q", code, errOut)
	}
	if !strings.Contains(out, "Updated Category") {
		t.Errorf("update output = %q", out)
	}

	out, _, _ = run(t, h, writerUser, "get", "categories", id)
	if !strings.Contains(out, `"category_name": "Gardening"`) {
		t.Errorf("get output = %q", out)
	}

	_, _, code = run(t, h, writerUser, "delete", "categories", id)
	if code != ExitUsage {
		t.Errorf("delete without --confirm code = %d, want %d", code, ExitUsage)
	}
	_, errOut, code = run(t, h, writerUser, "delete", "categories", id, "--confirm")
	if code != ExitOK {
		t.Fatalf("delete: code %d stderr %q", code, errOut)
	}
	_, errOut, code = run(t, h, writerUser, "get", "categories", id)
	if code != ExitError || !strings.Contains(errOut, "Not found") {
		t.Errorf("get deleted: code %d stderr %q", code, errOut)
	}
}

func TestOrdersAreReadOnly(t *testing.T) {
	h := newTestHandler(t)

	_, errOut, code := run(t, h, adminUser, "create", "orders", "--set=order_total=1")
	if code != ExitError || !strings.Contains(errOut, "read-only") {
		t.Errorf("create order: code %d stderr %q", code, errOut)
	}
}

func TestActivation(t *testing.T) {
	h := newTestHandler(t)

	_, errOut, code := run(t, h, writerUser, "deactivate-all", "products", "--confirm")
	if code != ExitError || !strings.Contains(errOut, "Access denied") {
		t.Errorf("writer deactivate-all: code %d stderr %q", code, errOut)
	}

	out, errOut, code := run(t, h, adminUser, "deactivate-all", "products", "--confirm")
	if code != ExitOK {
		t.Fatalf("deactivate-all: code %d stderr %q", code, errOut)
	}
	if !strings.Contains(out, "Deactivated 12 Products") {
		t.Errorf("deactivate-all output = %q", out)
	}

	out, _, _ = run(t, h, adminUser, "list", "products", "--limit=20")
	if strings.Contains(out, "Active") && !strings.Contains(out, "Inactive") {
		t.Errorf("products still active:\n%s", out)
	}
}

func TestExport(t *testing.T) {
	h := newTestHandler(t)

	out, _, code := run(t, h, readerUser, "export", "products")
	if code != ExitOK {
		t.Fatalf("exit code = %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 13 {
		t.Errorf("export lines = %d, want 13", len(lines))
	}

	_, _, code = run(t, h, readerUser, "export", "products", "--format=xml")
	if code != ExitUsage {
		t.Errorf("bad format code = %d, want %d", code, ExitUsage)
	}
}

func TestSettings(t *testing.T) {
	h := newTestHandler(t)

	out, _, _ := run(t, h, adminUser, "settings")
	if !strings.Contains(out, "My E-commerce Store") {
		t.Errorf("settings output = %q", out)
	}

	_, errOut, code := run(t, h, adminUser, "settings", "--set=tax_rate=150")
	if code != ExitError || !strings.Contains(errOut, "Tax rate cannot exceed 100%") {
		t.Errorf("invalid settings: code %d stderr %q", code, errOut)
	}

	_, errOut, code = run(t, h, adminUser, "settings", "--set=currency_symbol=€")
	if code != ExitOK {
		t.Fatalf("save settings: code %d stderr %q", code, errOut)
	}
	out, _, _ = run(t, h, adminUser, "list", "shipping", "--search=express")
	if !strings.Contains(out, "€12.99") {
		t.Errorf("shipping price not in new currency:\n%s", out)
	}
}

func TestAdminCommands(t *testing.T) {
	h := newTestHandler(t)

	_, errOut, code := run(t, h, readerUser, "audit")
	if code != ExitError || !strings.Contains(errOut, "admin access required") {
		t.Errorf("reader audit: code %d stderr %q", code, errOut)
	}

	_, errOut, code = run(t, h, adminUser, "sessions")
	if code != ExitError || !strings.Contains(errOut, "not available") {
		t.Errorf("sessions without manager: code %d stderr %q", code, errOut)
	}

	run(t, h, adminUser, "create", "memberships", "--set=name=Bronze")
	out, _, code := run(t, h, adminUser, "audit", "--action=create")
	if code != ExitOK {
		t.Fatalf("audit exit code = %d", code)
	}
	if !strings.Contains(out, "memberships") || !strings.Contains(out, "admin") {
		t.Errorf("audit output = %q", out)
	}

	reloaded := false
	h.WithReload(func() error { reloaded = true; return nil })
	out, _, _ = run(t, h, adminUser, "reload-config")
	if !reloaded || !strings.Contains(out, "Configuration reloaded") {
		t.Errorf("reload-config: reloaded=%v out=%q", reloaded, out)
	}
}

func TestWhoami(t *testing.T) {
	h := newTestHandler(t)

	out, _, _ := run(t, h, anonUser, "whoami")
	if !strings.Contains(out, "Anonymous user: calm-otter-07") || !strings.Contains(out, "Access: none") {
		t.Errorf("anonymous whoami = %q", out)
	}

	out, _, _ = run(t, h, writerUser, "whoami")
	if !strings.Contains(out, "products=read-write") {
		t.Errorf("writer whoami = %q", out)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{5 * time.Minute, "5m"},
		{2*time.Hour + 3*time.Minute, "2h3m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	s = s[i+len(start):]
	j := strings.Index(s, end)
	if j < 0 {
		return ""
	}
	return s[:j]
}
