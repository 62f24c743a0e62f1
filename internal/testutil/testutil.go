// Package testutil provides helpers shared by shopdash tests.
package testutil

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/johan-st/shopdash/internal/history"
	"github.com/johan-st/shopdash/internal/store"
)

// Logger returns a logger that discards output.
func Logger() *log.Logger {
	return log.New(io.Discard)
}

// Store opens a migrated store in a temp dir. With seed set it holds the
// demo catalogue.
func Store(t *testing.T, seed bool) *store.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shop.db")
	s, err := store.Open(context.Background(), path, Logger())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if seed {
		if err := s.Seed(context.Background()); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}
	return s
}

// History opens a history store in a temp dir.
func History(t *testing.T) *history.Store {
	t.Helper()

	h, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open history: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

// OutputCapture collects what a command writes.
type OutputCapture struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

// CaptureOutput runs fn with buffered writers and returns what was written.
func CaptureOutput(fn func(out, errOut io.Writer)) (stdout, stderr string) {
	var c OutputCapture
	fn(&c.stdout, &c.stderr)
	return c.stdout.String(), c.stderr.String()
}
