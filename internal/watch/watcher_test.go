// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"pmdetect/pkg/agent"
	"pmdetect/pkg/detect"
)

func TestDetectionPatterns(t *testing.T) {
	patterns := DetectionPatterns()

	for _, expected := range []string{
		"yarn.lock",
		"pnpm-lock.yaml",
		"package.json",
		"node_modules/.pnpm",
		"node_modules/.pnpm/**",
		".pnp.cjs",
	} {
		if !slices.Contains(patterns, expected) {
			t.Errorf("DetectionPatterns() missing %q", expected)
		}
	}

	// Every lockfile in the table must be watchable.
	for _, lf := range agent.Lockfiles() {
		if !slices.Contains(patterns, lf.File) {
			t.Errorf("DetectionPatterns() missing lockfile %q", lf.File)
		}
	}
}

func TestWatcher_IsRelevant(t *testing.T) {
	w := &Watcher{patterns: DetectionPatterns()}

	tests := []struct {
		rel      string
		expected bool
	}{
		{"yarn.lock", true},
		{"package.json", true},
		{"bun.lockb", true},
		{"node_modules/.pnpm", true},
		{"node_modules/.pnpm/lodash@4.17.21", true},
		{"src/main.js", false},
		{"node_modules/lodash/package.json", false},
		{"README.md", false},
	}

	for _, tt := range tests {
		if got := w.isRelevant(tt.rel); got != tt.expected {
			t.Errorf("isRelevant(%q) = %v, want %v", tt.rel, got, tt.expected)
		}
	}
}

func TestRedetect(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pnpm-lock.yaml"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var got *detect.Result
	onChange := Redetect(
		detect.Options{Cwd: dir, StopDir: filepath.Dir(dir)},
		func(r *detect.Result) { got = r },
	)

	if err := onChange(context.Background(), []string{"pnpm-lock.yaml"}); err != nil {
		t.Fatalf("Redetect callback: %v", err)
	}
	if got == nil || got.Agent != agent.Pnpm {
		t.Errorf("Redetect reported %+v, want pnpm", got)
	}
}

func TestWatcher_FiresOnLockfileChange(t *testing.T) {
	dir := t.TempDir()

	fired := make(chan []string, 1)
	w, err := New(Config{
		Dir:      dir,
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			select {
			case fired <- changed:
			default:
			}
			return nil
		},
		Stderr: io.Discard,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the event loop start before generating events.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "yarn.lock"), []byte("# lock"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-fired:
		if !slices.Contains(changed, "yarn.lock") {
			t.Errorf("callback received %v, want yarn.lock", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback never fired for a lockfile write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v after cancellation, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()

	fired := make(chan struct{}, 1)
	w, err := New(Config{
		Dir:      dir,
		Debounce: 50 * time.Millisecond,
		OnChange: func(context.Context, []string) error {
			select {
			case fired <- struct{}{}:
			default:
			}
			return nil
		},
		Stderr: io.Discard,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck // exercised via the fired channel

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
		t.Error("callback fired for a file no detection strategy consults")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Dir: dir, Stderr: io.Discard})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(ctx); err == nil {
		t.Error("second Run must fail")
	}

	cancel()
	<-done
}
