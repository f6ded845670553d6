// SPDX-License-Identifier: MPL-2.0

package detect

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pmdetect/pkg/agent"
)

// writeFile creates a file (and its parents) inside a test tree.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// detectIn runs detection from dir, bounded so signals above the test tree
// can never leak in.
func detectIn(t *testing.T, dir string, opts Options) *Result {
	t.Helper()
	opts.Cwd = dir
	if opts.StopDir == "" && opts.StopAt == nil {
		opts.StopDir = filepath.Dir(dir)
	}
	r, err := Detect(context.Background(), opts)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	return r
}

func TestDetect_Lockfiles(t *testing.T) {
	tests := []struct {
		lockfile string
		expected agent.Agent
	}{
		{"bun.lock", agent.Bun},
		{"deno.lock", agent.Deno},
		{"pnpm-lock.yaml", agent.Pnpm},
		{"yarn.lock", agent.Yarn},
		{"package-lock.json", agent.Npm},
		{"npm-shrinkwrap.json", agent.Npm},
	}

	for _, tt := range tests {
		t.Run(tt.lockfile, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.lockfile, "")

			got := detectIn(t, dir, Options{})
			if got == nil {
				t.Fatalf("Detect = nil, want %s", tt.expected)
			}
			if got.Agent != tt.expected || got.Version != "" {
				t.Errorf("Detect = %+v, want bare %s", got, tt.expected)
			}
		})
	}
}

func TestDetect_LockfileOrderWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "yarn.lock", "")
	writeFile(t, dir, "package-lock.json", "")

	got := detectIn(t, dir, Options{})
	if got == nil || got.Agent != agent.Yarn {
		t.Errorf("Detect = %+v, want yarn (table order, not filesystem order)", got)
	}
}

func TestDetect_ManifestSharpensLockfileHit(t *testing.T) {
	// A lockfile hit consults the sibling manifest; a versioned field there
	// replaces the bare family.
	dir := t.TempDir()
	writeFile(t, dir, "yarn.lock", "")
	writeFile(t, dir, "package.json", `{"packageManager": "yarn@3.2.0"}`)

	got := detectIn(t, dir, Options{})
	if got == nil || got.Agent != agent.YarnBerry || got.Version != "berry" {
		t.Errorf("Detect = %+v, want yarn@berry with version berry", got)
	}
}

func TestDetect_PackageManagerField(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		expected Result
	}{
		{
			name:     "pnpm legacy line",
			field:    "pnpm@6.14.0",
			expected: Result{Name: agent.NamePnpm, Agent: agent.Pnpm6, Version: "6.14.0"},
		},
		{
			name:     "yarn berry",
			field:    "yarn@3.2.0",
			expected: Result{Name: agent.NameYarn, Agent: agent.YarnBerry, Version: "berry"},
		},
		{
			name:     "npm",
			field:    "npm@10.1.0",
			expected: Result{Name: agent.NameNpm, Agent: agent.Npm, Version: "10.1.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "package.json", `{"packageManager": "`+tt.field+`"}`)

			got := detectIn(t, dir, Options{})
			if got == nil || *got != tt.expected {
				t.Errorf("Detect = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestDetect_ProximityOverPrecision(t *testing.T) {
	// The nearest directory with any signal wins, even when a farther
	// directory carries a more precise one.
	root := t.TempDir()
	child := filepath.Join(root, "packages", "app")
	writeFile(t, root, "package.json", `{"packageManager": "npm@10.1.0"}`)
	writeFile(t, child, "yarn.lock", "")

	got := detectIn(t, child, Options{StopDir: filepath.Dir(root)})
	if got == nil || got.Agent != agent.Yarn {
		t.Errorf("Detect = %+v, want yarn from the nearer directory", got)
	}
}

func TestDetect_WalksUpToAnAncestor(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, "pnpm-lock.yaml", "")

	got := detectIn(t, child, Options{StopDir: filepath.Dir(root)})
	if got == nil || got.Agent != agent.Pnpm {
		t.Errorf("Detect = %+v, want pnpm from the ancestor", got)
	}
}

func TestDetect_StopDirNeverInspected(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "app")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, "yarn.lock", "")

	got := detectIn(t, child, Options{StopDir: root})
	if got != nil {
		t.Errorf("Detect = %+v, want nil: the stop directory's signals are out of bounds", got)
	}
}

func TestDetect_InstallMetadata(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "node_modules", ".pnpm"), 0o755); err != nil {
		t.Fatal(err)
	}

	opts := Options{Strategies: []Strategy{StrategyInstallMetadata}}
	got := detectIn(t, dir, opts)
	if got == nil || got.Agent != agent.Pnpm {
		t.Errorf("Detect = %+v, want pnpm from the virtual store marker", got)
	}
}

func TestDetect_InstallMetadataFileMarker(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".pnp.cjs", "")

	opts := Options{Strategies: []Strategy{StrategyInstallMetadata}}
	got := detectIn(t, dir, opts)
	if got == nil || got.Agent != agent.YarnBerry {
		t.Errorf("Detect = %+v, want yarn@berry from .pnp.cjs", got)
	}
}

func TestDetect_MarkerTypeMismatchIsNoSignal(t *testing.T) {
	// A directory where a file marker is expected (and vice versa) must not
	// count.
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".pnp.cjs"), 0o755); err != nil {
		t.Fatal(err)
	}

	opts := Options{Strategies: []Strategy{StrategyInstallMetadata}}
	if got := detectIn(t, dir, opts); got != nil {
		t.Errorf("Detect = %+v, want nil for a directory in a file marker's place", got)
	}
}

func TestDetect_DevEnginesOnlyWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json",
		`{"devEngines": {"packageManager": {"name": "pnpm", "version": "9.0.0"}}}`)

	got := detectIn(t, dir, Options{})
	if got == nil || got.Agent != agent.Pnpm || got.Version != "9.0.0" {
		t.Errorf("default strategies: Detect = %+v, want pnpm 9.0.0", got)
	}

	opts := Options{Strategies: []Strategy{StrategyLockfile, StrategyPackageManagerField}}
	if got := detectIn(t, dir, opts); got != nil {
		t.Errorf("devEngines disabled: Detect = %+v, want nil", got)
	}
}

func TestDetect_NoSignal(t *testing.T) {
	dir := t.TempDir()
	if got := detectIn(t, dir, Options{}); got != nil {
		t.Errorf("Detect = %+v, want nil in an empty tree", got)
	}
}

func TestDetect_EnvFastPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "yarn.lock", "")

	t.Run("resolves without touching the filesystem", func(t *testing.T) {
		t.Setenv("npm_config_user_agent", "pnpm/6.14.0 npm/? node/v18.0.0 linux x64")
		got := detectIn(t, dir, Options{EnvFastPath: true})
		if got == nil || got.Agent != agent.Pnpm6 || got.Version != "6.14.0" {
			t.Errorf("Detect = %+v, want pnpm@6 from the environment, not yarn from the lockfile", got)
		}
	})

	t.Run("enabled but unset skips traversal entirely", func(t *testing.T) {
		t.Setenv("npm_config_user_agent", "")
		got := detectIn(t, dir, Options{EnvFastPath: true})
		if got != nil {
			t.Errorf("Detect = %+v, want nil despite the lockfile on disk", got)
		}
	})

	t.Run("disabled ignores the environment", func(t *testing.T) {
		t.Setenv("npm_config_user_agent", "pnpm/6.14.0 npm/? node/v18.0.0 linux x64")
		got := detectIn(t, dir, Options{})
		if got == nil || got.Agent != agent.Yarn {
			t.Errorf("Detect = %+v, want yarn from the lockfile", got)
		}
	})
}

func TestDetect_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "yarn.lock", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := Detect(ctx, Options{Cwd: dir})
	if err == nil {
		t.Fatal("Detect with a cancelled context must return an error")
	}
	if r != nil {
		t.Errorf("Detect = %+v, want nil alongside the error", r)
	}
}

func TestDetectSync_MatchesDetect(t *testing.T) {
	t.Setenv("npm_config_user_agent", "")
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"packageManager": "pnpm@6.14.0"}`)

	opts := Options{Cwd: dir, StopDir: filepath.Dir(dir)}
	sync := DetectSync(opts)
	async, err := Detect(context.Background(), opts)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if sync == nil || async == nil || *sync != *async {
		t.Errorf("DetectSync = %+v, Detect = %+v, want identical results", sync, async)
	}
}

func TestDetect_StrategyOrderWithinDirectory(t *testing.T) {
	// install-metadata first: the marker outranks the manifest field when
	// the caller puts it first.
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"packageManager": "npm@10.1.0"}`)
	if err := os.MkdirAll(filepath.Join(dir, "node_modules", ".pnpm"), 0o755); err != nil {
		t.Fatal(err)
	}

	opts := Options{Strategies: []Strategy{StrategyInstallMetadata, StrategyPackageManagerField}}
	got := detectIn(t, dir, opts)
	if got == nil || got.Agent != agent.Pnpm {
		t.Errorf("Detect = %+v, want pnpm (first strategy wins)", got)
	}
}
