// SPDX-License-Identifier: MPL-2.0

package detect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"pmdetect/pkg/agent"
)

// Detect resolves the package-manager agent governing Options.Cwd. It returns
// (nil, nil) when no configured signal exists in any visited directory; the
// only errors are context cancellation and an unresolvable starting
// directory. ctx is consulted exactly at filesystem probe and manifest read
// boundaries, never mid-parse.
func Detect(ctx context.Context, opts Options) (*Result, error) {
	d := newDetector(ctx, opts)

	if opts.EnvFastPath {
		spec := specifierFromEnv()
		if spec == "" {
			// The fast path was explicitly requested; with no environment
			// value there is nothing to resolve and traversal is skipped.
			return nil, nil
		}
		if r := ParseSpecifier(spec, opts.OnUnknown); r != nil {
			d.debug("resolved from environment", "specifier", spec, "agent", r.Agent)
			return r, nil
		}
	}

	start, err := resolveCwd(opts.Cwd)
	if err != nil {
		return nil, err
	}

	for dir := range lookup(start, stopCondition(opts)) {
		r, err := d.inDirectory(dir)
		if err != nil {
			return nil, err
		}
		if r != nil {
			return r, nil
		}
	}
	return nil, nil
}

// DetectSync runs the identical decision tree with a background context. Use
// it where no cancellation is wanted; results match Detect byte for byte for
// the same filesystem state.
func DetectSync(opts Options) *Result {
	r, _ := Detect(context.Background(), opts)
	return r
}

// resolveCwd absolutizes the starting directory, defaulting to the process
// working directory.
func resolveCwd(cwd string) (string, error) {
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("detect: resolve working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("detect: resolve starting directory %q: %w", cwd, err)
	}
	return abs, nil
}

// detector carries one call's immutable state: the strategy order, the data
// tables snapshotted once, and the context-checking prober. Nothing here is
// shared across calls.
type detector struct {
	probe      prober
	strategies []Strategy
	onUnknown  UnknownHandler
	locks      []agent.Lockfile
	markers    []agent.Marker
	devEngines bool
	logger     *log.Logger
}

func newDetector(ctx context.Context, opts Options) *detector {
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &detector{
		probe:      prober{ctx: ctx},
		strategies: strategies,
		onUnknown:  opts.OnUnknown,
		locks:      agent.Lockfiles(),
		markers:    agent.InstallMetadata(),
		devEngines: slices.Contains(strategies, StrategyDevEnginesField),
		logger:     opts.Logger,
	}
}

// inDirectory evaluates the strategies in their configured order and stops at
// the first one that yields a result. Unknown strategy names are skipped:
// the boundary that accepts configuration reports them, the engine does not
// re-validate.
func (d *detector) inDirectory(dir string) (*Result, error) {
	for _, s := range d.strategies {
		var (
			r   *Result
			err error
		)
		switch s {
		case StrategyLockfile:
			r, err = d.lockfile(dir)
		case StrategyPackageManagerField, StrategyDevEnginesField:
			r, err = d.manifest(dir)
		case StrategyInstallMetadata:
			r, err = d.installMetadata(dir)
		}
		if err != nil {
			return nil, err
		}
		if r != nil {
			d.debug("strategy matched", "dir", dir, "strategy", s, "agent", r.Agent)
			return r, nil
		}
	}
	return nil, nil
}

// lockfile checks the lockfile table in definition order. On a hit, a sibling
// manifest may sharpen the generic family into a precise versioned agent;
// otherwise the bare family stands, with Agent equal to Name.
func (d *detector) lockfile(dir string) (*Result, error) {
	for _, lf := range d.locks {
		ok, err := d.probe.fileExists(filepath.Join(dir, lf.File))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		r, err := d.manifest(dir)
		if err != nil || r != nil {
			return r, err
		}
		return &Result{Name: lf.Name, Agent: lf.Name.Agent()}, nil
	}
	return nil, nil
}

// manifest reads the directory's package.json and extracts the enabled
// fields. Missing or malformed manifests are no signal.
func (d *detector) manifest(dir string) (*Result, error) {
	data, ok, err := d.probe.readFile(filepath.Join(dir, manifestName))
	if err != nil || !ok {
		return nil, err
	}
	m, ok := parseManifest(data)
	if !ok {
		return nil, nil
	}
	return resolveManifest(m, d.devEngines, d.onUnknown), nil
}

// installMetadata checks the marker table in definition order. Markers pin a
// full agent directly; no manifest read is involved.
func (d *detector) installMetadata(dir string) (*Result, error) {
	for _, mk := range d.markers {
		path := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(mk.Path, "/")))
		var (
			ok  bool
			err error
		)
		if mk.IsDir() {
			ok, err = d.probe.dirExists(path)
		} else {
			ok, err = d.probe.fileExists(path)
		}
		if err != nil {
			return nil, err
		}
		if ok {
			return &Result{Name: mk.Agent.Name(), Agent: mk.Agent}, nil
		}
	}
	return nil, nil
}

// debug logs through the optional caller-supplied logger.
func (d *detector) debug(msg string, kv ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, kv...)
	}
}
