// Package watch re-runs work when files under a set of directories change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/AndreyAkinshin/testrig/internal/logging"
)

// DefaultDebounce is the quiet period before a batch of changes is reported.
const DefaultDebounce = 300 * time.Millisecond

// DefaultIgnore skips dependency trees, caches and report output.
var DefaultIgnore = []string{
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/.pytest_cache/**",
	"**/coverage/**",
	"**/*.pyc",
	"**/*-report-*.json",
}

// ErrNothingToWatch is returned when none of the paths exist.
var ErrNothingToWatch = errors.New("no existing directories to watch")

// Options configures Watch.
type Options struct {
	// Paths are watched recursively. Missing paths are skipped.
	Paths []string
	// Debounce is the quiet period; zero uses DefaultDebounce.
	Debounce time.Duration
	// Ignore holds doublestar patterns matched against slash-separated
	// paths. Nil uses DefaultIgnore. Hidden files are always ignored.
	Ignore []string
}

// Watch blocks until ctx is canceled, calling onChange with the sorted set
// of changed paths after each quiet period. Calls are serialized: changes
// made while onChange runs are reported in the next call.
func Watch(ctx context.Context, opts Options, onChange func(ctx context.Context, changed []string)) error {
	log := logging.For("watch")

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ignore := opts.Ignore
	if ignore == nil {
		ignore = DefaultIgnore
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	pending := make(map[string]struct{})
	watched := 0
	for _, p := range opts.Paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			log.Debug("skipping watch path", "path", p, "error", err)
			continue
		}
		watched += addTree(fw, p, ignore, nil)
	}
	if watched == 0 {
		return ErrNothingToWatch
	}
	log.Info("watching for changes", "paths", opts.Paths, "directories", watched)

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ignored(ev.Name, ignore) || ev.Op == fsnotify.Chmod {
				continue
			}
			log.Debug("file event", "path", ev.Name, "op", ev.Op.String())

			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					addTree(fw, ev.Name, ignore, pending)
				}
			}
			pending[ev.Name] = struct{}{}

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			timerC = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)

		case <-timerC:
			timerC = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})

			log.Info("changes detected", "count", len(changed))
			onChange(ctx, changed)
		}
	}
}

// addTree watches root and every directory below it, returning the number
// of directories added. Files found along the way are recorded in found
// when it is non-nil, so files created together with a new directory are
// not missed.
func addTree(fw *fsnotify.Watcher, root string, ignore []string, found map[string]struct{}) int {
	added := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != root && ignored(path, ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if found != nil {
				found[path] = struct{}{}
			}
			return nil
		}
		if err := fw.Add(path); err != nil {
			logging.For("watch").Debug("failed to watch directory", "path", path, "error", err)
			return nil
		}
		added++
		return nil
	})
	return added
}

// ignored reports whether path is hidden or matches an ignore pattern.
func ignored(path string, patterns []string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	slashed := strings.TrimPrefix(filepath.ToSlash(strings.TrimPrefix(path, filepath.VolumeName(path))), "/")
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
		// Directory patterns also match the directory itself.
		if strings.HasSuffix(pattern, "/**") {
			if ok, _ := doublestar.Match(strings.TrimSuffix(pattern, "/**"), slashed); ok {
				return true
			}
		}
	}
	return false
}
