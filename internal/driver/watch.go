package driver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jonseale44/Clarafi/internal/source"
	"github.com/jonseale44/Clarafi/internal/trace"
)

// DefaultDebounce is how long Watch waits for a burst of events to settle.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configures Watch on top of Options.
type WatchOptions struct {
	Options
	Debounce time.Duration
}

// Watch runs once, then again whenever one of paths is written, created or
// renamed into place. Parent directories are watched so that editors that
// save through a rename are seen. Content that has not changed since the last
// run, including relfix's own writes, does not trigger a run.
// Watch returns when ctx is cancelled.
func Watch(ctx context.Context, paths []string, opts WatchOptions, onResult func(*source.FileSet, []FileResult)) error {
	paths = dedupPaths(paths)
	if len(paths) == 0 {
		return fmt.Errorf("watch: no files")
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]string, len(paths)) // abs -> as given
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		targets[abs] = p
		dir := filepath.Dir(abs)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = struct{}{}
	}

	seen := make(map[string][32]byte, len(paths))
	run := func(batch []string) error {
		fs, results, err := Run(ctx, batch, opts.Options)
		if err != nil {
			return err
		}
		for _, r := range results {
			if abs, err := filepath.Abs(r.Path); err == nil {
				seen[abs] = currentHash(abs)
			}
		}
		if onResult != nil {
			onResult(fs, results)
		}
		return nil
	}

	if err := run(paths); err != nil {
		return err
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, ok := targets[abs]; !ok {
				continue
			}
			pending[abs] = struct{}{}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			trace.Error(ctx, "watch", err)

		case <-timer.C:
			batch := make([]string, 0, len(pending))
			for abs := range pending {
				if h := currentHash(abs); h == seen[abs] {
					continue
				}
				batch = append(batch, targets[abs])
			}
			clear(pending)
			sort.Strings(batch)
			if len(batch) == 0 {
				continue
			}
			if err := run(batch); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func currentHash(path string) [32]byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return [32]byte{}
	}
	return sha256.Sum256(data)
}
