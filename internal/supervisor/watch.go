package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// watchRule is one entry of the watch list: a directory watched
// recursively, a single file, or a glob rooted at a base directory.
type watchRule struct {
	base    string // directory registered with fsnotify
	file    string // exact file, for single-file rules
	pattern string // slash-separated absolute glob, for glob rules
}

func (r watchRule) matches(path string) bool {
	switch {
	case r.file != "":
		return path == r.file
	case r.pattern != "":
		ok, _ := doublestar.Match(r.pattern, filepath.ToSlash(path))
		return ok
	default:
		return path == r.base || isWithin(r.base, path)
	}
}

func (r watchRule) recursive() bool {
	return r.file == ""
}

// Watcher reports debounced file changes below the watch list.
type Watcher struct {
	fsw     *fsnotify.Watcher
	rules   []watchRule
	ignore  *ignoreMatcher
	delay   time.Duration
	changes chan string

	mu    sync.Mutex
	paths map[string]bool
}

// NewWatcher registers the watch list with fsnotify. Entries are resolved
// against cwd; an empty list watches cwd itself. Entries that do not exist
// are skipped.
func NewWatcher(cwd string, watch, ignore []string, delay time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		fsw:     fsw,
		ignore:  newIgnoreMatcher(cwd, ignore),
		delay:   delay,
		changes: make(chan string, 1),
		paths:   make(map[string]bool),
	}

	if len(watch) == 0 {
		watch = []string{cwd}
	}
	for _, entry := range watch {
		rule, err := resolveRule(cwd, entry)
		if err != nil {
			slog.Debug("skipping watch entry", "entry", entry, "error", err)
			continue
		}
		w.rules = append(w.rules, rule)
		if rule.recursive() {
			w.addRecursive(rule.base)
		} else {
			w.add(rule.base)
		}
	}

	if len(w.rules) == 0 {
		fsw.Close()
		return nil, errors.New("nothing to watch")
	}
	return w, nil
}

// resolveRule turns one watch entry into a rule.
func resolveRule(cwd, entry string) (watchRule, error) {
	if !filepath.IsAbs(entry) {
		entry = filepath.Join(cwd, entry)
	}
	entry = filepath.Clean(entry)

	base, pattern := doublestar.SplitPattern(filepath.ToSlash(entry))
	if hasMeta(pattern) {
		dir := filepath.FromSlash(base)
		if _, err := os.Stat(dir); err != nil {
			return watchRule{}, err
		}
		return watchRule{base: dir, pattern: filepath.ToSlash(entry)}, nil
	}

	info, err := os.Stat(entry)
	if err != nil {
		return watchRule{}, err
	}
	if info.IsDir() {
		return watchRule{base: entry}, nil
	}
	return watchRule{base: filepath.Dir(entry), file: entry}, nil
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// Rules returns the resolved watch roots for display.
func (w *Watcher) Rules() []string {
	out := make([]string, 0, len(w.rules))
	for _, r := range w.rules {
		switch {
		case r.file != "":
			out = append(out, r.file)
		case r.pattern != "":
			out = append(out, filepath.FromSlash(r.pattern))
		default:
			out = append(out, r.base)
		}
	}
	return out
}

// Changes delivers the path of the first change of every debounced burst.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Run processes fsnotify events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if pending == "" {
				pending = ev.Name
			}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			select {
			case w.changes <- pending:
			default:
				// A change is already queued.
			}
			pending = ""

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Debug("file watcher error", "error", err)
		}
	}
}

// relevant reports whether ev should trigger a restart. New directories are
// registered on the way.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if w.ignore.Match(ev.Name) {
		return false
	}

	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			for _, r := range w.rules {
				if r.recursive() && (ev.Name == r.base || isWithin(r.base, ev.Name)) {
					w.addRecursive(ev.Name)
					break
				}
			}
		}
	}

	for _, r := range w.rules {
		if r.matches(ev.Name) {
			return true
		}
	}
	return false
}

func (w *Watcher) add(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.paths[dir] {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		slog.Debug("cannot watch directory", "dir", dir, "error", err)
		return
	}
	w.paths[dir] = true
}

func (w *Watcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.ignore.Match(p) {
			return filepath.SkipDir
		}
		w.add(p)
		return nil
	})
}

// isWithin reports whether path lies below dir.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel)
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
