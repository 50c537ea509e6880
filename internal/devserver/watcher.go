package devserver

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/assetflow/internal/fileset"
	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/mode"
	"git.home.luguber.info/inful/assetflow/internal/paths"
	"git.home.luguber.info/inful/assetflow/internal/pipeline"
)

// Rule maps a group of watched files to the work a change triggers.
type Rule struct {
	Name    string
	Pattern fileset.Pattern
	// Task re-runs on change. Nil means nothing is rebuilt.
	Task pipeline.Task
	// Reload broadcasts a full page reload once Task has succeeded.
	Reload bool
}

// DefaultRules returns the watch groups of the dev pipeline: stylesheets
// re-run style (which pushes CSS itself), scripts re-run script and reload,
// markup reloads.
func DefaultRules(reg *paths.Registry, style, script pipeline.Task) []Rule {
	return []Rule{
		{Name: "styles", Pattern: reg.Files.Sass, Task: style},
		{Name: "scripts", Pattern: reg.Files.JS, Task: script, Reload: true},
		{Name: "markup", Pattern: reg.Files.HTML, Reload: true},
	}
}

// debouncer coalesces bursts of triggers into one signal on out.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	out   chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, out: make(chan struct{}, 1)}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		select {
		case d.out <- struct{}{}:
		default:
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// watchGroup is a rule with its debouncer.
type watchGroup struct {
	rule Rule
	deb  *debouncer
}

// worker runs the group's rebuild for every debounced signal until ctx ends.
// Signals arriving while a rebuild runs collapse into one follow-up rebuild.
func (s *Server) worker(ctx context.Context, g *watchGroup, m mode.Mode) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-g.deb.out:
			s.rebuild(ctx, g.rule, m)
		}
	}
}

func (s *Server) rebuild(ctx context.Context, r Rule, m mode.Mode) {
	if r.Task != nil {
		s.logger.InfoContext(ctx, "Change detected; rebuilding",
			slog.String("group", r.Name), logfields.Task(r.Task.Name()))
		t0 := time.Now()
		if err := r.Task.Run(ctx, m); err != nil {
			s.logger.WarnContext(ctx, "Rebuild failed",
				slog.String("group", r.Name), logfields.Task(r.Task.Name()), logfields.Error(err))
			return
		}
		s.logger.DebugContext(ctx, "Rebuild completed",
			slog.String("group", r.Name), logfields.Duration(time.Since(t0)))
	}
	if r.Reload {
		s.hub.Reload()
	}
}

// handleFileEvent maps a filesystem event to the groups it affects.
func (s *Server) handleFileEvent(w *fsnotify.Watcher, ev fsnotify.Event, groups []*watchGroup) {
	// Skip events for hidden files, swap files, and temp files
	if shouldIgnoreEvent(ev.Name) || ev.Op == fsnotify.Chmod {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = s.addDirsRecursive(w, ev.Name)
		}
	}

	rel, err := s.reg.Rel(ev.Name)
	if err != nil {
		return
	}
	for _, g := range groups {
		if g.rule.Pattern.Match(rel) {
			s.logger.Debug("File change detected",
				logfields.Path(rel), slog.String("op", ev.Op.String()), slog.String("group", g.rule.Name))
			g.deb.trigger()
		}
	}
}

func (s *Server) addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				s.logger.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Ignore hidden files
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Ignore editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
