// Package devserver serves the dev tree with live reload and re-runs tasks
// when watched files change. It is the terminal stage of the dev pipeline.
package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/mode"
	"git.home.luguber.info/inful/assetflow/internal/paths"
)

// TaskName is the name the server reports as a pipeline task.
const TaskName = "watch"

const shutdownTimeout = 5 * time.Second

// Options configures the server.
type Options struct {
	Addr     string
	Debounce time.Duration
}

// Server serves the dev root, pushes live-reload events and watches the tree.
type Server struct {
	reg     *paths.Registry
	hub     *Hub
	rules   []Rule
	opts    Options
	metrics http.Handler
	logger  *slog.Logger
}

// New creates a server. The hub is shared with tasks that push CSS updates.
func New(reg *paths.Registry, hub *Hub, rules []Rule, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	return &Server{reg: reg, hub: hub, rules: rules, opts: opts, logger: logger}
}

// WithMetrics serves h on /metrics.
func (s *Server) WithMetrics(h http.Handler) *Server {
	s.metrics = h
	return s
}

func (s *Server) Name() string { return TaskName }

// Handler returns the HTTP handler: static dev root with script injection,
// the SSE endpoint, the client script and, if configured, metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/livereload", s.hub)
	mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write([]byte(clientScript)); err != nil {
			s.logger.Error("failed to write livereload script", logfields.Error(err))
		}
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	root := s.reg.Abs(s.reg.Folders.Root.Dev)
	mux.Handle("/", injectLiveReload(http.FileServer(http.Dir(root))))
	return mux
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, m mode.Mode) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return ferrors.ServerError("listen").WithCause(err).
			WithContext("addr", s.opts.Addr).Build()
	}
	return s.Serve(ctx, ln, m)
}

// Serve serves on ln and watches the dev root until ctx is cancelled, then
// shuts down gracefully. Rebuild errors are logged and never end the server.
func (s *Server) Serve(ctx context.Context, ln net.Listener, m mode.Mode) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = ln.Close()
		return ferrors.ServerError("create watcher").WithCause(err).Build()
	}
	defer func() { _ = watcher.Close() }()
	if err := s.addDirsRecursive(watcher, s.reg.Abs(s.reg.Folders.Root.Dev)); err != nil {
		s.logger.Warn("watch setup incomplete", logfields.Error(err))
	}

	workCtx, stopWork := context.WithCancel(ctx)
	defer stopWork()
	groups := make([]*watchGroup, 0, len(s.rules))
	var wg sync.WaitGroup
	for _, r := range s.rules {
		g := &watchGroup{rule: r, deb: newDebouncer(s.opts.Debounce)}
		groups = append(groups, g)
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(workCtx, g, m)
		}()
	}

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	s.logger.InfoContext(ctx, "Dev server listening", logfields.Addr("http://"+ln.Addr().String()))

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				runErr = ferrors.ServerError("serve").WithCause(err).Build()
			}
			break loop
		case ev, ok := <-watcher.Events:
			if !ok {
				break loop
			}
			s.handleFileEvent(watcher, ev, groups)
		case err, ok := <-watcher.Errors:
			if !ok {
				break loop
			}
			s.logger.Warn("watcher error", logfields.Error(err))
		}
	}

	s.logger.Info("Shutting down dev server")
	for _, g := range groups {
		g.deb.stop()
	}
	s.hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	stopWork()
	wg.Wait()
	return runErr
}
