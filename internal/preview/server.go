// Package preview serves the generated site locally and rebuilds it when
// sources change or on a fixed interval.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// StatusPath serves the latest build status as JSON.
const StatusPath = "/_sitebuilder/status"

const shutdownTimeout = 5 * time.Second

// Options tune a preview server.
type Options struct {
	// Addr overrides the listen address derived from serve.port.
	Addr string
	// ConfigPath is recorded with each build.
	ConfigPath string
	// Registry, when set, is exposed on /metrics.
	Registry *prom.Registry
}

// Server watches the content tree and serves the output tree.
type Server struct {
	cfg     *config.Config
	svc     build.BuildService
	opts    Options
	status  *buildStatus
	filter  changeFilter
	rebuild chan build.Trigger

	ready chan string
}

// New creates a preview server running builds through svc.
func New(cfg *config.Config, svc build.BuildService, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = net.JoinHostPort("", strconv.Itoa(cfg.Serve.Port))
	}
	return &Server{
		cfg:     cfg,
		svc:     svc,
		opts:    opts,
		status:  &buildStatus{},
		filter:  newChangeFilter(cfg),
		rebuild: make(chan build.Trigger, 1),
		ready:   make(chan string, 1),
	}
}

// Ready yields the bound listen address once the server accepts requests.
func (s *Server) Ready() <-chan string { return s.ready }

// Status returns the latest build status.
func (s *Server) Status() StatusSnapshot { return s.status.snapshot() }

// Run builds once, then serves and rebuilds until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.runBuild(ctx, build.TriggerCLI)

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to listen").
			WithContext("addr", s.opts.Addr).Build()
	}
	httpServer := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	addr := ln.Addr().String()
	slog.Info("Preview server listening", logfields.Addr(addr), logfields.Output(s.cfg.OutputRoot()))

	watcher, err := newWatcher(s.cfg.Content.Root, s.skipDir)
	if err != nil {
		_ = httpServer.Close()
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to watch content").
			WithContext("path", s.cfg.Content.Root).Build()
	}
	defer func() { _ = watcher.Close() }()

	sched, err := startSchedule(s.cfg.Serve.RebuildInterval, s.request)
	if err != nil {
		_ = httpServer.Close()
		return err
	}
	defer sched.stop()

	deb := newDebouncer(s.cfg.Serve.Debounce, func() { s.request(build.TriggerWatch) })
	defer deb.stop()

	workerDone := make(chan struct{})
	go s.rebuildWorker(ctx, workerDone)

	s.ready <- addr

	loopErr := s.watchLoop(ctx, watcher, deb, serveErr)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	<-workerDone
	return loopErr
}

// request queues a rebuild. A queued request absorbs later ones.
func (s *Server) request(trigger build.Trigger) {
	select {
	case s.rebuild <- trigger:
	default:
	}
}

func (s *Server) rebuildWorker(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-s.rebuild:
			slog.Info("Rebuilding site", slog.String("trigger", string(trigger)))
			s.runBuild(ctx, trigger)
		}
	}
}

func (s *Server) runBuild(ctx context.Context, trigger build.Trigger) {
	res, err := s.svc.Run(ctx, build.BuildRequest{Config: s.cfg, ConfigPath: s.opts.ConfigPath, Trigger: trigger})
	if err != nil {
		slog.Warn("Build failed", logfields.Error(err))
	}
	s.status.record(res, err)
}

func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, deb *debouncer, serveErr <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down preview server")
			return nil
		case err, ok := <-serveErr:
			if ok && err != nil {
				return ferrors.WrapError(err, ferrors.CategoryRuntime, "preview server stopped").Build()
			}
			serveErr = nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleFileEvent(watcher, ev, deb)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (s *Server) handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, deb *debouncer) {
	if ev.Has(fsnotify.Create) && isDir(ev.Name) && !s.skipDir(ev.Name) {
		_ = addDirsRecursive(watcher, ev.Name, s.skipDir)
	}
	if !s.filter.relevant(ev.Name) {
		return
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	deb.trigger()
}

func (s *Server) skipDir(dir string) bool {
	return s.filter.outputDir != "" && within(s.filter.outputDir, dir)
}

// Handler serves the output tree, the status endpoint and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.opts.Registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.opts.Registry))
	}
	mux.HandleFunc(StatusPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.status.snapshot())
	})
	files := http.FileServer(http.Dir(s.cfg.OutputRoot()))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		snap := s.status.snapshot()
		if !snap.HasGoodBuild && snap.Error != "" {
			http.Error(w, fmt.Sprintf("build failed: %s", snap.Error), http.StatusServiceUnavailable)
			return
		}
		if hiddenPath(r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
	return mux
}
