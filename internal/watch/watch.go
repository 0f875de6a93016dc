// Package watch rebuilds the site when its sources change and optionally
// keeps the template mirror current on a schedule.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/mirror"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Builder runs one build.
type Builder interface {
	Run(ctx context.Context, req build.Request) (*build.Result, error)
}

// Updater synchronises the template mirror.
type Updater interface {
	Update(ctx context.Context) (mirror.State, error)
}

// Watcher drives rebuilds and mirror updates from a single worker goroutine,
// so at most one of them runs at a time.
type Watcher struct {
	builder  Builder
	req      build.Request
	updater  Updater
	interval time.Duration
	debounce time.Duration
	logger   *slog.Logger

	buildReq  chan struct{}
	updateReq chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithUpdates schedules u every interval. A non-positive interval disables it.
func WithUpdates(u Updater, interval time.Duration) Option {
	return func(w *Watcher) {
		w.updater = u
		w.interval = interval
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New returns a Watcher rebuilding req with b.
func New(b Builder, req build.Request, opts ...Option) *Watcher {
	w := &Watcher{
		builder:   b,
		req:       req,
		debounce:  DefaultDebounce,
		logger:    slog.Default(),
		buildReq:  make(chan struct{}, 1),
		updateReq: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Run builds once and then watches until ctx is cancelled. Build and update
// failures are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := addDirsRecursive(fw, w.req.SourceDir); err != nil {
		return err
	}
	configFiles := map[string]bool{}
	for _, f := range []string{w.req.SiteFile, w.req.SummaryFile} {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		configFiles[abs] = true
		if err := fw.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
		}
	}
	srcAbs, err := filepath.Abs(w.req.SourceDir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.req.SourceDir, err)
	}

	if w.updater != nil && w.interval > 0 {
		sched, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create gocron scheduler: %w", err)
		}
		if _, err := sched.NewJob(
			gocron.DurationJob(w.interval),
			gocron.NewTask(func() { signal(w.updateReq) }),
			gocron.WithName("mirror-update"),
		); err != nil {
			return fmt.Errorf("failed to create mirror update job: %w", err)
		}
		sched.Start()
		defer func() { _ = sched.Shutdown() }()
		w.logger.Info("Scheduled template mirror updates", slog.Duration("interval", w.interval))
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	signal(w.buildReq)
	trigger, stop := debouncer(w.debounce, w.buildReq)
	defer stop()

	w.logger.Info("Watching for changes", logfields.Path(w.req.SourceDir))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev.Name, srcAbs, configFiles) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = addDirsRecursive(fw, ev.Name)
				}
			}
			w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			trigger()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.buildReq:
			w.rebuild(ctx)
		case <-w.updateReq:
			w.update(ctx)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	res, err := w.builder.Run(ctx, w.req)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("Rebuild failed", logfields.Error(err))
		}
		return
	}
	w.logger.Info("Rebuilt site", logfields.Count(res.Pages), slog.Int("written", res.Writes.Written))
}

func (w *Watcher) update(ctx context.Context) {
	state, err := w.updater.Update(ctx)
	if err != nil {
		w.logger.Warn("Template mirror update failed", logfields.State(string(state)), logfields.Error(err))
		return
	}
	w.logger.Debug("Template mirror checked", logfields.State(string(state)))
	if state == mirror.StateFastForwarded {
		w.rebuild(ctx)
	}
}

// relevant filters events down to the source tree and the two config files.
func (w *Watcher) relevant(name, srcAbs string, configFiles map[string]bool) bool {
	if shouldIgnoreEvent(name) {
		return false
	}
	if configFiles[name] {
		return true
	}
	rel, err := filepath.Rel(srcAbs, name)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// signal queues a request unless one is already pending.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// debouncer returns a trigger that signals ch once d has passed without
// further triggers.
func debouncer(d time.Duration, ch chan struct{}) (trigger, stop func()) {
	var mu sync.Mutex
	var timer *time.Timer

	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, func() { signal(ch) })
	}
	stop = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return trigger, stop
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}
	return filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != abs && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports hidden files and editor temporaries.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, ".tmp") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
