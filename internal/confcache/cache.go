// ABOUTME: Cache owns the in-memory settings store and its settle timer.
// ABOUTME: Open resolves canonical, legacy, and empty sources in that order.

package confcache

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/2389/bondstore/internal/alarm"
	"github.com/2389/bondstore/internal/conffile"
	"github.com/2389/bondstore/internal/transcode"
)

const (
	// DefaultPath is where the canonical settings file lives.
	DefaultPath = "/var/lib/bondstore/settings.conf"

	// DefaultLegacyPath is the XML file older installs wrote. It is read
	// once for migration and removed after a successful transcode.
	DefaultLegacyPath = "/var/lib/bondstore/settings.xml"

	// DefaultSettlePeriod is how long the store must be quiet after a
	// Save before it is written to disk.
	DefaultSettlePeriod = 3 * time.Second

	// DefaultGCCapacity bounds how many stale device sections a single
	// garbage collection sweep will evict.
	DefaultGCCapacity = 256
)

// Info-section entries describing the store file itself.
const (
	InfoSection    = "Info"
	FileSourceKey  = "FileSource"
	TimeCreatedKey = "TimeCreated"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("entry not found")

// Cache is a thread-safe, debounced view of the settings store. All
// methods are safe for concurrent use. Methods panic when called with
// empty section or key names, or after Close; see the package
// documentation for the locking rules.
type Cache struct {
	mu     sync.Mutex // guards file
	file   Backend
	closed atomic.Bool

	path   string
	settle time.Duration
	gcCap  int
	alarm  *alarm.Alarm
	log    *slog.Logger
}

type options struct {
	logger  *slog.Logger
	clk     clock.Clock
	settle  time.Duration
	gcCap   int
	legacy  string
	backend Backend
}

// Option configures a Cache at Open time.
type Option func(*options)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			panic("confcache: nil logger")
		}
		o.logger = logger
	}
}

// WithClock sets the clock driving the settle timer. Tests pass
// clock.NewMock() to control time.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		if clk == nil {
			panic("confcache: nil clock")
		}
		o.clk = clk
	}
}

// WithSettlePeriod sets how long the store must stay quiet after a Save
// before it is persisted.
func WithSettlePeriod(d time.Duration) Option {
	return func(o *options) {
		if d <= 0 {
			panic("confcache: settle period must be positive")
		}
		o.settle = d
	}
}

// WithGCCapacity bounds how many stale device sections one sweep evicts.
func WithGCCapacity(n int) Option {
	return func(o *options) {
		if n <= 0 {
			panic("confcache: gc capacity must be positive")
		}
		o.gcCap = n
	}
}

// WithLegacyPath sets the legacy XML file consulted when the canonical
// file cannot be read.
func WithLegacyPath(path string) Option {
	return func(o *options) { o.legacy = path }
}

// WithBackend injects a store, bypassing file loading and migration
// entirely. Intended for tests.
func WithBackend(b Backend) Option {
	return func(o *options) {
		if b == nil {
			panic("confcache: nil backend")
		}
		o.backend = b
	}
}

// Open loads the settings store and returns a ready cache. The canonical
// file at path is tried first; if it is missing or unreadable the legacy
// XML file is transcoded, and failing that the cache starts empty. Open
// never fails: an unreadable disk degrades to an empty in-memory store
// with the problem logged.
//
// When the canonical file could not be used, the resolved store is
// persisted immediately and the legacy file is removed, so the migration
// happens at most once. A clean canonical load clears any FileSource
// marker left by an earlier fallback.
func Open(path string, opts ...Option) *Cache {
	if path == "" {
		panic("confcache: empty store path")
	}

	o := options{
		logger: slog.Default(),
		clk:    clock.New(),
		settle: DefaultSettlePeriod,
		gcCap:  DefaultGCCapacity,
		legacy: DefaultLegacyPath,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache{
		path:   path,
		settle: o.settle,
		gcCap:  o.gcCap,
		alarm:  alarm.NewWithClock(o.clk),
		log:    o.logger,
	}

	if o.backend != nil {
		c.file = o.backend
		return c
	}

	file, err := conffile.Load(path)
	source := ""
	if err != nil {
		c.log.Warn("unable to load settings file; attempting legacy transcode", "path", path, "error", err)
		file, err = transcode.Load(o.legacy)
		source = "Legacy"
		if err != nil {
			c.log.Warn("unable to transcode legacy file, starting unconfigured", "path", o.legacy, "error", err)
			file = conffile.New()
			source = "Empty"
		}
	}

	if _, ok := file.GetString(InfoSection, TimeCreatedKey); !ok {
		file.SetString(InfoSection, TimeCreatedKey, o.clk.Now().Format(time.RFC3339))
	}

	if source == "" {
		file.RemoveKey(InfoSection, FileSourceKey)
	} else {
		file.SetString(InfoSection, FileSourceKey, source)
		if err := file.Save(path); err != nil {
			c.log.Error("unable to persist settings file", "path", path, "error", err)
		} else if err := os.Remove(o.legacy); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("unable to remove legacy settings file", "path", o.legacy, "error", err)
		}
	}

	c.file = file
	return c
}

// Path reports where the cache persists its store.
func (c *Cache) Path() string {
	return c.path
}

// Save schedules a write of the store after the settle period. Calling
// it again before the countdown expires restarts the countdown, so
// bursts of mutations collapse into one write. Save never touches the
// store itself and never blocks on the store mutex.
func (c *Cache) Save() {
	c.mustNotBeClosed()
	c.alarm.Set(c.settle, c.timerFlush)
}

// Flush cancels any pending countdown and writes the store out now. The
// failure is both logged and returned; the in-memory store is unchanged
// either way.
func (c *Cache) Flush() error {
	c.mustNotBeClosed()
	c.alarm.Cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// GCNow runs a garbage collection sweep and persists the result,
// reporting how many sections were evicted. Unlike the timer-fired
// flush, this is synchronous.
func (c *Cache) GCNow() (int, error) {
	c.mustNotBeClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	evicted := c.gcLocked()
	return evicted, c.saveLocked()
}

// Close flushes the store and releases the cache. Further operations
// panic; Close itself is idempotent.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed.Swap(true) {
		c.mu.Unlock()
		return nil
	}
	err := c.saveLocked()
	c.mu.Unlock()

	c.alarm.Cancel()
	return err
}

// timerFlush runs on the settle timer's goroutine. A countdown that
// loses the race with Close finds the closed flag set and does nothing.
func (c *Cache) timerFlush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return
	}

	if evicted := c.gcLocked(); evicted > 0 {
		c.log.Debug("evicted stale device sections", "count", evicted)
	}
	_ = c.saveLocked() // failure already logged; there is no caller to return it to
}

// saveLocked writes the store to disk. Callers hold c.mu.
func (c *Cache) saveLocked() error {
	if err := c.file.Save(c.path); err != nil {
		c.log.Error("unable to persist settings file", "path", c.path, "error", err)
		return fmt.Errorf("persisting settings file: %w", err)
	}
	return nil
}

func (c *Cache) mustNotBeClosed() {
	if c.closed.Load() {
		panic("confcache: use after Close")
	}
}

func mustName(section, key string) {
	if section == "" {
		panic("confcache: empty section name")
	}
	if key == "" {
		panic("confcache: empty key name")
	}
}
