package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sentinel errors returned by the repositories. Services translate them
// into the typed HTTP-aware errors in pkg/errors.
var (
	ErrNotFound  = errors.New("repository: record not found")
	ErrDuplicate = errors.New("repository: duplicate key")
)

// OpObserver receives timing for collection operations, typically wired to
// the metrics service.
type OpObserver func(collection, op string, duration time.Duration)

// Collection persists a homogeneous list of records as one JSON array file.
// All access runs under a per-collection mutex so a load-mutate-save cycle
// can never interleave with another writer (the legacy app lost updates
// here). A missing or unparseable backing file yields an empty list, never
// an error; corruption is logged distinctly from the legitimate empty case.
type Collection[T any] struct {
	name    string
	path    string
	logger  *zap.Logger
	observe OpObserver

	mu sync.Mutex
}

// NewCollection builds a collection handle backed by <dir>/<name>.json.
func NewCollection[T any](dir, name string, logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{
		name:   name,
		path:   filepath.Join(dir, name+".json"),
		logger: logger,
	}
}

// Observe registers an operation observer. Call before first use.
func (c *Collection[T]) Observe(fn OpObserver) {
	c.observe = fn
}

// Name returns the collection identifier.
func (c *Collection[T]) Name() string {
	return c.name
}

// Load returns a snapshot of all records in insertion order.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	start := time.Now()
	records := c.read()
	c.record("load", start)
	return records, nil
}

// Replace overwrites the whole collection. The write goes to a temp file in
// the same directory followed by a rename, so a crash cannot truncate the
// backing file.
func (c *Collection[T]) Replace(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	start := time.Now()
	err := c.write(records)
	c.record("replace", start)
	return err
}

// Update runs fn over the current records and persists its result, all under
// the collection lock. Returning an error from fn aborts without writing.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	start := time.Now()
	defer c.record("update", start)

	records := c.read()
	next, err := fn(records)
	if err != nil {
		return err
	}
	return c.write(next)
}

func (c *Collection[T]) read() []T {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("collection file unreadable, starting empty",
				zap.String("collection", c.name), zap.Error(err))
		}
		return []T{}
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		// Bad persisted state must never crash the service, but it is not
		// the same as a brand-new collection.
		c.logger.Warn("collection file corrupt, starting empty",
			zap.String("collection", c.name), zap.String("path", c.path), zap.Error(err))
		return []T{}
	}
	if records == nil {
		records = []T{}
	}
	return records
}

func (c *Collection[T]) write(records []T) error {
	if records == nil {
		records = []T{}
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", c.name, err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("prepare data directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), c.name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", c.name, err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write collection %s: %w", c.name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file for %s: %w", c.name, err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace collection %s: %w", c.name, err)
	}
	return nil
}

func (c *Collection[T]) record(op string, start time.Time) {
	if c.observe != nil {
		c.observe(c.name, op, time.Since(start))
	}
}
