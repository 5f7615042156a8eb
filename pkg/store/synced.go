package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/time/rate"
)

const (
	syncedFile = "sync.json"
	syncedLock = ".sync.lock"

	// LockTimeout bounds how long a call waits for another installation to
	// release the synchronized file. After that the call proceeds unlocked.
	LockTimeout = 100 * time.Millisecond

	// DefaultWritesPerMinute mirrors the per-minute write budget hosts put
	// on synchronized storage.
	DefaultWritesPerMinute = 120
	defaultWriteBurst      = 10
)

// SyncedOptions configure a Synced tier.
type SyncedOptions struct {
	// WritesPerMinute caps Set/Delete calls. Zero means DefaultWritesPerMinute,
	// negative disables the cap.
	WritesPerMinute int
}

// Synced is the synchronized tier: a single JSON document in a directory
// that is shared between installations (a synced folder, a network mount).
// Access is serialized across processes with a file lock.
type Synced struct {
	dir     string
	limiter *rate.Limiter
}

var _ Tier = (*Synced)(nil)
var _ Watcher = (*Synced)(nil)

// NewSynced opens the synchronized tier stored in dir.
func NewSynced(dir string, opts SyncedOptions) (*Synced, error) {
	if dir == "" {
		return nil, errors.New("store: sync path required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure sync path: %w", err)
	}
	s := &Synced{dir: dir}
	per := opts.WritesPerMinute
	if per == 0 {
		per = DefaultWritesPerMinute
	}
	if per > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(float64(per)/60.0), defaultWriteBurst)
	}
	return s, nil
}

// Dir is the directory holding the synchronized document.
func (s *Synced) Dir() string {
	return s.dir
}

func (s *Synced) path() string {
	return filepath.Join(s.dir, syncedFile)
}

type syncLock struct {
	fl *flock.Flock
}

// lock takes the cross-process lock. A nil lock with a nil error means the
// timeout passed and the caller goes ahead without it.
func (s *Synced) lock(ctx context.Context) (*syncLock, error) {
	fl := flock.New(filepath.Join(s.dir, syncedLock))
	ctx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, err
	}
	if !locked {
		return nil, nil
	}
	return &syncLock{fl: fl}, nil
}

func (l *syncLock) release() {
	if l == nil || l.fl == nil {
		return
	}
	_ = l.fl.Unlock()
}

func (s *Synced) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]json.RawMessage), nil
		}
		return nil, err
	}
	doc := make(map[string]json.RawMessage)
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path(), err)
	}
	return doc, nil
}

func (s *Synced) save(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

// Snapshot returns a copy of the whole document.
func (s *Synced) Snapshot(ctx context.Context) (map[string][]byte, error) {
	l, err := s.lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: lock sync: %w", err)
	}
	defer l.release()
	doc, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("store: load sync: %w", err)
	}
	out := make(map[string][]byte, len(doc))
	for k, v := range doc {
		out[k] = []byte(v)
	}
	return out, nil
}

func (s *Synced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	l, err := s.lock(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("store: lock sync: %w", err)
	}
	defer l.release()

	doc, err := s.load()
	if err != nil {
		return nil, false, fmt.Errorf("store: load sync: %w", err)
	}
	v, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (s *Synced) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("store: value for %s is not JSON", key)
	}
	return s.update(ctx, key, func(doc map[string]json.RawMessage) {
		doc[key] = json.RawMessage(value)
	})
}

func (s *Synced) Delete(ctx context.Context, key string) error {
	return s.update(ctx, key, func(doc map[string]json.RawMessage) {
		delete(doc, key)
	})
}

func (s *Synced) update(ctx context.Context, key string, mutate func(map[string]json.RawMessage)) error {
	if s.limiter != nil && !s.limiter.Allow() {
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, key)
	}
	l, err := s.lock(ctx)
	if err != nil {
		return fmt.Errorf("store: lock sync: %w", err)
	}
	defer l.release()

	doc, err := s.load()
	if err != nil {
		return fmt.Errorf("store: load sync: %w", err)
	}
	mutate(doc)
	if err := s.save(doc); err != nil {
		return fmt.Errorf("store: save sync: %w", err)
	}
	return nil
}
