package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"

	"github.com/peterbourgon/diskv/v3"
)

// Local is the fast tier: one file per key under basePath, fronted by the
// diskv read cache.
type Local struct {
	d        *diskv.Diskv
	basePath string
}

var _ Tier = (*Local)(nil)

// NewLocal opens (or lazily creates) a local tier rooted at basePath.
func NewLocal(basePath string) (*Local, error) {
	if basePath == "" {
		return nil, errors.New("store: local base path required")
	}
	return &Local{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			Transform:    flatTransform,
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}, nil
}

// BasePath is the directory holding the key files.
func (l *Local) BasePath() string {
	return l.basePath
}

func (l *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	k := toFileKey(key)
	if !l.d.Has(k) {
		return nil, false, nil
	}
	val, err := l.d.Read(k)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: read %s: %w", key, err)
	}
	return val, true, nil
}

func (l *Local) Set(_ context.Context, key string, value []byte) error {
	if err := l.d.Write(toFileKey(key), value); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	k := toFileKey(key)
	if !l.d.Has(k) {
		return nil
	}
	if err := l.d.Erase(k); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key.
func (l *Local) Keys(ctx context.Context) []string {
	var keys []string
	for k := range l.d.Keys(ctx.Done()) {
		if key, err := fromFileKey(k); err == nil {
			keys = append(keys, key)
		}
	}
	return keys
}

func flatTransform(string) []string {
	return []string{}
}

// Keys may contain "/" (scoped records), so they are encoded into a file
// name that is safe on every platform.
func toFileKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func fromFileKey(s string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
