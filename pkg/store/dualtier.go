package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"tableflip.dev/barswitch/pkg/logging"
)

// DualTier reads through the local tier into the synchronized one and
// writes both. The local tier only ever holds values that were read from or
// written to the synchronized tier.
type DualTier struct {
	local  Tier
	synced Tier
	log    *logrus.Entry
}

// NewDualTier layers local in front of synced.
func NewDualTier(local, synced Tier) *DualTier {
	return &DualTier{
		local:  local,
		synced: synced,
		log:    logging.NewLogger("store"),
	}
}

// GetRaw returns the bytes stored under key. A local hit never touches the
// synchronized tier; a local miss that hits the synchronized tier backfills
// the local tier before returning.
func (d *DualTier) GetRaw(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok, err := d.local.Get(ctx, key); err != nil {
		d.log.WithError(err).WithField("key", key).Warn("local read failed, falling back to sync")
	} else if ok {
		return v, true, nil
	}

	v, ok, err := d.synced.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	if err := d.local.Set(ctx, key, v); err != nil {
		d.log.WithError(err).WithField("key", key).Warn("local backfill failed")
	}
	return v, true, nil
}

// SetRaw writes value to the local tier and then the synchronized tier.
// Readers of the local tier see the new value even when the synchronized
// write fails; that failure is returned and not retried.
func (d *DualTier) SetRaw(ctx context.Context, key string, value []byte) error {
	if err := d.local.Set(ctx, key, value); err != nil {
		return err
	}
	if err := d.synced.Set(ctx, key, value); err != nil {
		d.log.WithError(err).WithField("key", key).Warn("sync write dropped")
		return err
	}
	return nil
}

// Delete removes key from both tiers.
func (d *DualTier) Delete(ctx context.Context, key string) error {
	if err := d.local.Delete(ctx, key); err != nil {
		return err
	}
	return d.synced.Delete(ctx, key)
}

// Refresh makes the local copy of key match the synchronized tier again.
// It is how outside writes reported by Watch reach the local tier.
func (d *DualTier) Refresh(ctx context.Context, key string) error {
	v, ok, err := d.synced.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return d.local.Delete(ctx, key)
	}
	return d.local.Set(ctx, key, v)
}

// Watch forwards change events of the synchronized tier after refreshing
// the local copy of every changed key. Tiers that cannot watch return a
// channel that closes with ctx.
func (d *DualTier) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := d.synced.(Watcher)
	if !ok {
		out := make(chan Event)
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out, nil
	}
	in, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan Event, cap(in))
	go func() {
		defer close(out)
		for ev := range in {
			if ev.Type == EventKeyChanged {
				if err := d.Refresh(ctx, ev.Key); err != nil {
					d.log.WithError(err).WithField("key", ev.Key).Warn("refresh after outside change failed")
				}
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Get decodes the JSON value stored under key.
func Get[T any](ctx context.Context, d *DualTier, key string) (T, bool, error) {
	var zero T
	raw, ok, err := d.GetRaw(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return v, true, nil
}

// Set encodes v as JSON and writes it to both tiers.
func Set[T any](ctx context.Context, d *DualTier, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return d.SetRaw(ctx, key, raw)
}

// IsQuota reports whether err is a dropped synchronized write.
func IsQuota(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}
