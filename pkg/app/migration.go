package app

import (
	"context"

	"tableflip.dev/barswitch/pkg/registry"
	"tableflip.dev/barswitch/pkg/store"
)

// legacyTitleKey held the active bar as a bare title before records carried
// the bar id.
const legacyTitleKey = "currentBarTitle"

// migrateLegacy turns a legacy active bar title into an unscoped record.
// The legacy key is dropped once the record exists.
func (s *Service) migrateLegacy(ctx context.Context) error {
	title, ok, err := store.Get[string](ctx, s.store, legacyTitleKey)
	if err != nil || !ok {
		return err
	}
	log := s.log.WithField("title", title)
	if _, has, err := s.registry.Peek(ctx, ""); err != nil {
		return err
	} else if !has && title != "" {
		n, found, err := s.registry.Lookup(ctx, registry.Record{Title: title})
		if err != nil {
			return err
		}
		if found {
			if err := s.registry.Update(ctx, "", n); err != nil && !store.IsQuota(err) {
				return err
			}
			log.Info("migrated legacy active bar")
		} else {
			log.Info("legacy active bar no longer exists")
		}
	}
	return s.store.Delete(ctx, legacyTitleKey)
}
