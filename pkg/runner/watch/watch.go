package watch

import (
	"context"
	"io"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/logging"
	"tableflip.dev/barswitch/pkg/printers"
	"tableflip.dev/barswitch/pkg/store"
)

// Watch prints changes other installations make to the synchronized state
// until ctx is cancelled.
type Watch struct {
	Service *app.Service
	ShowID  bool
	Out     io.Writer
}

func (n *Watch) Do(ctx context.Context) error {
	events, err := n.Service.Changes(ctx)
	if err != nil {
		return err
	}
	log := logging.NewLogger("watch")
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Type {
			case store.EventKeyChanged:
				pp.Event("changed", ev.Key)
			default:
				pp.Event("invalidated")
			}
			bars, err := n.Service.List(ctx)
			if err != nil {
				log.WithError(err).Warn("bars unreadable")
				continue
			}
			pp.Bars(bars...)
		}
	}
}
