package bars

import (
	"context"
	"io"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/exchange"
	"tableflip.dev/barswitch/pkg/printers"
)

type Add struct {
	Service *app.Service
	Title   string
	// Switch makes the new bar visible.
	Switch bool
	JSON   bool
	Out    io.Writer
}

func (n *Add) Do(ctx context.Context) error {
	bar, err := n.Service.Add(ctx, n.Title)
	if err != nil {
		return err
	}
	if n.Switch {
		if _, err := n.Service.Exchange(ctx, exchange.Ref{ID: bar.ID, Title: bar.Title}); err != nil {
			return err
		}
		bar.Active = true
	}
	pp := printers.PrettyPrint{Out: n.Out}
	if n.JSON {
		return pp.JSON(bar)
	}
	pp.Event("added", bar.Title)
	return nil
}
