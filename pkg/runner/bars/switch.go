package bars

import (
	"context"
	"io"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/exchange"
	"tableflip.dev/barswitch/pkg/printers"
)

// Switch makes a bar the visible one.
type Switch struct {
	Service *app.Service
	Bar     string
	Out     io.Writer
}

func (n *Switch) Do(ctx context.Context) error {
	bar, _, err := n.Service.Bar(ctx, n.Bar)
	if err != nil {
		return err
	}
	changed, err := n.Service.Exchange(ctx, exchange.Ref{ID: bar.ID, Title: bar.Title})
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	if !changed {
		pp.Event("unchanged", bar.Title, "is already visible")
		return nil
	}
	pp.Event("switched", bar.Title)
	return nil
}
