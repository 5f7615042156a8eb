package bars

import (
	"context"
	"io"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/printers"
)

type Remove struct {
	Service *app.Service
	Bar     string
	Out     io.Writer
}

func (n *Remove) Do(ctx context.Context) error {
	bar, _, err := n.Service.Bar(ctx, n.Bar)
	if err != nil {
		return err
	}
	removed, err := n.Service.Remove(ctx, bar.ID)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	if !removed {
		pp.Event("kept", bar.Title, "is the last bar")
		return nil
	}
	pp.Event("removed", bar.Title)
	return nil
}
