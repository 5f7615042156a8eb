package bars

import (
	"context"
	"fmt"
	"io"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/printers"
)

type Move struct {
	Service *app.Service
	Bar     string
	// To is the 1-based destination position.
	To     int
	ShowID bool
	Out    io.Writer
}

func (n *Move) Do(ctx context.Context) error {
	bars, err := n.Service.List(ctx)
	if err != nil {
		return err
	}
	if n.To < 1 || n.To > len(bars) {
		return fmt.Errorf("position %d is out of range, there are %d bars", n.To, len(bars))
	}
	_, from, err := n.Service.Bar(ctx, n.Bar)
	if err != nil {
		return err
	}
	if bars, err = n.Service.Reorder(ctx, from, n.To-1); err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.Bars(bars...)
	return nil
}
