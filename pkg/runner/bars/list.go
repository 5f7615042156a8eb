package bars

import (
	"context"
	"io"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/printers"
)

type List struct {
	Service *app.Service
	ShowID  bool
	JSON    bool
	Out     io.Writer
}

func (n *List) Do(ctx context.Context) error {
	bars, err := n.Service.List(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		return pp.JSON(bars)
	}
	pp.TitleWithCount("Bars", len(bars), "bar")
	pp.Bars(bars...)
	return nil
}
