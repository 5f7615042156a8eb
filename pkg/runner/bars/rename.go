package bars

import (
	"context"
	"io"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/printers"
)

type Rename struct {
	Service *app.Service
	// Bar is an id, title or position. Empty renames the active bar.
	Bar   string
	Title string
	JSON  bool
	Out   io.Writer
}

func (n *Rename) Do(ctx context.Context) error {
	old, _, err := n.Service.Bar(ctx, n.Bar)
	if err != nil {
		return err
	}
	bar, err := n.Service.Rename(ctx, old.ID, n.Title)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	if n.JSON {
		return pp.JSON(bar)
	}
	pp.Event("renamed", old.Title, "->", bar.Title)
	return nil
}
