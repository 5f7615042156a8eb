package bookmark

import (
	"context"
	"io"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/printers"
)

type List struct {
	Service *app.Service
	// Bar selects the bar. Empty lists the visible bar.
	Bar    string
	ShowID bool
	JSON   bool
	Out    io.Writer
}

func (n *List) Do(ctx context.Context) error {
	bar, _, err := n.Service.Bar(ctx, n.Bar)
	if err != nil {
		return err
	}
	nodes, err := n.Service.Bookmarks(ctx, bar.ID)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		return pp.JSON(nodes)
	}
	pp.TitleWithCount(bar.Title, len(nodes), "bookmark")
	pp.Bookmarks(nodes...)
	return nil
}

type Add struct {
	Service *app.Service
	Bar     string
	Title   string
	URL     string
	Out     io.Writer
}

func (n *Add) Do(ctx context.Context) error {
	bar, _, err := n.Service.Bar(ctx, n.Bar)
	if err != nil {
		return err
	}
	node, err := n.Service.AddBookmark(ctx, bar.ID, n.Title, n.URL)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Event("added", node.Title, "to", bar.Title)
	return nil
}
