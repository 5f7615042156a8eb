package workspace

import (
	"context"
	"io"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/printers"
)

// Activate reports that a workspace became current.
type Activate struct {
	Service *app.Service
	ID      string
	Name    string
	Out     io.Writer
}

func (n *Activate) Do(ctx context.Context) error {
	changed, err := n.Service.WorkspaceActivated(ctx, n.ID, n.Name)
	if err != nil {
		return err
	}
	active, _, err := n.Service.Bar(ctx, "")
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	if changed {
		pp.Event("switched", active.Title)
	} else {
		pp.Event("unchanged", active.Title)
	}
	return nil
}

type Link struct {
	Service *app.Service
	ID      string
	Bar     string
	Out     io.Writer
}

func (n *Link) Do(ctx context.Context) error {
	bar, _, err := n.Service.Bar(ctx, n.Bar)
	if err != nil {
		return err
	}
	if err := n.Service.LinkWorkspace(ctx, n.ID, bar.Title); err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Event("linked", n.ID, "->", bar.Title)
	return nil
}

type Unlink struct {
	Service *app.Service
	ID      string
	Out     io.Writer
}

func (n *Unlink) Do(ctx context.Context) error {
	if err := n.Service.UnlinkWorkspace(ctx, n.ID); err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Event("unlinked", n.ID)
	return nil
}

type Forget struct {
	Service *app.Service
	ID      string
	Out     io.Writer
}

func (n *Forget) Do(ctx context.Context) error {
	if err := n.Service.ForgetWorkspace(ctx, n.ID); err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Event("forgot", n.ID)
	return nil
}

type List struct {
	Service *app.Service
	JSON    bool
	Out     io.Writer
}

func (n *List) Do(ctx context.Context) error {
	entries, err := n.Service.Workspaces(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	if n.JSON {
		return pp.JSON(entries)
	}
	current, err := n.Service.CurrentWorkspace(ctx)
	if err != nil {
		return err
	}
	pp.TitleWithCount("Workspaces", len(entries), "workspace")
	pp.Workspaces(current, entries...)
	return nil
}
