package shortcut

import (
	"context"
	"io"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/printers"
)

// Command sends keyboard commands in order and waits for the debounced
// result.
type Command struct {
	Service *app.Service
	Names   []string
	Out     io.Writer
}

func (n *Command) Do(ctx context.Context) error {
	for _, name := range n.Names {
		if err := n.Service.Command(name); err != nil {
			return err
		}
	}
	n.Service.WaitCommands()

	active, _, err := n.Service.Bar(ctx, "")
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Event("visible", active.Title)
	return nil
}
