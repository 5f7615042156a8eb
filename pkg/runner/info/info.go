package info

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/config"
	"tableflip.dev/barswitch/pkg/printers"
)

// Info prints where state lives and what it holds.
type Info struct {
	Config  *config.Config
	Service *app.Service
	JSON    bool
	Out     io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	if n.Config == nil {
		var err error
		if n.Config, err = config.Load(); err != nil {
			return err
		}
	}
	if n.Service == nil {
		return errors.New("info: no service")
	}
	status, err := n.Service.Status(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	if n.JSON {
		return pp.JSON(status)
	}

	env := "not set"
	if override := os.Getenv("BARSWITCH_CONFIG_PATH"); override != "" {
		env = override
	}
	file := n.Config.ConfigFileUsed
	if file == "" {
		file = "none"
	}
	pp.Title("Config")
	pp.Fields(
		[2]string{"BARSWITCH_CONFIG_PATH", env},
		[2]string{"config file", file},
		[2]string{"path", n.Config.Path},
		[2]string{"vendor", string(n.Config.Vendor)},
		[2]string{"workspaces", strconv.FormatBool(n.Config.Workspaces)},
	)
	pp.NewLine()

	if p := status.Paths; p != nil {
		pp.Title("Storage")
		pp.Fields(
			[2]string{"tree", p.Tree},
			[2]string{"local", p.Local},
			[2]string{"synced", p.Synced},
		)
		pp.NewLine()
	}

	pp.Title("State")
	rows := [][2]string{
		{"bars folder", status.RootTitle},
		{"default bar", status.DefaultTitle},
		{"active bar", status.Active.Title},
		{"visible items", strconv.Itoa(status.SlotItems)},
	}
	if status.Scope != "" {
		rows = append(rows, [2]string{"workspace", status.Scope})
	}
	pp.Fields(rows...)
	pp.NewLine()

	pp.TitleWithCount("Bars", len(status.Bars), "bar")
	pp.Bars(status.Bars...)
	return nil
}
