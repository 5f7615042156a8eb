package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/commands/options"
	"tableflip.dev/barswitch/pkg/runner/bookmark"
)

func addBookmark(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "bookmark",
		Aliases: []string{"bm"},
		Short:   "Work with the bookmarks of a bar.",
		Example: `
barswitch bookmark list
barswitch bookmark add --bar Work CI https://ci.example.com
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	lo := &options.BarOptions{}
	ido := &options.IDOptions{}
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the bookmarks of a bar.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				l := bookmark.List{Service: svc, Bar: lo.Bar, ShowID: ido.ShowID, JSON: oo.JSON}
				return l.Do(ctx)
			})
		},
	}
	options.AddBarArgs(list, lo)
	options.AddShowIDArgs(list, ido)
	options.AddOutputArg(list, oo)

	ao := &options.BarOptions{}
	add := &cobra.Command{
		Use:   "add <title> <url>",
		Short: "Append a bookmark to a bar.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				a := bookmark.Add{Service: svc, Bar: ao.Bar, Title: args[0], URL: args[1]}
				return a.Do(ctx)
			})
		},
	}
	options.AddBarArgs(add, ao)

	cmd.AddCommand(list, add)
	topLevel.AddCommand(cmd)
}
