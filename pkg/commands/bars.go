package commands

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/commands/options"
	"tableflip.dev/barswitch/pkg/runner/bars"
)

func addList(topLevel *cobra.Command) {
	ido := &options.IDOptions{}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the saved bars, marking the visible one.",
		Example: `
barswitch list
barswitch ls --show-id
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				l := bars.List{Service: svc, ShowID: ido.ShowID, JSON: oo.JSON}
				return l.Do(ctx)
			})
		},
	}
	options.AddShowIDArgs(cmd, ido)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addAdd(topLevel *cobra.Command) {
	var switchTo bool
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create an empty bar.",
		Example: `
barswitch add Work
barswitch add Side project --switch
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				a := bars.Add{Service: svc, Title: strings.Join(args, " "), Switch: switchTo, JSON: oo.JSON}
				return a.Do(ctx)
			})
		},
	}
	cmd.Flags().BoolVarP(&switchTo, "switch", "s", false, "Make the new bar visible.")
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addRename(topLevel *cobra.Command) {
	bo := &options.BarOptions{}
	cmd := &cobra.Command{
		Use:   "rename <title>",
		Short: "Rename a bar.",
		Example: `
barswitch rename Reading list
barswitch rename --bar 2 Work
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				r := bars.Rename{Service: svc, Bar: bo.Bar, Title: strings.Join(args, " "), JSON: oo.JSON}
				return r.Do(ctx)
			})
		},
	}
	options.AddBarArgs(cmd, bo)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addRemove(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "remove <bar>",
		Aliases: []string{"rm"},
		Short:   options.Wrap80("Delete a bar and its bookmarks. The last bar is never removed."),
		Example: `
barswitch remove Work
barswitch rm 3
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				r := bars.Remove{Service: svc, Bar: args[0]}
				return r.Do(ctx)
			})
		},
	}
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addMove(topLevel *cobra.Command) {
	ido := &options.IDOptions{}
	cmd := &cobra.Command{
		Use:   "move <bar> <position>",
		Short: "Move a bar to a 1-based position.",
		Example: `
barswitch move Work 1
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return oo.HandleError(err)
			}
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				m := bars.Move{Service: svc, Bar: args[0], To: to, ShowID: ido.ShowID}
				return m.Do(ctx)
			})
		},
	}
	options.AddShowIDArgs(cmd, ido)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addSwitch(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "switch <bar>",
		Short: "Make a bar the visible one.",
		Example: `
barswitch switch Work
barswitch switch 2
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				s := bars.Switch{Service: svc, Bar: args[0]}
				return s.Do(ctx)
			})
		},
	}
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
