package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/runner/shortcut"
	cmds "tableflip.dev/barswitch/pkg/shortcut"
)

func addCommand(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "command <name>...",
		Short: "Send keyboard commands. Commands sent in quick succession collapse into the last.",
		Example: `
barswitch command next-bar
barswitch command switch-to-3
`,
		ValidArgs: cmds.Names(),
		Args:      cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				c := shortcut.Command{Service: svc, Names: args}
				return c.Do(ctx)
			})
		},
	}

	topLevel.AddCommand(cmd)
}
