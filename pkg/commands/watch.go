package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"tableflip.dev/barswitch/pkg/commands/options"
	"tableflip.dev/barswitch/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	ido := &options.IDOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: options.Wrap80("Follow changes other installations make to the synchronized state. Stop with Ctrl-C."),
		Example: `
barswitch watch
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			svc, _, err := openService(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()
			w := watch.Watch{Service: svc, ShowID: ido.ShowID}
			return w.Do(ctx)
		},
	}
	options.AddShowIDArgs(cmd, ido)

	topLevel.AddCommand(cmd)
}
