package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/barswitch/pkg/commands/options"
	"tableflip.dev/barswitch/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the bars and where they are stored.",
		Example: `
barswitch info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx := context.Background()
			svc, cfg, err := openService(ctx)
			if err != nil {
				return oo.HandleError(err)
			}
			defer func() { _ = svc.Close() }()
			s := info.Info{
				Config:  cfg,
				Service: svc,
				JSON:    oo.JSON,
			}
			err = s.Do(ctx)
			return oo.HandleError(err)
		},
	}
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
