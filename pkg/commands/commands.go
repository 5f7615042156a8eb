package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/commands/options"
	"tableflip.dev/barswitch/pkg/config"
	"tableflip.dev/barswitch/pkg/logging"
)

var (
	oo = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "barswitch",
		Short: options.Wrap80("Keep several bookmark bars and swap which one is visible."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addList(topLevel)
	addAdd(topLevel)
	addRename(topLevel)
	addRemove(topLevel)
	addMove(topLevel)
	addSwitch(topLevel)
	addCommand(topLevel)
	addWorkspace(topLevel)
	addBookmark(topLevel)
	addWatch(topLevel)
	addInfo(topLevel)
	addCompletion(topLevel)
	addVersion(topLevel)
}

// openService loads the config, applies its log settings and opens the
// on-disk state.
func openService(ctx context.Context) (*app.Service, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Configure(cfg.Log)
	svc, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

// withService runs fn against an opened service and closes it afterwards.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Service) error) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, _, err := openService(ctx)
	if err != nil {
		return oo.HandleError(err)
	}
	defer func() { _ = svc.Close() }()
	return oo.HandleError(fn(ctx, svc))
}
