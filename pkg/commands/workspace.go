package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/commands/options"
	"tableflip.dev/barswitch/pkg/runner/workspace"
)

func addWorkspace(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Bind bars to workspaces. Requires workspaces.enabled.",
		Example: `
barswitch workspace activate w-123 Research
barswitch workspace link w-123 Papers
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	activate := &cobra.Command{
		Use:   "activate <id> [name]",
		Short: "Report that a workspace became current and show its bar.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				a := workspace.Activate{Service: svc, ID: args[0], Name: strings.Join(args[1:], " ")}
				return a.Do(ctx)
			})
		},
	}

	link := &cobra.Command{
		Use:   "link <id> <bar>",
		Short: "Always show a bar when the workspace is activated.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				l := workspace.Link{Service: svc, ID: args[0], Bar: args[1]}
				return l.Do(ctx)
			})
		},
	}

	unlink := &cobra.Command{
		Use:   "unlink <id>",
		Short: "Drop the linked bar of a workspace.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				u := workspace.Unlink{Service: svc, ID: args[0]}
				return u.Do(ctx)
			})
		},
	}

	forget := &cobra.Command{
		Use:   "forget <id>",
		Short: "Forget a workspace and its bar.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				f := workspace.Forget{Service: svc, ID: args[0]}
				return f.Do(ctx)
			})
		},
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List known workspaces.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				l := workspace.List{Service: svc, JSON: oo.JSON}
				return l.Do(ctx)
			})
		},
	}
	options.AddOutputArg(list, oo)

	cmd.AddCommand(activate, link, unlink, forget, list)
	topLevel.AddCommand(cmd)
}
