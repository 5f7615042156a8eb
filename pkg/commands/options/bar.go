package options

import (
	"github.com/spf13/cobra"
)

// BarOptions selects a bar by id, title or position. Empty means the
// visible bar.
type BarOptions struct {
	Bar string
}

func AddBarArgs(cmd *cobra.Command, o *BarOptions) {
	cmd.Flags().StringVarP(&o.Bar, "bar", "b", "",
		Wrap80("Bar id, title or 1-based position. Defaults to the visible bar."))
}
