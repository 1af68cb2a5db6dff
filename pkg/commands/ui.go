package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/rollcall/pkg/commands/options"
	"tableflip.dev/rollcall/pkg/runner/ui"
	"tableflip.dev/rollcall/pkg/store"
)

func addUI(topLevel *cobra.Command) {
	so := &options.StreamOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive week browser.",
		Example: `
rollcall ui
rollcall ui -s cs-2a
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			p, err := store.Load(nil)
			if err != nil {
				return err
			}
			i := ui.UI{StreamID: so.StreamID, Persistence: p}
			return i.Do(context.Background())
		},
	}

	options.AddStreamArgs(cmd, so)

	topLevel.AddCommand(cmd)
}
