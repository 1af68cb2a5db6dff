package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/rollcall/pkg/commands/options"
	"tableflip.dev/rollcall/pkg/runner/week"
	"tableflip.dev/rollcall/pkg/store"
)

func addWeek(topLevel *cobra.Command) {
	so := &options.StreamOptions{}
	on := &options.OnOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the weekly schedule with attendance.",
		Example: `
rollcall week
rollcall week --on="2026-3-2" -s cs-2a
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			p, err := store.Load(nil)
			if err != nil {
				return err
			}
			onT, err := on.GetOn()
			if err != nil {
				return err
			}
			s := week.Week{
				StreamID:      so.StreamID,
				On:            onT,
				ShowRecordIDs: io.ShowID,
				Persistence:   p,
			}
			return oo.HandleError(s.Do(context.Background()))
		},
	}

	options.AddStreamArgs(cmd, so)
	options.AddOnArgs(cmd, on)
	options.AddShowIDArgs(cmd, io)

	topLevel.AddCommand(cmd)
}
