package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/rollcall/pkg/commands/options"
	"tableflip.dev/rollcall/pkg/runner/track"
	"tableflip.dev/rollcall/pkg/store"
)

func addTrack(topLevel *cobra.Command) {
	so := &options.StreamOptions{}
	on := &options.OnOptions{}

	var subject string
	var months int

	cmd := &cobra.Command{
		Use:   "track <subject>",
		Short: "Show month grids highlighting the days a subject occurred.",
		Example: `
rollcall track Math
rollcall track Physics --months 3
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a subject")
			}
			subject = strings.Join(args, " ")
			return nil
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return subjectCompletions(so.StreamID), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
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
			s := track.Track{
				StreamID:    so.StreamID,
				Subject:     subject,
				On:          onT,
				Months:      months,
				Persistence: p,
			}
			return oo.HandleError(s.Do(context.Background()))
		},
	}

	cmd.Flags().IntVar(&months, "months", 1, "How many months to show.")
	options.AddStreamArgs(cmd, so)
	options.AddOnArgs(cmd, on)

	topLevel.AddCommand(cmd)
}
