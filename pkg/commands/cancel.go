package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/rollcall/pkg/commands/options"
	"tableflip.dev/rollcall/pkg/runner/cancel"
	"tableflip.dev/rollcall/pkg/store"
)

func addCancel(topLevel *cobra.Command) {
	so := &options.StreamOptions{}
	on := &options.OnOptions{}
	ix := &options.IndexOptions{}

	var subject string

	cmd := &cobra.Command{
		Use:   "cancel <subject>",
		Short: "Cancel one occurrence for everyone in the stream.",
		Example: `
rollcall cancel Physics
rollcall cancel Math -i 1 --on="3/2"
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires exactly one subject")
			}
			subject = args[0]
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
			onT, err := on.GetOnOrNow()
			if err != nil {
				return err
			}
			s := cancel.Cancel{
				StreamID:     so.StreamID,
				Subject:      subject,
				On:           onT,
				SubjectIndex: ix.Index,
				Persistence:  p,
			}
			return oo.HandleError(s.Do(context.Background()))
		},
	}

	options.AddStreamArgs(cmd, so)
	options.AddOnArgs(cmd, on)
	options.AddIndexArgs(cmd, ix)

	topLevel.AddCommand(cmd)
}
