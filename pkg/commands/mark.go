package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/rollcall/pkg/commands/options"
	"tableflip.dev/rollcall/pkg/runner/mark"
	"tableflip.dev/rollcall/pkg/schedule"
	"tableflip.dev/rollcall/pkg/store"
)

func addMark(topLevel *cobra.Command) {
	so := &options.StreamOptions{}
	on := &options.OnOptions{}
	ix := &options.IndexOptions{}

	var subject string
	status := schedule.StatusOccurred

	cmd := &cobra.Command{
		Use:   "mark <subject> [status]",
		Short: "Mark one occurrence as occurred, missed, or cancelled.",
		Example: `
rollcall mark Math
rollcall mark Math missed --on="3/2"
rollcall mark Math occurred -i 1
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a subject")
			}
			subject = args[0]
			if len(args) > 1 {
				status = schedule.Status(args[1])
				if !status.Valid() {
					return fmt.Errorf("invalid status %q, want occurred, missed, or cancelled", args[1])
				}
			}
			if len(args) > 2 {
				return errors.New("too many arguments")
			}
			return nil
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return subjectCompletions(so.StreamID), cobra.ShellCompDirectiveNoFileComp
			}
			if len(args) == 1 {
				return []string{"occurred", "missed", "cancelled"}, cobra.ShellCompDirectiveNoFileComp
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
			s := mark.Mark{
				StreamID:     so.StreamID,
				Subject:      subject,
				On:           onT,
				SubjectIndex: ix.Index,
				Status:       status,
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
