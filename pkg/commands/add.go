package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/rollcall/pkg/commands/options"
	"tableflip.dev/rollcall/pkg/runner/addclass"
	"tableflip.dev/rollcall/pkg/store"
)

func addAddClass(topLevel *cobra.Command) {
	so := &options.StreamOptions{}
	on := &options.OnOptions{}
	co := &options.ClassOptions{}

	var subject string

	cmd := &cobra.Command{
		Use:   "add <subject>",
		Short: "Add an extra class outside the weekly template.",
		Example: `
rollcall add "Robotics Club" --start="16:00"
rollcall add Revision --on="3/2" --code MATH101
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a subject")
			}
			subject = strings.Join(args, " ")
			return nil
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
			s := addclass.Add{
				StreamID:    so.StreamID,
				Subject:     subject,
				On:          onT,
				CourseCode:  co.CourseCode,
				StartTime:   co.StartTime,
				EndTime:     co.EndTime,
				Persistence: p,
			}
			return oo.HandleError(s.Do(context.Background()))
		},
	}

	options.AddStreamArgs(cmd, so)
	options.AddOnArgs(cmd, on)
	options.AddClassArgs(cmd, co)

	topLevel.AddCommand(cmd)
}
