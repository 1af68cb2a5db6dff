package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/rollcall/pkg/commands/options"
	"tableflip.dev/rollcall/pkg/runner/slots"
	"tableflip.dev/rollcall/pkg/store"
	"tableflip.dev/rollcall/pkg/timeutil"
)

func addSlot(topLevel *cobra.Command) {
	so := &options.StreamOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Manage the recurring weekly template.",
		Example: `
rollcall slot
rollcall slot add Math --day mon --start="09:00" --end="10:00" --code MATH101
rollcall slot rm --id a1b2c3d4
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			p, err := store.Load(nil)
			if err != nil {
				return err
			}
			s := slots.List{StreamID: so.StreamID, ShowIDs: io.ShowID, Persistence: p}
			return oo.HandleError(s.Do(context.Background()))
		},
	}

	options.AddStreamArgs(cmd, so)
	options.AddShowIDArgs(cmd, io)

	addSlotAdd(cmd)
	addSlotRemove(cmd)

	topLevel.AddCommand(cmd)
}

func addSlotAdd(topLevel *cobra.Command) {
	so := &options.StreamOptions{}
	co := &options.ClassOptions{}

	var subject string
	var day string

	cmd := &cobra.Command{
		Use:   "add <subject>",
		Short: "Add a recurring slot to the weekly template.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a subject")
			}
			subject = strings.Join(args, " ")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			dow, err := timeutil.ParseDayOfWeek(day)
			if err != nil {
				return err
			}
			p, err := store.Load(nil)
			if err != nil {
				return err
			}
			s := slots.Add{
				StreamID:    so.StreamID,
				DayOfWeek:   dow,
				Subject:     subject,
				CourseCode:  co.CourseCode,
				StartTime:   co.StartTime,
				EndTime:     co.EndTime,
				Persistence: p,
			}
			return oo.HandleError(s.Do(context.Background()))
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "mon",
		`Day of week, example: --day=tue or --day=2.`)
	options.AddStreamArgs(cmd, so)
	options.AddClassArgs(cmd, co)

	topLevel.AddCommand(cmd)
}

func addSlotRemove(topLevel *cobra.Command) {
	so := &options.StreamOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "rm",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a slot from the weekly template.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if io.ID == "" {
				return errors.New("requires --id, see rollcall slot --show-id")
			}
			p, err := store.Load(nil)
			if err != nil {
				return err
			}
			s := slots.Remove{StreamID: so.StreamID, SlotID: io.ID, Persistence: p}
			return oo.HandleError(s.Do(context.Background()))
		},
	}

	options.AddStreamArgs(cmd, so)
	options.AddIDArgs(cmd, io)

	topLevel.AddCommand(cmd)
}
