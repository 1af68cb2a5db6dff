package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/rollcall/pkg/runner/streams"
	"tableflip.dev/rollcall/pkg/store"
)

func addStreams(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "streams",
		Short: "List tracked streams.",
		Example: `
rollcall streams
rollcall streams add cs-2a "CS 2nd Year, Section A"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			p, err := store.Load(nil)
			if err != nil {
				return err
			}
			s := streams.List{Persistence: p}
			return oo.HandleError(s.Do(context.Background()))
		},
	}

	addStreamAdd(cmd)

	topLevel.AddCommand(cmd)
}

func addStreamAdd(topLevel *cobra.Command) {
	var id, name string

	cmd := &cobra.Command{
		Use:   "add <id> [name]",
		Short: "Register a stream.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a stream id")
			}
			id = args[0]
			if len(args) > 1 {
				name = strings.Join(args[1:], " ")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			p, err := store.Load(nil)
			if err != nil {
				return err
			}
			s := streams.Add{ID: id, Name: name, Persistence: p}
			return oo.HandleError(s.Do(context.Background()))
		},
	}

	topLevel.AddCommand(cmd)
}
