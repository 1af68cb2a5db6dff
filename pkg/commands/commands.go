package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

var (
	oo = &base.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "rollcall",
		Short: base.Wrap80("Track class attendance against a recurring weekly timetable."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	base.AddOutputArg(cmd, oo)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addWeek(topLevel)
	addMark(topLevel)
	addCancel(topLevel)
	addReplace(topLevel)
	addAddClass(topLevel)
	addStreams(topLevel)
	addSlot(topLevel)
	addTrack(topLevel)
	addInfo(topLevel)
	addUI(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
