package options

import (
	"github.com/spf13/cobra"
)

// ClassOptions captures the optional class detail flags shared by commands
// that create occurrences.
type ClassOptions struct {
	CourseCode string
	StartTime  string
	EndTime    string
}

func AddClassArgs(cmd *cobra.Command, o *ClassOptions) {
	cmd.Flags().StringVar(&o.CourseCode, "code", "",
		"Course code, example: MATH101.")
	cmd.Flags().StringVar(&o.StartTime, "start", "",
		`Start time, example: --start="09:00".`)
	cmd.Flags().StringVar(&o.EndTime, "end", "",
		`End time, example: --end="10:00".`)
}
