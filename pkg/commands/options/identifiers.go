package options

import (
	"github.com/spf13/cobra"
)

// IDOptions
type IDOptions struct {
	ShowID bool
	ID     string
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show record and slot ids.")
}

func AddIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().StringVar(&o.ID, "id", "",
		"Specify a record id directly instead of a positional target.")
}

// IndexOptions
type IndexOptions struct {
	Index int
}

// AddIndexArgs registers the occurrence ordinal flag, used when a subject
// repeats on the same day.
func AddIndexArgs(cmd *cobra.Command, o *IndexOptions) {
	cmd.Flags().IntVarP(&o.Index, "index", "i", 0,
		"Occurrence ordinal when the subject repeats on the day (0 is first).")
}
