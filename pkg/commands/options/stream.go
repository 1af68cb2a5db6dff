// Package options defines shared flag helpers for CLI commands.
package options

import (
	"github.com/spf13/cobra"
)

// StreamOptions captures the stream selection flag shared by most commands.
type StreamOptions struct {
	StreamID string
}

// AddStreamArgs wires the stream flag on the provided command.
func AddStreamArgs(cmd *cobra.Command, o *StreamOptions) {
	cmd.Flags().StringVarP(&o.StreamID, "stream", "s", "default",
		"Specify the stream.")
}
