package commands

import (
	"context"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"tableflip.dev/rollcall/pkg/store"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(rollcall completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(rollcall completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// subjectCompletions lists the distinct subjects found in a stream's weekly
// template, for shell completion of positional subject arguments.
func subjectCompletions(streamID string) []string {
	p, err := store.Load(nil)
	if err != nil {
		return nil
	}
	if streamID == "" {
		streamID = "default"
	}
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, sl := range p.Slots(context.Background(), streamID) {
		if _, ok := seen[sl.SubjectName]; ok {
			continue
		}
		seen[sl.SubjectName] = struct{}{}
		out = append(out, sl.SubjectName)
	}
	sort.Strings(out)
	return out
}
