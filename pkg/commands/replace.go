package commands

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"tableflip.dev/rollcall/pkg/app"
	"tableflip.dev/rollcall/pkg/commands/options"
	"tableflip.dev/rollcall/pkg/runner/replace"
	"tableflip.dev/rollcall/pkg/store"
)

func addReplace(topLevel *cobra.Command) {
	so := &options.StreamOptions{}
	on := &options.OnOptions{}
	ix := &options.IndexOptions{}
	co := &options.ClassOptions{}

	var subject string
	var with string

	cmd := &cobra.Command{
		Use:   "replace <subject>",
		Short: "Cancel one occurrence and schedule another subject in its place.",
		Long: `Replace cancels the named occurrence and creates a stand-in class in the
same slot. When --with is omitted, pick the replacement subject from the
stream's known subjects interactively.`,
		Example: `
rollcall replace Math --with Statistics --code STAT202
rollcall replace Physics --on="3/2" --with "Guest Lecture" --start="10:00"
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
			if strings.TrimSpace(with) == "" {
				with, err = promptSubject(cmd, p, so.StreamID, subject)
				if err != nil {
					return err
				}
			}
			s := replace.Replace{
				StreamID:     so.StreamID,
				Subject:      subject,
				On:           onT,
				SubjectIndex: ix.Index,
				With:         with,
				CourseCode:   co.CourseCode,
				StartTime:    co.StartTime,
				EndTime:      co.EndTime,
				Persistence:  p,
			}
			return oo.HandleError(s.Do(context.Background()))
		},
	}

	cmd.Flags().StringVar(&with, "with", "", "Subject taking the slot.")
	options.AddStreamArgs(cmd, so)
	options.AddOnArgs(cmd, on)
	options.AddIndexArgs(cmd, ix)
	options.AddClassArgs(cmd, co)

	topLevel.AddCommand(cmd)
}

// promptSubject offers the stream's known subjects, minus the one being
// replaced, as an interactive picker.
func promptSubject(cmd *cobra.Command, p store.Persistence, streamID, replacing string) (string, error) {
	svc := &app.Service{Persistence: p}
	slots, err := svc.Slots(cmd.Context(), streamID)
	if err != nil {
		return "", err
	}

	seen := map[string]struct{}{}
	subjects := make([]string, 0, len(slots))
	for _, sl := range slots {
		if sl.SubjectName == replacing {
			continue
		}
		if _, ok := seen[sl.SubjectName]; ok {
			continue
		}
		seen[sl.SubjectName] = struct{}{}
		subjects = append(subjects, sl.SubjectName)
	}
	sort.Strings(subjects)
	if len(subjects) == 0 {
		return "", errors.New("no other subjects known, pass --with")
	}

	prompt := promptui.Select{
		Label: "Replacement subject",
		Items: subjects,
		Size:  10,
		Searcher: func(input string, index int) bool {
			name := strings.ToLower(subjects[index])
			return strings.Contains(name, strings.ToLower(input))
		},
	}
	_, choice, err := prompt.Run()
	return choice, err
}
