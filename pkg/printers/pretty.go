package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/rollcall/pkg/glyph"
	"tableflip.dev/rollcall/pkg/schedule"
	"tableflip.dev/rollcall/pkg/timeutil"
)

type PrettyPrint struct {
	ShowRecordIDs bool
}

var (
	spacing = strings.Repeat(" ", len("171dff69f8b99dca  "))
)

func (pp *PrettyPrint) NewLine() {
	fmt.Println("")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowRecordIDs {
		_, _ = t.Print(spacing)
	}
	_, _ = t.Println(title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowRecordIDs {
		_, _ = t.Print(spacing)
	}
	_, _ = t.Print(title)
	_, _ = c.Printf(" - %d", count)

	switch count {
	case 1:
		_, _ = c.Println(" class")
	default:
		_, _ = c.Println(" classes")
	}
}

// Week prints a full weekly view, one day group at a time.
func (pp *PrettyPrint) Week(view []*schedule.Entry) {
	if len(view) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Print(" no classes\n\n")
		return
	}
	for _, group := range schedule.GroupByDay(view) {
		day := group[0].Date
		pp.TitleWithCount(fmt.Sprintf("%s %s", timeutil.DayName(day.DayOfWeek()), day.ISO()), len(group))
		pp.Day(group...)
	}
}

// Day prints one day group.
func (pp *PrettyPrint) Day(entries ...*schedule.Entry) {
	if len(entries) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowRecordIDs {
			_, _ = f.Print(spacing)
		}
		_, _ = f.Print(" none\n\n")
		return
	}

	t := color.New()
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	for _, e := range entries {
		if pp.ShowRecordIDs {
			id := e.RecordID
			if id == "" {
				id = "-"
			}
			_, _ = y.Print(id)
			_, _ = y.Print(strings.Repeat(" ", max(1, len(spacing)-len(id))))
		}
		printer := printerFor(e)
		line := entryLine(e)
		if e.Status == schedule.StatusCancelled {
			line = glyph.Strike(line)
		}
		_, _ = printer.Printf("%s %s\n", glyph.ForEntry(e), line)
	}
	_, _ = t.Println("")
}

func printerFor(e *schedule.Entry) *color.Color {
	switch {
	case e.Status == schedule.StatusCancelled:
		return color.New(color.Faint)
	case e.Status == schedule.StatusOccurred:
		return color.New(color.FgGreen)
	case e.IsAdded:
		return color.New(color.FgCyan)
	case e.IsReplacement:
		return color.New(color.FgHiBlue)
	}
	return color.New()
}

func entryLine(e *schedule.Entry) string {
	b := strings.Builder{}
	if e.StartTime != "" {
		b.WriteString(e.StartTime)
		if e.EndTime != "" {
			b.WriteString("-" + e.EndTime)
		}
		b.WriteString("  ")
	}
	b.WriteString(e.SubjectName)
	if e.SubjectIndex > 0 {
		b.WriteString(fmt.Sprintf(" #%d", e.SubjectIndex+1))
	}
	if e.CourseCode != "" {
		b.WriteString(" (" + e.CourseCode + ")")
	}
	if e.IsReplacement && e.OriginalSubjectName != "" {
		b.WriteString(" was " + e.OriginalSubjectName)
	}
	return b.String()
}
