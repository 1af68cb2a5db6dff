package printers

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/rollcall/pkg/timetable"
	"tableflip.dev/rollcall/pkg/timeutil"
)

// Streams prints the stream catalog as a table.
func (pp *PrettyPrint) Streams(streams []timetable.Stream) {
	if len(streams) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Print(" no streams\n\n")
		return
	}
	tbl := uitable.New()
	tbl.AddRow("STREAM", "NAME")
	for _, s := range streams {
		name := s.Name
		if name == "" {
			name = "-"
		}
		tbl.AddRow(s.ID, name)
	}
	fmt.Println(tbl)
	fmt.Println("")
}

// Slots prints a stream's weekly template as a table.
func (pp *PrettyPrint) Slots(slots []*timetable.Slot) {
	if len(slots) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Print(" no slots\n\n")
		return
	}
	tbl := uitable.New()
	header := []interface{}{"DAY", "TIME", "SUBJECT", "CODE"}
	if pp.ShowRecordIDs {
		header = append([]interface{}{"ID"}, header...)
	}
	tbl.AddRow(header...)
	for _, sl := range slots {
		when := sl.StartTime
		if when != "" && sl.EndTime != "" {
			when += "-" + sl.EndTime
		}
		if when == "" {
			when = "-"
		}
		code := sl.CourseCode
		if code == "" {
			code = "-"
		}
		row := []interface{}{timeutil.DayName(sl.DayOfWeek), when, sl.SubjectName, code}
		if pp.ShowRecordIDs {
			row = append([]interface{}{sl.ID}, row...)
		}
		tbl.AddRow(row...)
	}
	fmt.Println(tbl)
	fmt.Println("")
}
