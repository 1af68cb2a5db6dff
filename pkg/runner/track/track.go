// Package track provides the attendance summary runner.
package track

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/rollcall/pkg/app"
	"tableflip.dev/rollcall/pkg/printers"
	"tableflip.dev/rollcall/pkg/schedule"
	"tableflip.dev/rollcall/pkg/store"
)

// Track prints month grids highlighting the days a subject occurred.
type Track struct {
	StreamID    string
	Subject     string
	On          *time.Time
	Months      int
	Persistence store.Persistence
}

func (n *Track) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not track, no persistence")
	}
	svc := &app.Service{Persistence: n.Persistence}

	anchor := time.Now()
	if n.On != nil {
		anchor = *n.On
	}
	months := n.Months
	if months < 1 {
		months = 1
	}

	pp := printers.PrettyPrint{}
	fmt.Println("")
	pp.Title(fmt.Sprintf("%s  %s", n.StreamID, n.Subject))
	pp.NewLine()

	then := time.Date(anchor.Year(), anchor.Month(), 1, 1, 0, 0, 0, time.Local)
	for i := 0; i < months; i++ {
		start := schedule.DateOf(then)
		end := start.Next(printers.DaysIn(then) - 1)
		view, err := svc.Week(ctx, n.StreamID, start, end)
		if err != nil {
			return err
		}
		pp.Attendance(then, n.Subject, view...)
		then = printers.NextMonth(then)
	}
	return nil
}
