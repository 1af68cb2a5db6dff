package week

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/rollcall/pkg/app"
	"tableflip.dev/rollcall/pkg/printers"
	"tableflip.dev/rollcall/pkg/store"
	"tableflip.dev/rollcall/pkg/timeutil"
)

type Week struct {
	StreamID      string
	On            *time.Time
	ShowRecordIDs bool
	Persistence   store.Persistence
}

func (n *Week) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not show week, no persistence")
	}
	anchor := time.Now()
	if n.On != nil {
		anchor = *n.On
	}
	start, end := timeutil.WeekOf(anchor)

	svc := &app.Service{Persistence: n.Persistence}
	view, err := svc.Week(ctx, n.StreamID, start, end)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowRecordIDs: n.ShowRecordIDs}
	fmt.Println("")
	pp.Title(fmt.Sprintf("%s  %s to %s", n.StreamID, start.ISO(), end.ISO()))
	pp.NewLine()
	pp.Week(view)
	return nil
}
