package slots

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/rollcall/pkg/app"
	"tableflip.dev/rollcall/pkg/printers"
	"tableflip.dev/rollcall/pkg/store"
	"tableflip.dev/rollcall/pkg/timetable"
)

type List struct {
	StreamID    string
	ShowIDs     bool
	Persistence store.Persistence
}

func (n *List) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not list slots, no persistence")
	}
	svc := &app.Service{Persistence: n.Persistence}
	slots, err := svc.Slots(ctx, n.StreamID)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowRecordIDs: n.ShowIDs}
	fmt.Println("")
	pp.Title(n.StreamID)
	pp.NewLine()
	pp.Slots(slots)
	return nil
}

type Add struct {
	StreamID    string
	DayOfWeek   int
	Subject     string
	CourseCode  string
	StartTime   string
	EndTime     string
	Persistence store.Persistence
}

func (n *Add) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not add slot, no persistence")
	}
	svc := &app.Service{Persistence: n.Persistence}
	if err := svc.AddSlot(ctx, &timetable.Slot{
		StreamID:    n.StreamID,
		DayOfWeek:   n.DayOfWeek,
		SubjectName: n.Subject,
		CourseCode:  n.CourseCode,
		StartTime:   n.StartTime,
		EndTime:     n.EndTime,
	}); err != nil {
		return err
	}
	list := &List{StreamID: n.StreamID, Persistence: n.Persistence}
	return list.Do(ctx)
}

type Remove struct {
	StreamID    string
	SlotID      string
	Persistence store.Persistence
}

func (n *Remove) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not remove slot, no persistence")
	}
	svc := &app.Service{Persistence: n.Persistence}
	if err := svc.RemoveSlot(ctx, &timetable.Slot{StreamID: n.StreamID, ID: n.SlotID}); err != nil {
		return err
	}
	list := &List{StreamID: n.StreamID, Persistence: n.Persistence}
	return list.Do(ctx)
}
