package streams

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
	Persistence store.Persistence
}

func (n *List) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not list streams, no persistence")
	}
	svc := &app.Service{Persistence: n.Persistence}
	streams, err := svc.Streams(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{}
	fmt.Println("")
	pp.Streams(streams)
	return nil
}

type Add struct {
	ID          string
	Name        string
	Persistence store.Persistence
}

func (n *Add) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not add stream, no persistence")
	}
	svc := &app.Service{Persistence: n.Persistence}
	if err := svc.EnsureStream(ctx, timetable.Stream{ID: n.ID, Name: n.Name}); err != nil {
		return err
	}
	streams, err := svc.Streams(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{}
	fmt.Println("")
	pp.Streams(streams)
	return nil
}
