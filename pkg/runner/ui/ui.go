package ui

import (
	"context"
	"errors"

	"tableflip.dev/rollcall/pkg/app"
	"tableflip.dev/rollcall/pkg/store"
	"tableflip.dev/rollcall/pkg/tui"
)

// UI launches the interactive week browser.
type UI struct {
	StreamID    string
	Persistence store.Persistence
}

func (d *UI) Do(ctx context.Context) error {
	if d.Persistence == nil {
		return errors.New("can not open ui, no persistence")
	}
	streamID := d.StreamID
	if streamID == "" {
		streamID = "default"
	}
	svc := &app.Service{Persistence: d.Persistence}
	return tui.Run(svc, streamID)
}
