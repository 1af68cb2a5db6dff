package cancel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/rollcall/pkg/app"
	"tableflip.dev/rollcall/pkg/cache"
	"tableflip.dev/rollcall/pkg/printers"
	"tableflip.dev/rollcall/pkg/schedule"
	"tableflip.dev/rollcall/pkg/store"
	"tableflip.dev/rollcall/pkg/timeutil"
)

// Cancel overlays cancellation on one occurrence, optimistically first.
type Cancel struct {
	StreamID     string
	Subject      string
	On           time.Time
	SubjectIndex int
	Persistence  store.Persistence
}

func (n *Cancel) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not cancel, no persistence")
	}
	svc := &app.Service{Persistence: n.Persistence}
	day := schedule.DateOf(n.On)
	start, end := timeutil.WeekOf(n.On)

	view, err := svc.Week(ctx, n.StreamID, start, end)
	if err != nil {
		return err
	}
	target := schedule.FindOccurrence(view, day, n.Subject, n.SubjectIndex)
	if target == nil {
		return fmt.Errorf("no %s #%d on %s", n.Subject, n.SubjectIndex+1, day.ISO())
	}

	views := cache.NewStore()
	key := cache.ViewKey(n.StreamID, start, end)
	views.Set(key, view)
	ctrl := cache.NewController(views)

	snapshot, ok := ctrl.CancelClass(key, cache.CancelParams{
		Target:   target,
		DayGroup: schedule.DayGroup(view, day),
	})
	if !ok {
		return errors.New("can not cancel, no cached week")
	}

	if _, err := svc.Cancel(ctx, n.StreamID, app.Target{
		RecordID:     target.RecordID,
		Date:         day,
		SubjectName:  n.Subject,
		SubjectIndex: n.SubjectIndex,
		CourseCode:   target.CourseCode,
		StartTime:    target.StartTime,
		EndTime:      target.EndTime,
	}); err != nil {
		ctrl.Rollback(key, snapshot)
		return err
	}

	current, _ := views.Get(key)
	pp := printers.PrettyPrint{}
	fmt.Println("")
	pp.Week(schedule.DayGroup(current, day))
	return nil
}
