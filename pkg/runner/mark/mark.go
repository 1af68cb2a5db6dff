package mark

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

// Mark toggles attendance for one occurrence. The cached week is patched
// optimistically before the record write; a rejected write rolls the cache
// back so the printed view never shows half-applied state.
type Mark struct {
	StreamID     string
	Subject      string
	On           time.Time
	SubjectIndex int
	Status       schedule.Status
	Persistence  store.Persistence
}

func (n *Mark) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not mark, no persistence")
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

	snapshot, ok := ctrl.MarkAttendance(key, cache.MarkParams{
		Target:   target,
		DayGroup: schedule.DayGroup(view, day),
		Status:   n.Status,
	})
	if !ok {
		return errors.New("can not mark, no cached week")
	}

	if _, err := svc.Mark(ctx, n.StreamID, app.Target{
		RecordID:     target.RecordID,
		Date:         day,
		SubjectName:  n.Subject,
		SubjectIndex: n.SubjectIndex,
		CourseCode:   target.CourseCode,
		StartTime:    target.StartTime,
		EndTime:      target.EndTime,
	}, n.Status); err != nil {
		ctrl.Rollback(key, snapshot)
		return err
	}

	current, _ := views.Get(key)
	pp := printers.PrettyPrint{}
	fmt.Println("")
	pp.Week(schedule.DayGroup(current, day))
	return nil
}
