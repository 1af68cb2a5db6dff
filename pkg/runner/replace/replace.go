package replace

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

// Replace cancels one occurrence and appends its stand-in. The synthetic
// entry has no identity until refetched, so the runner always invalidates and
// refetches after a successful write.
type Replace struct {
	StreamID     string
	Subject      string
	On           time.Time
	SubjectIndex int

	With       string
	CourseCode string
	StartTime  string
	EndTime    string

	Persistence store.Persistence
}

func (n *Replace) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not replace, no persistence")
	}
	if n.With == "" {
		return errors.New("can not replace, no replacement subject")
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

	snapshot, ok := ctrl.ReplaceClass(key, cache.ReplaceParams{
		Original: cache.Occurrence{
			Date:         day,
			SubjectName:  n.Subject,
			SubjectIndex: n.SubjectIndex,
		},
		SubjectName: n.With,
		CourseCode:  n.CourseCode,
		StartTime:   n.StartTime,
		EndTime:     n.EndTime,
	})
	if !ok {
		return errors.New("can not replace, no cached week")
	}

	if _, err := svc.Replace(ctx, n.StreamID, app.Target{
		RecordID:     target.RecordID,
		Date:         day,
		SubjectName:  n.Subject,
		SubjectIndex: n.SubjectIndex,
		CourseCode:   target.CourseCode,
		StartTime:    target.StartTime,
		EndTime:      target.EndTime,
	}, app.Replacement{
		SubjectName: n.With,
		CourseCode:  n.CourseCode,
		StartTime:   n.StartTime,
		EndTime:     n.EndTime,
	}); err != nil {
		ctrl.Rollback(key, snapshot)
		return err
	}

	// Synthetic entries reconcile only on refetch.
	views.Invalidate(key)
	view, err = svc.Week(ctx, n.StreamID, start, end)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{}
	fmt.Println("")
	pp.Week(schedule.DayGroup(view, day))
	return nil
}
