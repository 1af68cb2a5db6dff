package addclass

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

// Add appends an ad-hoc class outside the weekly template.
type Add struct {
	StreamID   string
	Subject    string
	On         time.Time
	CourseCode string
	StartTime  string
	EndTime    string

	Persistence store.Persistence
}

func (n *Add) Do(ctx context.Context) error {
	if n.Persistence == nil {
		return errors.New("can not add, no persistence")
	}
	if n.Subject == "" {
		return errors.New("can not add, no subject")
	}
	svc := &app.Service{Persistence: n.Persistence}
	day := schedule.DateOf(n.On)
	start, end := timeutil.WeekOf(n.On)

	view, err := svc.Week(ctx, n.StreamID, start, end)
	if err != nil {
		return err
	}

	views := cache.NewStore()
	key := cache.ViewKey(n.StreamID, start, end)
	views.Set(key, view)
	ctrl := cache.NewController(views)

	snapshot, ok := ctrl.AddSubject(key, cache.AddParams{
		Date:        day,
		SubjectName: n.Subject,
		CourseCode:  n.CourseCode,
		StartTime:   n.StartTime,
		EndTime:     n.EndTime,
	})
	if !ok {
		return errors.New("can not add, no cached week")
	}

	if _, err := svc.Add(ctx, n.StreamID, app.Addition{
		Date:        day,
		SubjectName: n.Subject,
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
