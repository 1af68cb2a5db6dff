package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/rollcall/pkg/app"
	"tableflip.dev/rollcall/pkg/cache"
	"tableflip.dev/rollcall/pkg/schedule"
	"tableflip.dev/rollcall/pkg/store"
)

type errMsg struct {
	err error
}

// weekLoadedMsg carries a fetched week together with the fetch context so
// the cache can discard results from superseded fetches.
type weekLoadedMsg struct {
	key      cache.Key
	fetchCtx context.Context
	view     []*schedule.Entry
	err      error
}

// mutationDoneMsg settles an optimistic mutation. On error the snapshot is
// rolled back; refetch forces an invalidate-and-reload, used when the
// optimistic patch created a synthetic entry without record identity.
type mutationDoneMsg struct {
	mutationKey string
	viewKey     cache.Key
	snapshot    []*schedule.Entry
	err         error
	refetch     bool
	note        string
}

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event store.Event
}

type watchStoppedMsg struct{}

func startWatchCmd(ctx context.Context, svc *app.Service) tea.Cmd {
	return func() tea.Msg {
		watchCtx, cancel := context.WithCancel(ctx)
		ch, err := svc.Watch(watchCtx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}
