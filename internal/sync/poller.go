// Package sync keeps the local snapshot reconciled with the backend.
// A single poller fetches tasks, todos, and the dashboard on an
// interval after sign-in and writes the results to the snapshot store.
package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/store"
)

// SyncState represents the current state of the reconciler.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the reconciler state for display in the header.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a refresh cycle completes.
type SyncResultMsg struct {
	TaskCount int
	TodoCount int
	Error     error

	// AuthExpired is set when the backend rejected the session token;
	// the UI should route back to sign-in.
	AuthExpired bool
}

// fetchTimeout bounds a whole refresh cycle, not individual requests;
// the API client itself imposes no timeout.
const fetchTimeout = 60 * time.Second

// Poller orchestrates background refresh of the snapshot store.
type Poller struct {
	client   *api.Client
	store    store.Store
	log      zerolog.Logger
	interval time.Duration
	pageSize int

	status    SyncStatus
	resultCh  chan SyncResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller that refreshes the snapshot every interval.
func New(client *api.Client, s store.Store, interval time.Duration, pageSize int, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Poller{
		client:    client,
		store:     s,
		log:       log,
		interval:  interval,
		pageSize:  pageSize,
		resultCh:  make(chan SyncResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a subscription
// command that delivers SyncResultMsg messages to the Bubble Tea
// runtime. Starting an already running poller just resubscribes.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	alreadyRunning := p.running
	var stop chan struct{}
	if !alreadyRunning {
		// A fresh channel lets the poller restart after a Stop
		// (e.g. re-login after the session expired).
		stop = make(chan struct{})
		p.stopCh = stop
		p.running = true
	}
	p.mu.Unlock()

	if !alreadyRunning {
		go p.loop(stop)
	}

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate cycle without waiting for the ticker.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already queued.
	}
}

// Status returns the current reconciler status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// loop runs the refresh cycle until stopped.
func (p *Poller) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial refresh immediately after sign-in.
	p.refreshOnce()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.refreshOnce()
		case <-p.triggerCh:
			p.refreshOnce()
		}
	}
}

// refreshOnce fetches tasks, todos, and the dashboard and replaces the
// snapshot. The first error aborts the cycle; partial snapshots from a
// failed cycle are not written.
func (p *Poller) refreshOnce() {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	tasks, err := p.client.ListTasks(ctx, 0, p.pageSize, api.TaskFilter{})
	if err != nil {
		p.fail(err)
		return
	}

	todos, err := p.client.ListTodos(ctx, 0, p.pageSize)
	if err != nil {
		p.fail(err)
		return
	}

	dashboard, err := p.client.GetDashboard(ctx)
	if err != nil {
		p.fail(err)
		return
	}

	if err := p.store.ReplaceTasks(ctx, tasks.Tasks); err != nil {
		p.fail(err)
		return
	}
	if err := p.store.ReplaceTodos(ctx, todos.Todos); err != nil {
		p.fail(err)
		return
	}
	if err := p.store.SaveDashboard(ctx, *dashboard); err != nil {
		p.fail(err)
		return
	}

	p.log.Debug().Int("tasks", len(tasks.Tasks)).Int("todos", len(todos.Todos)).
		Msg("snapshot refreshed")

	p.setStatus(SyncIdle, nil)
	p.sendResult(SyncResultMsg{
		TaskCount: len(tasks.Tasks),
		TodoCount: len(todos.Todos),
	})
}

// fail records a cycle failure and notifies the UI. Auth failures stop
// the poller; polling resumes after the next sign-in.
func (p *Poller) fail(err error) {
	p.setStatus(SyncError, err)
	p.log.Warn().Err(err).Msg("snapshot refresh failed")

	msg := SyncResultMsg{Error: err}
	if errors.Is(err, api.ErrUnauthorized) {
		msg.AuthExpired = true
		p.sendResult(msg)
		p.Stop()
		return
	}

	p.sendResult(msg)
}

// setStatus updates the reconciler status.
func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a SyncResultMsg without blocking the poller.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if the channel is full to avoid blocking the poller.
	}
}

// waitForResult returns a tea.Cmd that waits for the next result.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult resubscribes after a SyncResultMsg was processed.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
