package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailview/internal/model"
	"github.com/nhle/mailview/internal/source"
	"github.com/nhle/mailview/internal/source/email"
	"github.com/nhle/mailview/internal/store"
)

// SyncState represents the current state of a mailbox sync operation.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the sync state of the mailbox.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a sync operation completes.
type SyncResultMsg struct {
	Messages        []model.Message
	Error           error
	AuthError       *AuthErrorMsg
	NewMessageCount int
}

// AuthErrorMsg is a tea.Msg sent when the mail server rejects the
// stored credentials.
type AuthErrorMsg struct {
	Account string
	Message string
}

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// fetchLimit caps how many envelopes a single sync pulls down.
const fetchLimit = 200

// Poller periodically fetches new mail and caches it in the store.
type Poller struct {
	store     store.Store
	adapter   *email.Adapter
	interval  time.Duration
	status    SyncStatus
	resultCh  chan SyncResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a poller for the given account adapter. A non-positive
// interval defaults to two minutes.
func New(s store.Store, adapter *email.Adapter, intervalSec int) *Poller {
	interval := time.Duration(intervalSec) * time.Second
	if interval <= 0 {
		interval = 120 * time.Second
	}
	return &Poller{
		store:     s,
		adapter:   adapter,
		interval:  interval,
		resultCh:  make(chan SyncResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start returns a tea.Cmd that starts the polling goroutine and
// subscribes to results. The returned command waits on the result
// channel and returns SyncResultMsg messages to the Bubble Tea runtime.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.pollLoop()

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

// Refresh triggers an immediate poll.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already queued
	}
	return nil
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// pollLoop runs the polling loop until Stop is called.
func (p *Poller) pollLoop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately
	p.fetchAndUpsert()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.fetchAndUpsert()
		case <-p.triggerCh:
			p.fetchAndUpsert()
		}
	}
}

// fetchAndUpsert performs a single fetch, caches the results, and sends
// a SyncResultMsg on the result channel.
func (p *Poller) fetchAndUpsert() {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	msgs, err := p.adapter.FetchMessages(ctx, time.Time{}, fetchLimit)
	if err != nil {
		p.setStatus(SyncError, err)

		if source.IsAuthError(err) {
			p.sendResult(SyncResultMsg{
				Error: err,
				AuthError: &AuthErrorMsg{
					Message: "authentication failed; check the stored password",
				},
			})
			return
		}

		p.sendResult(SyncResultMsg{Error: err})
		return
	}

	// Count genuinely new messages before the upsert overwrites them.
	newCount := 0
	for i := range msgs {
		if _, err := p.store.GetMessageByUID(ctx, msgs[i].UID); store.IsNotFound(err) {
			newCount++
		}
	}

	if len(msgs) > 0 {
		if upsertErr := p.store.UpsertMessages(ctx, msgs); upsertErr != nil {
			p.setStatus(SyncError, upsertErr)
			p.sendResult(SyncResultMsg{Error: upsertErr})
			return
		}
	}

	p.setStatus(SyncIdle, nil)
	p.sendResult(SyncResultMsg{
		Messages:        msgs,
		NewMessageCount: newCount,
	})
}

// setStatus updates the sync status.
func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a SyncResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync result.
// This should be called after processing a SyncResultMsg to continue
// listening for future results.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
