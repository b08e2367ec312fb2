package reveal

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// TickMsg advances the reveal with the matching ID. The tag ties it to a
// single tick chain; ticks from a superseded or stopped chain are ignored.
type TickMsg struct {
	Time time.Time
	ID   int
	tag  int
}

// Option configures a Model.
type Option func(*Model)

// WithInterval sets the tick cadence.
func WithInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.Interval = d
		}
	}
}

// WithBatch sets how many characters each tick discloses.
func WithBatch(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.Batch = n
		}
	}
}

// Model is the Bubble Tea reveal controller for one piece of content.
// At most one tick chain is live per Model.
type Model struct {
	Interval time.Duration
	Batch    int

	id        int
	tag       int
	state     State
	streaming bool
	ticking   bool
	stopped   bool
}

// New returns an empty reveal with a unique ID.
func New(opts ...Option) Model {
	m := Model{
		Interval: DefaultInterval,
		Batch:    DefaultBatch,
		id:       nextID(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns the identifier carried by this model's ticks.
func (m Model) ID() int { return m.id }

// State returns the current reveal state.
func (m Model) State() State { return m.state }

// View returns the displayed prefix.
func (m Model) View() string { return m.state.Displayed }

// Done reports whether the whole target is displayed.
func (m Model) Done() bool { return m.state.Done() }

// Ticking reports whether a tick chain is scheduled.
func (m Model) Ticking() bool { return m.ticking }

// Stopped reports whether the model has been disposed.
func (m Model) Stopped() bool { return m.stopped }

// SetContent retargets the reveal. It schedules a tick chain when there is
// something left to show and none is running. A stopped model ignores it.
func (m Model) SetContent(full string, streaming bool) (Model, tea.Cmd) {
	if m.stopped {
		return m, nil
	}
	m.state = Sync(m.state, full, streaming)
	m.streaming = streaming
	if m.state.Done() || m.ticking {
		return m, nil
	}
	return m.schedule()
}

// Update handles TickMsg for this model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != m.id || tick.tag != m.tag || m.stopped {
		return m, nil
	}
	m.state = Advance(m.state, m.state.Full, m.streaming, m.Batch)
	if m.state.Done() {
		m.ticking = false
		return m, nil
	}
	return m, m.tick()
}

// Stop cancels any pending tick chain. Ticks already in flight are dropped
// when they arrive.
func (m Model) Stop() Model {
	m.stopped = true
	m.ticking = false
	m.tag++
	return m
}

// Reset starts over for a new, unrelated stream: nothing is displayed and
// any pending tick chain is invalidated.
func (m Model) Reset() Model {
	m.state = State{}
	m.streaming = false
	m.ticking = false
	m.stopped = false
	m.tag++
	return m
}

func (m Model) schedule() (Model, tea.Cmd) {
	m.tag++
	m.ticking = true
	return m, m.tick()
}

func (m Model) tick() tea.Cmd {
	id, tag := m.id, m.tag
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, ID: id, tag: tag}
	})
}
