package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebacheck/internal/engine"
)

func apply(m tea.Model, evs ...engine.Event) *progressModel {
	for _, ev := range evs {
		m, _ = m.Update(eventMsg(ev))
	}
	return m.(*progressModel)
}

func TestProgressStages(t *testing.T) {
	m := apply(NewProgressModel("file:///f.xbrl", make(chan engine.Event)),
		engine.Event{Stage: engine.StageNodes, Status: engine.StatusWorking, Done: 50, Total: 100},
	)
	assert.InDelta(t, 0.3, m.percent(), 1e-9)
	assert.Equal(t, "checking", m.items[0].status)
	assert.Contains(t, m.View(), "50/100")

	m = apply(m,
		engine.Event{Stage: engine.StageNodes, Status: engine.StatusDone, Done: 100, Total: 100, Elapsed: 12 * time.Millisecond},
		engine.Event{Stage: engine.StageIndex, Status: engine.StatusDone, Done: 7, Total: 7},
		engine.Event{Stage: engine.StageGroups, Status: engine.StatusDone, Done: 3, Total: 3},
	)
	assert.InDelta(t, 1.0, m.percent(), 1e-9)
	assert.Contains(t, m.View(), "12ms")
}

func TestProgressCanceled(t *testing.T) {
	m := apply(NewProgressModel("f", make(chan engine.Event)),
		engine.Event{Stage: engine.StageNodes, Status: engine.StatusDone, Done: 1, Total: 1},
		engine.Event{Status: engine.StatusCanceled},
	)
	assert.Equal(t, "done", m.items[0].status)
	assert.Equal(t, "canceled", m.items[1].status)
	assert.Equal(t, "canceled", m.items[2].status)
}

func TestProgressQuitsWhenEventsClose(t *testing.T) {
	events := make(chan engine.Event)
	close(events)
	m := NewProgressModel("f", events).(*progressModel)
	msg := m.listenForEvent()()
	require.IsType(t, doneMsg{}, msg)

	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.True(t, m.done)
	assert.Contains(t, m.View(), "done: f")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a...", truncate("abcdefghijkl", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "abc", truncate("abc", 0))
}
