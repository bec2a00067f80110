package engine

import "time"

// Stage is a phase of a validation run.
type Stage string

const (
	StageNodes  Stage = "nodes"
	StageIndex  Stage = "index"
	StageGroups Stage = "groups"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusCanceled is sent once when the run stops early.
	StatusCanceled Status = "canceled"
)

// Event reports progress of a stage: Done out of Total work items.
type Event struct {
	Stage   Stage
	Status  Status
	Done    int
	Total   int
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from
// several workers at once.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// FuncSink adapts a function to ProgressSink.
type FuncSink func(Event)

func (f FuncSink) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}
