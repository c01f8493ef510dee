package events

import (
	"time"
)

// Event is the base interface for all events.
type Event interface {
	EventType() string
	Topic() string
}

// Topic constants
const (
	TopicTasks   = "tasks"
	TopicContext = "context"
)

// Event type constants
const (
	EventTypeTasksParsed     = "tasks.parsed"
	EventTypeContextGathered = "context.gathered"
	EventTypeContextWarning  = "context.warning"
	EventTypeContextError    = "context.error"
)

// TasksParsedEvent is published after a task list has been parsed.
type TasksParsedEvent struct {
	Source    string
	Count     int
	Skipped   int // Headers dropped for an empty title
	Timestamp time.Time
}

func (e TasksParsedEvent) EventType() string { return EventTypeTasksParsed }
func (e TasksParsedEvent) Topic() string     { return TopicTasks }

// ContextGatheredEvent is published when the files for one task have been read.
type ContextGatheredEvent struct {
	TaskID    string
	Files     int
	Failed    int
	Timestamp time.Time
}

func (e ContextGatheredEvent) EventType() string { return EventTypeContextGathered }
func (e ContextGatheredEvent) Topic() string     { return TopicContext }

// ContextWarningEvent carries a gatherer warning (missing path).
type ContextWarningEvent struct {
	Message   string
	Timestamp time.Time
}

func (e ContextWarningEvent) EventType() string { return EventTypeContextWarning }
func (e ContextWarningEvent) Topic() string     { return TopicContext }

// ContextErrorEvent carries a gatherer error (unreadable file).
type ContextErrorEvent struct {
	Message   string
	Timestamp time.Time
}

func (e ContextErrorEvent) EventType() string { return EventTypeContextError }
func (e ContextErrorEvent) Topic() string     { return TopicContext }
