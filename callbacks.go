package hostbridge

import "time"

// Callbacks observes bridge operations performed through a Bridge.
type Callbacks interface {
	BeforeCall(event *CallEvent)
	AfterCall(event *CallEvent)
	AfterSchedule(event *ScheduleEvent)
}

// CallEvent describes one CallGlobal.
type CallEvent struct {
	Global    string
	Args      int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Error     error
}

// ScheduleEvent describes one Schedule. Ref has already been released when
// the event is delivered.
type ScheduleEvent struct {
	Table     string
	Field     string
	Ref       Ref
	StartTime time.Time
	Duration  time.Duration
	Error     error
}

// BaseCallbacks provides a default implementation that does nothing.
// Embed it to implement only the callbacks you need.
type BaseCallbacks struct{}

func (BaseCallbacks) BeforeCall(event *CallEvent) {
	// noop
}

func (BaseCallbacks) AfterCall(event *CallEvent) {
	// noop
}

func (BaseCallbacks) AfterSchedule(event *ScheduleEvent) {
	// noop
}

// CallbackChain fans every event out to several Callbacks in order.
type CallbackChain struct {
	callbacks []Callbacks
}

// NewCallbackChain creates a new callback chain
func NewCallbackChain(callbacks ...Callbacks) *CallbackChain {
	return &CallbackChain{callbacks: callbacks}
}

// Add adds a callback to the chain
func (c *CallbackChain) Add(callback Callbacks) {
	c.callbacks = append(c.callbacks, callback)
}

func (c *CallbackChain) BeforeCall(event *CallEvent) {
	for _, callback := range c.callbacks {
		callback.BeforeCall(event)
	}
}

func (c *CallbackChain) AfterCall(event *CallEvent) {
	for _, callback := range c.callbacks {
		callback.AfterCall(event)
	}
}

func (c *CallbackChain) AfterSchedule(event *ScheduleEvent) {
	for _, callback := range c.callbacks {
		callback.AfterSchedule(event)
	}
}
