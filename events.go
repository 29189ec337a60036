package framecap

import (
	"github.com/kelindar/event"
)

// Event type identifiers for kelindar/event.
const (
	TypeSceneInfo uint32 = iota + 1
	TypeFrameCaptured
)

// Event is implemented by every value published on a Bus.
type Event interface {
	Type() uint32
}

// FrameCaptured is published after a render target has been read back into
// a CurrentFrame.
type FrameCaptured struct {
	FrameID   uint64
	Width     uint32
	Height    uint32
	Extension string
}

// Type returns the event type identifier for FrameCaptured.
func (FrameCaptured) Type() uint32 { return TypeFrameCaptured }

// Bus broadcasts scene and capture notifications.
// Handlers run asynchronously on the dispatcher's goroutines.
type Bus struct {
	dispatcher *event.Dispatcher
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{dispatcher: event.NewDispatcher()}
}

// Publish delivers ev to all subscribers of its type.
// Unknown event types are ignored.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case SceneInfo:
		event.Publish(b.dispatcher, e)
	case FrameCaptured:
		event.Publish(b.dispatcher, e)
	}
}

// OnSceneInfo subscribes to scene resize notifications.
// The returned function unsubscribes.
func (b *Bus) OnSceneInfo(fn func(SceneInfo)) func() {
	return event.Subscribe(b.dispatcher, fn)
}

// OnFrameCaptured subscribes to capture notifications.
// The returned function unsubscribes.
func (b *Bus) OnFrameCaptured(fn func(FrameCaptured)) func() {
	return event.Subscribe(b.dispatcher, fn)
}
