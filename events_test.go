package framecap

import (
	"testing"
	"time"
)

func TestBusSceneInfo(t *testing.T) {
	bus := NewBus()
	received := make(chan SceneInfo, 1)

	unsub := bus.OnSceneInfo(func(s SceneInfo) {
		received <- s
	})
	defer unsub()

	bus.Publish(NewSceneInfo(800, 600))

	select {
	case got := <-received:
		if w, h := got.Dimensions(); w != 800 || h != 600 {
			t.Errorf("received %v, want 800x600", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for SceneInfo")
	}
}

func TestBusTypeSafety(t *testing.T) {
	bus := NewBus()
	scenes := make(chan SceneInfo, 1)
	frames := make(chan FrameCaptured, 1)

	unsub1 := bus.OnSceneInfo(func(s SceneInfo) { scenes <- s })
	defer unsub1()
	unsub2 := bus.OnFrameCaptured(func(f FrameCaptured) { frames <- f })
	defer unsub2()

	bus.Publish(FrameCaptured{FrameID: 3, Width: 2, Height: 2, Extension: "png"})

	select {
	case got := <-frames:
		if got.FrameID != 3 {
			t.Errorf("FrameID = %d, want 3", got.FrameID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for FrameCaptured")
	}

	select {
	case <-scenes:
		t.Fatal("SceneInfo subscriber received FrameCaptured")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	received := make(chan FrameCaptured, 2)

	unsub := bus.OnFrameCaptured(func(f FrameCaptured) { received <- f })
	bus.Publish(FrameCaptured{FrameID: 1})
	<-received

	unsub()
	bus.Publish(FrameCaptured{FrameID: 2})
	select {
	case <-received:
		t.Fatal("received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}
