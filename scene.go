package framecap

import "fmt"

// SceneInfo describes the logical pixel dimensions of the scene.
//
// The same value serves as the persistent scene state held by a [Capturer]
// and as a one-shot notification published on a [Bus] when the scene is
// resized. The zero value is a 0x0 scene.
type SceneInfo struct {
	width  uint32
	height uint32
}

// NewSceneInfo returns scene info for the given dimensions.
func NewSceneInfo(width, height uint32) SceneInfo {
	return SceneInfo{width: width, height: height}
}

// Dimensions returns the scene width and height in pixels.
func (s SceneInfo) Dimensions() (uint32, uint32) {
	return s.width, s.height
}

// Type returns the event type identifier for SceneInfo.
func (SceneInfo) Type() uint32 { return TypeSceneInfo }

// String implements fmt.Stringer.
func (s SceneInfo) String() string {
	return fmt.Sprintf("SceneInfo{width: %d, height: %d}", s.width, s.height)
}
