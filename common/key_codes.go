package common

// Key codes used by the demo's camera controls and quit binding.
// These values match GLFW key codes, which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW         = 87  // forward
	KeyA         = 65  // strafe left
	KeyS         = 83  // back
	KeyD         = 68  // strafe right
	KeySpace     = 32  // up
	KeyEsc       = 256 // quit
	KeyLeftShift = 340 // down
)

// MouseButton identifies a pointer button reported by the window.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)
