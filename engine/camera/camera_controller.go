// Package camera provides the demo's first-person camera and the keyboard bindings that fly it.
package camera

import "github.com/Carmen-Shannon/oxy-postfx/common"

// Input reports which keys are currently held.
type Input interface {
	// IsKeyDown reports whether key is held.
	//
	// Parameters:
	//   - key: a common.Key* code
	//
	// Returns:
	//   - bool: true while the key is down
	IsKeyDown(key int) bool
}

type axis int

const (
	axisForward axis = iota
	axisRight
	axisUp
)

// flightBindings maps held keys to movement along the camera's local axes.
var flightBindings = []struct {
	key  int
	axis axis
	sign float32
}{
	{common.KeyW, axisForward, 1},
	{common.KeyS, axisForward, -1},
	{common.KeyD, axisRight, 1},
	{common.KeyA, axisRight, -1},
	{common.KeySpace, axisUp, 1},
	{common.KeyLeftShift, axisUp, -1},
}

// KeySet is an Input backed by a set of held keys. It is not safe for concurrent use; the engine
// guards it with its input mutex.
type KeySet map[int]bool

var _ Input = KeySet{}

func (k KeySet) IsKeyDown(key int) bool {
	return k[key]
}
