package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/go-gl/mathgl/mgl32"
)

// maxPitch keeps the pitch just short of straight up or down so the look-at basis never degenerates.
const maxPitch = math.Pi/2 - 0.01

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	pitch    float32
	yaw      float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	moveSpeed        float32
	mouseSensitivity float32

	view       mgl32.Mat4
	projection mgl32.Mat4
}

// Camera is a first-person camera. It looks down -Z at zero rotation, pitches around its local X
// axis and yaws around world Y.
type Camera interface {
	// Position returns the world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the camera position
	Position() mgl32.Vec3

	// Forward returns the unit view direction.
	//
	// Returns:
	//   - mgl32.Vec3: the view direction
	Forward() mgl32.Vec3

	// Pitch returns the rotation around the local X axis in radians.
	Pitch() float32

	// Yaw returns the rotation around world Y in radians.
	Yaw() float32

	// View returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix, column-major
	View() mgl32.Mat4

	// Projection returns the current projection matrix with a 0..1 depth range.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix, column-major
	Projection() mgl32.Mat4

	// UpdateProjection rebuilds the projection for a new viewport size.
	// Zero sizes (a minimised window) leave the projection unchanged.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	UpdateProjection(width, height int)

	// AddRotX pitches the camera by a pointer delta, scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - delta: vertical pointer movement in pixels, positive looks up
	AddRotX(delta float32)

	// AddRotY yaws the camera by a pointer delta, scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - delta: horizontal pointer movement in pixels, positive turns left
	AddRotY(delta float32)

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// Update flies the camera from the keys currently held in input.
	// W/S move along the view direction, A/D strafe, Space and left Shift move along world Y.
	//
	// Parameters:
	//   - dt: elapsed seconds
	//   - input: the keyboard state, may be nil
	Update(dt float32, input Input)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at (0, 0, 5) looking at the origin.
//
// Parameters:
//   - options: variadic CameraBuilderOption functions
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:               &sync.Mutex{},
		position:         mgl32.Vec3{0, 0, 5},
		fov:              float32(math.Pi / 4),
		aspect:           16.0 / 9.0,
		near:             0.01,
		far:              100,
		moveSpeed:        2,
		mouseSensitivity: 0.005,
	}
	for _, opt := range options {
		opt(c)
	}
	c.updateView()
	c.updateProjection()
	return c
}

// forward derives the view direction from pitch and yaw. Caller must hold the mutex.
func (c *cameraImpl) forward() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.pitch)))
	return mgl32.Vec3{
		-float32(math.Sin(float64(c.yaw))) * cp,
		float32(math.Sin(float64(c.pitch))),
		-float32(math.Cos(float64(c.yaw))) * cp,
	}
}

// updateView rebuilds the view matrix. Caller must hold the mutex.
func (c *cameraImpl) updateView() {
	c.view = mgl32.LookAtV(c.position, c.position.Add(c.forward()), mgl32.Vec3{0, 1, 0})
}

// updateProjection rebuilds the projection matrix. Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	c.projection = common.PerspectiveZO(c.fov, c.aspect, c.near, c.far)
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forward()
}

func (c *cameraImpl) Pitch() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

func (c *cameraImpl) Yaw() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) UpdateProjection(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = float32(width) / float32(height)
	c.updateProjection()
}

func (c *cameraImpl) AddRotX(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pitch = common.Clamp(c.pitch+delta*c.mouseSensitivity, -maxPitch, maxPitch)
	c.updateView()
}

func (c *cameraImpl) AddRotY(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw += delta * c.mouseSensitivity
	c.updateView()
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
	c.updateView()
}

func (c *cameraImpl) Update(dt float32, input Input) {
	if input == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	forward := c.forward()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	var move mgl32.Vec3
	for _, b := range flightBindings {
		if input.IsKeyDown(b.key) {
			switch b.axis {
			case axisForward:
				move = move.Add(forward.Mul(b.sign))
			case axisRight:
				move = move.Add(right.Mul(b.sign))
			case axisUp:
				move = move.Add(mgl32.Vec3{0, b.sign, 0})
			}
		}
	}
	if move == (mgl32.Vec3{}) {
		return
	}
	c.position = c.position.Add(move.Mul(c.moveSpeed * dt))
	c.updateView()
}
