package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/Carmen-Shannon/oxy-postfx/engine/camera"
	"github.com/Carmen-Shannon/oxy-postfx/engine/profiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFrame struct {
	draws     int
	stopAfter int
	failDraw  error
	resizes   []size
}

func (f *fakeFrame) Draw() error {
	f.draws++
	if f.stopAfter > 0 && f.draws >= f.stopAfter {
		return ErrStopFrame
	}
	return f.failDraw
}

func (f *fakeFrame) Resize(width, height int) error {
	f.resizes = append(f.resizes, size{width, height})
	return nil
}

func (f *fakeFrame) DrawCalls() int { return 6 }

type fakeCamera struct {
	rotX, rotY []float32
	updates    int
	held       []int
}

func (c *fakeCamera) AddRotX(delta float32) { c.rotX = append(c.rotX, delta) }
func (c *fakeCamera) AddRotY(delta float32) { c.rotY = append(c.rotY, delta) }

func (c *fakeCamera) Update(dt float32, input camera.Input) {
	c.updates++
	c.held = c.held[:0]
	for _, k := range []int{common.KeyW, common.KeyA, common.KeyS, common.KeyD} {
		if input.IsKeyDown(k) {
			c.held = append(c.held, k)
		}
	}
}

func newTestEngine(options ...EngineBuilderOption) *engine {
	return NewEngine(options...).(*engine)
}

func TestMouseDrag_RotatesCamera(t *testing.T) {
	cam := &fakeCamera{}
	e := newTestEngine(WithCamera(cam))

	e.onMouseMove(100, 100)
	assert.Empty(t, cam.rotX, "moving without a drag does nothing")

	e.onMouseDown(common.MouseButtonLeft, 10, 10)
	e.onMouseMove(15, 4)
	e.onMouseMove(15, 4)
	require.Len(t, cam.rotX, 2)
	assert.Equal(t, float32(6), cam.rotX[0])
	assert.Equal(t, float32(-5), cam.rotY[0])
	assert.Zero(t, cam.rotX[1])

	e.onMouseUp(common.MouseButtonLeft, 15, 4)
	e.onMouseMove(30, 30)
	assert.Len(t, cam.rotX, 2)
}

func TestMouseDrag_RightButtonOnly(t *testing.T) {
	cam := &fakeCamera{}
	e := newTestEngine(WithCamera(cam))

	e.onMouseDown(common.MouseButtonMiddle, 0, 0)
	e.onMouseMove(5, 5)
	assert.Empty(t, cam.rotX)

	e.onMouseDown(common.MouseButtonRight, 0, 0)
	e.onMouseMove(0, 3)
	require.Len(t, cam.rotX, 1)
	assert.Equal(t, float32(-3), cam.rotX[0])
}

func TestTick_FliesCameraFromHeldKeys(t *testing.T) {
	cam := &fakeCamera{}
	ticks := 0
	e := newTestEngine(WithCamera(cam))
	e.SetTickCallback(func(float32) { ticks++ })

	e.onKeyDown(common.KeyW)
	e.onKeyDown(common.KeyD)
	e.onKeyUp(common.KeyD)
	e.tick(1.0 / 60)

	assert.Equal(t, 1, cam.updates)
	assert.Equal(t, []int{common.KeyW}, cam.held)
	assert.Equal(t, 1, ticks)
}

func TestRenderFrame_CoalescesResizes(t *testing.T) {
	frame := &fakeFrame{}
	e := newTestEngine(WithFrame(frame))

	e.RequestResize(800, 600)
	e.RequestResize(1024, 768)
	e.RequestResize(0, 0)
	e.RequestResize(1280, 720)

	require.True(t, e.renderFrame())
	require.True(t, e.renderFrame())
	assert.Equal(t, []size{{1280, 720}}, frame.resizes)
	assert.Equal(t, 2, frame.draws)
}

func TestRenderFrame_KeepsGoingAfterDrawError(t *testing.T) {
	frame := &fakeFrame{failDraw: errors.New("surface lost")}
	e := newTestEngine(WithFrame(frame))
	assert.True(t, e.renderFrame())
	assert.True(t, e.renderFrame())
	assert.Equal(t, 2, frame.draws)
}

func TestRun_HeadlessStopsOnStopFrame(t *testing.T) {
	frame := &fakeFrame{stopAfter: 3}
	rendered := 0
	e := NewEngine(
		WithFrame(frame),
		WithProfiling(true),
		WithProfiler(profiler.NewProfiler(profiler.WithQuiet())),
		WithTickRate(240),
	)
	e.SetRenderCallback(func(float32) { rendered++ })

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		e.Quit()
		t.Fatal("engine did not stop")
	}
	assert.Equal(t, 3, frame.draws)
	assert.Equal(t, 2, rendered)
	e.Quit()
}

func TestSetRenderFrameLimit(t *testing.T) {
	e := newTestEngine(WithRenderFrameLimit(50))
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
	e.SetTickRate(-1)
	assert.Equal(t, time.Second/60, e.engineTickRate)
}
