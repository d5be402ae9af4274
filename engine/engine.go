// Package engine runs the demo: a fixed-rate tick goroutine for input and camera flight, a render
// goroutine that owns the device context, and the window message loop on the main thread.
package engine

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/Carmen-Shannon/oxy-postfx/engine/camera"
	"github.com/Carmen-Shannon/oxy-postfx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-postfx/engine/window"
)

// Frame is what the render goroutine draws. A compositor.FrameCompositor satisfies it.
type Frame interface {
	// Draw renders and presents one frame.
	Draw() error

	// Resize refits the frame's targets to a new surface size.
	Resize(width, height int) error
}

// drawCounter is implemented by frames that report their draw count to the profiler.
type drawCounter interface {
	DrawCalls() int
}

// Controller is the camera the engine flies from keyboard and mouse input.
type Controller interface {
	AddRotX(delta float32)
	AddRotY(delta float32)
	Update(dt float32, input camera.Input)
}

// ErrStopFrame may be returned by a Frame's Draw to stop the engine without logging a failure.
var ErrStopFrame = errors.New("engine: frame stopped")

type size struct {
	width, height int
}

// engine implements the Engine interface.
// Coordinates the tick, render and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates
	resizeChannel   chan size          // Latest pending surface size, at most one

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window
	frame  Frame

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	// inputMu guards everything below it; window callbacks write, the tick goroutine reads.
	inputMu  sync.Mutex
	camera   Controller
	keys     camera.KeySet
	dragging bool
	prevX    int32
	prevY    int32
}

// Engine is the main entry point for the engine.
// It orchestrates the tick loop, render loop, and window management.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, or nil for a headless engine
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// Camera flight and the tick callback run at this rate.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, after the camera update.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called on the render goroutine after each frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// RequestResize queues a surface size for the render goroutine. Only the latest pending size
	// is kept. Window resize events are forwarded here automatically.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	RequestResize(width, height int)

	// Run starts the tick and render goroutines and the window message loop, and blocks until the
	// window closes or Quit is called. Without a window it blocks until Quit.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Window input callbacks are registered here when a window is supplied.
//
// Parameters:
//   - options: functional options for engine configuration (window, frame, camera, profiling, tick rate)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		resizeChannel:    make(chan size, 1),
		quitChannel:      make(chan struct{}),
		running:          false,
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
		keys:             camera.KeySet{},
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.RequestResize)
		e.window.SetKeyDownCallback(e.onKeyDown)
		e.window.SetKeyUpCallback(e.onKeyUp)
		e.window.SetMouseDownCallback(e.onMouseDown)
		e.window.SetMouseUpCallback(e.onMouseUp)
		e.window.SetMouseMoveCallback(e.onMouseMove)
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				e.window.RequestClose()
			default:
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Flies the camera from the held keys, fires the tick callback, and listens for dynamic rate
// changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.tick(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

func (e *engine) tick(dt float32) {
	e.inputMu.Lock()
	if e.camera != nil {
		e.camera.Update(dt, e.keys)
	}
	e.inputMu.Unlock()

	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// It is the only goroutine that touches the device context: pending resizes are applied here
// before each frame is drawn.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		if !e.renderFrame() {
			e.signalQuit()
			return
		}

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			elapsed := time.Since(lastRender)
			if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// renderFrame applies a pending resize and draws one frame. It returns false when the frame asks
// the engine to stop.
func (e *engine) renderFrame() bool {
	if e.frame == nil {
		time.Sleep(time.Millisecond)
		return true
	}

	select {
	case s := <-e.resizeChannel:
		if err := e.frame.Resize(s.width, s.height); err != nil {
			log.Printf("[Engine] resize to %dx%d failed: %v", s.width, s.height, err)
		}
	default:
	}

	if err := e.frame.Draw(); err != nil {
		if errors.Is(err, ErrStopFrame) {
			return false
		}
		log.Printf("[Engine] frame failed: %v", err)
	}

	if e.profilingEnabled && e.profiler != nil {
		draws := 0
		if dc, ok := e.frame.(drawCounter); ok {
			draws = dc.DrawCalls()
		}
		e.profiler.Tick(draws)
	}
	return true
}

func (e *engine) RequestResize(width, height int) {
	s := size{width: width, height: height}
	// Non-blocking send - if a size is pending, replace it
	select {
	case e.resizeChannel <- s:
	default:
		select {
		case <-e.resizeChannel:
		default:
		}
		select {
		case e.resizeChannel <- s:
		default:
		}
	}
}

func (e *engine) onKeyDown(keyCode int) {
	e.inputMu.Lock()
	defer e.inputMu.Unlock()
	e.keys[keyCode] = true
}

func (e *engine) onKeyUp(keyCode int) {
	e.inputMu.Lock()
	defer e.inputMu.Unlock()
	delete(e.keys, keyCode)
}

func (e *engine) onMouseDown(button common.MouseButton, x, y int32) {
	if button != common.MouseButtonLeft && button != common.MouseButtonRight {
		return
	}
	e.inputMu.Lock()
	defer e.inputMu.Unlock()
	e.dragging = true
	e.prevX, e.prevY = x, y
}

func (e *engine) onMouseUp(button common.MouseButton, x, y int32) {
	if button != common.MouseButtonLeft && button != common.MouseButtonRight {
		return
	}
	e.inputMu.Lock()
	defer e.inputMu.Unlock()
	e.dragging = false
}

// onMouseMove turns a drag into camera rotation: vertical motion pitches, horizontal motion yaws.
func (e *engine) onMouseMove(x, y int32) {
	e.inputMu.Lock()
	defer e.inputMu.Unlock()
	if e.dragging && e.camera != nil {
		e.camera.AddRotX(float32(e.prevY - y))
		e.camera.AddRotY(float32(e.prevX - x))
	}
	e.prevX, e.prevY = x, y
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
