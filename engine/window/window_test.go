package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngineWindow_Defaults(t *testing.T) {
	w := newEngineWindow()
	assert.Equal(t, "oxy postfx", w.title)
	assert.Equal(t, 1280, w.width)
	assert.Equal(t, 720, w.height)
	assert.Nil(t, w.internalWindow)
	assert.False(t, w.IsRunning())
}

func TestNewEngineWindow_ClampsRequestedSize(t *testing.T) {
	w := newEngineWindow(WithSize(4000, 100))
	assert.Equal(t, 1920, w.width)
	assert.Equal(t, 200, w.height)

	w = newEngineWindow(WithMaxSize(0, 0), WithSize(4000, 3000))
	assert.Equal(t, 4000, w.width, "zero maximum is unbounded")
	assert.Equal(t, 3000, w.height)

	w = newEngineWindow(WithSize(-1, 0), WithTitle(""))
	assert.Equal(t, 1280, w.width)
	assert.Equal(t, "oxy postfx", w.title)
}

func TestSizeLimits_Clamp(t *testing.T) {
	l := sizeLimits{minWidth: 10, minHeight: 20, maxWidth: 100}
	w, h := l.clamp(5, 5000)
	assert.Equal(t, 10, w)
	assert.Equal(t, 5000, h)
	w, h = l.clamp(150, 30)
	assert.Equal(t, 100, w)
	assert.Equal(t, 30, h)
}

func TestCallbacks_AreStored(t *testing.T) {
	w := newEngineWindow()
	called := false
	w.SetUpdateCallback(func() { called = true })
	w.on.update()
	assert.True(t, called)
	assert.Error(t, w.Close(), "closing an unopened window fails")
}
