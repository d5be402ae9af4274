// Package config loads the demo's settings from a TOML file.
//
// A missing file is not an error: Open returns the defaults, which reproduce the stock demo
// (a 1280x720 window, a blur radius of 9 and a transparent black clear color). Keys present in
// the file override the defaults one by one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFilename is the settings file the demo looks for in its working directory.
const DefaultFilename = "postfx.toml"

// Config is the complete demo configuration.
type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Post     Post     `toml:"post"`
	Camera   Camera   `toml:"camera"`
	Content  Content  `toml:"content"`
	Engine   Engine   `toml:"engine"`
}

// Window configures the platform window.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Renderer configures the wgpu device.
type Renderer struct {
	VSync                bool `toml:"vsync"`
	ForceFallbackAdapter bool `toml:"force_fallback_adapter"`
}

// Post configures the frame compositor.
type Post struct {
	// BlurAmount is the box blur radius in texels; 0 copies the scene unchanged.
	BlurAmount int32 `toml:"blur_amount"`
	// ClearColor is RGBA in [0,1].
	ClearColor [4]float32 `toml:"clear_color"`
}

// Camera configures the fly camera.
type Camera struct {
	Position [3]float32 `toml:"position"`
	// FovDegrees is the vertical field of view.
	FovDegrees       float32 `toml:"fov_degrees"`
	Near             float32 `toml:"near"`
	Far              float32 `toml:"far"`
	MoveSpeed        float32 `toml:"move_speed"`
	MouseSensitivity float32 `toml:"mouse_sensitivity"`
}

// Content configures asset loading.
type Content struct {
	// AssetDir is searched for the demo images; missing images are generated.
	AssetDir string `toml:"asset_dir"`
	// Workers is the size of the image decoding pool; 0 means one per CPU.
	Workers int `toml:"workers"`
}

// Engine configures the frame loop.
type Engine struct {
	Profiling bool    `toml:"profiling"`
	TickRate  float64 `toml:"tick_rate"`
	// FrameLimit caps rendered frames per second; 0 is uncapped.
	FrameLimit float64 `toml:"frame_limit"`
}

// Defaults returns the stock demo configuration.
func Defaults() Config {
	return Config{
		Window: Window{
			Title:  "oxy postfx",
			Width:  1280,
			Height: 720,
		},
		Renderer: Renderer{VSync: false},
		Post: Post{
			BlurAmount: 9,
			ClearColor: [4]float32{0, 0, 0, 0},
		},
		Camera: Camera{
			Position:         [3]float32{0, 0, 5},
			FovDegrees:       45,
			Near:             0.01,
			Far:              100,
			MoveSpeed:        2,
			MouseSensitivity: 0.005,
		},
		Content: Content{
			AssetDir: "assets",
		},
		Engine: Engine{
			TickRate: 60,
		},
	}
}

// Open reads the configuration at path on top of the defaults.
//
// Parameters:
//   - path: the TOML file to read
//
// Returns:
//   - Config: the defaults overridden by the file's keys, or the defaults if the file is missing
//   - error: error if the file cannot be read, is not valid TOML, or fails Validate
func Open(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Defaults(), fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
//
// Parameters:
//   - cfg: the configuration to write
//   - path: the destination file
//
// Returns:
//   - error: error if encoding or writing fails
func Save(cfg Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Validate rejects values the demo cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Post.BlurAmount < 0:
		return fmt.Errorf("%w: negative blur amount %d", ErrInvalid, c.Post.BlurAmount)
	case c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180:
		return fmt.Errorf("%w: field of view %v", ErrInvalid, c.Camera.FovDegrees)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: clip planes %v..%v", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Content.Workers < 0:
		return fmt.Errorf("%w: %d loader workers", ErrInvalid, c.Content.Workers)
	}
	return nil
}

// Color returns the post clear color as a common.Color.
func (p Post) Color() common.Color {
	return common.Color{R: p.ClearColor[0], G: p.ClearColor[1], B: p.ClearColor[2], A: p.ClearColor[3]}
}

// Fov returns the field of view in radians.
func (c Camera) Fov() float32 {
	return c.FovDegrees * math.Pi / 180
}
