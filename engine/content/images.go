package content

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"math"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"golang.org/x/image/draw"
)

// Texture file names looked up in the asset directory.
const (
	brickFile       = "bricks.png"
	brickNormalFile = "bricksNM.png"
	skyFilePattern  = "SunnyCubeMap_%s.png"
)

// skyFaces are the cube face suffixes in layer order (+X, -X, +Y, -Y, +Z, -Z).
var skyFaces = [6]string{"posx", "negx", "posy", "negy", "posz", "negz"}

const proceduralSize = 256

// imageJob loads one image from disk, falling back to a generated one when the file is absent.
type imageJob struct {
	name     string
	path     string
	fallback func() *image.RGBA
}

// run decodes the job's file. A missing file (or no asset directory) yields the fallback.
//
// Returns:
//   - *image.RGBA: the decoded or generated image
//   - bool: true when the fallback was used
//   - error: error if the file exists but cannot be decoded
func (j imageJob) run() (*image.RGBA, bool, error) {
	if j.path == "" {
		return j.fallback(), true, nil
	}
	data, err := common.ImageFile{Path: j.path}.Decode()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return j.fallback(), true, nil
		}
		return nil, false, fmt.Errorf("content: %s: %w", j.name, err)
	}
	return &image.RGBA{
		Pix:    data.Pixels,
		Stride: int(data.Width) * 4,
		Rect:   image.Rect(0, 0, int(data.Width), int(data.Height)),
	}, false, nil
}

// imageJobs lists the demo's texture images: brick color, brick normal map, then six sky faces.
func imageJobs(assetDir string) []imageJob {
	path := func(name string) string {
		if assetDir == "" {
			return ""
		}
		return filepath.Join(assetDir, name)
	}

	jobs := []imageJob{
		{name: brickFile, path: path(brickFile), fallback: brickImage},
		{name: brickNormalFile, path: path(brickNormalFile), fallback: brickNormalImage},
	}
	for i, face := range skyFaces {
		name := fmt.Sprintf(skyFilePattern, face)
		jobs = append(jobs, imageJob{name: name, path: path(name), fallback: func() *image.RGBA { return skyFaceImage(i) }})
	}
	return jobs
}

// imageData flattens img into tightly packed RGBA rows.
func imageData(img *image.RGBA) common.ImageData {
	b := img.Bounds()
	if img.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		return common.ImageData{Pixels: img.Pix, Width: uint32(b.Dx()), Height: uint32(b.Dy())}
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return common.ImageData{Pixels: out.Pix, Width: uint32(b.Dx()), Height: uint32(b.Dy())}
}

// cubeLayers scales the six faces to one common square size, the largest face edge, and returns
// their pixels in layer order.
func cubeLayers(faces []*image.RGBA) ([][]byte, uint32) {
	size := 1
	for _, f := range faces {
		size = max(size, f.Bounds().Dx(), f.Bounds().Dy())
	}

	layers := make([][]byte, len(faces))
	for i, f := range faces {
		if f.Bounds().Dx() == size && f.Bounds().Dy() == size {
			layers[i] = imageData(f).Pixels
			continue
		}
		scaled := image.NewRGBA(image.Rect(0, 0, size, size))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), f, f.Bounds(), draw.Src, nil)
		layers[i] = scaled.Pix
	}
	return layers, uint32(size)
}

// brick layout in texels
const (
	brickWidth  = 64
	brickHeight = 32
	mortar      = 3
)

// brickHeightAt is 1 on a brick face and 0 in the mortar, with a one texel bevel.
func brickHeightAt(x, y int) float64 {
	row := y / brickHeight
	if row%2 == 1 {
		x += brickWidth / 2
	}
	bx := x % brickWidth
	by := y % brickHeight
	edge := min(bx, brickWidth-1-bx, by, brickHeight-1-by)
	switch {
	case edge < mortar:
		return 0
	case edge == mortar:
		return 0.5
	default:
		return 1
	}
}

func brickImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, proceduralSize, proceduralSize))
	for y := 0; y < proceduralSize; y++ {
		for x := 0; x < proceduralSize; x++ {
			if brickHeightAt(x, y) == 0 {
				img.SetRGBA(x, y, color.RGBA{R: 170, G: 165, B: 155, A: 255})
				continue
			}
			// vary each brick's tone by its cell so the wall does not look tiled
			row := y / brickHeight
			col := (x + (row%2)*brickWidth/2) / brickWidth
			shade := uint8((row*7 + col*13) % 5 * 8)
			img.SetRGBA(x, y, color.RGBA{R: 150 + shade, G: 60 + shade/2, B: 45, A: 255})
		}
	}
	return img
}

// brickNormalImage derives a tangent-space normal map from the brick height field.
func brickNormalImage() *image.RGBA {
	const strength = 2.0
	img := image.NewRGBA(image.Rect(0, 0, proceduralSize, proceduralSize))
	wrap := func(v int) int { return (v + proceduralSize) % proceduralSize }
	for y := 0; y < proceduralSize; y++ {
		for x := 0; x < proceduralSize; x++ {
			dx := brickHeightAt(wrap(x+1), y) - brickHeightAt(wrap(x-1), y)
			dy := brickHeightAt(x, wrap(y+1)) - brickHeightAt(x, wrap(y-1))
			nx, ny, nz := -dx*strength, dy*strength, 1.0
			l := math.Sqrt(nx*nx + ny*ny + nz*nz)
			img.SetRGBA(x, y, color.RGBA{
				R: encodeUnit(nx / l),
				G: encodeUnit(ny / l),
				B: encodeUnit(nz / l),
				A: 255,
			})
		}
	}
	return img
}

func encodeUnit(v float64) uint8 {
	return uint8(math.Round((v*0.5 + 0.5) * 255))
}

// cubeDirection maps face texel coordinates in [-1, 1] to a direction for the given layer.
func cubeDirection(face int, u, v float64) (x, y, z float64) {
	switch face {
	case 0:
		return 1, -v, -u
	case 1:
		return -1, -v, u
	case 2:
		return u, 1, v
	case 3:
		return u, -1, -v
	case 4:
		return u, -v, 1
	default:
		return -u, -v, -1
	}
}

// skyFaceImage paints one face of a gradient sky: deep blue overhead, pale at the horizon and a
// dark ground below it.
func skyFaceImage(face int) *image.RGBA {
	const size = proceduralSize / 2
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for py := 0; py < size; py++ {
		for px := 0; px < size; px++ {
			u := (float64(px)+0.5)/size*2 - 1
			v := (float64(py)+0.5)/size*2 - 1
			x, y, z := cubeDirection(face, u, v)
			elevation := y / math.Sqrt(x*x+y*y+z*z)

			var r, g, b float64
			if elevation >= 0 {
				t := math.Pow(elevation, 0.5)
				r, g, b = lerp(0.75, 0.15, t), lerp(0.85, 0.35, t), lerp(0.95, 0.75, t)
			} else {
				t := math.Min(-elevation*4, 1)
				r, g, b = lerp(0.55, 0.2, t), lerp(0.55, 0.18, t), lerp(0.5, 0.15, t)
			}
			img.SetRGBA(px, py, color.RGBA{R: toByte(r), G: toByte(g), B: toByte(b), A: 255})
		}
	}
	return img
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func toByte(v float64) uint8 {
	return uint8(math.Round(common.Clamp(v, 0, 1) * 255))
}
