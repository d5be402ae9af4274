// package common contains plain data types shared by the renderer packages: vertex layout,
// colors, decoded image data and byte helpers for GPU uploads.
package common

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
)

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

// Vertex is the vertex layout every mesh in the demo uses.
// It is uploaded tightly packed, VertexSize bytes per vertex, little-endian.
type Vertex struct {
	// Position is the object-space position.
	Position [3]float32
	// Normal is the object-space surface normal.
	Normal [3]float32
	// UV is the texture coordinate.
	UV [2]float32
	// Tangent is the object-space tangent used by normal mapping.
	Tangent [3]float32
}

// VertexSize is the packed byte size of a Vertex.
const VertexSize = 44

// MarshalVertices packs vertices into the GPU vertex layout.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: len(vertices)*VertexSize bytes
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, 0, len(vertices)*VertexSize)
	for _, v := range vertices {
		buf = AppendFloat32s(buf, v.Position[:]...)
		buf = AppendFloat32s(buf, v.Normal[:]...)
		buf = AppendFloat32s(buf, v.UV[:]...)
		buf = AppendFloat32s(buf, v.Tangent[:]...)
	}
	return buf
}

// MarshalIndices packs 32-bit indices little-endian.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, 4*len(indices))
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// AppendFloat32s appends each value little-endian to buf.
func AppendFloat32s(buf []byte, values ...float32) []byte {
	for _, f := range values {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// ImageData holds decoded RGBA pixels ready for texture upload.
type ImageData struct {
	// Pixels is RGBA, 4 bytes per pixel, row-major.
	Pixels []byte
	Width  uint32
	Height uint32
}

// ImageFile describes an image on disk or in memory that has not been decoded yet.
type ImageFile struct {
	// Path is the file path; used when Data is empty.
	Path string
	// Data contains encoded PNG or JPEG bytes.
	Data []byte
}

// Decode decodes the image to raw RGBA pixel data.
// Uses either the in-memory Data bytes or loads from Path on disk.
// Supports PNG and JPEG formats.
//
// Returns:
//   - ImageData: the decoded pixels
//   - error: error if the file cannot be read or decoded
func (f ImageFile) Decode() (ImageData, error) {
	var img image.Image
	var err error

	switch {
	case len(f.Data) > 0:
		img, _, err = image.Decode(bytes.NewReader(f.Data))
		if err != nil {
			return ImageData{}, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	case f.Path != "":
		file, openErr := os.Open(f.Path)
		if openErr != nil {
			return ImageData{}, fmt.Errorf("failed to open image file %s: %w", f.Path, openErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return ImageData{}, fmt.Errorf("failed to decode image file %s: %w", f.Path, err)
		}
	default:
		return ImageData{}, fmt.Errorf("image has neither data nor path")
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return ImageData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}
