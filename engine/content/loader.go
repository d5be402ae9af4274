package content

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/model"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
)

// Names of the content the demo registers.
const (
	MeshCube  = "cube"
	MeshCone  = "cone"
	MeshHelix = "helix"
	MeshTorus = "torus"

	MaterialBrick = "brickLightingNormalMap"
	MaterialSky   = "skyMap"
	MaterialBlur  = "Blur"
)

type loader struct {
	dev      gfx.Device
	assetDir string
	workers  int
	sampler  gfx.SamplerDescriptor
}

// decoded holds the result of one image job.
type decoded struct {
	img      *image.RGBA
	fallback bool
	err      error
}

// Load builds the demo content on dev: the four procedural meshes, the brick, sky and blur
// materials, and the shared sampler. Images are decoded on a worker pool; every device call stays
// on the calling goroutine.
//
// Parameters:
//   - dev: the device that creates the GPU objects
//   - options: variadic LoaderBuilderOption functions
//
// Returns:
//   - Registry: the populated registry, owned by the caller
//   - error: error if an image cannot be decoded or a GPU object cannot be created
func Load(dev gfx.Device, options ...LoaderBuilderOption) (Registry, error) {
	l := &loader{
		dev:     dev,
		workers: runtime.NumCPU(),
		sampler: gfx.SamplerDescriptor{
			Label:         "sampler",
			AddressU:      gfx.AddressWrap,
			AddressV:      gfx.AddressWrap,
			AddressW:      gfx.AddressWrap,
			Filter:        gfx.FilterLinear,
			MaxAnisotropy: 16,
			MaxLOD:        math.MaxFloat32,
		},
	}
	for _, opt := range options {
		opt(l)
	}

	images, err := l.decodeImages()
	if err != nil {
		return nil, err
	}

	sampler, err := dev.CreateSampler(l.sampler)
	if err != nil {
		return nil, fmt.Errorf("content: failed to create sampler: %w", err)
	}
	reg := NewRegistry(sampler)
	sampler.Release()

	if err := l.populate(reg, images); err != nil {
		reg.Release()
		return nil, err
	}
	log.Printf("[Content] loaded meshes %v and materials %v", reg.MeshNames(), reg.MaterialNames())
	return reg, nil
}

// decodeImages runs every image job on a dynamic worker pool and waits for all of them.
func (l *loader) decodeImages() ([]*image.RGBA, error) {
	jobs := imageJobs(l.assetDir)
	results := make([]decoded, len(jobs))

	pool := worker.NewDynamicWorkerPool(l.workers, len(jobs), time.Second)
	defer pool.Stop()

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				img, fallback, err := job.run()
				results[i] = decoded{img: img, fallback: fallback, err: err}
				return img, err
			},
		})
	}
	wg.Wait()

	images := make([]*image.RGBA, len(jobs))
	var errs []error
	for i, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		if r.fallback && l.assetDir != "" {
			log.Printf("[Content] %s not found in %s, using generated image", jobs[i].name, l.assetDir)
		}
		images[i] = r.img
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return images, nil
}

// populate creates the GPU objects and registers them. On error, whatever was registered is
// released by the caller together with the registry.
func (l *loader) populate(reg Registry, images []*image.RGBA) error {
	var local resource.Scope
	defer local.Close()

	color, err := l.texture2D("bricks", images[0])
	if err != nil {
		return err
	}
	local.Hold(color)
	normal, err := l.texture2D("bricksNM", images[1])
	if err != nil {
		return err
	}
	local.Hold(normal)
	sky, err := l.textureCube("SunnyCubeMap", images[2:8])
	if err != nil {
		return err
	}
	local.Hold(sky)

	sampler := local.Hold(reg.Sampler())

	materials := []struct {
		name     string
		programs programPair
		options  []material.MaterialBuilderOption
	}{
		{MaterialBrick, lightingPrograms(), []material.MaterialBuilderOption{material.WithColorView(color), material.WithNormalView(normal)}},
		{MaterialSky, skyPrograms(), []material.MaterialBuilderOption{material.WithColorView(sky)}},
		{MaterialBlur, blurPrograms(), nil},
	}
	for _, m := range materials {
		mat, err := l.material(m.name, m.programs, sampler, m.options...)
		if err != nil {
			return err
		}
		if err := reg.RegisterMaterial(mat); err != nil {
			mat.Release()
			return err
		}
	}

	meshes := []struct {
		name string
		geo  model.Geometry
	}{
		{MeshCube, model.Cube()},
		{MeshCone, model.Cone(32)},
		{MeshHelix, model.Helix(192, 12)},
		{MeshTorus, model.Torus(48, 24)},
	}
	for _, m := range meshes {
		mesh, err := model.NewMesh(l.dev, m.name, m.geo.Vertices, m.geo.Indices)
		if err != nil {
			return fmt.Errorf("content: %w", err)
		}
		if err := reg.RegisterMesh(mesh); err != nil {
			mesh.Release()
			return err
		}
	}
	return nil
}

// material compiles a program pair and wraps it in a material. The programs are released if the
// material cannot be built.
func (l *loader) material(name string, programs programPair, sampler *resource.View, options ...material.MaterialBuilderOption) (material.Material, error) {
	vs, err := shader.NewProgram(l.dev, programs.vertex)
	if err != nil {
		return nil, fmt.Errorf("content: material %q: %w", name, err)
	}
	ps, err := shader.NewProgram(l.dev, programs.pixel)
	if err != nil {
		vs.Release()
		return nil, fmt.Errorf("content: material %q: %w", name, err)
	}
	mat, err := material.NewMaterial(vs, ps, sampler, append([]material.MaterialBuilderOption{material.WithName(name)}, options...)...)
	if err != nil {
		vs.Release()
		ps.Release()
		return nil, fmt.Errorf("content: material %q: %w", name, err)
	}
	return mat, nil
}

// texture2D uploads img and returns a shader resource view over it.
func (l *loader) texture2D(label string, img *image.RGBA) (*resource.View, error) {
	data := imageData(img)
	tex, err := l.dev.CreateTexture(gfx.TextureDescriptor{
		Label:  label,
		Width:  data.Width,
		Height: data.Height,
		Format: gfx.FormatRGBA8Unorm,
		Bind:   gfx.BindShaderResource,
	}, [][]byte{data.Pixels})
	if err != nil {
		return nil, fmt.Errorf("content: failed to create texture %q: %w", label, err)
	}
	defer tex.Release()

	srv, err := l.dev.CreateShaderResourceView(tex)
	if err != nil {
		return nil, fmt.Errorf("content: failed to create view of %q: %w", label, err)
	}
	return srv, nil
}

// textureCube uploads six faces as a cube texture and returns a cube shader resource view.
func (l *loader) textureCube(label string, faces []*image.RGBA) (*resource.View, error) {
	layers, size := cubeLayers(faces)
	tex, err := l.dev.CreateTexture(gfx.TextureDescriptor{
		Label:  label,
		Width:  size,
		Height: size,
		Format: gfx.FormatRGBA8Unorm,
		Bind:   gfx.BindShaderResource,
		Cube:   true,
	}, layers)
	if err != nil {
		return nil, fmt.Errorf("content: failed to create cube texture %q: %w", label, err)
	}
	defer tex.Release()

	srv, err := l.dev.CreateShaderResourceView(tex)
	if err != nil {
		return nil, fmt.Errorf("content: failed to create view of %q: %w", label, err)
	}
	return srv, nil
}
