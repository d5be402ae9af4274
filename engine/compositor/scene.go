package compositor

import (
	"log"

	"github.com/Carmen-Shannon/oxy-postfx/engine/content"
	"github.com/Carmen-Shannon/oxy-postfx/engine/entity"
	"github.com/Carmen-Shannon/oxy-postfx/engine/light"
	"github.com/Carmen-Shannon/oxy-postfx/engine/model"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is what the compositor needs from the camera: matrices to draw with and a projection to
// refit on resize.
type Camera interface {
	entity.Viewer
	UpdateProjection(width, height int)
}

// Sky is the mesh and cube-mapped material drawn behind the scene.
type Sky struct {
	Mesh     model.Mesh
	Material material.Material
}

// Scene is the fixed content a FrameCompositor draws. Meshes and materials are owned elsewhere,
// normally by a content.Registry.
type Scene struct {
	Entities    []entity.Entity
	Camera      Camera
	Lights      light.Lights
	Sky         *Sky
	PostProcess material.Material
}

// Placement requests one entity by mesh and material name.
type Placement struct {
	Mesh     string
	Material string
	Position mgl32.Vec3
	Options  []entity.EntityBuilderOption
}

// DemoPlacements is the five-entity layout of the post-processing demo, all drawn with the brick
// material.
func DemoPlacements() []Placement {
	at := func(mesh string, x, y, z float32) Placement {
		return Placement{Mesh: mesh, Material: content.MaterialBrick, Position: mgl32.Vec3{x, y, z}}
	}
	return []Placement{
		at(content.MeshCube, 0.5, 0.5, 0),
		at(content.MeshCone, 0, 0, 0),
		at(content.MeshHelix, -1, 0, 0),
		at(content.MeshCube, 0, -0.5, 0),
		at(content.MeshTorus, 1, -1, 0),
	}
}

// SceneNames names the sky and post-process content BuildScene looks up.
type SceneNames struct {
	SkyMesh     string
	SkyMaterial string
	PostProcess string
}

// DemoSceneNames returns the names the demo content is registered under.
func DemoSceneNames() SceneNames {
	return SceneNames{
		SkyMesh:     content.MeshCube,
		SkyMaterial: content.MaterialSky,
		PostProcess: content.MaterialBlur,
	}
}

// BuildScene resolves placements and named content against reg. Anything that cannot be found is
// logged and left out: an entity is skipped, a missing sky leaves Sky nil and a missing
// post-process material leaves PostProcess nil.
//
// Parameters:
//   - reg: the content registry to look names up in
//   - cam: the camera to draw with
//   - lights: the frame's light block
//   - names: the sky and post-process content names
//   - placements: the entities to create
//
// Returns:
//   - Scene: the resolved scene
func BuildScene(reg content.Registry, cam Camera, lights light.Lights, names SceneNames, placements []Placement) Scene {
	scene := Scene{Camera: cam, Lights: lights}

	for i, p := range placements {
		mesh, err := reg.GetMesh(p.Mesh)
		if err != nil {
			log.Printf("[Compositor] skipping entity %d: %v", i, err)
			continue
		}
		mat, err := reg.GetMaterial(p.Material)
		if err != nil {
			log.Printf("[Compositor] skipping entity %d: %v", i, err)
			continue
		}
		scene.Entities = append(scene.Entities, entity.NewEntity(mesh, mat, p.Position, p.Options...))
	}

	skyMesh, meshErr := reg.GetMesh(names.SkyMesh)
	skyMat, matErr := reg.GetMaterial(names.SkyMaterial)
	switch {
	case meshErr != nil:
		log.Printf("[Compositor] no skybox: %v", meshErr)
	case matErr != nil:
		log.Printf("[Compositor] no skybox: %v", matErr)
	default:
		scene.Sky = &Sky{Mesh: skyMesh, Material: skyMat}
	}

	post, err := reg.GetMaterial(names.PostProcess)
	if err != nil {
		log.Printf("[Compositor] no post-process pass: %v", err)
	} else {
		scene.PostProcess = post
	}
	return scene
}
