package model

import (
	"math"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is CPU-side mesh data ready for NewMesh.
type Geometry struct {
	Vertices []common.Vertex
	Indices  []uint32
}

// Cube builds a unit cube centred on the origin with one quad of 4 vertices per face.
func Cube() Geometry {
	faces := []struct{ n, u, v mgl32.Vec3 }{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	var g Geometry
	for _, f := range faces {
		base := uint32(len(g.Vertices))
		center := f.n.Mul(0.5)
		for i, c := range corners {
			p := center.Add(f.u.Mul(0.5 * c[0])).Add(f.v.Mul(0.5 * c[1]))
			g.Vertices = append(g.Vertices, common.Vertex{Position: p, Normal: f.n, UV: uvs[i]})
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g.finish()
}

// Cone builds a cone of height 1 and base radius 0.5 with its apex on +Y.
func Cone(segments int) Geometry {
	segments = max(segments, 3)
	var g Geometry
	slope := float32(0.5) // radius / height

	for i := 0; i < segments; i++ {
		a0 := 2 * math.Pi * float64(i) / float64(segments)
		a1 := 2 * math.Pi * float64(i+1) / float64(segments)
		mid := (a0 + a1) / 2
		base := uint32(len(g.Vertices))

		ring := func(a float64) mgl32.Vec3 {
			return mgl32.Vec3{0.5 * float32(math.Cos(a)), -0.5, 0.5 * float32(math.Sin(a))}
		}
		slant := func(a float64) mgl32.Vec3 {
			return mgl32.Vec3{float32(math.Cos(a)), slope, float32(math.Sin(a))}.Normalize()
		}
		u0 := float32(i) / float32(segments)
		u1 := float32(i+1) / float32(segments)

		g.Vertices = append(g.Vertices,
			common.Vertex{Position: mgl32.Vec3{0, 0.5, 0}, Normal: slant(mid), UV: [2]float32{(u0 + u1) / 2, 0}},
			common.Vertex{Position: ring(a0), Normal: slant(a0), UV: [2]float32{u0, 1}},
			common.Vertex{Position: ring(a1), Normal: slant(a1), UV: [2]float32{u1, 1}},
		)
		g.Indices = append(g.Indices, base, base+1, base+2)
	}

	// base cap
	center := uint32(len(g.Vertices))
	down := mgl32.Vec3{0, -1, 0}
	g.Vertices = append(g.Vertices, common.Vertex{Position: mgl32.Vec3{0, -0.5, 0}, Normal: down, UV: [2]float32{0.5, 0.5}})
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		c, s := float32(math.Cos(a)), float32(math.Sin(a))
		g.Vertices = append(g.Vertices, common.Vertex{
			Position: mgl32.Vec3{0.5 * c, -0.5, 0.5 * s},
			Normal:   down,
			UV:       [2]float32{0.5 + 0.5*c, 0.5 + 0.5*s},
		})
	}
	for i := uint32(0); i < uint32(segments); i++ {
		g.Indices = append(g.Indices, center, center+1+i, center+2+i)
	}
	return g.finish()
}

// Torus builds a ring of major radius 0.4 and tube radius 0.15 lying in the XZ plane.
func Torus(rings, sides int) Geometry {
	const major, minor = 0.4, 0.15
	return sweep(rings, sides, func(u, v float64) (mgl32.Vec3, mgl32.Vec3) {
		cu, su := math.Cos(u), math.Sin(u)
		cv, sv := math.Cos(v), math.Sin(v)
		n := mgl32.Vec3{float32(cv * cu), float32(sv), float32(cv * su)}
		p := mgl32.Vec3{float32((major + minor*cv) * cu), float32(minor * sv), float32((major + minor*cv) * su)}
		return p, n
	})
}

// Helix builds a tube wound two turns around the Y axis.
func Helix(steps, sides int) Geometry {
	const (
		radius = 0.3
		rise   = 0.06
		tube   = 0.08
		turns  = 2
	)
	return sweep(steps, sides, func(u, v float64) (mgl32.Vec3, mgl32.Vec3) {
		t := u * turns
		center := mgl32.Vec3{float32(radius * math.Cos(t)), float32(rise*t - rise*math.Pi*turns), float32(radius * math.Sin(t))}
		tangent := mgl32.Vec3{float32(-radius * math.Sin(t)), rise, float32(radius * math.Cos(t))}.Normalize()
		inward := mgl32.Vec3{float32(-math.Cos(t)), 0, float32(-math.Sin(t))}
		binormal := tangent.Cross(inward)
		n := inward.Mul(float32(math.Cos(v))).Add(binormal.Mul(float32(math.Sin(v))))
		return center.Add(n.Mul(tube)), n
	})
}

// sweep tessellates a surface parameterised over u, v in [0, 2π] into a grid of quads.
func sweep(uSegments, vSegments int, f func(u, v float64) (position, normal mgl32.Vec3)) Geometry {
	uSegments, vSegments = max(uSegments, 3), max(vSegments, 3)
	var g Geometry
	for i := 0; i <= uSegments; i++ {
		for j := 0; j <= vSegments; j++ {
			u := 2 * math.Pi * float64(i) / float64(uSegments)
			v := 2 * math.Pi * float64(j) / float64(vSegments)
			p, n := f(u, v)
			g.Vertices = append(g.Vertices, common.Vertex{
				Position: p,
				Normal:   n,
				UV:       [2]float32{float32(i) / float32(uSegments) * 4, float32(j) / float32(vSegments)},
			})
		}
	}
	stride := uint32(vSegments + 1)
	for i := uint32(0); i < uint32(uSegments); i++ {
		for j := uint32(0); j < uint32(vSegments); j++ {
			a := i*stride + j
			b := a + stride
			g.Indices = append(g.Indices, a, b, b+1, a, b+1, a+1)
		}
	}
	return g.finish()
}

// finish makes every triangle wind counter-clockwise around its vertex normals and fills in
// tangents.
func (g Geometry) finish() Geometry {
	for t := 0; t+2 < len(g.Indices); t += 3 {
		a, b, c := g.Vertices[g.Indices[t]], g.Vertices[g.Indices[t+1]], g.Vertices[g.Indices[t+2]]
		face := faceNormal(a, b, c)
		n := mgl32.Vec3(a.Normal).Add(b.Normal).Add(c.Normal)
		if face.Dot(n) < 0 {
			g.Indices[t+1], g.Indices[t+2] = g.Indices[t+2], g.Indices[t+1]
		}
	}
	computeTangents(g.Vertices, g.Indices)
	return g
}

func faceNormal(a, b, c common.Vertex) mgl32.Vec3 {
	pa, pb, pc := mgl32.Vec3(a.Position), mgl32.Vec3(b.Position), mgl32.Vec3(c.Position)
	return pb.Sub(pa).Cross(pc.Sub(pa))
}

// computeTangents accumulates per-triangle tangents from UV derivatives and orthogonalises them
// against each vertex normal.
func computeTangents(vertices []common.Vertex, indices []uint32) {
	acc := make([]mgl32.Vec3, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		v0, v1, v2 := vertices[i0], vertices[i1], vertices[i2]

		e1 := mgl32.Vec3(v1.Position).Sub(v0.Position)
		e2 := mgl32.Vec3(v2.Position).Sub(v0.Position)
		du1, dv1 := v1.UV[0]-v0.UV[0], v1.UV[1]-v0.UV[1]
		du2, dv2 := v2.UV[0]-v0.UV[0], v2.UV[1]-v0.UV[1]

		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		tangent := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(1 / det)
		acc[i0] = acc[i0].Add(tangent)
		acc[i1] = acc[i1].Add(tangent)
		acc[i2] = acc[i2].Add(tangent)
	}

	for i := range vertices {
		n := mgl32.Vec3(vertices[i].Normal)
		t := acc[i].Sub(n.Mul(n.Dot(acc[i])))
		if t.Len() < 1e-6 {
			t = anyPerpendicular(n)
		}
		vertices[i].Tangent = t.Normalize()
	}
}

func anyPerpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math.Abs(float64(n.X())) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return n.Cross(axis)
}
