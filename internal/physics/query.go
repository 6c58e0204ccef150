package physics

import (
	"log"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/engine"
)

// QueryResult is the outcome of a ray or sweep query. Queries never mutate
// world state; absence of a hit is reported via the bool return, and internal
// query failures also surface as "no hit".
type QueryResult struct {
	Position rl.Vector3
	Normal   rl.Vector3
	Node     *engine.Node
	Distance float32
}

// Raycast returns the closest blocking hit along the segment from->to, or
// false when nothing intervenes. mask filters by collision group; pass
// MaskAll to hit everything. Ghost volumes never block rays.
func (w *World) Raycast(from, to rl.Vector3, mask uint32) (QueryResult, bool) {
	delta := rl.Vector3Subtract(to, from)
	maxDist := rl.Vector3Length(delta)
	if maxDist < 1e-6 {
		log.Printf("physics: degenerate raycast segment ignored")
		return QueryResult{}, false
	}
	dir := rl.Vector3Scale(delta, 1/maxDist)

	closest := QueryResult{Distance: maxDist}
	hit := false
	for _, b := range w.bodies {
		if b.Group&mask == 0 {
			continue
		}
		if res, ok := raycastShape(b.Shape, b.Position(), from, dir, closest.Distance); ok {
			res.Node = b.Node
			closest = res
			hit = true
		}
	}
	return closest, hit
}

// Sweep moves a volume along the path from->to and returns the closest
// blocking hit. The shape is swept as its bounding sphere: the world's
// geometry is inflated by that radius and ray-tested, which catches the
// corner clips a point ray would miss.
func (w *World) Sweep(shape *Shape, from, to rl.Vector3) (QueryResult, bool) {
	if shape == nil {
		log.Printf("physics: sweep with nil shape ignored")
		return QueryResult{}, false
	}
	delta := rl.Vector3Subtract(to, from)
	maxDist := rl.Vector3Length(delta)
	if maxDist < 1e-6 {
		return QueryResult{}, false
	}
	dir := rl.Vector3Scale(delta, 1/maxDist)
	radius := shape.BoundingRadius()

	closest := QueryResult{Distance: maxDist}
	hit := false
	for _, b := range w.bodies {
		var res QueryResult
		var ok bool
		switch b.Shape.Kind {
		case ShapeSphere:
			res, ok = raycastSphere(b.Position(), b.Shape.Dims[0]+radius, from, dir, closest.Distance)
		case ShapePlane:
			n := b.Shape.PlaneNormal()
			res, ok = raycastPlane(n, b.Shape.PlaneOffset()+radius, from, dir, closest.Distance)
		default:
			res, ok = raycastAABB(b.worldAABB().Expand(radius), from, dir, closest.Distance)
		}
		if ok {
			res.Node = b.Node
			closest = res
			hit = true
		}
	}
	return closest, hit
}

func raycastShape(s *Shape, pos, from, dir rl.Vector3, maxDist float32) (QueryResult, bool) {
	switch s.Kind {
	case ShapeBox:
		return raycastAABB(s.AABBAt(pos), from, dir, maxDist)
	case ShapeSphere:
		return raycastSphere(pos, s.Dims[0], from, dir, maxDist)
	case ShapeCapsule:
		return raycastCapsule(pos, s.Dims[0], s.Dims[1], from, dir, maxDist)
	case ShapePlane:
		return raycastPlane(s.PlaneNormal(), s.PlaneOffset(), from, dir, maxDist)
	}
	return QueryResult{}, false
}

// raycastAABB is the classic slab test.
func raycastAABB(box AABB, origin, dir rl.Vector3, maxDist float32) (QueryResult, bool) {
	tmin := float32(-1e30)
	tmax := float32(1e30)

	// X slab
	if dir.X != 0 {
		t1 := (box.Min.X - origin.X) / dir.X
		t2 := (box.Max.X - origin.X) / dir.X
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = t1
		tmax = t2
	} else if origin.X < box.Min.X || origin.X > box.Max.X {
		return QueryResult{}, false
	}

	// Y slab
	if dir.Y != 0 {
		t1 := (box.Min.Y - origin.Y) / dir.Y
		t2 := (box.Max.Y - origin.Y) / dir.Y
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if origin.Y < box.Min.Y || origin.Y > box.Max.Y {
		return QueryResult{}, false
	}

	// Z slab
	if dir.Z != 0 {
		t1 := (box.Min.Z - origin.Z) / dir.Z
		t2 := (box.Max.Z - origin.Z) / dir.Z
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if origin.Z < box.Min.Z || origin.Z > box.Max.Z {
		return QueryResult{}, false
	}

	if tmin > tmax || tmax < 0 {
		return QueryResult{}, false
	}
	t := tmin
	if t < 0 {
		t = tmax
	}
	if t < 0 || t > maxDist {
		return QueryResult{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(dir, t))

	// Normal from the face that was hit
	var normal rl.Vector3
	const eps = 0.001
	switch {
	case absf(point.X-box.Min.X) < eps:
		normal = rl.Vector3{X: -1}
	case absf(point.X-box.Max.X) < eps:
		normal = rl.Vector3{X: 1}
	case absf(point.Y-box.Min.Y) < eps:
		normal = rl.Vector3{Y: -1}
	case absf(point.Y-box.Max.Y) < eps:
		normal = rl.Vector3{Y: 1}
	case absf(point.Z-box.Min.Z) < eps:
		normal = rl.Vector3{Z: -1}
	default:
		normal = rl.Vector3{Z: 1}
	}

	return QueryResult{Position: point, Normal: normal, Distance: t}, true
}

func raycastSphere(center rl.Vector3, radius float32, origin, dir rl.Vector3, maxDist float32) (QueryResult, bool) {
	oc := rl.Vector3Subtract(origin, center)
	b := 2 * rl.Vector3DotProduct(oc, dir)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius

	disc := b*b - 4*c
	if disc < 0 {
		return QueryResult{}, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t := (-b - sq) / 2
	if t < 0 {
		t = (-b + sq) / 2
	}
	if t < 0 || t > maxDist {
		return QueryResult{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(dir, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))
	return QueryResult{Position: point, Normal: normal, Distance: t}, true
}

func raycastPlane(n rl.Vector3, offset float32, origin, dir rl.Vector3, maxDist float32) (QueryResult, bool) {
	denom := rl.Vector3DotProduct(n, dir)
	if absf(denom) < 1e-6 {
		return QueryResult{}, false
	}
	t := (offset - rl.Vector3DotProduct(n, origin)) / denom
	if t < 0 || t > maxDist {
		return QueryResult{}, false
	}
	normal := n
	if denom > 0 {
		normal = rl.Vector3Scale(n, -1) // hit the back face
	}
	return QueryResult{
		Position: rl.Vector3Add(origin, rl.Vector3Scale(dir, t)),
		Normal:   normal,
		Distance: t,
	}, true
}

// raycastCapsule tests a vertical capsule: the cylindrical side in the XZ
// plane clipped to the inner segment, then the two cap spheres.
func raycastCapsule(center rl.Vector3, radius, height float32, origin, dir rl.Vector3, maxDist float32) (QueryResult, bool) {
	seg := height/2 - radius
	if seg < 0 {
		seg = 0
	}
	top := rl.Vector3Add(center, rl.Vector3{Y: seg})
	bottom := rl.Vector3Add(center, rl.Vector3{Y: -seg})

	best := QueryResult{Distance: maxDist}
	hit := false

	// Cylinder side: project onto XZ.
	ox := origin.X - center.X
	oz := origin.Z - center.Z
	a := dir.X*dir.X + dir.Z*dir.Z
	if a > 1e-8 {
		b := 2 * (ox*dir.X + oz*dir.Z)
		c := ox*ox + oz*oz - radius*radius
		disc := b*b - 4*a*c
		if disc >= 0 {
			sq := float32(math.Sqrt(float64(disc)))
			for _, t := range [2]float32{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
				if t < 0 || t > best.Distance {
					continue
				}
				p := rl.Vector3Add(origin, rl.Vector3Scale(dir, t))
				if p.Y < bottom.Y || p.Y > top.Y {
					continue
				}
				n := rl.Vector3Normalize(rl.Vector3{X: p.X - center.X, Z: p.Z - center.Z})
				best = QueryResult{Position: p, Normal: n, Distance: t}
				hit = true
				break
			}
		}
	}

	for _, capCenter := range [2]rl.Vector3{top, bottom} {
		if res, ok := raycastSphere(capCenter, radius, origin, dir, best.Distance); ok {
			best = res
			hit = true
		}
	}
	return best, hit
}
