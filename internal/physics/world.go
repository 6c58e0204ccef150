package physics

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/compute"
	"stillhour/internal/engine"
)

// contactTolerance is how far a surface may sit from the capsule while still
// counting as touching. Slightly above twice the contact margin so a body
// pushed flush against a wall keeps reporting the contact.
const contactTolerance = 0.025

// gpuPairThreshold is the dynamic body count where the GPU pair cull takes
// over from spatial hashing. Below it, dispatch and readback overhead
// outweigh the parallel scan.
const gpuPairThreshold = 750

// maxGPUBodies bounds the pair cull's GPU buffers.
const maxGPUBodies = 50000

// World owns every native body, ghost volume and character controller it was
// given, plus the contact notifier. It is passed explicitly to whoever needs
// physics access; there is no process-wide locator. All calls, whether
// stepping, queries or registry mutation, must come from the single
// simulation thread.
type World struct {
	Gravity  rl.Vector3
	Contacts *ContactNotifier

	bodies      []*RigidBody
	bodyByNode  map[*engine.Node]*RigidBody
	ghosts      []*GhostVolume
	ghostByNode map[*engine.Node]*GhostVolume
	controllers []*CharacterController
	ctrlByNode  map[*engine.Node]*CharacterController

	grid     *spatialGrid
	pairCull *compute.BroadPhase
	useGPU   bool

	fixedStep   float32
	maxSubsteps int
	accumulator float32

	debugViz bool
}

// NewWorld creates an empty physics world. fixedStep is the simulation
// increment in seconds; maxSubsteps bounds how many increments a single
// frame may consume.
func NewWorld(gravity rl.Vector3, fixedStep float32, maxSubsteps int) *World {
	if fixedStep <= 0 {
		fixedStep = 1.0 / 60.0
	}
	if maxSubsteps < 1 {
		maxSubsteps = 1
	}
	return &World{
		Gravity:     gravity,
		Contacts:    NewContactNotifier(),
		bodyByNode:  make(map[*engine.Node]*RigidBody),
		ghostByNode: make(map[*engine.Node]*GhostVolume),
		ctrlByNode:  make(map[*engine.Node]*CharacterController),
		grid:        newSpatialGrid(),
		fixedStep:   fixedStep,
		maxSubsteps: maxSubsteps,
	}
}

// FixedStep returns the simulation increment in seconds.
func (w *World) FixedStep() float32 {
	return w.fixedStep
}

// InitGPU attaches the compute pair cull. Call after compute.Initialize;
// without it the world stays on the spatial hash at every scale.
func (w *World) InitGPU() {
	if w.pairCull != nil {
		return
	}
	bp, err := compute.NewBroadPhase(maxGPUBodies, maxGPUBodies*20)
	if err != nil {
		log.Printf("physics: GPU pair cull unavailable: %v", err)
		return
	}
	w.pairCull = bp
	log.Printf("physics: GPU pair cull ready (takes over at %d dynamic bodies)", gpuPairThreshold)
}

// UsingGPU reports whether the last substep ran the GPU pair cull.
func (w *World) UsingGPU() bool {
	return w.useGPU
}

// Release frees GPU resources, if any were attached.
func (w *World) Release() {
	if w.pairCull != nil {
		w.pairCull.Release()
		w.pairCull = nil
	}
}

// Step advances the simulation by the real elapsed time. Time is consumed in
// fixed-size increments up to the substep bound; any remainder is retained
// for the next frame. When the bound is hit the leftover time is capped
// instead of spiraling.
func (w *World) Step(dt float32) {
	if dt < 0 {
		dt = 0
	}
	w.accumulator += dt

	steps := 0
	for w.accumulator >= w.fixedStep && steps < w.maxSubsteps {
		w.substep(w.fixedStep)
		w.accumulator -= w.fixedStep
		steps++
	}
	if limit := w.fixedStep * float32(w.maxSubsteps); w.accumulator > limit {
		w.accumulator = limit
	}
}

func (w *World) substep(dt float32) {
	w.Contacts.beginTick()

	// 1. Integrate dynamic bodies: gravity, damping, velocity.
	for _, b := range w.bodies {
		if b.Mass == 0 || b.Kinematic {
			continue
		}
		b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(w.Gravity, dt))
		if b.LinearDamping > 0 {
			damp := 1 - b.LinearDamping*dt
			if damp < 0 {
				damp = 0
			}
			b.Velocity = rl.Vector3Scale(b.Velocity, damp)
		}
		b.setPosition(rl.Vector3Add(b.Position(), rl.Vector3Scale(b.Velocity, dt)))
	}

	// 2. Dynamic vs dynamic. Spatial hashing carries the broad phase until
	// the dynamic count crosses the GPU threshold.
	dyn := 0
	for _, b := range w.bodies {
		if b.Mass > 0 {
			dyn++
		}
	}
	wasGPU := w.useGPU
	w.useGPU = w.pairCull != nil && dyn >= gpuPairThreshold
	if w.useGPU != wasGPU {
		state := "off"
		if w.useGPU {
			state = "on"
		}
		log.Printf("physics: GPU pair cull %s (%d dynamic bodies)", state, dyn)
	}
	if w.useGPU {
		w.stepPairsGPU()
	} else {
		w.stepPairsGrid()
	}

	// 3. Dynamic vs static (boxes/spheres, then planes).
	for _, b := range w.bodies {
		if b.Mass == 0 {
			continue
		}
		for _, s := range w.bodies {
			if s.Mass != 0 || s.Shape.Kind == ShapePlane {
				continue
			}
			w.resolveDynamicStatic(b, s)
		}
		for _, s := range w.bodies {
			if s.Mass != 0 || s.Shape.Kind != ShapePlane {
				continue
			}
			w.resolveDynamicPlane(b, s)
		}
	}

	// 4. Advance character controllers. This is where wall contacts for the
	// next tick's movement resolution get recorded.
	for _, c := range w.controllers {
		c.update(w, dt)
	}

	// 5. Refresh ghost volume overlaps.
	for _, g := range w.ghosts {
		w.updateGhostOverlaps(g)
	}
}

func (w *World) stepPairsGrid() {
	w.grid.rebuild(w.bodies)
	checked := make(map[[2]*RigidBody]bool)
	for _, b := range w.bodies {
		if b.Mass == 0 {
			continue
		}
		for _, other := range w.grid.neighbors(b) {
			if b == other {
				continue
			}
			if checked[[2]*RigidBody{b, other}] || checked[[2]*RigidBody{other, b}] {
				continue
			}
			checked[[2]*RigidBody{b, other}] = true
			w.resolveDynamicPair(b, other)
		}
	}
}

func (w *World) stepPairsGPU() {
	dynamics := make([]*RigidBody, 0, len(w.bodies))
	for _, b := range w.bodies {
		if b.Mass > 0 {
			dynamics = append(dynamics, b)
		}
	}
	pairs, err := w.pairCull.Pairs(boundingSpheres(dynamics))
	if err != nil {
		log.Printf("physics: GPU pair cull failed, reverting to spatial hash: %v", err)
		w.useGPU = false
		w.stepPairsGrid()
		return
	}
	for _, p := range pairs {
		if int(p.A) < len(dynamics) && int(p.B) < len(dynamics) {
			w.resolveDynamicPair(dynamics[p.A], dynamics[p.B])
		}
	}
}

// boundingSpheres packs each body's bounds for the GPU pair cull. Index
// order matches the input slice.
func boundingSpheres(bodies []*RigidBody) []compute.Sphere {
	spheres := make([]compute.Sphere, len(bodies))
	for i, b := range bodies {
		pos := b.Position()
		spheres[i] = compute.Sphere{
			X:      pos.X,
			Y:      pos.Y,
			Z:      pos.Z,
			Radius: b.Shape.BoundingRadius(),
		}
	}
	return spheres
}

// resolveDynamicPair pushes two overlapping dynamic bodies apart by mass
// ratio and exchanges a restitution impulse along the contact normal.
func (w *World) resolveDynamicPair(a, b *RigidBody) {
	push := a.worldAABB().Resolve(b.worldAABB())
	pushLen := rl.Vector3Length(push)
	if pushLen < 1e-4 {
		return
	}

	totalMass := a.Mass + b.Mass
	ratioA := b.Mass / totalMass
	ratioB := a.Mass / totalMass
	a.setPosition(rl.Vector3Add(a.Position(), rl.Vector3Scale(push, ratioA)))
	b.setPosition(rl.Vector3Subtract(b.Position(), rl.Vector3Scale(push, ratioB)))

	normal := rl.Vector3Scale(push, 1/pushLen)
	relVel := rl.Vector3Subtract(a.Velocity, b.Velocity)
	velAlongNormal := rl.Vector3DotProduct(relVel, normal)
	if velAlongNormal > 0 {
		return
	}

	e := (a.Restitution + b.Restitution) / 2
	j := -(1 + e) * velAlongNormal
	j /= 1/a.Mass + 1/b.Mass

	impulse := rl.Vector3Scale(normal, j)
	a.Velocity = rl.Vector3Add(a.Velocity, rl.Vector3Scale(impulse, 1/a.Mass))
	b.Velocity = rl.Vector3Subtract(b.Velocity, rl.Vector3Scale(impulse, 1/b.Mass))
}

// resolveDynamicStatic pushes a dynamic body fully out of a static one and
// reflects its velocity with the pair's restitution and friction.
func (w *World) resolveDynamicStatic(b, static *RigidBody) {
	push := b.worldAABB().Resolve(static.worldAABB())
	pushLen := rl.Vector3Length(push)
	if pushLen < 1e-4 {
		return
	}

	b.setPosition(rl.Vector3Add(b.Position(), push))
	normal := rl.Vector3Scale(push, 1/pushLen)
	w.reflectOffSurface(b, static, normal)
}

// resolveDynamicPlane handles a dynamic body against an infinite plane.
func (w *World) resolveDynamicPlane(b, plane *RigidBody) {
	n := plane.Shape.PlaneNormal()
	pen := planePenetration(b.Shape, b.Position(), n, plane.Shape.PlaneOffset())
	if pen <= 0 {
		return
	}
	b.setPosition(rl.Vector3Add(b.Position(), rl.Vector3Scale(n, pen)))
	w.reflectOffSurface(b, plane, n)
}

func (w *World) reflectOffSurface(b, surface *RigidBody, normal rl.Vector3) {
	velAlongNormal := rl.Vector3DotProduct(b.Velocity, normal)
	if velAlongNormal >= 0 {
		return
	}
	e := (b.Restitution + surface.Restitution) / 2
	reflect := rl.Vector3Scale(normal, -(1+e)*velAlongNormal)
	b.Velocity = rl.Vector3Add(b.Velocity, reflect)

	// Friction damps the tangential motion.
	f := 1 - (b.Friction+surface.Friction)/2*0.5
	if f < 0 {
		f = 0
	}
	b.Velocity.X *= f
	b.Velocity.Z *= f
}

// planePenetration returns how deep a shape centered at pos sits past the
// plane n·p = offset, margin included. Non-positive means no contact.
func planePenetration(s *Shape, pos rl.Vector3, n rl.Vector3, offset float32) float32 {
	var support float32
	switch s.Kind {
	case ShapeSphere:
		support = s.Dims[0]
	case ShapeCapsule:
		// Closest capsule segment endpoint to the plane.
		r := s.Dims[0]
		seg := s.Dims[1]/2 - r
		if seg < 0 {
			seg = 0
		}
		dTop := rl.Vector3DotProduct(n, rl.Vector3Add(pos, rl.Vector3{Y: seg})) - offset
		dBot := rl.Vector3DotProduct(n, rl.Vector3Add(pos, rl.Vector3{Y: -seg})) - offset
		d := dTop
		if dBot < d {
			d = dBot
		}
		return r + s.Margin - d
	default: // box and anything box-like
		h := s.HalfExtents()
		support = h.X*absf(n.X) + h.Y*absf(n.Y) + h.Z*absf(n.Z)
	}
	d := rl.Vector3DotProduct(n, pos) - offset
	return support + s.Margin - d
}

func (w *World) updateGhostOverlaps(g *GhostVolume) {
	g.overlaps = g.overlaps[:0]
	box := g.Shape.AABBAt(g.Node.Transform.Position)
	for _, b := range w.bodies {
		if b.Node == g.Node || b.Shape.Kind == ShapePlane {
			continue
		}
		if box.Intersects(b.worldAABB()) {
			g.overlaps = append(g.overlaps, b.Node)
		}
	}
	for _, c := range w.controllers {
		if box.Intersects(c.worldAABB()) {
			g.overlaps = append(g.overlaps, c.Node)
		}
	}
}

// SetDebugVisualization toggles wireframe rendering of all tracked shapes.
// No gameplay effect.
func (w *World) SetDebugVisualization(enabled bool) {
	w.debugViz = enabled
}

// DebugVisualization reports whether the wireframe overlay is on.
func (w *World) DebugVisualization() bool {
	return w.debugViz
}

// DrawDebug renders wireframes for every tracked shape. Call between
// rl.BeginMode3D/rl.EndMode3D. Does nothing unless the toggle is on.
func (w *World) DrawDebug() {
	if !w.debugViz {
		return
	}
	for _, b := range w.bodies {
		drawShapeWires(b.Shape, b.Position(), rl.Lime)
	}
	for _, g := range w.ghosts {
		drawShapeWires(g.Shape, g.Node.Transform.Position, rl.SkyBlue)
	}
	for _, c := range w.controllers {
		if c.Mode == ControllerFull {
			seg := c.segmentHalf()
			top := rl.Vector3Add(c.Node.Transform.Position, rl.Vector3{Y: seg})
			bottom := rl.Vector3Add(c.Node.Transform.Position, rl.Vector3{Y: -seg})
			rl.DrawCapsuleWires(bottom, top, c.Radius, 8, 4, rl.Orange)
		}
	}
}

func drawShapeWires(s *Shape, pos rl.Vector3, color rl.Color) {
	switch s.Kind {
	case ShapeBox:
		size := rl.Vector3Scale(s.HalfExtents(), 2)
		rl.DrawCubeWiresV(pos, size, color)
	case ShapeSphere:
		rl.DrawSphereWires(pos, s.Dims[0], 8, 8, color)
	case ShapeCapsule:
		r := s.Dims[0]
		seg := s.Dims[1]/2 - r
		if seg < 0 {
			seg = 0
		}
		top := rl.Vector3Add(pos, rl.Vector3{Y: seg})
		bottom := rl.Vector3Add(pos, rl.Vector3{Y: -seg})
		rl.DrawCapsuleWires(bottom, top, r, 8, 4, color)
	case ShapePlane:
		// Cross marker at the point on the plane closest to the node.
		n := s.PlaneNormal()
		d := rl.Vector3DotProduct(n, pos) - s.PlaneOffset()
		center := rl.Vector3Subtract(pos, rl.Vector3Scale(n, d))
		rl.DrawLine3D(rl.Vector3Add(center, rl.Vector3{X: -2}), rl.Vector3Add(center, rl.Vector3{X: 2}), color)
		rl.DrawLine3D(rl.Vector3Add(center, rl.Vector3{Z: -2}), rl.Vector3Add(center, rl.Vector3{Z: 2}), color)
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
