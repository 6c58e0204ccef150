package physics

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"

	"stillhour/internal/engine"
)

// ErrControllerDegraded is the advisory returned when the capsule controller
// primitive could not be built and the upright-locked rigid-body fallback was
// engaged instead. The returned handle is still usable; callers may log and
// continue with reduced fidelity (no step-up, no slope limiting).
var ErrControllerDegraded = errors.New("character controller degraded")

type ControllerMode int

const (
	ControllerFull ControllerMode = iota
	ControllerDegraded
)

const (
	defaultJumpSpeed   = 10.0
	defaultFallSpeed   = 55.0
	defaultMaxSlopeCos = 0.7 // cos(45°); steeper surfaces are walls, not floor

	// Fallback body tuning, approximating controller feel with a plain
	// dynamic body: no tipping, hard deceleration, no bounce.
	fallbackMass    = 80.0
	fallbackDamping = 0.9
)

// CharacterController is the player locomotion handle. Mode selects the
// backing primitive: Full is the native capsule mover with step-up and slope
// handling, Degraded is an upright-locked dynamic body approximating it.
type CharacterController struct {
	Node *engine.Node
	Mode ControllerMode

	Radius      float32
	Height      float32
	StepHeight  float32
	SegmentLen  float32 // inner capsule segment, max(height-2r, 0.1)
	JumpSpeed   float32
	FallSpeed   float32
	MaxSlopeCos float32
	CCDRadius   float32

	// Degraded backing body; nil in Full mode.
	Body *RigidBody

	shape     *Shape // capsule; nil in Degraded mode
	velocityY float32
	grounded  bool
}

// CreateCharacterController builds a locomotion controller for the node.
// It never fails: if the capsule primitive cannot be constructed the
// degraded fallback is engaged and ErrControllerDegraded is returned
// alongside a usable handle. Exactly one controller exists per node.
func (w *World) CreateCharacterController(node *engine.Node, radius, height, stepHeight float32) (*CharacterController, error) {
	if prior, ok := w.ctrlByNode[node]; ok {
		log.Printf("physics: replacing character controller for node %q", node.Name)
		w.RemoveCharacterController(prior)
	}

	c, err := newFullController(node, radius, height, stepHeight)
	if err != nil {
		log.Printf("physics: capsule controller for node %q unavailable (%v), using rigid-body fallback", node.Name, err)
		c = w.newDegradedController(node, radius, height, stepHeight)
		err = errors.Wrapf(ErrControllerDegraded, "node %q", node.Name)
	} else {
		err = nil
	}

	w.controllers = append(w.controllers, c)
	w.ctrlByNode[node] = c
	return c, err
}

func newFullController(node *engine.Node, radius, height, stepHeight float32) (*CharacterController, error) {
	shape, err := BuildShape(CapsuleShape(radius, height))
	if err != nil {
		return nil, err
	}
	seg := height - 2*radius
	if seg < 0.1 {
		seg = 0.1
	}
	return &CharacterController{
		Node:        node,
		Mode:        ControllerFull,
		Radius:      radius,
		Height:      height,
		StepHeight:  stepHeight,
		SegmentLen:  seg,
		JumpSpeed:   defaultJumpSpeed,
		FallSpeed:   defaultFallSpeed,
		MaxSlopeCos: defaultMaxSlopeCos,
		CCDRadius:   radius * 0.9,
		shape:       shape,
	}, nil
}

// newDegradedController always returns a usable handle: dimensions are
// clamped to sane minimums and the backing shape is assembled directly.
func (w *World) newDegradedController(node *engine.Node, radius, height, stepHeight float32) *CharacterController {
	if radius < 0.05 {
		radius = 0.05
	}
	if height < 2*radius {
		height = 2 * radius
	}

	body := &RigidBody{
		Node:          node,
		Shape:         &Shape{Kind: ShapeBox, Dims: []float32{radius, height / 2, radius}, Margin: ContactMargin},
		Mass:          fallbackMass,
		Friction:      0.8,
		Restitution:   0,
		Group:         1,
		Mask:          MaskAll,
		LinearDamping: fallbackDamping,
		CCDRadius:     radius * 0.9,
		angularLocked: true,
	}
	if prior, ok := w.bodyByNode[node]; ok {
		w.RemoveRigidBody(prior)
	}
	w.bodies = append(w.bodies, body)
	w.bodyByNode[node] = body

	seg := height - 2*radius
	if seg < 0.1 {
		seg = 0.1
	}
	return &CharacterController{
		Node:        node,
		Mode:        ControllerDegraded,
		Radius:      radius,
		Height:      height,
		StepHeight:  stepHeight,
		SegmentLen:  seg,
		JumpSpeed:   defaultJumpSpeed,
		FallSpeed:   defaultFallSpeed,
		MaxSlopeCos: defaultMaxSlopeCos,
		CCDRadius:   radius * 0.9,
		Body:        body,
	}
}

// RemoveCharacterController detaches the controller and, in degraded mode,
// its backing body. Removing an unregistered handle is a logged no-op.
func (w *World) RemoveCharacterController(c *CharacterController) {
	if c == nil {
		return
	}
	if registered, ok := w.ctrlByNode[c.Node]; !ok || registered != c {
		log.Printf("physics: remove of unregistered character controller for node %q ignored", c.Node.Name)
		return
	}
	delete(w.ctrlByNode, c.Node)
	for i, other := range w.controllers {
		if other == c {
			w.controllers = append(w.controllers[:i], w.controllers[i+1:]...)
			break
		}
	}
	if c.Body != nil {
		w.RemoveRigidBody(c.Body)
	}
}

// ControllerFor returns the registered controller for a node, or nil.
func (w *World) ControllerFor(node *engine.Node) *CharacterController {
	return w.ctrlByNode[node]
}

// Grounded reports whether the controller stands on walkable support.
func (c *CharacterController) Grounded() bool {
	return c.grounded
}

func (c *CharacterController) segmentHalf() float32 {
	return c.SegmentLen / 2
}

// worldAABB encloses the capsule (or the fallback body's box).
func (c *CharacterController) worldAABB() AABB {
	if c.Mode == ControllerDegraded {
		return c.Body.worldAABB()
	}
	return NewAABBFromCenter(c.Node.Transform.Position, c.boundsSize())
}

// boundsSize is the full extent of the capsule's enclosing box.
func (c *CharacterController) boundsSize() rl.Vector3 {
	return rl.Vector3{X: 2 * c.Radius, Y: c.SegmentLen + 2*c.Radius, Z: 2 * c.Radius}
}

// Move submits a displacement for this tick. Full mode steps the capsule
// through the world immediately; Degraded mode converts the displacement
// into an equivalent linear velocity on the backing body. Vertical motion
// (gravity, falling) stays owned by the controller itself.
func (c *CharacterController) Move(w *World, displacement rl.Vector3) {
	switch c.Mode {
	case ControllerFull:
		horizontal := rl.Vector3{X: displacement.X, Z: displacement.Z}
		if horizontal.X != 0 || horizontal.Z != 0 {
			c.moveBy(w, c.ccdClamp(w, horizontal))
		}
	case ControllerDegraded:
		inv := 1 / w.fixedStep
		c.Body.Velocity.X = displacement.X * inv
		c.Body.Velocity.Z = displacement.Z * inv
	}
}

// Jump requests a jump. Both modes gate on ground contact; airborne requests
// are ignored.
func (c *CharacterController) Jump() {
	switch c.Mode {
	case ControllerFull:
		if c.grounded {
			c.velocityY = c.JumpSpeed
			c.grounded = false
		}
	case ControllerDegraded:
		if c.grounded {
			c.Body.Velocity.Y = c.JumpSpeed
			c.grounded = false
		}
	}
}

// ccdClamp sweeps the capsule along large displacements and shortens them to
// the first blocking hit, so a fast mover cannot tunnel through thin walls.
func (c *CharacterController) ccdClamp(w *World, motion rl.Vector3) rl.Vector3 {
	dist := rl.Vector3Length(motion)
	if dist <= c.CCDRadius {
		return motion
	}
	from := c.Node.Transform.Position
	to := rl.Vector3Add(from, motion)
	hit, ok := w.Sweep(c.shape, from, to)
	if !ok {
		return motion
	}
	// Stop a margin short of the hit so the regular resolution takes over.
	allowed := hit.Distance - c.shape.Margin
	if allowed < 0 {
		allowed = 0
	}
	return rl.Vector3Scale(rl.Vector3Scale(motion, 1/dist), allowed)
}

// moveBy applies a motion to the capsule and resolves it against the world:
// static geometry blocks and may be stepped up, dynamic bodies get shoved
// out of the way.
func (c *CharacterController) moveBy(w *World, motion rl.Vector3) {
	pos := rl.Vector3Add(c.Node.Transform.Position, motion)
	c.Node.Transform.Position = pos

	for _, s := range w.bodies {
		if s.Node == c.Node {
			continue
		}
		if s.Mass > 0 {
			c.pushBody(s)
			continue
		}
		if s.Shape.Kind == ShapePlane {
			c.resolvePlane(s)
			continue
		}
		staticBox := s.worldAABB()
		push := c.worldAABB().Resolve(staticBox)
		if push.X == 0 && push.Y == 0 && push.Z == 0 {
			continue
		}

		// Step-up: a purely horizontal block whose top edge sits within
		// StepHeight of the feet may be climbed instead of slid along.
		if motion.Y == 0 && push.Y == 0 {
			feetY := c.Node.Transform.Position.Y - c.segmentHalf() - c.Radius
			rise := staticBox.Max.Y - feetY
			if rise > 0 && rise <= c.StepHeight {
				testPos := c.Node.Transform.Position
				testPos.Y += rise + 0.01
				testBox := NewAABBFromCenter(testPos, c.boundsSize())
				if !testBox.Intersects(staticBox) {
					c.Node.Transform.Position = testPos
					c.grounded = true
					continue
				}
			}
		}

		c.Node.Transform.Position = rl.Vector3Add(c.Node.Transform.Position, push)
		if push.Y > 0 {
			c.grounded = true
			c.velocityY = 0
		}
		if push.Y < 0 && c.velocityY > 0 {
			c.velocityY = 0
		}
	}
}

// pushBody resolves the capsule against a dynamic body. Horizontal overlaps
// shove the body out of the capsule's path; vertical overlaps move the
// capsule instead, so the player stands on props rather than driving them
// through the floor.
func (c *CharacterController) pushBody(s *RigidBody) {
	push := c.worldAABB().Resolve(s.worldAABB())
	if push.X == 0 && push.Y == 0 && push.Z == 0 {
		return
	}
	if push.Y != 0 {
		c.Node.Transform.Position = rl.Vector3Add(c.Node.Transform.Position, push)
		if push.Y > 0 {
			c.grounded = true
			if c.velocityY < 0 {
				c.velocityY = 0
			}
		}
		if push.Y < 0 && c.velocityY > 0 {
			c.velocityY = 0
		}
		return
	}
	s.setPosition(rl.Vector3Subtract(s.Position(), push))
}

// resolvePlane pushes the capsule out of an infinite plane and classifies
// the surface by slope.
func (c *CharacterController) resolvePlane(plane *RigidBody) {
	n := plane.Shape.PlaneNormal()
	pen := capsulePlanePenetration(c, n, plane.Shape.PlaneOffset())
	if pen <= 0 {
		return
	}
	c.Node.Transform.Position = rl.Vector3Add(c.Node.Transform.Position, rl.Vector3Scale(n, pen))
	if n.Y >= c.MaxSlopeCos {
		c.grounded = true
		if c.velocityY < 0 {
			c.velocityY = 0
		}
	}
}

func capsulePlanePenetration(c *CharacterController, n rl.Vector3, offset float32) float32 {
	pos := c.Node.Transform.Position
	seg := c.segmentHalf()
	dTop := rl.Vector3DotProduct(n, rl.Vector3Add(pos, rl.Vector3{Y: seg})) - offset
	dBot := rl.Vector3DotProduct(n, rl.Vector3Add(pos, rl.Vector3{Y: -seg})) - offset
	d := dTop
	if dBot < d {
		d = dBot
	}
	return c.Radius + ContactMargin - d
}

// update advances the controller one fixed step: gravity and vertical motion
// for the Full variant, a fresh ground scan for the Degraded one (its body
// integrates with the dynamics pass), then the wall-contact scan feeding the
// notifier.
func (c *CharacterController) update(w *World, dt float32) {
	if c.Mode == ControllerFull {
		c.velocityY += w.Gravity.Y * dt
		if c.velocityY < -c.FallSpeed {
			c.velocityY = -c.FallSpeed
		}
		if c.velocityY != 0 {
			c.grounded = false
			c.moveBy(w, rl.Vector3{Y: c.velocityY * dt})
		}
	} else {
		c.refreshFallbackGround(w)
	}
	c.recordWallContacts(w)
}

// refreshFallbackGround re-detects support under the fallback body. The
// dynamics pass has already resolved it against the world, so standing means
// a walkable surface sits within the contact tolerance below.
func (c *CharacterController) refreshFallbackGround(w *World) {
	c.grounded = false
	pos := c.Body.Position()
	box := c.Body.worldAABB().Expand(contactTolerance)

	for _, s := range w.bodies {
		if s.Mass != 0 || s.Node == c.Node {
			continue
		}
		if s.Shape.Kind == ShapePlane {
			n := s.Shape.PlaneNormal()
			if n.Y < c.MaxSlopeCos {
				continue
			}
			if planePenetration(c.Body.Shape, pos, n, s.Shape.PlaneOffset())+contactTolerance > 0 {
				c.grounded = true
				return
			}
			continue
		}
		if push := box.Resolve(s.worldAABB()); push.Y > 0 {
			c.grounded = true
			return
		}
	}
}

// recordWallContacts reports every static surface the controller is pressed
// against whose slope classifies as wall. These contacts drive the next
// tick's movement resolution.
func (c *CharacterController) recordWallContacts(w *World) {
	box := c.worldAABB().Expand(contactTolerance)
	pos := c.Node.Transform.Position

	for _, s := range w.bodies {
		if s.Mass != 0 || s.Node == c.Node {
			continue
		}
		var normal rl.Vector3
		var position rl.Vector3
		if s.Shape.Kind == ShapePlane {
			n := s.Shape.PlaneNormal()
			if capsulePlanePenetration(c, n, s.Shape.PlaneOffset())+contactTolerance <= 0 {
				continue
			}
			normal = n
			position = rl.Vector3Subtract(pos, rl.Vector3Scale(n, c.Radius))
		} else {
			push := box.Resolve(s.worldAABB())
			pushLen := rl.Vector3Length(push)
			if pushLen < 1e-5 {
				continue
			}
			normal = rl.Vector3Scale(push, 1/pushLen)
			position = rl.Vector3Subtract(pos, rl.Vector3Scale(normal, c.Radius))
		}

		if absf(normal.Y) >= c.MaxSlopeCos {
			continue // floor or ceiling, not a wall
		}
		w.Contacts.Record(ContactEvent{
			Subject:  c.Node,
			Other:    s.Node,
			Normal:   normal,
			Position: position,
		})
	}
}
