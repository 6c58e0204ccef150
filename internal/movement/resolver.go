// Package movement turns directional intent into per-tick displacement,
// sliding the player along live wall contacts.
package movement

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/physics"
)

const (
	// intoWallEpsilon is the dot-product threshold below which motion counts
	// as aimed into the wall.
	intoWallEpsilon = 1e-3
	// minMoveEpsilon kills residual displacements that would only jitter
	// against a marginal contact.
	minMoveEpsilon = 1e-3
)

// Intent is one tick's directional input, produced externally and consumed
// exactly once by Resolve.
type Intent struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Sprint   bool
	Crouch   bool
	Yaw      float32 // camera heading in degrees
}

// Speeds are the scalar movement speeds in units per second.
type Speeds struct {
	Walk   float32
	Sprint float32
	Crouch float32
}

// Resolver owns the per-tick slide computation for one controlled entity.
// It reads the world's contact notifier (this tick's wall touches) and
// submits the resolved displacement to the character controller. Vertical
// motion never originates here: gravity, step-up and fall speed belong to
// the controller, and jumps are triggered independently.
type Resolver struct {
	world      *physics.World
	controller *physics.CharacterController
	speeds     Speeds

	lastDir rl.Vector3 // last non-zero movement direction, for interaction rays
}

func NewResolver(w *physics.World, c *physics.CharacterController, speeds Speeds) *Resolver {
	return &Resolver{world: w, controller: c, speeds: speeds}
}

// headingVectors derives the horizontal forward/right axes from the camera
// yaw. "Forward" is always camera-forward projected onto the XZ plane.
func headingVectors(yawDeg float32) (forward, right rl.Vector3) {
	yaw := float64(yawDeg) * math.Pi / 180
	forward = rl.Vector3{X: float32(math.Cos(yaw)), Z: float32(math.Sin(yaw))}
	right = rl.Vector3{X: float32(math.Sin(yaw)), Z: float32(-math.Cos(yaw))}
	return
}

// Resolve computes the final displacement for this tick and submits it to
// the controller. The returned vector is what was submitted.
func (r *Resolver) Resolve(intent Intent, dt float32) rl.Vector3 {
	// Desired world-space direction from the directional flags, renormalized
	// so diagonals don't move faster.
	forward, right := headingVectors(intent.Yaw)
	var dir rl.Vector3
	if intent.Forward {
		dir = rl.Vector3Add(dir, forward)
	}
	if intent.Backward {
		dir = rl.Vector3Subtract(dir, forward)
	}
	if intent.Left {
		dir = rl.Vector3Add(dir, right)
	}
	if intent.Right {
		dir = rl.Vector3Subtract(dir, right)
	}
	if l := rl.Vector3Length(dir); l > 0 {
		dir = rl.Vector3Scale(dir, 1/l)
		r.lastDir = dir
	}

	// Crouch takes precedence over sprint.
	speed := r.speeds.Walk
	if intent.Crouch {
		speed = r.speeds.Crouch
	} else if intent.Sprint {
		speed = r.speeds.Sprint
	}

	// This tick's wall contacts for the controlled entity, consumed once.
	var normals []rl.Vector3
	for _, ev := range r.world.Contacts.Consume() {
		if ev.Subject == r.controller.Node {
			normals = append(normals, ev.Normal)
		}
	}

	if len(normals) == 0 {
		disp := rl.Vector3Scale(dir, speed*dt)
		r.controller.Move(r.world, disp)
		return disp
	}

	// Average the contact normals. Opposing contacts that cancel (a corridor
	// pinch) leave no defined slide direction; block the tick outright.
	var avg rl.Vector3
	for _, n := range normals {
		avg = rl.Vector3Add(avg, n)
	}
	avgLen := rl.Vector3Length(avg)
	if avgLen < minMoveEpsilon {
		r.controller.Move(r.world, rl.Vector3{})
		return rl.Vector3{}
	}
	avg = rl.Vector3Scale(avg, 1/avgLen)

	// Subtract the into-wall component, keeping only the tangential slide.
	// Motion away from or parallel to the wall passes through unmodified.
	if d := rl.Vector3DotProduct(dir, avg); d < -intoWallEpsilon {
		dir = rl.Vector3Subtract(dir, rl.Vector3Scale(avg, d))
	}

	// A near-zero remainder would only re-detect the contact and oscillate.
	if rl.Vector3Length(dir) < minMoveEpsilon {
		r.controller.Move(r.world, rl.Vector3{})
		return rl.Vector3{}
	}

	disp := rl.Vector3Scale(dir, speed*dt)
	r.controller.Move(r.world, disp)
	return disp
}

// RaycastAhead casts along the current movement direction (or the camera
// facing when standing still) and returns the closest hit within distance.
func (r *Resolver) RaycastAhead(distance float32, yawDeg float32) (physics.QueryResult, bool) {
	dir := r.lastDir
	if rl.Vector3Length(dir) < minMoveEpsilon {
		dir, _ = headingVectors(yawDeg)
	}
	from := r.controller.Node.Transform.Position
	to := rl.Vector3Add(from, rl.Vector3Scale(dir, distance))
	return r.world.Raycast(from, to, physics.MaskAll)
}
