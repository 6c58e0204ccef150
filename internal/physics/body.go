package physics

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"

	"stillhour/internal/engine"
)

// MaskAll matches every collision group.
const MaskAll uint32 = 0xFFFFFFFF

// ccdRadiusFactor scales a shape's characteristic size into its continuous
// collision sweep radius.
const ccdRadiusFactor = 0.2

// RigidBody is a non-owning handle to a body tracked by the World. The body
// reads and writes the position of the visual node it is attached to; the
// node's lifetime belongs to the scene graph.
type RigidBody struct {
	Node        *engine.Node
	Shape       *Shape
	Mass        float32 // 0 = static
	Friction    float32
	Restitution float32
	Group       uint32
	Mask        uint32
	Kinematic   bool

	Velocity      rl.Vector3
	LinearDamping float32
	CCDRadius     float32 // sweep radius for fast movers, 0 for statics
	angularLocked bool
}

func (b *RigidBody) Position() rl.Vector3 {
	return b.Node.Transform.Position
}

func (b *RigidBody) setPosition(p rl.Vector3) {
	b.Node.Transform.Position = p
}

// worldAABB returns the body's AABB at its current position.
func (b *RigidBody) worldAABB() AABB {
	return b.Shape.AABBAt(b.Position())
}

// GhostVolume is an overlap-only trigger: it reports the nodes touching it
// each tick and never exerts a physical response.
type GhostVolume struct {
	Node  *engine.Node
	Shape *Shape

	overlaps []*engine.Node
}

// Overlaps returns the nodes overlapping the volume as of the last step.
func (g *GhostVolume) Overlaps() []*engine.Node {
	return g.overlaps
}

// applyRoleDefaults sets friction/restitution per material role. Structural
// surfaces grip hard and never bounce; props keep a little restitution.
func applyRoleDefaults(b *RigidBody, role Role) {
	if b.Mass == 0 {
		b.Kinematic = role == RoleWall || role == RoleFloor || role == RoleCeiling
		switch role {
		case RoleFloor:
			b.Friction = 0.8
			b.Restitution = 0.0
		case RoleProp:
			b.Friction = 0.9
			b.Restitution = 0.1
		default: // walls, ceilings, untagged statics
			b.Friction = 1.0
			b.Restitution = 0.0
		}
		return
	}
	b.Friction = 0.8
	b.Restitution = 0.2
	b.LinearDamping = 0.1
	b.CCDRadius = ccdRadiusFactor * b.Shape.CharacteristicSize()
}

// roleFor resolves the material role: the descriptor wins, node tags are the
// authoring-convenience fallback.
func roleFor(desc ShapeDescriptor, node *engine.Node) Role {
	if desc.Role != RoleNone {
		return desc.Role
	}
	for _, t := range node.Tags {
		if r := RoleFromTag(t); r != RoleNone {
			return r
		}
	}
	return RoleNone
}

// AddRigidBody builds the shape and registers a body for the node. Exactly
// one body exists per node: re-adding replaces the prior handle. Mass 0
// denotes a static body. Shape construction failures are fatal and surface
// to the caller.
func (w *World) AddRigidBody(node *engine.Node, mass float32, desc ShapeDescriptor) (*RigidBody, error) {
	shape, err := BuildShape(desc)
	if err != nil {
		return nil, err
	}

	if prior, ok := w.bodyByNode[node]; ok {
		log.Printf("physics: replacing rigid body for node %q", node.Name)
		w.RemoveRigidBody(prior)
	}

	b := &RigidBody{
		Node:  node,
		Shape: shape,
		Mass:  mass,
		Group: 1,
		Mask:  MaskAll,
	}
	applyRoleDefaults(b, roleFor(desc, node))

	w.bodies = append(w.bodies, b)
	w.bodyByNode[node] = b
	return b, nil
}

// AddCompoundBody registers one body whose collision volume encloses several
// co-centered shapes. Parts are validated individually; planes are infinite
// and cannot be compound parts. The first part's role picks the material.
func (w *World) AddCompoundBody(node *engine.Node, mass float32, parts ...ShapeDescriptor) (*RigidBody, error) {
	if len(parts) == 0 {
		return nil, errors.New("compound body needs at least one shape")
	}
	if len(parts) == 1 {
		return w.AddRigidBody(node, mass, parts[0])
	}

	var half rl.Vector3
	for _, desc := range parts {
		if desc.Kind == ShapePlane {
			return nil, errors.WithStack(&ShapeError{Kind: desc.Kind, Reason: "planes cannot be compound parts"})
		}
		s, err := BuildShape(desc)
		if err != nil {
			return nil, err
		}
		h := s.HalfExtents()
		if h.X > half.X {
			half.X = h.X
		}
		if h.Y > half.Y {
			half.Y = h.Y
		}
		if h.Z > half.Z {
			half.Z = h.Z
		}
	}
	return w.AddRigidBody(node, mass, BoxShape(half.X, half.Y, half.Z).WithRole(roleFor(parts[0], node)))
}

// RemoveRigidBody detaches the body from the world and all registries.
// Removing an unregistered handle is a logged no-op, never an error.
func (w *World) RemoveRigidBody(b *RigidBody) {
	if b == nil {
		return
	}
	if registered, ok := w.bodyByNode[b.Node]; !ok || registered != b {
		log.Printf("physics: remove of unregistered rigid body for node %q ignored", b.Node.Name)
		return
	}
	delete(w.bodyByNode, b.Node)
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
}

// AddGhostObject registers an overlap-only trigger volume for the node.
// Plane ghosts are rejected as malformed content.
func (w *World) AddGhostObject(node *engine.Node, desc ShapeDescriptor) (*GhostVolume, error) {
	if desc.Kind == ShapePlane {
		return nil, &ShapeError{Kind: desc.Kind, Reason: "planes cannot be trigger volumes"}
	}
	shape, err := BuildShape(desc)
	if err != nil {
		return nil, err
	}

	if prior, ok := w.ghostByNode[node]; ok {
		log.Printf("physics: replacing ghost volume for node %q", node.Name)
		w.RemoveGhostObject(prior)
	}

	g := &GhostVolume{Node: node, Shape: shape}
	w.ghosts = append(w.ghosts, g)
	w.ghostByNode[node] = g
	return g, nil
}

// RemoveGhostObject mirrors RemoveRigidBody for trigger volumes.
func (w *World) RemoveGhostObject(g *GhostVolume) {
	if g == nil {
		return
	}
	if registered, ok := w.ghostByNode[g.Node]; !ok || registered != g {
		log.Printf("physics: remove of unregistered ghost volume for node %q ignored", g.Node.Name)
		return
	}
	delete(w.ghostByNode, g.Node)
	for i, other := range w.ghosts {
		if other == g {
			w.ghosts = append(w.ghosts[:i], w.ghosts[i+1:]...)
			break
		}
	}
}

// BodyFor returns the registered body for a node, or nil.
func (w *World) BodyFor(node *engine.Node) *RigidBody {
	return w.bodyByNode[node]
}

// BodyCount returns the number of tracked rigid bodies.
func (w *World) BodyCount() int {
	return len(w.bodies)
}
