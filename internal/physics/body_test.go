package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/engine"
)

func testWorld() *World {
	return NewWorld(rl.Vector3{Y: -9.81}, 1.0/60.0, 10)
}

func TestAddRigidBodyStaticWallDefaults(t *testing.T) {
	w := testWorld()
	node := engine.NewNode("Wall")

	b, err := w.AddRigidBody(node, 0, BoxShape(2, 2, 0.2).WithRole(RoleWall))
	if err != nil {
		t.Fatalf("AddRigidBody failed: %v", err)
	}
	if !b.Kinematic {
		t.Error("Static wall should be kinematic")
	}
	if b.Friction != 1.0 {
		t.Errorf("Expected wall friction 1.0, got %g", b.Friction)
	}
	if b.Restitution != 0 {
		t.Errorf("Expected wall restitution 0, got %g", b.Restitution)
	}
}

func TestAddRigidBodyFloorDefaults(t *testing.T) {
	w := testWorld()
	node := engine.NewNode("Floor")

	b, err := w.AddRigidBody(node, 0, PlaneShape(rl.Vector3{Y: 1}, 0).WithRole(RoleFloor))
	if err != nil {
		t.Fatalf("AddRigidBody failed: %v", err)
	}
	if b.Friction != 0.8 {
		t.Errorf("Expected floor friction 0.8, got %g", b.Friction)
	}
}

func TestAddRigidBodyDynamicDefaults(t *testing.T) {
	w := testWorld()
	node := engine.NewNode("Crate")

	b, err := w.AddRigidBody(node, 5, BoxShape(0.5, 0.5, 0.5))
	if err != nil {
		t.Fatalf("AddRigidBody failed: %v", err)
	}
	if b.Kinematic {
		t.Error("Dynamic body should not be kinematic")
	}
	if b.LinearDamping != 0.1 {
		t.Errorf("Expected damping 0.1, got %g", b.LinearDamping)
	}
	// Characteristic size of a unit cube is 1.0, so the sweep radius is 0.2.
	if absf(b.CCDRadius-0.2) > 1e-5 {
		t.Errorf("Expected CCD radius 0.2, got %g", b.CCDRadius)
	}
}

func TestAddRigidBodyRoleFromNodeTag(t *testing.T) {
	w := testWorld()
	node := engine.NewNode("NorthWall")
	node.Tags = []string{"wall"}

	b, err := w.AddRigidBody(node, 0, BoxShape(2, 2, 0.2))
	if err != nil {
		t.Fatalf("AddRigidBody failed: %v", err)
	}
	if b.Friction != 1.0 || !b.Kinematic {
		t.Error("Node tag 'wall' should select wall material defaults")
	}
}

func TestAddRigidBodyReAddReplaces(t *testing.T) {
	w := testWorld()
	node := engine.NewNode("Crate")

	first, err := w.AddRigidBody(node, 5, BoxShape(0.5, 0.5, 0.5))
	if err != nil {
		t.Fatalf("AddRigidBody failed: %v", err)
	}
	second, err := w.AddRigidBody(node, 5, SphereShape(0.5))
	if err != nil {
		t.Fatalf("AddRigidBody failed: %v", err)
	}

	if w.BodyCount() != 1 {
		t.Errorf("Expected 1 body after re-add, got %d", w.BodyCount())
	}
	if w.BodyFor(node) != second {
		t.Error("BodyFor should return the replacement body")
	}
	if w.BodyFor(node) == first {
		t.Error("Replaced body should no longer be registered")
	}
}

func TestRemoveRigidBody(t *testing.T) {
	w := testWorld()
	node := engine.NewNode("Crate")

	b, err := w.AddRigidBody(node, 5, BoxShape(0.5, 0.5, 0.5))
	if err != nil {
		t.Fatalf("AddRigidBody failed: %v", err)
	}

	w.RemoveRigidBody(b)
	if w.BodyCount() != 0 {
		t.Errorf("Expected 0 bodies after remove, got %d", w.BodyCount())
	}
	if w.BodyFor(node) != nil {
		t.Error("BodyFor should return nil after remove")
	}

	// Removing again must be a quiet no-op.
	w.RemoveRigidBody(b)
	w.RemoveRigidBody(nil)
	if w.BodyCount() != 0 {
		t.Errorf("Expected 0 bodies, got %d", w.BodyCount())
	}
}

func TestAddRigidBodyInvalidShape(t *testing.T) {
	w := testWorld()
	node := engine.NewNode("Broken")

	if _, err := w.AddRigidBody(node, 5, SphereShape(-1)); err == nil {
		t.Error("Expected error for invalid shape")
	}
	if w.BodyCount() != 0 {
		t.Errorf("Expected no bodies registered after failure, got %d", w.BodyCount())
	}
}

func TestAddCompoundBodyEnclosesParts(t *testing.T) {
	w := testWorld()
	node := engine.NewNode("Lamp")

	b, err := w.AddCompoundBody(node, 2, SphereShape(0.4), BoxShape(0.2, 0.9, 0.2))
	if err != nil {
		t.Fatalf("AddCompoundBody failed: %v", err)
	}
	half := b.Shape.HalfExtents()
	if half.X != 0.4 || half.Y != 0.9 || half.Z != 0.4 {
		t.Errorf("Expected enclosing half extents (0.4, 0.9, 0.4), got (%g, %g, %g)",
			half.X, half.Y, half.Z)
	}
	if w.BodyCount() != 1 {
		t.Errorf("Expected a single registered body, got %d", w.BodyCount())
	}
}

func TestAddCompoundBodyRejectsPlaneParts(t *testing.T) {
	w := testWorld()
	node := engine.NewNode("Broken")

	_, err := w.AddCompoundBody(node, 0, BoxShape(1, 1, 1), PlaneShape(rl.Vector3{Y: 1}, 0))
	if err == nil {
		t.Error("Expected error for plane compound part")
	}
	if _, err := w.AddCompoundBody(node, 0); err == nil {
		t.Error("Expected error for empty compound")
	}
}

func TestGhostObjectLifecycle(t *testing.T) {
	w := testWorld()
	node := engine.NewNode("Trigger")

	g, err := w.AddGhostObject(node, BoxShape(1, 1, 1))
	if err != nil {
		t.Fatalf("AddGhostObject failed: %v", err)
	}
	if len(g.Overlaps()) != 0 {
		t.Errorf("Expected no overlaps before stepping, got %d", len(g.Overlaps()))
	}

	w.RemoveGhostObject(g)
	w.RemoveGhostObject(g) // quiet no-op
}

func TestAddGhostObjectRejectsPlane(t *testing.T) {
	w := testWorld()
	node := engine.NewNode("Trigger")

	if _, err := w.AddGhostObject(node, PlaneShape(rl.Vector3{Y: 1}, 0)); err == nil {
		t.Error("Expected error for plane trigger volume")
	}
}
