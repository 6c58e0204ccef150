package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestAABBIntersects(t *testing.T) {
	a := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2})
	b := NewAABBFromCenter(rl.Vector3{X: 1.5}, rl.Vector3{X: 2, Y: 2, Z: 2})
	c := NewAABBFromCenter(rl.Vector3{X: 5}, rl.Vector3{X: 2, Y: 2, Z: 2})

	if !a.Intersects(b) {
		t.Error("Overlapping boxes should intersect")
	}
	if a.Intersects(c) {
		t.Error("Separated boxes should not intersect")
	}
}

func TestAABBResolveNoOverlap(t *testing.T) {
	a := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2})
	b := NewAABBFromCenter(rl.Vector3{X: 5}, rl.Vector3{X: 2, Y: 2, Z: 2})

	push := a.Resolve(b)
	if push.X != 0 || push.Y != 0 || push.Z != 0 {
		t.Errorf("Expected zero push for separated boxes, got (%g, %g, %g)", push.X, push.Y, push.Z)
	}
}

func TestAABBResolvePicksMinimumAxis(t *testing.T) {
	// 'a' overlaps 'b' by 0.5 on X and far more on Y/Z: the push must be the
	// shallow -X escape.
	a := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2})
	b := NewAABBFromCenter(rl.Vector3{X: 1.5}, rl.Vector3{X: 2, Y: 2, Z: 2})

	push := a.Resolve(b)
	if absf(push.X+0.5) > 1e-5 {
		t.Errorf("Expected push -0.5 on X, got %g", push.X)
	}
	if push.Y != 0 || push.Z != 0 {
		t.Errorf("Expected push on X only, got (%g, %g, %g)", push.X, push.Y, push.Z)
	}
}

func TestAABBExpand(t *testing.T) {
	a := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2})
	e := a.Expand(0.5)

	if e.Min.X != -1.5 || e.Max.X != 1.5 {
		t.Errorf("Expected X range [-1.5, 1.5], got [%g, %g]", e.Min.X, e.Max.X)
	}
}

func TestAABBResolveTieBreaksTowardX(t *testing.T) {
	// Concentric equal boxes overlap equally on every axis; the escape must
	// stay deterministic: +X by the full depth.
	a := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2})

	push := a.Resolve(a)
	if push.X != 2 || push.Y != 0 || push.Z != 0 {
		t.Errorf("Expected push (2, 0, 0), got (%g, %g, %g)", push.X, push.Y, push.Z)
	}
}
