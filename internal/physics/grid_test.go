package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/engine"
)

func gridBody(name string, pos rl.Vector3, mass float32) *RigidBody {
	node := engine.NewNode(name)
	node.Transform.Position = pos
	shape, _ := BuildShape(SphereShape(0.5))
	return &RigidBody{Node: node, Shape: shape, Mass: mass}
}

func TestGridNeighborsSameCell(t *testing.T) {
	g := newSpatialGrid()
	a := gridBody("A", rl.Vector3{X: 1}, 1)
	b := gridBody("B", rl.Vector3{X: 2}, 1)
	g.rebuild([]*RigidBody{a, b})

	found := false
	for _, n := range g.neighbors(a) {
		if n == b {
			found = true
		}
	}
	if !found {
		t.Error("Bodies in the same cell should be neighbors")
	}
}

func TestGridNeighborsAdjacentCell(t *testing.T) {
	g := newSpatialGrid()
	a := gridBody("A", rl.Vector3{X: 4.9}, 1)
	b := gridBody("B", rl.Vector3{X: 5.1}, 1)
	g.rebuild([]*RigidBody{a, b})

	found := false
	for _, n := range g.neighbors(a) {
		if n == b {
			found = true
		}
	}
	if !found {
		t.Error("Bodies straddling a cell boundary should be neighbors")
	}
}

func TestGridSkipsDistantBodies(t *testing.T) {
	g := newSpatialGrid()
	a := gridBody("A", rl.Vector3{}, 1)
	b := gridBody("B", rl.Vector3{X: 50}, 1)
	g.rebuild([]*RigidBody{a, b})

	for _, n := range g.neighbors(a) {
		if n == b {
			t.Error("Bodies many cells apart should not be neighbors")
		}
	}
}

func TestGridExcludesStatics(t *testing.T) {
	g := newSpatialGrid()
	a := gridBody("A", rl.Vector3{X: 1}, 1)
	s := gridBody("S", rl.Vector3{X: 2}, 0)
	g.rebuild([]*RigidBody{a, s})

	for _, n := range g.neighbors(a) {
		if n == s {
			t.Error("Static bodies should not enter the broad phase grid")
		}
	}
}
