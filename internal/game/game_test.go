package game

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/config"
	"stillhour/internal/movement"
)

func testGame(t *testing.T) *Game {
	t.Helper()
	g := New(config.Default())
	g.buildRoom()
	g.createPlayer()
	return g
}

func TestAdvanceMovesAtFrameRate(t *testing.T) {
	g := testGame(t)

	// A 30fps frame must cover twice the ground of a 60fps frame.
	start := g.Player.Transform.Position.X
	dt := float32(1.0 / 30.0)
	g.advance(movement.Intent{Forward: true}, dt)

	moved := g.Player.Transform.Position.X - start
	want := g.Cfg.WalkSpeed * dt
	if absf(moved-want) > 1e-3 {
		t.Errorf("Expected displacement %g over a %gs frame, got %g", want, dt, moved)
	}
}

func TestStoreCratesBanksTriggerOverlaps(t *testing.T) {
	g := testGame(t)

	crate := g.room.Children[0]
	crate.Transform.Position = rl.Vector3{X: 8, Y: 1, Z: 3.5}

	g.advance(movement.Intent{}, g.World.FixedStep())

	if g.stored != 1 {
		t.Fatalf("Expected 1 stored crate, got %d", g.stored)
	}
	if g.World.BodyFor(crate) != nil {
		t.Error("Stored crate should lose its rigid body")
	}
	for _, child := range g.room.Children {
		if child == crate {
			t.Error("Stored crate should leave the scene graph")
		}
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
