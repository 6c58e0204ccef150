package game

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/engine"
	"stillhour/internal/physics"
)

// Room dimensions: 20 wide (X), 10 deep (Z), 4 high (Y), floor at Y=0.
const (
	roomHalfWidth = 10.0
	roomHalfDepth = 5.0
	roomHeight    = 4.0
)

type prop struct {
	node *engine.Node
	half rl.Vector3
	tint rl.Color
}

// buildRoom assembles the demo space: six bounding planes, a low step, a
// scatter of dynamic crates and one trigger volume in the corner.
func (g *Game) buildRoom() {
	w := g.World
	g.room = engine.NewNode("Room")

	bounds := []struct {
		name   string
		normal rl.Vector3
		offset float32
		role   physics.Role
	}{
		{"Floor", rl.Vector3{Y: 1}, 0, physics.RoleFloor},
		{"Ceiling", rl.Vector3{Y: -1}, -roomHeight, physics.RoleCeiling},
		{"WallEast", rl.Vector3{X: -1}, -roomHalfWidth, physics.RoleWall},
		{"WallWest", rl.Vector3{X: 1}, -roomHalfWidth, physics.RoleWall},
		{"WallNorth", rl.Vector3{Z: -1}, -roomHalfDepth, physics.RoleWall},
		{"WallSouth", rl.Vector3{Z: 1}, -roomHalfDepth, physics.RoleWall},
	}
	for _, s := range bounds {
		node := engine.NewNode(s.name)
		desc := physics.PlaneShape(s.normal, s.offset).WithRole(s.role)
		if _, err := w.AddRigidBody(node, 0, desc); err != nil {
			log.Fatalf("game: room surface %s: %v", s.name, err)
		}
	}

	// A climbable ledge in front of the east wall.
	step := engine.NewNode("Step")
	step.Transform.Position = rl.Vector3{X: 6, Y: 0.15, Z: 2}
	if _, err := w.AddRigidBody(step, 0, physics.BoxShape(1, 0.15, 1).WithRole(physics.RoleProp)); err != nil {
		log.Fatalf("game: step: %v", err)
	}
	g.props = append(g.props, &prop{node: step, half: rl.Vector3{X: 1, Y: 0.15, Z: 1}, tint: rl.DarkGray})

	crateSpots := []rl.Vector3{
		{X: -6, Z: -3}, {X: -4, Z: 2}, {X: -2, Z: -1}, {X: 0, Z: 3},
		{X: 2, Z: -3}, {X: 3, Z: 1}, {X: 5, Z: -2}, {X: -7, Z: 3},
		{X: 7, Z: -4}, {X: -3, Z: -4},
	}
	for i, spot := range crateSpots {
		node := engine.NewNode("Crate" + string(rune('A'+i)))
		node.Tags = []string{"prop"}
		node.Transform.Position = rl.Vector3{X: spot.X, Y: 2, Z: spot.Z}
		g.room.AddChild(node)
		if _, err := w.AddRigidBody(node, 5, physics.BoxShape(0.25, 0.25, 0.25)); err != nil {
			log.Fatalf("game: crate: %v", err)
		}
		g.props = append(g.props, &prop{
			node: node,
			half: rl.Vector3{X: 0.25, Y: 0.25, Z: 0.25},
			tint: rl.Beige,
		})
	}

	triggerNode := engine.NewNode("CornerTrigger")
	triggerNode.Transform.Position = rl.Vector3{X: 8, Y: 1, Z: 3.5}
	trigger, err := w.AddGhostObject(triggerNode, physics.BoxShape(1, 1, 1))
	if err != nil {
		log.Fatalf("game: trigger: %v", err)
	}
	g.trigger = trigger
}

func (g *Game) drawRoom() {
	rl.DrawPlane(rl.Vector3{}, rl.Vector2{X: roomHalfWidth * 2, Y: roomHalfDepth * 2}, rl.NewColor(40, 40, 48, 255))
	rl.DrawGrid(20, 1)

	for _, p := range g.props {
		size := rl.Vector3Scale(p.half, 2)
		pos := p.node.WorldPosition()
		rl.DrawCubeV(pos, size, p.tint)
		rl.DrawCubeWiresV(pos, size, rl.Black)
	}

	// Trigger volume, tinted by occupancy.
	tint := rl.Fade(rl.SkyBlue, 0.25)
	if len(g.trigger.Overlaps()) > 0 {
		tint = rl.Fade(rl.Green, 0.35)
	}
	rl.DrawCubeV(g.trigger.Node.Transform.Position, rl.Vector3{X: 2, Y: 2, Z: 2}, tint)
}
