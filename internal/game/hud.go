package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/physics"
)

const reachDistance = 2.5

// drawHUD renders the debug panel. It only appears after F1 releases the
// cursor; the reticle and status line are always on.
func (g *Game) drawHUD() {
	// Reticle lights up when something sits within reach ahead.
	tint := rl.RayWhite
	if _, ok := g.Resolver.RaycastAhead(reachDistance, g.Yaw); ok {
		tint = rl.Green
	}
	rl.DrawText("+", int32(rl.GetScreenWidth())/2-4, int32(rl.GetScreenHeight())/2-8, 20, tint)

	mode := "capsule"
	if g.Controller.Mode == physics.ControllerDegraded {
		mode = "fallback"
	}
	status := fmt.Sprintf("%d FPS | %d bodies | %d wall contacts | controller: %s",
		rl.GetFPS(), g.World.BodyCount(), g.World.Contacts.Pending(), mode)
	rl.DrawText(status, 10, int32(rl.GetScreenHeight())-24, 16, rl.Gray)

	if !g.hudVisible {
		return
	}

	panel := rl.NewRectangle(10, 10, 230, 132)
	rl.DrawRectangleRec(panel, rl.Fade(rl.Black, 0.6))
	rl.DrawRectangleLinesEx(panel, 1, rl.Gray)
	rl.DrawText("Physics", 20, 18, 16, rl.RayWhite)

	viz := gui.CheckBox(rl.NewRectangle(20, 44, 16, 16), "Collision wireframes", g.World.DebugVisualization())
	g.World.SetDebugVisualization(viz)

	occupancy := fmt.Sprintf("Trigger overlaps: %d", len(g.trigger.Overlaps()))
	rl.DrawText(occupancy, 20, 70, 14, rl.LightGray)

	stored := fmt.Sprintf("Crates stored: %d", g.stored)
	rl.DrawText(stored, 20, 92, 14, rl.LightGray)

	grounded := "airborne"
	if g.Controller.Grounded() {
		grounded = "grounded"
	}
	rl.DrawText(grounded, 20, 114, 14, rl.LightGray)
}
