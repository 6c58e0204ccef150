package game

import (
	"log"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/config"
	"stillhour/internal/engine"
	"stillhour/internal/movement"
	"stillhour/internal/physics"
)

const eyeHeight = 0.75 // offset from capsule center to the camera

type Game struct {
	Cfg   config.Config
	World *physics.World

	Player     *engine.Node
	Controller *physics.CharacterController
	Resolver   *movement.Resolver

	Yaw   float32
	Pitch float32

	room    *engine.Node
	props   []*prop
	trigger *physics.GhostVolume
	stored  int

	hudVisible bool
}

func New(cfg config.Config) *Game {
	return &Game{
		Cfg:   cfg,
		World: physics.NewWorld(rl.Vector3{Y: cfg.Gravity}, cfg.FixedTimestep(), cfg.MaxSubsteps),
	}
}

func (g *Game) Run() {
	rl.SetConfigFlags(rl.FlagWindowHighdpi)
	rl.InitWindow(1280, 720, "The Stilled Hour")
	defer rl.CloseWindow()

	rl.SetTargetFPS(144)
	rl.DisableCursor()

	g.buildRoom()
	g.createPlayer()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}
}

func (g *Game) createPlayer() {
	g.Player = engine.NewNode("Player")
	g.Player.Transform.Position = rl.Vector3{Y: g.Cfg.PlayerHeight / 2}

	c, err := g.World.CreateCharacterController(
		g.Player, g.Cfg.PlayerRadius, g.Cfg.PlayerHeight, g.Cfg.PlayerStepHeight)
	if err != nil {
		// Degraded locomotion still plays; log and carry on.
		log.Printf("game: %v", err)
	}
	c.JumpSpeed = g.Cfg.JumpSpeed
	c.FallSpeed = g.Cfg.FallSpeed
	g.Controller = c
	g.Resolver = movement.NewResolver(g.World, c, movement.Speeds{
		Walk:   g.Cfg.WalkSpeed,
		Sprint: g.Cfg.SprintSpeed,
		Crouch: g.Cfg.CrouchSpeed,
	})
}

func (g *Game) Update() {
	dt := rl.GetFrameTime()

	// Mouse look. The HUD releases the cursor, so looking pauses with it.
	if !g.hudVisible {
		mouseDelta := rl.GetMouseDelta()
		g.Yaw += mouseDelta.X * g.Cfg.LookSensitivity
		g.Pitch -= mouseDelta.Y * g.Cfg.LookSensitivity
		if g.Pitch > 89 {
			g.Pitch = 89
		}
		if g.Pitch < -89 {
			g.Pitch = -89
		}
	}

	if rl.IsKeyPressed(rl.KeyF1) {
		g.hudVisible = !g.hudVisible
		if g.hudVisible {
			rl.EnableCursor()
		} else {
			rl.DisableCursor()
		}
	}

	intent := movement.Intent{
		Forward:  rl.IsKeyDown(rl.KeyW),
		Backward: rl.IsKeyDown(rl.KeyS),
		Left:     rl.IsKeyDown(rl.KeyA),
		Right:    rl.IsKeyDown(rl.KeyD),
		Sprint:   rl.IsKeyDown(rl.KeyLeftShift),
		Crouch:   rl.IsKeyDown(rl.KeyLeftControl),
		Yaw:      g.Yaw,
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.Controller.Jump()
	}

	g.advance(intent, dt)
}

// advance runs one frame of simulation. Movement resolves over the real
// frame time so speed holds at any frame rate; the world consumes the same
// time in fixed increments.
func (g *Game) advance(intent movement.Intent, dt float32) {
	g.Resolver.Resolve(intent, dt)
	g.World.Step(dt)
	g.storeCrates()
}

// storeCrates banks any crate pushed into the corner trigger: its body and
// scene node go away and the tally goes up.
func (g *Game) storeCrates() {
	for _, n := range g.trigger.Overlaps() {
		if !n.HasTag("prop") {
			continue
		}
		b := g.World.BodyFor(n)
		if b == nil || b.Mass == 0 {
			continue
		}
		g.World.RemoveRigidBody(b)
		g.room.RemoveChild(n)
		g.dropProp(n)
		g.stored++
	}
}

func (g *Game) dropProp(n *engine.Node) {
	for i, p := range g.props {
		if p.node == n {
			g.props = append(g.props[:i], g.props[i+1:]...)
			return
		}
	}
}

func (g *Game) camera() rl.Camera3D {
	eye := rl.Vector3Add(g.Player.Transform.Position, rl.Vector3{Y: eyeHeight})
	look := lookDirection(g.Yaw, g.Pitch)
	return rl.Camera3D{
		Position:   eye,
		Target:     rl.Vector3Add(eye, look),
		Up:         rl.Vector3{Y: 1},
		Fovy:       70,
		Projection: rl.CameraPerspective,
	}
}

func lookDirection(yawDeg, pitchDeg float32) rl.Vector3 {
	yaw := float64(yawDeg * rl.Deg2rad)
	pitch := float64(pitchDeg * rl.Deg2rad)
	return rl.Vector3{
		X: float32(math.Cos(yaw) * math.Cos(pitch)),
		Y: float32(math.Sin(pitch)),
		Z: float32(math.Sin(yaw) * math.Cos(pitch)),
	}
}

func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(18, 18, 24, 255))

	rl.BeginMode3D(g.camera())
	g.drawRoom()
	g.World.DrawDebug()
	rl.EndMode3D()

	g.drawHUD()
	rl.EndDrawing()
}
