// Stress test timing full physics steps against a naive O(n²) pair scan.
// With a GPU present, the broad phase switches to the compute pair cull
// once the dynamic body count crosses its threshold, so the high counts
// exercise that path too.
package main

import (
	"fmt"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stillhour/internal/compute"
	"stillhour/internal/engine"
	"stillhour/internal/physics"
)

const iterations = 60

func main() {
	if info, err := compute.Initialize(); err != nil {
		fmt.Printf("GPU unavailable (%v), stepping on the spatial hash only\n\n", err)
	} else {
		fmt.Printf("GPU: %s | %s | %s\n\n", info.Backend, info.Vendor, info.Name)
	}

	testCounts := []int{50, 100, 250, 500, 1000, 2000, 5000}

	for _, count := range testCounts {
		stressStep(count)
	}
}

func stressStep(count int) {
	rng := rand.New(rand.NewSource(42)) // consistent results

	w := physics.NewWorld(rl.Vector3{Y: -9.81}, 1.0/144.0, 10)
	w.InitGPU()
	defer w.Release()

	floor := engine.NewNode("Floor")
	if _, err := w.AddRigidBody(floor, 0, physics.PlaneShape(rl.Vector3{Y: 1}, 0).WithRole(physics.RoleFloor)); err != nil {
		panic(err)
	}

	// Spawn in a cube whose size scales with count to keep density reasonable.
	spawnSize := 20.0 + float32(count)/50.0
	bodies := make([]*physics.RigidBody, count)
	for i := range bodies {
		node := engine.NewNode(fmt.Sprintf("Ball%d", i))
		node.Transform.Position = rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: rng.Float32()*spawnSize + 1,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}
		b, err := w.AddRigidBody(node, 1, physics.SphereShape(0.5+rng.Float32()*0.5))
		if err != nil {
			panic(err)
		}
		bodies[i] = b
	}

	stepStart := time.Now()
	for i := 0; i < iterations; i++ {
		w.Step(w.FixedStep())
	}
	stepTime := time.Since(stepStart) / iterations

	// Naive all-pairs overlap count over the settled positions, for scale.
	naiveStart := time.Now()
	pairs := 0
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			d := rl.Vector3Subtract(bodies[i].Position(), bodies[j].Position())
			distSq := d.X*d.X + d.Y*d.Y + d.Z*d.Z
			radiusSum := bodies[i].Shape.BoundingRadius() + bodies[j].Shape.BoundingRadius()
			if distSq < radiusSum*radiusSum {
				pairs++
			}
		}
	}
	naiveTime := time.Since(naiveStart)

	broadPhase := "grid"
	if w.UsingGPU() {
		broadPhase = "gpu"
	}
	fmt.Printf("%5d bodies: step %8v (%s broad phase) | naive pair scan %8v (%4d pairs)\n",
		count, stepTime.Round(time.Microsecond), broadPhase, naiveTime.Round(time.Microsecond), pairs)
}
