package physics

import rl "github.com/gen2brain/raylib-go/raylib"

type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// NewAABBFromCenter builds the box around a center point from full sizes.
func NewAABBFromCenter(center, size rl.Vector3) AABB {
	half := rl.Vector3{X: size.X / 2, Y: size.Y / 2, Z: size.Z / 2}
	return AABB{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

// Expand grows the box by m on every side.
func (a AABB) Expand(m float32) AABB {
	d := rl.Vector3{X: m, Y: m, Z: m}
	return AABB{
		Min: rl.Vector3Subtract(a.Min, d),
		Max: rl.Vector3Add(a.Max, d),
	}
}

// Intersects reports overlap, touching faces included.
func (a AABB) Intersects(b AABB) bool {
	if a.Max.X < b.Min.X || b.Max.X < a.Min.X {
		return false
	}
	if a.Max.Y < b.Min.Y || b.Max.Y < a.Min.Y {
		return false
	}
	return a.Max.Z >= b.Min.Z && b.Max.Z >= a.Min.Z
}

// Resolve returns the translation that moves a out of b along whichever
// single axis takes the least correction, or zero when the boxes are apart.
func (a AABB) Resolve(b AABB) rl.Vector3 {
	if !a.Intersects(b) {
		return rl.Vector3Zero()
	}

	// Overlap measured toward each of the six faces. The shallowest escape
	// wins; ties go to the earlier entry, so X before Y before Z.
	depths := [6]float32{
		b.Max.X - a.Min.X, a.Max.X - b.Min.X,
		b.Max.Y - a.Min.Y, a.Max.Y - b.Min.Y,
		b.Max.Z - a.Min.Z, a.Max.Z - b.Min.Z,
	}
	axes := [6]rl.Vector3{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1}}

	best := 0
	for i := 1; i < len(depths); i++ {
		if depths[i] < depths[best] {
			best = i
		}
	}
	return rl.Vector3Scale(axes[best], depths[best])
}
