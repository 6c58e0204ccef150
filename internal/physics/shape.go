package physics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

// ContactMargin is the uniform collision margin applied to every shape.
// It damps edge jitter when surfaces sit near-touching.
const ContactMargin = 0.01

type ShapeKind int

const (
	ShapeBox     ShapeKind = iota // dims: half extents x, y, z
	ShapeSphere                   // dims: radius
	ShapeCapsule                  // dims: radius, total height (vertical axis)
	ShapePlane                    // dims: normal x, y, z, offset (n·p = offset)
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	case ShapePlane:
		return "plane"
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// Role selects the material defaults (friction, restitution, kinematic flag)
// a body gets. It is declared explicitly on the descriptor; bodies are never
// classified by sniffing display names.
type Role int

const (
	RoleNone Role = iota
	RoleWall
	RoleFloor
	RoleCeiling
	RoleProp
)

// RoleFromTag maps an explicit node role tag to a Role. Unknown tags map to
// RoleNone.
func RoleFromTag(tag string) Role {
	switch tag {
	case "wall":
		return RoleWall
	case "floor":
		return RoleFloor
	case "ceiling":
		return RoleCeiling
	case "prop":
		return RoleProp
	}
	return RoleNone
}

// ShapeDescriptor is the semantic description a collision shape is built
// from. Dimensions arity depends on Kind; see the ShapeKind constants.
type ShapeDescriptor struct {
	Kind       ShapeKind
	Dimensions []float32
	Role       Role
}

func BoxShape(halfX, halfY, halfZ float32) ShapeDescriptor {
	return ShapeDescriptor{Kind: ShapeBox, Dimensions: []float32{halfX, halfY, halfZ}}
}

func SphereShape(radius float32) ShapeDescriptor {
	return ShapeDescriptor{Kind: ShapeSphere, Dimensions: []float32{radius}}
}

func CapsuleShape(radius, height float32) ShapeDescriptor {
	return ShapeDescriptor{Kind: ShapeCapsule, Dimensions: []float32{radius, height}}
}

func PlaneShape(normal rl.Vector3, offset float32) ShapeDescriptor {
	return ShapeDescriptor{Kind: ShapePlane, Dimensions: []float32{normal.X, normal.Y, normal.Z, offset}}
}

// WithRole returns a copy of the descriptor with the material role set.
func (d ShapeDescriptor) WithRole(r Role) ShapeDescriptor {
	d.Role = r
	return d
}

// ShapeError reports a malformed shape descriptor. It signals a content bug:
// construction must stop and the error must surface to the caller.
type ShapeError struct {
	Kind   ShapeKind
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid %s shape: %s", e.Kind, e.Reason)
}

var shapeArity = map[ShapeKind]int{
	ShapeBox:     3,
	ShapeSphere:  1,
	ShapeCapsule: 2,
	ShapePlane:   4,
}

// Shape is a built collision shape ready to attach to a body.
type Shape struct {
	Kind   ShapeKind
	Dims   []float32
	Margin float32
}

// BuildShape validates a descriptor and builds the shape, applying the
// uniform contact margin. Unknown kinds and malformed dimensions fail with a
// *ShapeError; callers must not catch-and-continue.
func BuildShape(desc ShapeDescriptor) (*Shape, error) {
	want, ok := shapeArity[desc.Kind]
	if !ok {
		return nil, errors.WithStack(&ShapeError{Kind: desc.Kind, Reason: "unknown shape kind"})
	}
	if len(desc.Dimensions) != want {
		return nil, errors.WithStack(&ShapeError{
			Kind:   desc.Kind,
			Reason: fmt.Sprintf("expected %d dimensions, got %d", want, len(desc.Dimensions)),
		})
	}

	if desc.Kind == ShapePlane {
		n := rl.Vector3{X: desc.Dimensions[0], Y: desc.Dimensions[1], Z: desc.Dimensions[2]}
		if rl.Vector3Length(n) < 1e-6 {
			return nil, errors.WithStack(&ShapeError{Kind: desc.Kind, Reason: "zero-length plane normal"})
		}
	} else {
		for i, v := range desc.Dimensions {
			if v <= 0 {
				return nil, errors.WithStack(&ShapeError{
					Kind:   desc.Kind,
					Reason: fmt.Sprintf("dimension %d must be positive, got %g", i, v),
				})
			}
		}
	}
	if desc.Kind == ShapeCapsule && desc.Dimensions[1] <= desc.Dimensions[0] {
		return nil, errors.WithStack(&ShapeError{Kind: desc.Kind, Reason: "height must exceed radius"})
	}

	dims := make([]float32, len(desc.Dimensions))
	copy(dims, desc.Dimensions)
	s := &Shape{Kind: desc.Kind, Dims: dims, Margin: ContactMargin}
	if s.Kind == ShapePlane {
		// Normalize so signed-distance tests can use the stored normal directly.
		n := rl.Vector3Normalize(rl.Vector3{X: dims[0], Y: dims[1], Z: dims[2]})
		s.Dims[0], s.Dims[1], s.Dims[2] = n.X, n.Y, n.Z
	}
	return s, nil
}

// PlaneNormal returns the unit normal of a plane shape.
func (s *Shape) PlaneNormal() rl.Vector3 {
	return rl.Vector3{X: s.Dims[0], Y: s.Dims[1], Z: s.Dims[2]}
}

// PlaneOffset returns the plane constant d in n·p = d.
func (s *Shape) PlaneOffset() float32 {
	return s.Dims[3]
}

// HalfExtents returns axis-aligned half extents enclosing the shape. Planes
// are infinite and have none.
func (s *Shape) HalfExtents() rl.Vector3 {
	switch s.Kind {
	case ShapeBox:
		return rl.Vector3{X: s.Dims[0], Y: s.Dims[1], Z: s.Dims[2]}
	case ShapeSphere:
		r := s.Dims[0]
		return rl.Vector3{X: r, Y: r, Z: r}
	case ShapeCapsule:
		return rl.Vector3{X: s.Dims[0], Y: s.Dims[1] / 2, Z: s.Dims[0]}
	}
	return rl.Vector3{}
}

// CharacteristicSize is the representative diameter used to derive the CCD
// sweep radius for fast-moving bodies.
func (s *Shape) CharacteristicSize() float32 {
	switch s.Kind {
	case ShapeBox:
		return 2 * (s.Dims[0] + s.Dims[1] + s.Dims[2]) / 3
	case ShapeSphere:
		return 2 * s.Dims[0]
	case ShapeCapsule:
		return s.Dims[1]
	}
	return 0
}

// BoundingRadius returns the radius of a sphere enclosing the shape,
// margin included. Used by sweep queries.
func (s *Shape) BoundingRadius() float32 {
	switch s.Kind {
	case ShapeBox:
		return rl.Vector3Length(s.HalfExtents()) + s.Margin
	case ShapeSphere:
		return s.Dims[0] + s.Margin
	case ShapeCapsule:
		return s.Dims[1]/2 + s.Margin
	}
	return s.Margin
}

// AABBAt returns the shape's world AABB centered at pos. Meaningless for
// planes, which are handled by signed-distance tests instead.
func (s *Shape) AABBAt(pos rl.Vector3) AABB {
	half := s.HalfExtents()
	return AABB{
		Min: rl.Vector3Subtract(pos, half),
		Max: rl.Vector3Add(pos, half),
	}
}
