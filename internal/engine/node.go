package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

type Transform struct {
	Position rl.Vector3
	Rotation rl.Vector3 // Euler angles in degrees
	Scale    rl.Vector3
}

// Node is a visual scene node. The physics layer writes a world transform to
// it each tick but never owns its lifetime; everything else about the scene
// graph lives outside this module.
type Node struct {
	Name      string
	Tags      []string
	Transform Transform
	Active    bool
	Parent    *Node
	Children  []*Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:   name,
		Active: true,
		Transform: Transform{
			Position: rl.Vector3{},
			Rotation: rl.Vector3{},
			Scale:    rl.Vector3{X: 1, Y: 1, Z: 1},
		},
		Children: make([]*Node, 0),
	}
}

func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// WorldPosition walks the parent chain and accumulates positions.
func (n *Node) WorldPosition() rl.Vector3 {
	if n.Parent == nil {
		return n.Transform.Position
	}
	return rl.Vector3Add(n.Parent.WorldPosition(), n.Transform.Position)
}
