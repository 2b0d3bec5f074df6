// Package plan defines the build plan: an immutable DAG of parts and the
// steps (partition, node sets, mesh, export, image) applied to them.
//
// A plan is produced by evaluating a recipe and consumed by the build
// runner. It is never mutated once evaluation finishes; each evaluation
// produces a new plan.
package plan

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed node identifier.
type NodeID string

// ZeroID is the empty identifier.
const ZeroID NodeID = ""

// NewNodeID derives an identifier from a node path such as "geometry/vase".
func NewNodeID(path string) NodeID {
	sum := sha256.Sum256([]byte(path))
	return NodeID(hex.EncodeToString(sum[:]))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == ZeroID }

// Short returns an abbreviated identifier for messages.
func (id NodeID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// NodeKind enumerates the types of nodes in the plan.
type NodeKind int

const (
	NodeGeometry  NodeKind = iota // part from a coordinate file
	NodeCylinder                  // hollow cylinder part
	NodeSphere                    // hollow sphere part
	NodePartition                 // turtle-shell partition of a part
	NodeSets                      // named node set on a part's mesh
	NodeMesh                      // mesh a part
	NodeExport                    // write a part's orphan mesh
	NodeImage                     // render a part's mesh
)

func (k NodeKind) String() string {
	switch k {
	case NodeGeometry:
		return "geometry"
	case NodeCylinder:
		return "cylinder"
	case NodeSphere:
		return "sphere"
	case NodePartition:
		return "partition"
	case NodeSets:
		return "sets"
	case NodeMesh:
		return "mesh"
	case NodeExport:
		return "export"
	case NodeImage:
		return "image"
	default:
		return "unknown"
	}
}

// IsPart reports whether nodes of this kind create a part.
func (k NodeKind) IsPart() bool {
	return k == NodeGeometry || k == NodeCylinder || k == NodeSphere
}

// Node is the fundamental element of the plan. Part nodes carry the part
// name; step nodes list the part they apply to as their only child.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// Target returns the part a step node applies to.
func (n *Node) Target() NodeID {
	if len(n.Children) == 0 {
		return ZeroID
	}
	return n.Children[0]
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
