package plan

import (
	"fmt"

	"github.com/kyle-brindley/turbo-turtle/pkg/partition"
)

// Plan-wide defaults.
const (
	DefaultModelName       = "Model-1"
	DefaultPartName        = "Part-1"
	DefaultRevolutionAngle = 360.0
	DefaultGlobalSeed      = 1.0
	DefaultBigNumber       = partition.DefaultBigNumber
	DefaultSetTolerance    = 1e-6
	DefaultImageWidth      = 1920
	DefaultImageHeight     = 1080
)

// Defaults contains plan-wide settings.
type Defaults struct {
	ModelName  string  `json:"model_name"`
	GlobalSeed float64 `json:"global_seed"` // used when a part is meshed without a mesh step
}

// Plan is the top-level immutable data structure produced by recipe
// evaluation. Steps keeps the order in which nodes were declared.
type Plan struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Steps     []NodeID          `json:"steps"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  Defaults          `json:"defaults"`
}

// New creates an empty plan with default settings.
func New() *Plan {
	return &Plan{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults: Defaults{
			ModelName:  DefaultModelName,
			GlobalSeed: DefaultGlobalSeed,
		},
	}
}

// AddNode appends a node to the plan. It does not check for duplicates;
// Validate reports them.
func (p *Plan) AddNode(n *Node) {
	p.Nodes[n.ID] = n
	p.Steps = append(p.Steps, n.ID)
	if n.Name != "" && n.Kind.IsPart() {
		p.NameIndex[n.Name] = n.ID
	}
}

// Lookup returns the part with the given name, or nil.
func (p *Plan) Lookup(name string) *Node {
	id, ok := p.NameIndex[name]
	if !ok {
		return nil
	}
	return p.Nodes[id]
}

// MustLookup returns the part with the given name, or panics.
func (p *Plan) MustLookup(name string) *Node {
	n := p.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("plan: no part named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (p *Plan) Get(id NodeID) *Node {
	return p.Nodes[id]
}

// Parts returns the part nodes in declaration order.
func (p *Plan) Parts() []*Node {
	var parts []*Node
	for _, id := range p.Steps {
		if n := p.Nodes[id]; n != nil && n.Kind.IsPart() {
			parts = append(parts, n)
		}
	}
	return parts
}

// StepsFor returns the step nodes applied to part, in declaration order.
func (p *Plan) StepsFor(part NodeID) []*Node {
	var steps []*Node
	for _, id := range p.Steps {
		n := p.Nodes[id]
		if n != nil && !n.Kind.IsPart() && n.Target() == part {
			steps = append(steps, n)
		}
	}
	return steps
}

// NodeCount returns the total number of nodes.
func (p *Plan) NodeCount() int {
	return len(p.Nodes)
}

// Merge appends the nodes of o to p in o's declaration order. Part names
// and node IDs must not collide; on error p is left unchanged.
func (p *Plan) Merge(o *Plan) error {
	for _, id := range o.Steps {
		n := o.Nodes[id]
		if n == nil {
			continue
		}
		if n.Kind.IsPart() && p.Lookup(n.Name) != nil {
			return fmt.Errorf("plan: merge: duplicate part name %q", n.Name)
		}
		if _, ok := p.Nodes[id]; ok {
			return fmt.Errorf("plan: merge: duplicate node %s", id.Short())
		}
	}
	for _, id := range o.Steps {
		if n := o.Nodes[id]; n != nil {
			p.AddNode(n)
		}
	}
	return nil
}
