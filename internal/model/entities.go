package model

import "fmt"

// Node is a GRID point of the model
type Node struct {
	ID     int
	Coords [3]float64

	// ElementIDs lists the 2D/3D elements using this node, in insertion order.
	// The node does not own them; resolve through Model.Element.
	ElementIDs []int
}

func (n *Node) addElement(id int) {
	for _, e := range n.ElementIDs {
		if e == id {
			return
		}
	}
	n.ElementIDs = append(n.ElementIDs, id)
}

// Element is a 2D or 3D element. Every pair of its nodes is an edge of the
// connectivity graph.
type Element struct {
	ID         int
	PropertyID int
	Keyword    string
	NodeIDs    []int
	Centroid   [3]float64
}

// Element1D is a line element (rod, bar, beam, tube). It is kept for
// reporting only and never contributes edges to the connectivity graph.
type Element1D struct {
	ID         int
	PropertyID int
	Keyword    string
	Node1      int
	Node2      int
}

// Has reports whether the element connects node id
func (e *Element1D) Has(id int) bool {
	return e.Node1 == id || e.Node2 == id
}

// Config distinguishes the two rigid element variants
type Config int

const (
	// RBE2 is the rigid (distributing) link
	RBE2 Config = iota + 1
	// RBE3 is the weighted interpolating link
	RBE3
)

func (c Config) String() string {
	switch c {
	case RBE2:
		return "RBE2"
	case RBE3:
		return "RBE3"
	default:
		return fmt.Sprintf("Config(%d)", int(c))
	}
}

// MPC is a rigid multi-point constraint tying a master node to slave nodes
type MPC struct {
	ElementID int
	Config    Config
	MasterID  int
	SlaveIDs  []int
	DOFs      string

	// PartSlaves maps part id to the slave node ids lying in that part.
	// It is derived for the decomposition generation in PartGeneration.
	PartSlaves     map[int][]int
	PartGeneration int

	// Forces maps subcase id to part id to the summed slave forces
	Forces map[int]map[int]Vec6
}

// SPC is a single-point constraint on one node
type SPC struct {
	NodeID   int
	SystemID int
	DOFs     map[int]float64

	// Reactions maps subcase id to the reaction vector at this node
	Reactions map[int]Vec6
}

// SPCCluster groups SPCs whose nodes are connected by element edges
type SPCCluster struct {
	ID   int
	SPCs []*SPC

	// Forces maps subcase id to the summed reaction of all members
	Forces map[int]Vec6
}

// NodeIDs returns the constrained node ids of the cluster in member order
func (c *SPCCluster) NodeIDs() []int {
	ids := make([]int, len(c.SPCs))
	for i, s := range c.SPCs {
		ids[i] = s.NodeID
	}
	return ids
}

// Part is one connected component of the connectivity graph
type Part struct {
	ID      int
	NodeIDs []int // sorted ascending
}

// LoadKind tells a concentrated force from a concentrated moment
type LoadKind int

const (
	LoadForce LoadKind = iota + 1
	LoadMoment
)

func (k LoadKind) String() string {
	if k == LoadMoment {
		return "Moment"
	}
	return "Force"
}

// Load is a FORCE or MOMENT record. Components are already multiplied by
// the record's scale factor.
type Load struct {
	Kind       LoadKind
	SetID      int
	NodeID     int
	SystemID   int
	Scale      float64
	Components [3]float64
}

// ForceKind selects which map of a Subcase a results file populates
type ForceKind int

const (
	MPCForce ForceKind = iota + 1
	SPCForce
)

func (k ForceKind) String() string {
	switch k {
	case MPCForce:
		return "MPCFORCE"
	case SPCForce:
		return "SPCFORCE"
	default:
		return fmt.Sprintf("ForceKind(%d)", int(k))
	}
}

// Subcase is one load case or time step of the results
type Subcase struct {
	ID        int
	Time      float64
	MPCForces map[int]Vec6
	SPCForces map[int]Vec6
}

func newSubcase(id int, time float64) *Subcase {
	return &Subcase{
		ID:        id,
		Time:      time,
		MPCForces: make(map[int]Vec6),
		SPCForces: make(map[int]Vec6),
	}
}

// Forces returns the node force map for kind
func (s *Subcase) Forces(kind ForceKind) map[int]Vec6 {
	if kind == SPCForce {
		return s.SPCForces
	}
	return s.MPCForces
}

// AddForce stores the vector of a node for kind, replacing any earlier value
func (s *Subcase) AddForce(kind ForceKind, nodeID int, v Vec6) {
	s.Forces(kind)[nodeID] = v
}
