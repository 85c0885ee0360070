// Package model holds every registry of one extraction run: nodes, elements,
// rigid and single-point constraints, loads, subcases, SPC clusters and the
// connectivity graph with its part decomposition.
//
// A Model is not safe for concurrent use. Callers processing several models
// with one Model must serialize runs and call Reset before each of them.
package model

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/graph/simple"
)

// DiagnosticKind classifies a non-fatal anomaly
type DiagnosticKind string

const (
	DiagMissingForce       DiagnosticKind = "missing-force"
	DiagDuplicateSPC       DiagnosticKind = "duplicate-spc"
	DiagMissingResults     DiagnosticKind = "missing-results"
	DiagUnpartitionedSlave DiagnosticKind = "unpartitioned-slave"
	DiagTableWithoutTime   DiagnosticKind = "table-without-time"
	DiagNoDelimiter        DiagnosticKind = "no-delimiter"
)

// Diagnostic is a non-fatal anomaly recorded while building or aggregating
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Model owns all entity registries of one run
type Model struct {
	nodes      map[int]*Node
	elements   map[int]*Element
	elements1D []*Element1D
	mpcs       map[int]*MPC
	spcs       map[int]*SPC
	loads      []*Load

	subcases     []*Subcase
	subcaseIndex map[int]*Subcase

	clusters      []*SPCCluster
	nextClusterID int

	graph      *simple.UndirectedGraph
	parts      []*Part
	partOf     map[int]int
	generation int
	nextPartID int

	diagnostics []Diagnostic

	// Log receives every diagnostic at warn level
	Log *zap.Logger
	// OnDiagnostic, when set, is called for every recorded diagnostic
	OnDiagnostic func(Diagnostic)
}

// New returns an empty model logging to log. A nil log discards output.
func New(log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{Log: log}
	m.Reset()
	return m
}

// Reset discards every entity, graph edge, part, cluster and diagnostic.
// Part and cluster id sequences restart at 1.
func (m *Model) Reset() {
	m.nodes = make(map[int]*Node)
	m.elements = make(map[int]*Element)
	m.elements1D = nil
	m.mpcs = make(map[int]*MPC)
	m.spcs = make(map[int]*SPC)
	m.loads = nil
	m.subcases = nil
	m.subcaseIndex = make(map[int]*Subcase)
	m.clusters = nil
	m.nextClusterID = 0
	m.graph = simple.NewUndirectedGraph()
	m.parts = nil
	m.partOf = nil
	m.generation = 0
	m.nextPartID = 0
	m.diagnostics = nil
}

// Diagnose records a non-fatal anomaly and logs it
func (m *Model) Diagnose(kind DiagnosticKind, msg string, fields ...zap.Field) {
	d := Diagnostic{Kind: kind, Message: msg}
	m.diagnostics = append(m.diagnostics, d)
	m.Log.Warn(msg, append(fields, zap.String("kind", string(kind)))...)
	if m.OnDiagnostic != nil {
		m.OnDiagnostic(d)
	}
}

// Diagnostics returns the anomalies recorded since the last Reset
func (m *Model) Diagnostics() []Diagnostic {
	return m.diagnostics
}

// AddNode registers a node, replacing any node with the same id
func (m *Model) AddNode(id int, coords [3]float64) *Node {
	n := &Node{ID: id, Coords: coords}
	m.nodes[id] = n
	return n
}

// Node looks up a node by id
func (m *Model) Node(id int) (*Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// NodeCount returns the number of registered nodes
func (m *Model) NodeCount() int {
	return len(m.nodes)
}

// Nodes returns all nodes sorted by id
func (m *Model) Nodes() []*Node {
	out := make([]*Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddElement registers a 2D/3D element over already registered nodes,
// computes its centroid and inserts a clique of edges among its nodes.
func (m *Model) AddElement(id, propertyID int, keyword string, nodeIDs []int) (*Element, error) {
	e := &Element{ID: id, PropertyID: propertyID, Keyword: keyword, NodeIDs: nodeIDs}
	for _, nid := range nodeIDs {
		n, ok := m.nodes[nid]
		if !ok {
			return nil, fmt.Errorf("element %d: %w", id, &UnknownNodeError{NodeID: nid})
		}
		for i := range e.Centroid {
			e.Centroid[i] += n.Coords[i]
		}
	}
	if len(nodeIDs) > 0 {
		for i := range e.Centroid {
			e.Centroid[i] /= float64(len(nodeIDs))
		}
	}
	for _, nid := range nodeIDs {
		m.nodes[nid].addElement(id)
	}
	m.elements[id] = e
	m.connect(nodeIDs)
	return e, nil
}

// Element looks up a 2D/3D element by id
func (m *Model) Element(id int) (*Element, bool) {
	e, ok := m.elements[id]
	return e, ok
}

// Elements returns all 2D/3D elements sorted by id
func (m *Model) Elements() []*Element {
	out := make([]*Element, 0, len(m.elements))
	for _, e := range m.elements {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddElement1D registers a line element. Both nodes must exist.
func (m *Model) AddElement1D(id, propertyID int, keyword string, node1, node2 int) (*Element1D, error) {
	for _, nid := range []int{node1, node2} {
		if _, ok := m.nodes[nid]; !ok {
			return nil, fmt.Errorf("element %d: %w", id, &UnknownNodeError{NodeID: nid})
		}
	}
	e := &Element1D{ID: id, PropertyID: propertyID, Keyword: keyword, Node1: node1, Node2: node2}
	m.elements1D = append(m.elements1D, e)
	return e, nil
}

// Elements1D returns the line elements in file order
func (m *Model) Elements1D() []*Element1D {
	return m.elements1D
}

// AddMPC registers a rigid element. The master and every slave must be known
// nodes. An MPC with the same element id is replaced.
func (m *Model) AddMPC(mpc *MPC) error {
	if _, ok := m.nodes[mpc.MasterID]; !ok {
		return fmt.Errorf("%s %d master: %w", mpc.Config, mpc.ElementID, &UnknownNodeError{NodeID: mpc.MasterID})
	}
	for _, nid := range mpc.SlaveIDs {
		if _, ok := m.nodes[nid]; !ok {
			return fmt.Errorf("%s %d slave: %w", mpc.Config, mpc.ElementID, &UnknownNodeError{NodeID: nid})
		}
	}
	if mpc.Forces == nil {
		mpc.Forces = make(map[int]map[int]Vec6)
	}
	m.mpcs[mpc.ElementID] = mpc
	return nil
}

// MPC looks up a rigid element by element id
func (m *Model) MPC(id int) (*MPC, bool) {
	mpc, ok := m.mpcs[id]
	return mpc, ok
}

// MPCs returns all rigid elements sorted by element id
func (m *Model) MPCs() []*MPC {
	out := make([]*MPC, 0, len(m.mpcs))
	for _, mpc := range m.mpcs {
		out = append(out, mpc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ElementID < out[j].ElementID })
	return out
}

// AddSPC registers a single-point constraint. Registering a node twice
// replaces the earlier record and emits a diagnostic.
func (m *Model) AddSPC(s *SPC) {
	if _, dup := m.spcs[s.NodeID]; dup {
		m.Diagnose(DiagDuplicateSPC,
			fmt.Sprintf("SPC on node %d registered twice, keeping the later record", s.NodeID),
			zap.Int("node", s.NodeID))
	}
	if s.Reactions == nil {
		s.Reactions = make(map[int]Vec6)
	}
	if s.DOFs == nil {
		s.DOFs = make(map[int]float64)
	}
	m.spcs[s.NodeID] = s
}

// SPC looks up the constraint on a node
func (m *Model) SPC(nodeID int) (*SPC, bool) {
	s, ok := m.spcs[nodeID]
	return s, ok
}

// SPCs returns all single-point constraints sorted by node id
func (m *Model) SPCs() []*SPC {
	out := make([]*SPC, 0, len(m.spcs))
	for _, s := range m.spcs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// AddLoad registers a FORCE or MOMENT record
func (m *Model) AddLoad(l *Load) {
	m.loads = append(m.loads, l)
}

// Loads returns the loads in file order
func (m *Model) Loads() []*Load {
	return m.loads
}

// Subcase looks up a subcase by its external id
func (m *Model) Subcase(id int) (*Subcase, bool) {
	s, ok := m.subcaseIndex[id]
	return s, ok
}

// EnsureSubcase returns the subcase with id, creating it with the given time
// label on first encounter. An existing subcase keeps its original label.
func (m *Model) EnsureSubcase(id int, time float64) *Subcase {
	if s, ok := m.subcaseIndex[id]; ok {
		return s
	}
	s := newSubcase(id, time)
	m.subcases = append(m.subcases, s)
	m.subcaseIndex[id] = s
	return s
}

// Subcases returns the subcases in order of first encounter
func (m *Model) Subcases() []*Subcase {
	return m.subcases
}

// NewClusterID hands out the next SPC cluster id. The sequence only restarts
// on Reset.
func (m *Model) NewClusterID() int {
	m.nextClusterID++
	return m.nextClusterID
}

// SetClusters replaces the SPC cluster table
func (m *Model) SetClusters(cs []*SPCCluster) {
	m.clusters = cs
}

// Clusters returns the current SPC clusters
func (m *Model) Clusters() []*SPCCluster {
	return m.clusters
}

// ErrUnknownNode is matched by every UnknownNodeError
var ErrUnknownNode = errors.New("unknown node")

// UnknownNodeError reports a reference to a node without a GRID record
type UnknownNodeError struct {
	NodeID int
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("node %d has no GRID record", e.NodeID)
}

func (e *UnknownNodeError) Unwrap() error {
	return ErrUnknownNode
}
