package model

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// connect inserts an edge between every pair of distinct nodes. This treats
// any two nodes sharing an element as adjacent, whatever the element's real
// face and edge topology is.
func (m *Model) connect(nodeIDs []int) {
	for i, a := range nodeIDs {
		for _, b := range nodeIDs[i+1:] {
			if a == b || m.graph.HasEdgeBetween(int64(a), int64(b)) {
				continue
			}
			m.graph.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
		}
	}
}

// InGraph reports whether a node is a vertex of the connectivity graph, i.e.
// whether any 2D/3D element uses it
func (m *Model) InGraph(id int) bool {
	return m.graph.Node(int64(id)) != nil
}

// Adjacent reports whether two nodes share an element edge
func (m *Model) Adjacent(a, b int) bool {
	return m.graph.HasEdgeBetween(int64(a), int64(b))
}

// Neighbors returns the graph neighbours of a node, sorted by id
func (m *Model) Neighbors(id int) []int {
	if !m.InGraph(id) {
		return nil
	}
	return sortedIDs(graph.NodesOf(m.graph.From(int64(id))))
}

// GraphSize returns the number of vertices and edges of the connectivity graph
func (m *Model) GraphSize() (vertices, edges int) {
	return m.graph.Nodes().Len(), m.graph.Edges().Len()
}

// InducedComponents returns the connected components of the subgraph induced
// by ids. Ids that are not graph vertices become singleton components.
// The connectivity graph itself is not modified.
func (m *Model) InducedComponents(ids []int) [][]int {
	sub := simple.NewUndirectedGraph()
	in := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if in[int64(id)] {
			continue
		}
		in[int64(id)] = true
		sub.AddNode(simple.Node(id))
	}
	for id := range in {
		if m.graph.Node(id) == nil {
			continue
		}
		to := m.graph.From(id)
		for to.Next() {
			nid := to.Node().ID()
			if in[nid] && !sub.HasEdgeBetween(id, nid) {
				sub.SetEdge(simple.Edge{F: simple.Node(id), T: simple.Node(nid)})
			}
		}
	}
	return components(sub)
}

// Decompose splits the connectivity graph into parts. The first call, or
// any call with force set, computes the connected components and replaces
// the part table with fresh sequential part ids. Otherwise the previous
// table is returned as is, even if elements were added since.
func (m *Model) Decompose(force bool) []*Part {
	if m.parts != nil && !force {
		return m.parts
	}
	comps := components(m.graph)
	parts := make([]*Part, 0, len(comps))
	partOf := make(map[int]int)
	for _, ids := range comps {
		m.nextPartID++
		p := &Part{ID: m.nextPartID, NodeIDs: ids}
		for _, id := range ids {
			partOf[id] = p.ID
		}
		parts = append(parts, p)
	}
	m.parts = parts
	m.partOf = partOf
	m.generation++
	return m.parts
}

// Parts returns the current part table without computing one
func (m *Model) Parts() []*Part {
	return m.parts
}

// PartOf returns the part id holding a node in the current decomposition
func (m *Model) PartOf(nodeID int) (int, bool) {
	id, ok := m.partOf[nodeID]
	return id, ok
}

// Generation identifies the current decomposition. It is zero before the
// first Decompose and changes on every recomputation.
func (m *Model) Generation() int {
	return m.generation
}

// components returns the connected components of g with sorted members,
// ordered by their smallest node id so ids are reproducible between runs.
func components(g graph.Undirected) [][]int {
	raw := topo.ConnectedComponents(g)
	out := make([][]int, 0, len(raw))
	for _, c := range raw {
		out = append(out, sortedIDs(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func sortedIDs(nodes []graph.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	sort.Ints(ids)
	return ids
}
