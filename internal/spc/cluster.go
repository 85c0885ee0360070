// Package spc groups single-point constraints into clusters of connected
// nodes and sums their reaction forces.
package spc

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

// BuildClusters replaces the cluster table of m with the connected
// components of the subgraph induced by the SPC-constrained nodes. A node
// without element edges becomes a singleton cluster. Cluster ids continue
// the sequence of earlier builds.
func BuildClusters(m *model.Model) []*model.SPCCluster {
	spcs := m.SPCs()
	ids := make([]int, len(spcs))
	for i, s := range spcs {
		ids[i] = s.NodeID
	}

	comps := m.InducedComponents(ids)
	clusters := make([]*model.SPCCluster, 0, len(comps))
	for _, comp := range comps {
		c := &model.SPCCluster{
			ID:     m.NewClusterID(),
			SPCs:   make([]*model.SPC, 0, len(comp)),
			Forces: make(map[int]model.Vec6),
		}
		for _, nid := range comp {
			s, _ := m.SPC(nid)
			c.SPCs = append(c.SPCs, s)
		}
		clusters = append(clusters, c)
	}
	m.SetClusters(clusters)
	m.Log.Debug("built SPC clusters", zap.Int("spcs", len(spcs)), zap.Int("clusters", len(clusters)))
	return clusters
}

// SumForces fills the per-subcase reaction of every cluster and of every
// member SPC. A member without a reaction in a subcase contributes zero and
// is reported.
func SumForces(m *model.Model) {
	for _, c := range m.Clusters() {
		for _, sc := range m.Subcases() {
			var sum model.Vec6
			for _, s := range c.SPCs {
				f, ok := sc.SPCForces[s.NodeID]
				if !ok {
					m.Diagnose(model.DiagMissingForce,
						fmt.Sprintf("SPC cluster %d: node %d has no reaction in subcase %d", c.ID, s.NodeID, sc.ID),
						zap.Int("cluster", c.ID), zap.Int("node", s.NodeID), zap.Int("subcase", sc.ID))
				}
				s.Reactions[sc.ID] = f
				sum.Add(f)
			}
			c.Forces[sc.ID] = sum
		}
	}
}

// Build runs BuildClusters followed by SumForces
func Build(m *model.Model) []*model.SPCCluster {
	clusters := BuildClusters(m)
	SumForces(m)
	return clusters
}
