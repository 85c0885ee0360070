// Package rigid attributes MPC forces of rigid elements to the parts their
// slave nodes belong to.
package rigid

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

// PartSlaves returns, for every part of the current decomposition, the slave
// node ids of mpc lying in that part (possibly none). The model is
// decomposed first if needed. The mapping is cached on mpc until the model
// is decomposed again.
//
// Slaves that belong to no part (no 2D/3D element uses them) are left out
// and reported once per decomposition.
func PartSlaves(m *model.Model, mpc *model.MPC) map[int][]int {
	parts := m.Decompose(false)
	if mpc.PartSlaves != nil && mpc.PartGeneration == m.Generation() {
		return mpc.PartSlaves
	}

	out := make(map[int][]int, len(parts))
	for _, p := range parts {
		out[p.ID] = []int{}
	}
	seen := make(map[int]bool, len(mpc.SlaveIDs))
	var loose []int
	for _, nid := range mpc.SlaveIDs {
		if seen[nid] {
			continue
		}
		seen[nid] = true
		pid, ok := m.PartOf(nid)
		if !ok {
			loose = append(loose, nid)
			continue
		}
		out[pid] = append(out[pid], nid)
	}
	for _, ids := range out {
		sort.Ints(ids)
	}
	if len(loose) > 0 {
		m.Diagnose(model.DiagUnpartitionedSlave,
			fmt.Sprintf("%s %d: %d slave nodes are not part of any element and are left out", mpc.Config, mpc.ElementID, len(loose)),
			zap.Int("mpc", mpc.ElementID), zap.Ints("nodes", loose))
	}

	mpc.PartSlaves = out
	mpc.PartGeneration = m.Generation()
	return out
}

// Aggregate sums the MPC forces of subcase over the slaves of every part.
// A slave without a force in the subcase counts as zero and is reported; it
// is expected for nodes outside the constrained degrees of freedom. The
// result is also stored in mpc.Forces under the subcase id.
func Aggregate(m *model.Model, mpc *model.MPC, subcase *model.Subcase) map[int]model.Vec6 {
	slaves := PartSlaves(m, mpc)
	sums := make(map[int]model.Vec6, len(slaves))
	for pid, ids := range slaves {
		var sum model.Vec6
		for _, nid := range ids {
			f, ok := subcase.MPCForces[nid]
			if !ok {
				m.Diagnose(model.DiagMissingForce,
					fmt.Sprintf("%s %d: node %d has no MPC force in subcase %d", mpc.Config, mpc.ElementID, nid, subcase.ID),
					zap.Int("mpc", mpc.ElementID), zap.Int("node", nid), zap.Int("subcase", subcase.ID))
				continue
			}
			sum.Add(f)
		}
		sums[pid] = sum
	}
	if mpc.Forces == nil {
		mpc.Forces = make(map[int]map[int]model.Vec6)
	}
	mpc.Forces[subcase.ID] = sums
	return sums
}

// AggregateAll aggregates every MPC over every subcase of the model
func AggregateAll(m *model.Model) {
	for _, mpc := range m.MPCs() {
		for _, sc := range m.Subcases() {
			Aggregate(m, mpc, sc)
		}
	}
}

// Total returns the sum over all parts of mpc for one subcase
func Total(mpc *model.MPC, subcaseID int) model.Vec6 {
	var total model.Vec6
	for _, v := range mpc.Forces[subcaseID] {
		total.Add(v)
	}
	return total
}

// ActiveParts returns the ids of the parts holding at least one slave of
// mpc, sorted ascending
func ActiveParts(m *model.Model, mpc *model.MPC) []int {
	var ids []int
	for pid, nodes := range PartSlaves(m, mpc) {
		if len(nodes) > 0 {
			ids = append(ids, pid)
		}
	}
	sort.Ints(ids)
	return ids
}
