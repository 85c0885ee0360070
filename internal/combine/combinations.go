// Package combine superposes subcase results with load factors
package combine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

// LoadCombination is a factored sum of subcases
type LoadCombination struct {
	ID          string          `yaml:"id" json:"id"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Factors     map[int]float64 `yaml:"factors" json:"factors"` // subcase id -> factor
}

// Label returns the description, or a generated "1.2*S1 + 1.6*S2" form
func (lc LoadCombination) Label() string {
	if lc.Description != "" {
		return lc.Description
	}
	terms := make([]string, 0, len(lc.Factors))
	for _, id := range lc.subcaseIDs() {
		terms = append(terms, fmt.Sprintf("%g*S%d", lc.Factors[id], id))
	}
	return strings.Join(terms, " + ")
}

func (lc LoadCombination) subcaseIDs() []int {
	ids := make([]int, 0, len(lc.Factors))
	for id := range lc.Factors {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Factored returns the combined vector of a result series keyed by subcase
// id. Subcases missing from the series contribute zero.
func (lc LoadCombination) Factored(series map[int]model.Vec6) model.Vec6 {
	var total model.Vec6
	for _, id := range lc.subcaseIDs() {
		if v, ok := series[id]; ok {
			total.Add(v.Scaled(lc.Factors[id]))
		}
	}
	return total
}

// Validate checks that the combination has an id and that every factored
// subcase exists in m
func (lc LoadCombination) Validate(m *model.Model) error {
	var err error
	if lc.ID == "" {
		err = multierr.Append(err, fmt.Errorf("load combination %q has no id", lc.Label()))
	}
	if len(lc.Factors) == 0 {
		err = multierr.Append(err, fmt.Errorf("load combination %s has no factors", lc.ID))
	}
	for _, id := range lc.subcaseIDs() {
		if _, ok := m.Subcase(id); !ok {
			err = multierr.Append(err, fmt.Errorf("load combination %s references unknown subcase %d", lc.ID, id))
		}
	}
	return err
}

// ValidateAll validates every combination and reports duplicate ids
func ValidateAll(m *model.Model, combos []LoadCombination) error {
	var err error
	seen := make(map[string]bool, len(combos))
	for _, lc := range combos {
		if lc.ID != "" && seen[lc.ID] {
			err = multierr.Append(err, fmt.Errorf("duplicate load combination id %s", lc.ID))
		}
		seen[lc.ID] = true
		err = multierr.Append(err, lc.Validate(m))
	}
	return err
}

// Governing finds the combination with the largest absolute value of one
// component. ok is false when combos is empty.
func Governing(series map[int]model.Vec6, combos []LoadCombination, component int) (value float64, governing LoadCombination, ok bool) {
	for _, lc := range combos {
		v := lc.Factored(series)[component]
		if !ok || math.Abs(v) > math.Abs(value) {
			value, governing, ok = v, lc, true
		}
	}
	return value, governing, ok
}

// PartSeries returns the aggregated forces of one MPC part keyed by subcase
func PartSeries(mpc *model.MPC, partID int) map[int]model.Vec6 {
	out := make(map[int]model.Vec6, len(mpc.Forces))
	for sid, parts := range mpc.Forces {
		if v, ok := parts[partID]; ok {
			out[sid] = v
		}
	}
	return out
}

// Envelope returns the componentwise minimum and maximum over all
// combinations of a series
func Envelope(series map[int]model.Vec6, combos []LoadCombination) (lo, hi model.Vec6) {
	for i, lc := range combos {
		v := lc.Factored(series)
		for c := range v {
			if i == 0 || v[c] < lo[c] {
				lo[c] = v[c]
			}
			if i == 0 || v[c] > hi[c] {
				hi[c] = v[c]
			}
		}
	}
	return lo, hi
}
