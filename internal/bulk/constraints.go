package bulk

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

// rbe2 reads "RBE2 EID GN CM GM1 GM2 ..." with an optional trailing real
// (thermal expansion) that the weight filter drops.
func (rd *Reader) rbe2(rec *record) error {
	id, err := rec.intAt(1)
	if err != nil {
		return err
	}
	master, err := rec.intAt(2)
	if err != nil {
		return err
	}
	slaves, err := slaveIDs(rec, 4, false)
	if err != nil {
		return err
	}
	return rd.addMPC(rec, &model.MPC{
		ElementID: id,
		Config:    model.RBE2,
		MasterID:  master,
		SlaveIDs:  slaves,
		DOFs:      field(rec.all(), 3),
	})
}

// rbe3 reads "RBE3 EID _ REFGRID REFC WT1 C1 G1,1 ..." where every further
// weight group starts with a real weight followed by its component code.
func (rd *Reader) rbe3(rec *record) error {
	id, err := rec.intAt(1)
	if err != nil {
		return err
	}
	master, err := rec.intAt(3)
	if err != nil {
		return err
	}
	slaves, err := slaveIDs(rec, 7, true)
	if err != nil {
		return err
	}
	return rd.addMPC(rec, &model.MPC{
		ElementID: id,
		Config:    model.RBE3,
		MasterID:  master,
		SlaveIDs:  slaves,
		DOFs:      field(rec.all(), 4),
	})
}

func (rd *Reader) addMPC(rec *record, mpc *model.MPC) error {
	if err := rd.model.AddMPC(mpc); err != nil {
		return fmt.Errorf("line %d: %w", rec.line, err)
	}
	return nil
}

// slaveIDs collects the node ids of a rigid element from column start on.
// Blank columns and weights (columns with a decimal point) are skipped. For
// weighted elements the component code following a weight is skipped too.
// An alphabetic column such as "UM" or "ALPHA" ends the list.
func slaveIDs(rec *record, start int, weighted bool) ([]int, error) {
	var (
		ids       []int
		component bool
	)
	cols := rec.all()
	for col := start; col < len(cols); col++ {
		s := cols[col]
		switch {
		case s == "":
			continue
		case isWeight(s):
			component = weighted
			continue
		case component:
			component = false
			continue
		}
		id, err := strconv.Atoi(s)
		if err != nil {
			if isAlpha(s) {
				break
			}
			return nil, &FieldError{Line: rec.line, Keyword: rec.keyword, Column: col, Value: s, Err: err}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func isAlpha(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) < 0
}

// spc reads "SPC SID G1 C1 D1 G2 C2 D2"
func (rd *Reader) spc(rec *record) error {
	sid, err := rec.intOr(1, 0)
	if err != nil {
		return err
	}
	for g := 2; g+1 < len(rec.all()); g += 3 {
		if field(rec.all(), g) == "" {
			continue
		}
		nid, err := rec.intAt(g)
		if err != nil {
			return err
		}
		value, err := rec.floatAt(g + 2)
		if err != nil {
			return err
		}
		if err := rd.addSPC(rec, sid, nid, field(rec.all(), g+1), value); err != nil {
			return err
		}
	}
	return nil
}

// spc1 reads "SPC1 SID C G1 G2 ..." and "SPC1 SID C G1 THRU G2"
func (rd *Reader) spc1(rec *record) error {
	sid, err := rec.intOr(1, 0)
	if err != nil {
		return err
	}
	dofs := field(rec.all(), 2)
	cols := rec.all()
	var nodes []int
	for col := 3; col < len(cols); col++ {
		s := strings.ToUpper(cols[col])
		if s == "" {
			continue
		}
		if s == "THRU" {
			if len(nodes) == 0 {
				return &FieldError{Line: rec.line, Keyword: rec.keyword, Column: col, Value: s, Err: errThruStart}
			}
			end, err := rec.intAt(col + 1)
			if err != nil {
				return err
			}
			for id := nodes[len(nodes)-1] + 1; id <= end; id++ {
				nodes = append(nodes, id)
			}
			col++
			continue
		}
		id, err := rec.intAt(col)
		if err != nil {
			return err
		}
		nodes = append(nodes, id)
	}
	for _, nid := range nodes {
		if err := rd.addSPC(rec, sid, nid, dofs, 0); err != nil {
			return err
		}
	}
	return nil
}

var errThruStart = errors.New("THRU without a start id")

func (rd *Reader) addSPC(rec *record, sid, nid int, components string, value float64) error {
	if _, ok := rd.model.Node(nid); !ok {
		return fmt.Errorf("line %d: %s %d: %w", rec.line, rec.keyword, sid, &model.UnknownNodeError{NodeID: nid})
	}
	dofs := make(map[int]float64, len(components))
	for _, c := range components {
		if c < '0' || c > '6' {
			return &FieldError{Line: rec.line, Keyword: rec.keyword, Value: components, Err: fmt.Errorf("invalid component %q", c)}
		}
		dofs[int(c-'0')] = value
	}
	rd.model.AddSPC(&model.SPC{NodeID: nid, SystemID: sid, DOFs: dofs})
	return nil
}

// load reads "FORCE SID G CID F N1 N2 N3" and the MOMENT entry of the
// same layout
func (rd *Reader) load(rec *record, kind model.LoadKind) error {
	sid, err := rec.intAt(1)
	if err != nil {
		return err
	}
	nid, err := rec.intAt(2)
	if err != nil {
		return err
	}
	cid, err := rec.intOr(3, 0)
	if err != nil {
		return err
	}
	scale, err := rec.floatAt(4)
	if err != nil {
		return err
	}
	l := &model.Load{Kind: kind, SetID: sid, NodeID: nid, SystemID: cid, Scale: scale}
	for i := range l.Components {
		n, err := rec.floatAt(5 + i)
		if err != nil {
			return err
		}
		l.Components[i] = scale * n
	}
	rd.model.AddLoad(l)
	return nil
}
