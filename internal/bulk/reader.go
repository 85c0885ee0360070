// Package bulk reads the fixed-width bulk data of a solver model file into a
// model.Model: grid points, 2D/3D and line elements, rigid elements, single
// point constraints and concentrated loads.
package bulk

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/manuel1618/mpcforces-extractor/internal/model"
)

// shellNodes maps shell keywords to their node count. Columns after the
// nodes (theta, offsets) are ignored.
var shellNodes = map[string]int{
	"CTRIA3": 3,
	"CTRIAR": 3,
	"CTRIA6": 6,
	"CQUAD4": 4,
	"CQUADR": 4,
	"CQUAD8": 8,
}

// solidKeywords read every node column, so both linear and quadratic
// variants are covered
var solidKeywords = map[string]bool{
	"CTETRA": true,
	"CPENTA": true,
	"CHEXA":  true,
	"CPYRA":  true,
}

var lineKeywords = map[string]bool{
	"CROD":  true,
	"CBAR":  true,
	"CBEAM": true,
	"CTUBE": true,
}

// record is one logical bulk data entry: the keyword line plus the columns
// of every continuation line after their "+" marker
type record struct {
	line    int
	keyword string
	fields  []string
	cont    []string
}

// all returns the columns of the keyword line followed by the continuation
// columns
func (r *record) all() []string {
	out := make([]string, 0, len(r.fields)+len(r.cont))
	out = append(out, r.fields...)
	return append(out, r.cont...)
}

func (r *record) intAt(col int) (int, error) {
	s := field(r.all(), col)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &FieldError{Line: r.line, Keyword: r.keyword, Column: col, Value: s, Err: err}
	}
	return v, nil
}

// intOr returns def for a blank column
func (r *record) intOr(col, def int) (int, error) {
	if field(r.all(), col) == "" {
		return def, nil
	}
	return r.intAt(col)
}

func (r *record) floatAt(col int) (float64, error) {
	s := field(r.all(), col)
	v, err := ParseFloat(s)
	if err != nil {
		return 0, &FieldError{Line: r.line, Keyword: r.keyword, Column: col, Value: s, Err: err}
	}
	return v, nil
}

// Stats counts the records applied to the model, by keyword
type Stats struct {
	Records map[string]int
}

func (s *Stats) count(keyword string) {
	if s.Records == nil {
		s.Records = make(map[string]int)
	}
	s.Records[keyword]++
}

// Reader applies bulk data records to a model
type Reader struct {
	BlockSize int

	model *model.Model
	stats Stats
}

// NewReader returns a reader for columns of blockSize characters
func NewReader(m *model.Model, blockSize int) *Reader {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Reader{BlockSize: blockSize, model: m}
}

// ReadFile reads a model file into m
func ReadFile(path string, blockSize int, m *model.Model) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()
	return NewReader(m, blockSize).Read(f)
}

// Read parses all records from r and applies them in file order. A record
// that references a node whose GRID entry has not been applied yet fails
// with an error matching model.ErrUnknownNode.
func (rd *Reader) Read(r io.Reader) (Stats, error) {
	records, err := rd.scan(r)
	if err != nil {
		return rd.stats, err
	}
	for _, rec := range records {
		if err := rd.apply(rec); err != nil {
			return rd.stats, err
		}
	}
	return rd.stats, nil
}

func (rd *Reader) scan(r io.Reader) ([]*record, error) {
	var (
		records []*record
		cur     *record
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "+") {
			if cur != nil {
				cur.cont = append(cur.cont, dropMarker(SplitLine(line, rd.BlockSize)[1:])...)
			}
			continue
		}
		if strings.HasPrefix(line, "$") {
			// comments end the current entry
			cur = nil
			continue
		}
		fields := dropMarker(SplitLine(line, rd.BlockSize))
		cur = &record{line: n, keyword: strings.ToUpper(fields[0]), fields: fields}
		records = append(records, cur)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return records, nil
}

// dropMarker removes a trailing continuation marker such as "+E1" that some
// writers put in the last column of a continued line
func dropMarker(fields []string) []string {
	if len(fields) < 2 {
		return fields
	}
	last := fields[len(fields)-1]
	if strings.HasPrefix(last, "+") {
		if _, err := ParseFloat(last); err != nil {
			return fields[:len(fields)-1]
		}
	}
	return fields
}

func (rd *Reader) apply(rec *record) error {
	var err error
	switch {
	case rec.keyword == "GRID":
		return rd.grid(rec)
	case shellNodes[rec.keyword] > 0 || solidKeywords[rec.keyword]:
		err = rd.element(rec)
	case lineKeywords[rec.keyword]:
		err = rd.element1D(rec)
	case rec.keyword == "RBE2":
		err = rd.rbe2(rec)
	case rec.keyword == "RBE3":
		err = rd.rbe3(rec)
	case rec.keyword == "SPC":
		err = rd.spc(rec)
	case rec.keyword == "SPC1":
		err = rd.spc1(rec)
	case rec.keyword == "FORCE":
		err = rd.load(rec, model.LoadForce)
	case rec.keyword == "MOMENT":
		err = rd.load(rec, model.LoadMoment)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	rd.stats.count(rec.keyword)
	return nil
}

func (rd *Reader) grid(rec *record) error {
	id, err := rec.intAt(1)
	if err != nil {
		return err
	}
	var coords [3]float64
	for i := range coords {
		if coords[i], err = rec.floatAt(3 + i); err != nil {
			return err
		}
	}
	rd.model.AddNode(id, coords)
	rd.stats.count(rec.keyword)
	return nil
}

func (rd *Reader) element(rec *record) error {
	id, err := rec.intAt(1)
	if err != nil {
		return err
	}
	pid, err := rec.intAt(2)
	if err != nil {
		return err
	}
	limit := shellNodes[rec.keyword]
	var nodes []int
	for col, s := range rec.all() {
		if col < 3 || s == "" || isWeight(s) {
			continue
		}
		if limit > 0 && len(nodes) == limit {
			break
		}
		nid, err := strconv.Atoi(s)
		if err != nil {
			return &FieldError{Line: rec.line, Keyword: rec.keyword, Column: col, Value: s, Err: err}
		}
		nodes = append(nodes, nid)
	}
	if _, err := rd.model.AddElement(id, pid, rec.keyword, nodes); err != nil {
		return fmt.Errorf("line %d: %w", rec.line, err)
	}
	return nil
}

func (rd *Reader) element1D(rec *record) error {
	id, err := rec.intAt(1)
	if err != nil {
		return err
	}
	pid, err := rec.intAt(2)
	if err != nil {
		return err
	}
	ga, err := rec.intAt(3)
	if err != nil {
		return err
	}
	gb, err := rec.intAt(4)
	if err != nil {
		return err
	}
	if _, err := rd.model.AddElement1D(id, pid, rec.keyword, ga, gb); err != nil {
		return fmt.Errorf("line %d: %w", rec.line, err)
	}
	return nil
}
