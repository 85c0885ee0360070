// Package extract runs a complete extraction: read the model and the result
// reports, decompose the model into parts, aggregate MPC forces per part and
// sum SPC reactions per cluster.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manuel1618/mpcforces-extractor/internal/bulk"
	"github.com/manuel1618/mpcforces-extractor/internal/forces"
	"github.com/manuel1618/mpcforces-extractor/internal/metrics"
	"github.com/manuel1618/mpcforces-extractor/internal/model"
	"github.com/manuel1618/mpcforces-extractor/internal/rigid"
	"github.com/manuel1618/mpcforces-extractor/internal/spc"
)

// ErrBusy is returned by TryRun while another run holds the runner
var ErrBusy = errors.New("an extraction run is already in progress")

// Request names the inputs of one run. Empty result paths are skipped.
type Request struct {
	ModelPath string
	MPCPath   string
	SPCPath   string
	BlockSize int
}

// Result summarizes a finished run. The entities themselves stay in the
// runner's model, see View.
type Result struct {
	RunID       string
	Started     time.Time
	Elapsed     time.Duration
	Model       bulk.Stats
	MPC         forces.Stats
	SPC         forces.Stats
	Parts       int
	Clusters    int
	Subcases    int
	Diagnostics []model.Diagnostic
}

// Runner serializes runs over one reused model
type Runner struct {
	mu      sync.Mutex
	model   *model.Model
	log     *zap.Logger
	metrics *metrics.Recorder
}

// NewRunner returns a runner logging to log. rec may be nil.
func NewRunner(log *zap.Logger, rec *metrics.Recorder) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{model: model.New(log), log: log, metrics: rec}
	if rec != nil {
		r.model.OnDiagnostic = func(d model.Diagnostic) { rec.Diagnostic(string(d.Kind)) }
	}
	return r
}

// Run waits for any run in progress, then resets the model and performs a
// full extraction. The context is checked between stages.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run(ctx, req)
}

// TryRun is Run but fails with ErrBusy instead of waiting
func (r *Runner) TryRun(ctx context.Context, req Request) (*Result, error) {
	if !r.mu.TryLock() {
		return nil, ErrBusy
	}
	defer r.mu.Unlock()
	return r.run(ctx, req)
}

// View calls fn with the model of the last run while no run can start
func (r *Runner) View(fn func(*model.Model) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.model)
}

func (r *Runner) run(ctx context.Context, req Request) (res *Result, err error) {
	res = &Result{RunID: uuid.NewString(), Started: time.Now()}
	log := r.log.With(zap.String("run_id", res.RunID))
	m := r.model
	m.Reset()
	m.Log = log

	defer func() {
		res.Elapsed = time.Since(res.Started)
		res.Diagnostics = m.Diagnostics()
		if r.metrics != nil {
			r.metrics.Run(err, res.Elapsed, res.Parts, res.Clusters, res.Subcases)
		}
		if err != nil {
			log.Error("extraction failed", zap.Error(err), zap.Duration("elapsed", res.Elapsed))
			return
		}
		log.Info("extraction finished",
			zap.Int("parts", res.Parts),
			zap.Int("clusters", res.Clusters),
			zap.Int("subcases", res.Subcases),
			zap.Int("diagnostics", len(res.Diagnostics)),
			zap.Duration("elapsed", res.Elapsed))
	}()

	blockSize := req.BlockSize
	if blockSize <= 0 {
		blockSize = bulk.DefaultBlockSize
	}
	log.Info("reading model", zap.String("path", req.ModelPath), zap.Int("block_size", blockSize))
	if res.Model, err = bulk.ReadFile(req.ModelPath, blockSize, m); err != nil {
		return res, fmt.Errorf("failed to read model: %w", err)
	}
	if r.metrics != nil {
		r.metrics.Records(res.Model.Records)
	}
	if err = ctx.Err(); err != nil {
		return res, err
	}

	if res.MPC, err = r.readResults(log, m, req.MPCPath, model.MPCForce); err != nil {
		return res, err
	}
	if res.SPC, err = r.readResults(log, m, req.SPCPath, model.SPCForce); err != nil {
		return res, err
	}
	if err = ctx.Err(); err != nil {
		return res, err
	}

	parts := m.Decompose(true)
	log.Debug("decomposed model", zap.Int("parts", len(parts)))
	for _, mpc := range m.MPCs() {
		rigid.PartSlaves(m, mpc)
	}
	rigid.AggregateAll(m)
	clusters := spc.Build(m)

	res.Parts = len(parts)
	res.Clusters = len(clusters)
	res.Subcases = len(m.Subcases())
	return res, nil
}

// readResults reads an optional report. A missing file is recorded as a
// diagnostic, any other failure aborts the run.
func (r *Runner) readResults(log *zap.Logger, m *model.Model, path string, kind model.ForceKind) (forces.Stats, error) {
	if path == "" {
		return forces.Stats{}, nil
	}
	log.Info("reading results", zap.Stringer("kind", kind), zap.String("path", path))
	stats, err := forces.ReadFile(path, kind, m)
	if errors.Is(err, fs.ErrNotExist) {
		m.Diagnose(model.DiagMissingResults,
			fmt.Sprintf("%s file %s not found, continuing without it", kind, path),
			zap.String("path", path))
		return forces.Stats{}, nil
	}
	if err != nil {
		return stats, fmt.Errorf("failed to read %s results: %w", kind, err)
	}
	return stats, nil
}
