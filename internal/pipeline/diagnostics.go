package pipeline

import (
	"context"

	"github.com/geneontology/gopreprocess/internal/filter"
	"github.com/geneontology/gopreprocess/internal/logger"
	"github.com/geneontology/gopreprocess/internal/model"
	"github.com/geneontology/gopreprocess/internal/rewrite"
	"github.com/geneontology/gopreprocess/internal/storage"
)

const (
	diagnosticsBatch = 5000
	reasonNoGene     = "no_gene"
)

// diagnostics collects rejected and skipped records and writes them to
// the store in batches. Without a store it only counts.
type diagnostics struct {
	ctx   context.Context
	store storage.DiagnosticsStore
	runID string
	log   *logger.Logger

	rejections []storage.Rejection
	skips      []storage.Skip
	skipped    map[string]int
	failed     bool
}

func newDiagnostics(ctx context.Context, store storage.Store, runID string, log *logger.Logger) *diagnostics {
	d := &diagnostics{
		ctx:     ctx,
		runID:   runID,
		log:     log,
		skipped: make(map[string]int),
	}
	if store != nil {
		d.store = store
	}
	return d
}

// Reject implements filter.Sink.
func (d *diagnostics) Reject(bucket filter.Bucket, a *model.Annotation) {
	if d.store == nil {
		return
	}
	d.rejections = append(d.rejections, storage.Rejection{
		Bucket:     string(bucket),
		Subject:    a.Subject.ID.String(),
		Object:     a.Object.ID.String(),
		Evidence:   a.Evidence.Type.String(),
		ProvidedBy: a.ProvidedBy,
	})
	if len(d.rejections) >= diagnosticsBatch {
		d.flush()
	}
}

func (d *diagnostics) Skip(s rewrite.Skip) {
	d.addSkip(storage.Skip{
		Reason:  s.Reason,
		Subject: s.Source.Subject.ID.String(),
		Target:  s.Target,
		Object:  s.Source.Object.ID.String(),
	})
}

// NoGene records a protein record the rewriter could not place.
func (d *diagnostics) NoGene(a *model.Annotation) {
	d.addSkip(storage.Skip{
		Reason:  reasonNoGene,
		Subject: a.Subject.ID.String(),
		Object:  a.Object.ID.String(),
	})
}

func (d *diagnostics) addSkip(s storage.Skip) {
	d.skipped[s.Reason]++
	if d.store == nil {
		return
	}
	d.skips = append(d.skips, s)
	if len(d.skips) >= diagnosticsBatch {
		d.flush()
	}
}

func (d *diagnostics) skipCounts() map[string]int {
	out := make(map[string]int, len(d.skipped))
	for k, v := range d.skipped {
		out[k] = v
	}
	return out
}

// flush writes pending records. After the first failure diagnostics are
// dropped for the rest of the run.
func (d *diagnostics) flush() {
	if d.store == nil || d.failed {
		d.rejections, d.skips = nil, nil
		return
	}
	if len(d.rejections) > 0 {
		if err := d.store.SaveRejections(d.ctx, d.runID, d.rejections); err != nil {
			d.fail(err)
			return
		}
		d.rejections = d.rejections[:0]
	}
	if len(d.skips) > 0 {
		if err := d.store.SaveSkips(d.ctx, d.runID, d.skips); err != nil {
			d.fail(err)
			return
		}
		d.skips = d.skips[:0]
	}
}

func (d *diagnostics) fail(err error) {
	d.log.Warn("failed to save diagnostics, dropping the rest", "error", err)
	d.failed = true
	d.rejections, d.skips = nil, nil
}
