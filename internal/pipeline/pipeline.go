// Package pipeline runs a complete transfer: fetch the reference files,
// build the lookup tables, stream the source annotations through the
// filter and rewriter, and write the aggregated GAF.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/geneontology/gopreprocess/internal/aggregate"
	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/config"
	"github.com/geneontology/gopreprocess/internal/filter"
	"github.com/geneontology/gopreprocess/internal/gaf"
	"github.com/geneontology/gopreprocess/internal/gpi"
	"github.com/geneontology/gopreprocess/internal/logger"
	"github.com/geneontology/gopreprocess/internal/metrics"
	"github.com/geneontology/gopreprocess/internal/model"
	"github.com/geneontology/gopreprocess/internal/report"
	"github.com/geneontology/gopreprocess/internal/retrieval"
	"github.com/geneontology/gopreprocess/internal/storage"
)

const (
	ModeOrtho   = "ortho"
	ModeProtein = "p2g"
)

// Fetcher resolves source keys to local files.
type Fetcher interface {
	FetchAll(ctx context.Context, keys ...string) (map[string]string, error)
}

// Deps are the collaborators shared by every transfer. Store may be nil.
type Deps struct {
	Config  *config.Config
	Log     *logger.Logger
	Fetcher Fetcher
	Store   storage.Store
	Now     func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Result summarises a finished run.
type Result struct {
	RunID      string
	OutputPath string
	Rows       int
	Generated  int
	Filter     filter.Stats
	Scan       gaf.ScanStats
	Skips      map[string]int
	Aggregate  aggregate.Stats
	Report     *report.Report
}

// run carries the bookkeeping of one execution.
type run struct {
	deps    Deps
	log     *logger.Logger
	record  *storage.Run
	report  *report.Report
	metrics *metrics.Recorder
	diag    *diagnostics
	started time.Time
}

func (d Deps) begin(ctx context.Context, mode, sourceTaxon, targetTaxon string) *run {
	r := &run{
		deps: d,
		record: &storage.Run{
			ID:          uuid.NewString(),
			Mode:        mode,
			SourceTaxon: sourceTaxon,
			TargetTaxon: targetTaxon,
		},
		metrics: metrics.NewRecorder(mode, sourceTaxon, targetTaxon),
		started: d.now(),
	}
	r.log = logger.OrNop(d.Log).With("run", r.record.ID, "mode", mode)
	r.report = report.New(r.record.ID, mode, sourceTaxon, targetTaxon)

	if d.Store != nil {
		if err := d.Store.BeginRun(ctx, r.record); err != nil {
			r.log.Warn("failed to record run start", "error", err)
		}
	}
	r.diag = newDiagnostics(ctx, d.Store, r.record.ID, r.log)
	r.log.Info("run started", "source", sourceTaxon, "target", targetTaxon)
	return r
}

// stage times fn and records it in the report and metrics.
func (r *run) stage(name string, fn func() (map[string]float64, error)) error {
	h := r.report.BeginStage(name)
	counters, err := fn()
	elapsed := r.report.EndStage(h, counters, err)
	r.metrics.StageDuration(name, elapsed.Seconds())
	if err != nil {
		r.log.Error("stage failed", "stage", name, "error", err)
		return err
	}
	r.log.Info("stage finished", "stage", name, "elapsed", elapsed)
	return nil
}

// finish persists diagnostics, metrics and the report. The run error is
// returned unchanged; bookkeeping failures are only logged.
func (r *run) finish(ctx context.Context, res *Result, runErr error) (*Result, error) {
	cfg := r.deps.Config
	r.diag.flush()

	if res == nil {
		res = &Result{}
	}
	res.RunID = r.record.ID
	res.Skips = r.diag.skipCounts()
	res.Report = r.report

	r.metrics.Seen(res.Filter.Seen)
	r.metrics.Passed(res.Filter.Passed)
	for bucket, n := range res.Filter.Rejected {
		r.metrics.Rejected(string(bucket), n)
	}
	for reason, n := range res.Skips {
		r.metrics.Skipped(reason, n)
	}
	r.metrics.Generated(res.Generated)
	r.metrics.OutputRows(res.Rows)

	if res.Filter.MissingPMID > 0 {
		r.report.AddSignal("missing_pmid", "transfer", "info",
			"eligible records without a PMID reference", float64(res.Filter.MissingPMID))
	}
	if n := res.Skips[reasonNoGene]; n > 0 {
		r.report.AddSignal("no_gene", "transfer", "warning", "protein records without a gene", float64(n))
	}
	if res.Scan.Malformed > 0 {
		r.report.AddSignal("malformed_lines", "transfer", "warning", "unparseable source lines", float64(res.Scan.Malformed))
	}
	if runErr != nil {
		r.report.AddSignal(kindCode(runErr), "run", "critical", runErr.Error(), 0)
	}
	r.report.Output = res.OutputPath

	if err := r.metrics.WriteFile(outputFile(cfg, cfg.Output.MetricsFile)); err != nil {
		r.log.Warn("failed to write metrics", "error", err)
	}
	if err := r.report.Save(outputFile(cfg, cfg.Output.ReportFile)); err != nil {
		r.log.Warn("failed to write report", "error", err)
	}

	if r.deps.Store != nil {
		r.record.Status = "ok"
		if runErr != nil {
			r.record.Status = "failed"
			r.record.Error = runErr.Error()
		}
		r.record.OutputPath = res.OutputPath
		r.record.Counters = counters(res)
		if err := r.deps.Store.FinishRun(ctx, r.record); err != nil {
			r.log.Warn("failed to record run end", "error", err)
		}
	}

	if runErr != nil {
		r.log.Error("run failed", "error", runErr, "elapsed", r.deps.now().Sub(r.started))
		return res, runErr
	}
	r.log.Info("run finished", "output", res.OutputPath, "rows", res.Rows, "elapsed", r.deps.now().Sub(r.started))
	return res, nil
}

func counters(res *Result) map[string]float64 {
	out := map[string]float64{
		"seen":         float64(res.Filter.Seen),
		"passed":       float64(res.Filter.Passed),
		"missing_pmid": float64(res.Filter.MissingPMID),
		"generated":    float64(res.Generated),
		"output_rows":  float64(res.Rows),
		"malformed":    float64(res.Scan.Malformed),
	}
	for bucket, n := range res.Filter.Rejected {
		out["rejected_"+string(bucket)] = float64(n)
	}
	for reason, n := range res.Skips {
		out["skipped_"+reason] = float64(n)
	}
	return out
}

func kindCode(err error) string {
	if k, ok := apperr.KindOf(err); ok {
		return "error_" + string(k)
	}
	return "error"
}

// outputFile resolves name against the output directory unless absolute.
func outputFile(cfg *config.Config, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.Output.Dir, name)
}

// loadDirectory reads the target organism's GPI file.
func loadDirectory(path string, log *logger.Logger) (*gpi.Directory, error) {
	f, err := retrieval.Open(path)
	if err != nil {
		return nil, apperr.New(apperr.Retrieval, "open gpi", err)
	}
	defer f.Close()
	return gpi.Load(f, path, func(line int, err error) {
		log.Debug("skipping gpi line", "path", path, "line", line, "error", err)
	})
}

// scanSources streams every GAF in paths, in order, into onRecord.
func scanSources(paths []string, log *logger.Logger, onRecord func(*model.Annotation) error) (gaf.ScanStats, error) {
	var total gaf.ScanStats
	rd := gaf.NewReader()
	rd.OnParseError = func(source string, line int, err error) {
		log.Debug("skipping gaf line", "path", source, "line", line, "error", err)
	}
	for _, p := range paths {
		f, err := retrieval.Open(p)
		if err != nil {
			return total, apperr.New(apperr.Retrieval, "open gaf", err)
		}
		stats, err := rd.Scan(f, p, onRecord)
		f.Close()
		total.Add(stats)
		if err != nil {
			return total, err
		}
		log.Info("scanned source", "path", p, "records", stats.Records, "malformed", stats.Malformed)
	}
	return total, nil
}

// writeOutput aggregates and writes the GAF; an empty result is an error.
func writeOutput(agg *aggregate.Aggregator, path string, cfg *config.Config, now time.Time) (int, error) {
	rows, err := agg.Result()
	if err != nil {
		return 0, err
	}
	h := gaf.Header{GeneratedBy: cfg.Output.GeneratedBy, Generated: now}
	if err := gaf.WriteFile(path, h, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// processingDate is the GAF date stamped on generated records.
func processingDate(t time.Time) model.Date {
	return model.Date(t.Format("20060102"))
}

func parseTaxon(taxon string) (model.Curie, error) {
	c, err := model.ParseCurie(taxon)
	if err != nil || c.Namespace != "NCBITaxon" {
		return model.Curie{}, fmt.Errorf("invalid taxon %q", taxon)
	}
	return c, nil
}

func pathsFor(files map[string]string, keys []string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		p, ok := files[k]
		if !ok {
			return nil, apperr.Retrievalf("resolve "+k, "no local file")
		}
		out = append(out, p)
	}
	return out, nil
}

// gpiKey is the source key of a provider's GPI file, e.g. "MGI_GPI".
func gpiKey(provider string) string {
	return provider + "_GPI"
}
