package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"goeda/adapters/excel"
	"goeda/domain/core"
	"goeda/domain/stage"
	"goeda/domain/table"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/internal/cleaner"
	"goeda/internal/dataset"
	"goeda/internal/errors"
	"goeda/internal/report"
)

// Options are the run-wide settings shared by every profile
type Options struct {
	DataDir     string
	OutputDir   string
	Synthetic   bool // fabricate placeholder columns even when a profile does not enable it
	Seed        int64
	ChartWidth  float64 // inches, used when a chart does not set its own
	ChartHeight float64
}

// DefaultOptions mirrors the configuration defaults
func DefaultOptions() Options {
	return Options{
		DataDir:     ".",
		OutputDir:   "output",
		Seed:        42,
		ChartWidth:  report.DefaultChartWidth,
		ChartHeight: report.DefaultChartHeight,
	}
}

// RunResult is everything one profile run produced
type RunResult struct {
	RunID     core.RunID            `json:"run_id"`
	Profile   string                `json:"profile"`
	OutputDir string                `json:"output_dir"`
	Stages    *stage.PipelineResult `json:"stages"`
	Tables    []*table.Table        `json:"-"`
	Merged    *table.Table          `json:"-"`
	Artifacts []string              `json:"artifacts"`
	Synthetic []string              `json:"synthetic,omitempty"`
	Summary   *report.Summary       `json:"summary,omitempty"`
}

// Runner executes profiles stage by stage
type Runner struct {
	opts   Options
	plan   *stage.StagePlan
	logger *internal.Logger
}

// NewRunner creates a runner with the default stage plan
func NewRunner(opts Options, logger *internal.Logger) *Runner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if opts.DataDir == "" {
		opts.DataDir = "."
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	return &Runner{opts: opts, plan: stage.DefaultPlan(), logger: logger}
}

// run carries state from one stage to the next
type run struct {
	profile Profile
	outDir  string
	result  *RunResult

	sources  []report.SourceSummary
	loaded   []*table.Table
	cleaned  []*table.Table
	analyzed *analyzed
	warnings []string
}

// analyzed holds the analysis products the report stage renders
type analyzed struct {
	table       *table.Table
	merge       *dataset.MergeResult
	describe    *analysis.Description
	correlation *analysis.CorrelationMatrix
	metrics     *analysis.Metrics
	groupings   []groupedSeries
	counts      []countResult
	histograms  []histogramValues
}

type groupedSeries struct {
	spec   Grouping
	series *analysis.Series
}

type countResult struct {
	spec   Count
	series *analysis.Series   // set without hue
	cross  *analysis.CrossTab // set with hue
}

type histogramValues struct {
	spec   Histogram
	values []float64
}

// Run executes load, clean, analyze and report for one profile. The returned
// error is the first failure of an aborting stage; analysis failures are
// recorded in the result and the report still writes the cleaned tables.
func (r *Runner) Run(ctx context.Context, p Profile) (*RunResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := r.plan.Validate(); err != nil {
		return nil, errors.ConfigInvalid("stage plan: " + err.Error())
	}

	runID := core.NewRunID()
	st := &run{
		profile: p,
		outDir:  filepath.Join(r.opts.OutputDir, p.Name),
		result: &RunResult{
			RunID:   runID,
			Profile: p.Name,
			Stages:  stage.NewPipelineResult(r.plan),
		},
	}
	st.result.OutputDir = st.outDir

	r.logger.Info("[Runner] Starting run %s for profile %s (plan %s)", runID.Short(), p.Name, r.plan.Hash().Short())

	var firstErr error
	for i, spec := range r.plan.Stages {
		if err := ctx.Err(); err != nil {
			r.skipRemaining(st, i, "cancelled")
			return st.result, errors.Wrap(err, "run cancelled before "+string(spec.Name))
		}

		start := time.Now()
		res, err := r.runStage(spec.Name, st)
		res.StageName = spec.Name
		res.Duration = time.Since(start).Milliseconds()

		if err != nil {
			res.Success = false
			res.Error = err.Error()
			r.logger.Error("[Runner] %s failed: %v", spec.Name, err)
			st.result.Stages.AddResult(res)
			if firstErr == nil {
				firstErr = err
			}
			if spec.OnFailure == stage.PolicyAbort {
				r.skipRemaining(st, i+1, fmt.Sprintf("%s failed", spec.Name))
				return st.result, err
			}
			continue
		}

		res.Success = true
		st.result.Stages.AddResult(res)
		st.result.Artifacts = append(st.result.Artifacts, res.Artifacts...)
		r.logger.Info("[Runner] %s completed in %dms", spec.Name, res.Duration)
	}

	r.logger.Info("[Runner] Run %s finished: %d/%d stages succeeded, %d artifacts",
		runID.Short(), st.result.Stages.Overall.Successful, st.result.Stages.Overall.TotalStages, len(st.result.Artifacts))
	return st.result, firstErr
}

func (r *Runner) skipRemaining(st *run, from int, reason string) {
	for _, spec := range r.plan.Stages[from:] {
		st.result.Stages.AddResult(stage.StageResult{StageName: spec.Name, Skipped: true, Error: reason})
	}
}

func (r *Runner) runStage(name stage.StageName, st *run) (stage.StageResult, error) {
	switch name {
	case stage.StageLoad:
		return r.load(st)
	case stage.StageClean:
		return r.clean(st)
	case stage.StageAnalyze:
		return r.analyze(st)
	case stage.StageReport:
		return r.report(st)
	default:
		return stage.StageResult{}, errors.InvalidInput("unknown stage " + string(name))
	}
}

// sourcePath resolves a source against the data directory
func (r *Runner) sourcePath(src Source) string {
	if filepath.IsAbs(src.Path) {
		return src.Path
	}
	return filepath.Join(r.opts.DataDir, src.Path)
}

func (r *Runner) sourceConfig(src Source) excel.SourceConfig {
	cfg := excel.DefaultSourceConfig(r.sourcePath(src))
	cfg.Name = src.Name
	cfg.Format = excel.Format(strings.ToLower(src.Format))
	cfg.Sheet = src.Sheet
	if src.Delimiter != "" {
		cfg.Delimiter = []rune(src.Delimiter)[0]
	}
	return cfg
}

func (r *Runner) load(st *run) (stage.StageResult, error) {
	var res stage.StageResult
	for _, src := range st.profile.Sources {
		cfg := r.sourceConfig(src)
		t, err := excel.Load(cfg, r.logger)
		if err != nil {
			return res, err
		}
		st.loaded = append(st.loaded, t)
		st.sources = append(st.sources, report.SourceSummary{
			Name:    src.Name,
			Path:    cfg.FilePath,
			Rows:    t.Len(),
			Columns: append([]string(nil), t.Columns...),
		})
		res.Metrics.RowsOut += t.Len()
	}
	res.Metrics.Tables = len(st.loaded)
	res.Metrics.Fingerprint = fingerprint(st.loaded)
	return res, nil
}

func (r *Runner) clean(st *run) (stage.StageResult, error) {
	var res stage.StageResult
	for i, t := range st.loaded {
		cfg := st.profile.Clean
		if format, err := r.sourceConfig(st.profile.Sources[i]).ResolveFormat(); err == nil && format == excel.FormatXLSX {
			cfg.SerialDates = true
		}

		cleaned, summary, err := cleaner.New(cfg, r.logger).Clean(t)
		if err != nil {
			return res, err
		}
		st.cleaned = append(st.cleaned, cleaned)
		st.sources[i].Rows = cleaned.Len()
		st.sources[i].Columns = append([]string(nil), cleaned.Columns...)
		st.sources[i].Cleaning = summary

		res.Metrics.RowsIn += summary.InputRows
		res.Metrics.RowsOut += summary.OutputRows
	}
	st.result.Tables = st.cleaned
	res.Metrics.Tables = len(st.cleaned)
	res.Metrics.Fingerprint = fingerprint(st.cleaned)
	return res, nil
}

func (r *Runner) analyze(st *run) (stage.StageResult, error) {
	var res stage.StageResult
	spec := st.profile.Analysis
	out := &analyzed{}

	for _, t := range st.cleaned {
		res.Metrics.RowsIn += t.Len()
	}

	if len(st.cleaned) > 1 {
		merger := dataset.NewMerger(dataset.MergeConfig{Key: st.profile.Merge.Key}, r.logger)
		merged, err := merger.Merge(st.cleaned...)
		if err != nil {
			return res, err
		}
		out.merge = merged
		out.table = merged.Table
		st.result.Merged = merged.Table
	} else {
		out.table = st.cleaned[0].Clone()
	}

	if placeholders := st.profile.Synthetic.Placeholders; len(placeholders) > 0 {
		if r.opts.Synthetic || st.profile.Synthetic.Enabled {
			fabricated, err := analysis.NewSynthesizer(r.opts.Seed, r.logger).Fill(out.table, placeholders)
			if err != nil {
				return res, err
			}
			st.result.Synthetic = fabricated
			for _, col := range fabricated {
				r.warn(st, "column %q was filled with random placeholder values", col)
			}
		} else {
			for _, col := range analysis.MissingColumns(out.table, placeholders) {
				r.warn(st, "column %q is missing; charts that need it are skipped (synthetic placeholders are disabled)", col)
			}
		}
	}
	t := out.table

	if spec.KeyMetric != "" {
		if m, err := analysis.KeyMetrics(t, spec.KeyMetric); err != nil {
			r.warn(st, "key metrics skipped: %v", err)
		} else {
			out.metrics = m
			r.logger.Info("[Runner] Total %s: %.2f, average: %.2f, rows: %d", m.Measure, m.Total, m.Mean, m.Rows)
		}
	}

	if spec.Describe {
		if d, err := analysis.Describe(t); err != nil {
			r.warn(st, "describe skipped: %v", err)
		} else {
			out.describe = d
			r.logger.Debug("[Runner] Describe of %s:\n%s", t.Name, report.FormatDescribe(d))
		}
	}

	if spec.Correlation {
		if c, err := analysis.Correlation(t); err != nil {
			r.warn(st, "correlation skipped: %v", err)
		} else {
			out.correlation = c
		}
	}

	for _, g := range spec.Groupings {
		agg, err := analysis.ParseAggregation(g.Agg)
		if err != nil {
			return res, err
		}
		s, err := analysis.GroupBy(t, g.By, g.Measure, agg)
		if err != nil {
			r.warn(st, "grouping %s by %s skipped: %v", g.Measure, g.By, err)
			continue
		}
		switch g.Sort {
		case "desc":
			s.SortByValue(true)
		case "asc":
			s.SortByValue(false)
		}
		out.groupings = append(out.groupings, groupedSeries{spec: g, series: s})
	}

	for _, c := range spec.Counts {
		cr := countResult{spec: c}
		var err error
		if c.Hue != "" {
			cr.cross, err = analysis.CrossCount(t, c.Column, c.Hue)
		} else {
			cr.series, err = countSeries(t, c)
		}
		if err != nil {
			r.warn(st, "count of %s skipped: %v", c.Column, err)
			continue
		}
		out.counts = append(out.counts, cr)
	}

	for _, h := range spec.Histograms {
		values, err := t.Floats(h.Column)
		if err == nil && len(values) == 0 {
			err = core.ErrInsufficientData
		}
		if err != nil {
			r.warn(st, "histogram of %s skipped: %v", h.Column, err)
			continue
		}
		out.histograms = append(out.histograms, histogramValues{spec: h, values: values})
	}

	st.analyzed = out
	res.Metrics.Tables = 1
	res.Metrics.RowsOut = t.Len()
	res.Metrics.Fingerprint = t.Fingerprint()
	res.Warnings = append(res.Warnings, st.warnings...)
	return res, nil
}

// countSeries orders plain counts by key unless a value sort is requested
func countSeries(t *table.Table, c Count) (*analysis.Series, error) {
	if c.Sort == "desc" {
		return analysis.ValueCounts(t, c.Column)
	}
	s, err := analysis.GroupBy(t, c.Column, "", analysis.AggCount)
	if err != nil {
		return nil, err
	}
	if c.Sort == "asc" {
		s.SortByValue(false)
	}
	return s, nil
}

func (r *Runner) report(st *run) (stage.StageResult, error) {
	var res stage.StageResult
	seen := len(st.warnings)
	write := func(path string, err error) error {
		if err != nil {
			return errors.ReportFailed("writing "+path, err)
		}
		res.Artifacts = append(res.Artifacts, path)
		r.logger.Info("[Runner] Wrote %s", path)
		return nil
	}

	for i, t := range st.cleaned {
		path := filepath.Join(st.outDir, st.profile.Sources[i].OutputFile())
		if err := write(path, report.WriteCSV(path, t)); err != nil {
			return res, err
		}
	}
	if st.result.Merged != nil && st.profile.Merge.Output != "" {
		path := filepath.Join(st.outDir, st.profile.Merge.Output)
		if err := write(path, report.WriteCSV(path, st.result.Merged)); err != nil {
			return res, err
		}
	}

	summary := &report.Summary{
		RunID:       st.result.RunID.String(),
		Profile:     st.profile.Name,
		Description: st.profile.Description,
		GeneratedAt: time.Now().UTC(),
		Sources:     st.sources,
		Synthetic:   st.result.Synthetic,
	}

	if a := st.analyzed; a != nil {
		charts, err := r.renderCharts(st, a)
		res.Artifacts = append(res.Artifacts, charts...)
		if err != nil {
			return res, err
		}

		if wb := st.profile.Analysis.Workbook; wb != "" {
			path := filepath.Join(st.outDir, wb)
			if err := write(path, report.WriteWorkbook(path, st.cleaned, workbookCharts(a))); err != nil {
				return res, err
			}
		}

		if a.merge != nil {
			summary.Merge = a.merge.Describe()
		}
		summary.Metrics = a.metrics
		summary.Describe = a.describe
		summary.Correlation = a.correlation
	} else {
		r.warn(st, "analysis unavailable; charts were not rendered")
	}

	summary.Warnings = st.warnings
	summary.Artifacts = append([]string(nil), res.Artifacts...)
	paths, err := report.WriteSummary(st.outDir, summary)
	if err != nil {
		return res, errors.ReportFailed("writing summary", err)
	}
	res.Artifacts = append(res.Artifacts, paths...)
	st.result.Summary = summary

	res.Metrics.Tables = len(st.cleaned)
	res.Warnings = append(res.Warnings, st.warnings[seen:]...)
	return res, nil
}

// renderCharts draws every analysis product and returns the files written
func (r *Runner) renderCharts(st *run, a *analyzed) ([]string, error) {
	var written []string
	draw := func(spec report.ChartSpec, fallback string, fn func(report.ChartSpec) error) error {
		spec = r.chartSpec(st, spec, fallback)
		if err := fn(spec); err != nil {
			return errors.ReportFailed("rendering "+spec.File, err)
		}
		written = append(written, spec.File)
		r.logger.Info("[Runner] Wrote %s", spec.File)
		return nil
	}

	for _, g := range a.groupings {
		chart := report.LineChart
		if g.spec.Chart == "bar" {
			chart = report.BarChart
		}
		fallback := fmt.Sprintf("%s_by_%s.png", g.spec.Measure, g.spec.By)
		if err := draw(g.spec.ChartSpec, fallback, func(s report.ChartSpec) error { return chart(s, g.series) }); err != nil {
			return written, err
		}
	}

	for _, c := range a.counts {
		fallback := fmt.Sprintf("count_%s.png", c.spec.Column)
		fn := func(s report.ChartSpec) error { return report.BarChart(s, c.series) }
		if c.cross != nil {
			fallback = fmt.Sprintf("count_%s_by_%s.png", c.spec.Column, c.spec.Hue)
			fn = func(s report.ChartSpec) error { return report.GroupedBarChart(s, c.cross) }
		}
		if err := draw(c.spec.ChartSpec, fallback, fn); err != nil {
			return written, err
		}
	}

	for _, h := range a.histograms {
		fallback := fmt.Sprintf("histogram_%s.png", h.spec.Column)
		if err := draw(h.spec.ChartSpec, fallback, func(s report.ChartSpec) error { return report.Histogram(s, h.values, h.spec.Bins) }); err != nil {
			return written, err
		}
	}

	if a.correlation != nil {
		spec := st.profile.Analysis.CorrelationChart
		if spec.Title == "" {
			spec.Title = "Correlation Matrix"
		}
		if err := draw(spec, "correlation_matrix.png", func(s report.ChartSpec) error { return report.HeatMap(s, a.correlation) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

// chartSpec fills size defaults and places the file inside the run's output directory
func (r *Runner) chartSpec(st *run, spec report.ChartSpec, fallback string) report.ChartSpec {
	if spec.Width <= 0 {
		spec.Width = r.opts.ChartWidth
	}
	if spec.Height <= 0 {
		spec.Height = r.opts.ChartHeight
	}
	if spec.File == "" {
		spec.File = strings.ReplaceAll(strings.ToLower(fallback), " ", "_")
	}
	if !filepath.IsAbs(spec.File) {
		spec.File = filepath.Join(st.outDir, spec.File)
	}
	return spec
}

func workbookCharts(a *analyzed) []report.WorkbookChart {
	var charts []report.WorkbookChart
	for _, g := range a.groupings {
		kind := report.ChartLine
		if g.spec.Chart == "bar" {
			kind = report.ChartBar
		}
		charts = append(charts, report.WorkbookChart{
			Name:   g.series.Name,
			Title:  g.spec.Title,
			Kind:   kind,
			Series: g.series,
		})
	}
	for _, c := range a.counts {
		if c.series == nil {
			continue
		}
		charts = append(charts, report.WorkbookChart{
			Name:   c.series.Name,
			Title:  c.spec.Title,
			Kind:   report.ChartBar,
			Series: c.series,
		})
	}
	return charts
}

func (r *Runner) warn(st *run, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Warn("[Runner] %s: %s", st.profile.Name, msg)
	st.warnings = append(st.warnings, msg)
}

// fingerprint combines the fingerprints of several tables
func fingerprint(tables []*table.Table) core.Hash {
	parts := make([]string, len(tables))
	for i, t := range tables {
		parts[i] = t.Fingerprint().String()
	}
	return core.NewHash([]byte(strings.Join(parts, ",")))
}
