package ingest

import (
	"context"
	"fmt"
	"time"

	"news-hub/config"
	"news-hub/curator"
	"news-hub/feeder"
	"news-hub/metrics"
	"news-hub/models"
	"news-hub/repositories"
	"news-hub/trace"
)

type Stage string

const (
	StageValidate Stage = "validate"
	StageFetch    Stage = "fetch"
	StageCurate   Stage = "curate"
	StageStore    Stage = "store"
)

// Report counts what one sync run did.
type Report struct {
	Fetched    int           `json:"fetched"`
	Normalized int           `json:"normalized"`
	Enriched   int           `json:"enriched"`
	Curated    int           `json:"curated"`
	Dropped    int           `json:"dropped"`
	Created    int           `json:"created"`
	Updated    int           `json:"updated"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

// SyncError is a failed run. Report holds the counts reached before Stage
// failed; articles written before a store failure stay written.
type SyncError struct {
	Stage  Stage
	Report Report
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed at %s (fetched=%d curated=%d): %v", e.Stage, e.Report.Fetched, e.Report.Curated, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Curator is satisfied by *curator.Curator.
type Curator interface {
	CurateWithStats(ctx context.Context, raws []models.RawArticle, count int) ([]models.Article, curator.CurationStats, error)
}

// Enricher fills truncated content and missing images before curation. It
// never fails the run: records it cannot improve are returned untouched.
type Enricher interface {
	Enrich(ctx context.Context, raws []models.RawArticle) ([]models.RawArticle, int)
}

// Hook runs after every run that wrote at least one article.
type Hook interface {
	AfterSync(ctx context.Context, r Report)
}

type HookFunc func(ctx context.Context, r Report)

func (f HookFunc) AfterSync(ctx context.Context, r Report) { f(ctx, r) }

type Orchestrator struct {
	source    feeder.Source
	curator   Curator
	store     repositories.ArticleStore
	enricher  Enricher
	hooks     []Hook
	metrics   *metrics.Metrics
	batchSize int
}

type Option func(*Orchestrator)

func WithEnricher(e Enricher) Option        { return func(o *Orchestrator) { o.enricher = e } }
func WithHooks(h ...Hook) Option            { return func(o *Orchestrator) { o.hooks = append(o.hooks, h...) } }
func WithMetrics(m *metrics.Metrics) Option { return func(o *Orchestrator) { o.metrics = m } }
func WithBatchSize(n int) Option            { return func(o *Orchestrator) { o.batchSize = n } }

func New(source feeder.Source, cur Curator, store repositories.ArticleStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:    source,
		curator:   cur,
		store:     store,
		batchSize: 40,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunSync fetches a batch, curates count articles out of it and upserts them.
func (o *Orchestrator) RunSync(ctx context.Context, count int) (report Report, err error) {
	ctx = trace.EnsureRequest(ctx)
	start := time.Now()
	stage := Stage("ok")

	defer func() {
		report.Duration = time.Since(start)
		if se, ok := err.(*SyncError); ok {
			se.Report = report
			stage = se.Stage
		}
		o.metrics.ObserveSync(string(stage), report.Duration, report.Fetched, report.Curated, report.Created, report.Updated, report.Failed)

		fields := config.Fields{
			"request_id": trace.RequestIDFromContext(ctx),
			"count":      count,
			"fetched":    report.Fetched,
			"normalized": report.Normalized,
			"curated":    report.Curated,
			"created":    report.Created,
			"updated":    report.Updated,
			"failed":     report.Failed,
			"duration":   report.Duration.String(),
		}
		if err != nil {
			fields["stage"] = string(stage)
			fields["error"] = err.Error()
			config.ErrorWithFields("sync failed", fields)
		} else {
			config.InfoWithFields("sync finished", fields)
		}

		if report.Created+report.Updated > 0 {
			for _, h := range o.hooks {
				h.AfterSync(ctx, report)
			}
		}
	}()

	if count < curator.MinCount || count > curator.MaxCount {
		return report, &SyncError{Stage: StageValidate, Err: curator.ErrInvalidCount}
	}

	raws, err := o.source.Fetch(ctx, o.batchSize)
	if err != nil {
		return report, &SyncError{Stage: StageFetch, Err: err}
	}
	report.Fetched = len(raws)
	if len(raws) == 0 {
		return report, nil
	}

	raws = feeder.Normalize(raws)
	report.Normalized = len(raws)
	if len(raws) == 0 {
		return report, nil
	}

	if o.enricher != nil {
		raws, report.Enriched = o.enricher.Enrich(ctx, raws)
	}

	articles, stats, err := o.curator.CurateWithStats(ctx, raws, count)
	report.Dropped = stats.Dropped
	if err != nil {
		return report, &SyncError{Stage: StageCurate, Err: err}
	}
	report.Curated = len(articles)
	if len(articles) == 0 {
		return report, nil
	}

	res, err := o.store.Upsert(ctx, articles)
	report.Created, report.Updated, report.Failed = res.Created, res.Updated, res.Failed
	if err != nil {
		return report, &SyncError{Stage: StageStore, Err: err}
	}
	return report, nil
}
