package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/climashield/internal/domain"
	"github.com/couchcryptid/climashield/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize assessment requests from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRequest, error)
}

// Transformer turns a raw request into a finished assessment.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawRequest) (domain.Assessment, error)
}

// BatchLoader writes multiple assessments to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, assessments []domain.Assessment) error
}

// Pipeline orchestrates the extract-assess-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any requests yet")
	}
	return nil
}

// Run executes the batch assessment loop until the context is cancelled.
// Extract and load failures back off exponentially; requests that cannot be
// assessed are committed and skipped.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	b := backoff{next: initialBackoff}
	for ctx.Err() == nil {
		if !p.processBatch(ctx, &b) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// processBatch runs one extract-assess-load cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, b *backoff) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err, "retry_in", b.next)
		return b.wait(ctx)
	}
	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.RequestsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	b.reset()

	assessments, done := p.assessBatch(ctx, rawBatch)
	if len(assessments) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, assessments); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(assessments), "retry_in", b.next)
		return b.wait(ctx)
	}
	p.metrics.AssessmentsProduced.Add(float64(len(assessments)))
	for _, raw := range done {
		p.commitOffset(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Debug("batch loaded",
		"assessments", len(assessments),
		"high_risk", countLevel(assessments, domain.RiskHigh),
		"duration", time.Since(start),
	)
	return true
}

// assessBatch transforms every request. Failures are logged, counted, and
// committed immediately so a malformed request cannot block its partition.
// The returned requests are the ones whose assessments still need loading.
func (p *Pipeline) assessBatch(ctx context.Context, rawBatch []domain.RawRequest) ([]domain.Assessment, []domain.RawRequest) {
	out := make([]domain.Assessment, 0, len(rawBatch))
	done := make([]domain.RawRequest, 0, len(rawBatch))

	for _, raw := range rawBatch {
		a, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("assessment failed, skipping request",
				"error", err,
				"key", string(raw.Key),
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.AssessmentErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		out = append(out, a)
		done = append(done, raw)
	}
	return out, done
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawRequest) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func countLevel(assessments []domain.Assessment, level domain.RiskLevel) int {
	n := 0
	for _, a := range assessments {
		if a.RiskLevel == level {
			n++
		}
	}
	return n
}

// backoff doubles from initialBackoff up to maxBackoff.
type backoff struct {
	next time.Duration
}

func (b *backoff) reset() {
	b.next = initialBackoff
}

// wait sleeps for the current delay and advances it. It returns false if the
// context ends first.
func (b *backoff) wait(ctx context.Context) bool {
	if !sleepWithContext(ctx, b.next) {
		return false
	}
	b.next = min(b.next*2, maxBackoff)
	return true
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
