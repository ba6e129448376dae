package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"news-hub/config"
	"news-hub/curator"
	"news-hub/dto"
	"news-hub/eventbus"
	"news-hub/events"
	"news-hub/ingest"
	"news-hub/trace"
)

var ErrAsyncDisabled = errors.New("async sync is disabled: no event bus configured")

// SyncRunner is satisfied by *ingest.Orchestrator.
type SyncRunner interface {
	RunSync(ctx context.Context, count int) (ingest.Report, error)
}

// SyncService runs syncs inline (API, CLI) or through the event bus (worker).
// Every finished run is announced on TopicSyncCompleted when a publisher is set.
type SyncService struct {
	runner       SyncRunner
	publisher    eventbus.Publisher
	defaultCount int
}

// NewSyncService accepts a nil publisher; async requests then fail with ErrAsyncDisabled.
func NewSyncService(runner SyncRunner, publisher eventbus.Publisher, defaultCount int) *SyncService {
	if defaultCount <= 0 {
		defaultCount = 10
	}
	return &SyncService{runner: runner, publisher: publisher, defaultCount: defaultCount}
}

func (s *SyncService) resolveCount(count int) int {
	if count == 0 {
		return s.defaultCount
	}
	return count
}

// Sync runs one pipeline pass and returns the response body. On failure the
// error is an *ingest.SyncError carrying the counts reached.
func (s *SyncService) Sync(ctx context.Context, count int) (dto.SyncResponseDTO, error) {
	ctx = trace.EnsureRequest(ctx)
	report, err := s.runner.RunSync(ctx, s.resolveCount(count))
	s.announce(ctx, report, err)
	if err != nil {
		return dto.SyncResponseDTO{}, err
	}
	return NewSyncResponse(report), nil
}

// RequestAsync validates count and publishes a sync.requested event.
func (s *SyncService) RequestAsync(ctx context.Context, count int, requestedBy string) (dto.SyncAcceptedDTO, error) {
	count = s.resolveCount(count)
	if count < curator.MinCount || count > curator.MaxCount {
		return dto.SyncAcceptedDTO{}, curator.ErrInvalidCount
	}
	if s.publisher == nil {
		return dto.SyncAcceptedDTO{}, ErrAsyncDisabled
	}
	ctx = trace.EnsureRequest(ctx)
	evt, err := eventbus.PublishJSON(ctx, s.publisher, eventbus.TopicSyncRequests, events.SyncRequested.String(), events.SyncRequestedEvent{
		Count:       count,
		RequestedBy: requestedBy,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return dto.SyncAcceptedDTO{}, fmt.Errorf("publish sync request: %w", err)
	}
	return dto.SyncAcceptedDTO{
		EventID:   evt.ID,
		RequestID: evt.RequestID,
		Count:     count,
		Message:   fmt.Sprintf("Sync of %d articles queued.", count),
	}, nil
}

// HandleSyncRequested is the worker side of RequestAsync. Validation failures
// are acknowledged without retry; every other failure goes back to the bus.
func (s *SyncService) HandleSyncRequested(ctx context.Context, req events.SyncRequestedEvent, meta eventbus.Event) error {
	config.InfoWithFields("sync requested", config.Fields{
		"request_id":   trace.RequestIDFromContext(ctx),
		"event_id":     meta.ID,
		"count":        req.Count,
		"requested_by": req.RequestedBy,
		"retry":        meta.Retry,
	})
	report, err := s.runner.RunSync(ctx, s.resolveCount(req.Count))
	s.announce(ctx, report, err)

	var se *ingest.SyncError
	if errors.As(err, &se) && se.Stage == ingest.StageValidate {
		return nil
	}
	return err
}

func (s *SyncService) announce(ctx context.Context, report ingest.Report, err error) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	completed := events.Completed(report, err, time.Now())
	if _, perr := eventbus.PublishJSON(ctx, s.publisher, eventbus.TopicSyncCompleted, events.SyncCompleted.String(), completed); perr != nil {
		config.WarnWithFields("sync completion publish failed", config.Fields{
			"request_id": trace.RequestIDFromContext(ctx),
			"error":      perr.Error(),
		})
	}
}

func NewSyncResponse(r ingest.Report) dto.SyncResponseDTO {
	msg := fmt.Sprintf("Synced %d AI-curated articles (%d new).", r.Curated, r.Created)
	if r.Fetched == 0 {
		msg = "No articles fetched from the feed."
	}
	return dto.SyncResponseDTO{
		FetchedFromAPI: r.Fetched,
		AISelected:     r.Curated,
		NewInDB:        r.Created,
		Message:        msg,
		Report:         NewSyncReportDTO(r),
	}
}

func NewSyncReportDTO(r ingest.Report) dto.SyncReportDTO {
	return dto.SyncReportDTO{
		Fetched:    r.Fetched,
		Normalized: r.Normalized,
		Enriched:   r.Enriched,
		Curated:    r.Curated,
		Dropped:    r.Dropped,
		Created:    r.Created,
		Updated:    r.Updated,
		Failed:     r.Failed,
		Duration:   r.Duration.String(),
	}
}
