package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/repository"
	"newsdigest/internal/usecase/dispatch"
)

// Renderer turns ordered fragments into the final digest document.
type Renderer interface {
	Render(cycleDate time.Time, fragments []entity.Fragment) (entity.Digest, error)
	Subject(cycleDate time.Time) string
}

// Archiver persists a snapshot of the rendered digest.
type Archiver interface {
	Save(digest entity.Digest) error
}

// Dispatcher fans the digest out to the recipient list.
type Dispatcher interface {
	Dispatch(ctx context.Context, recipients []string, subject string, digest entity.Digest) dispatch.Report
}

// CycleStats reports what one cycle produced.
type CycleStats struct {
	CycleDate  time.Time
	Sections   int
	Fallbacks  int
	Recipients int
	Delivered  int
	Failed     int
	Archived   bool
	Duration   time.Duration
}

// Service runs digest cycles. A cycle aborts only when the recipient
// store cannot be read; provider failures degrade to fallback
// fragments and archiving failures only cost the snapshot.
type Service struct {
	repo       repository.RecipientRepository
	providers  []ContentProvider
	aggregator *Aggregator
	renderer   Renderer
	archiver   Archiver
	dispatcher Dispatcher

	// now is the clock; tests pin it.
	now func() time.Time

	// runMu serializes cycles so an overlapping trigger cannot start a
	// second cycle mid-flight.
	runMu sync.Mutex
}

// NewService wires a cycle service.
func NewService(
	repo repository.RecipientRepository,
	providers []ContentProvider,
	aggregator *Aggregator,
	renderer Renderer,
	archiver Archiver,
	dispatcher Dispatcher,
) *Service {
	return &Service{
		repo:       repo,
		providers:  providers,
		aggregator: aggregator,
		renderer:   renderer,
		archiver:   archiver,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// RunCycle executes one full cycle: read the recipient list, collect
// fragments, render, archive and dispatch. It is safe to call again
// after any outcome; each call is a fresh cycle.
func (s *Service) RunCycle(ctx context.Context) (CycleStats, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := s.now()
	cycleDate := start.UTC().Truncate(24 * time.Hour)

	slog.Info("digest cycle starting",
		slog.String("date", cycleDate.Format("2006-01-02")))

	recipients, err := s.repo.List(ctx)
	if err != nil {
		metrics.RecordCycle(false, time.Since(start))
		return CycleStats{}, fmt.Errorf("RunCycle: %w: %w", entity.ErrStoreUnreadable, err)
	}
	metrics.RecordStoreOperation("list", nil)
	metrics.RecipientsTotal.Set(float64(len(recipients)))

	fragments := s.aggregator.Collect(ctx, s.providers)

	fallbacks := 0
	for _, f := range fragments {
		if f.Fallback {
			fallbacks++
		}
	}

	rendered, err := s.renderer.Render(cycleDate, fragments)
	if err != nil {
		// Render is deterministic over valid fragments, so this is a
		// wiring bug rather than a transient condition.
		metrics.RecordCycle(false, time.Since(start))
		return CycleStats{}, fmt.Errorf("RunCycle: render digest: %w", err)
	}

	stats := CycleStats{
		CycleDate:  cycleDate,
		Sections:   len(fragments),
		Fallbacks:  fallbacks,
		Recipients: len(recipients),
	}

	if s.archiver != nil {
		if err := s.archiver.Save(rendered); err != nil {
			// Losing the snapshot must not cost anyone their digest.
			slog.Error("archiving failed, continuing with dispatch",
				slog.String("date", rendered.DateKey()),
				slog.Any("error", err))
		} else {
			stats.Archived = true
		}
	}

	if len(recipients) == 0 {
		slog.Info("no recipients subscribed, skipping dispatch",
			slog.String("date", rendered.DateKey()))
	} else {
		report := s.dispatcher.Dispatch(ctx, recipients, s.renderer.Subject(cycleDate), rendered)
		stats.Delivered = report.Delivered()
		stats.Failed = report.Failed()
	}

	stats.Duration = time.Since(start)
	metrics.RecordCycle(true, stats.Duration)
	metrics.RecordCycleOutcomes(stats.Delivered, stats.Failed)

	slog.Info("digest cycle finished",
		slog.String("date", rendered.DateKey()),
		slog.Int("sections", stats.Sections),
		slog.Int("fallbacks", stats.Fallbacks),
		slog.Int("recipients", stats.Recipients),
		slog.Int("delivered", stats.Delivered),
		slog.Int("failed", stats.Failed),
		slog.Bool("archived", stats.Archived),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}
