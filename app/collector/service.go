package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mediawatch-io/collector/app/adapter"
	"github.com/mediawatch-io/collector/app/catalog"
	"github.com/mediawatch-io/collector/app/database"
	"github.com/mediawatch-io/collector/app/quality"
)

// Enqueuer schedules asynchronous execution of a created job. Implemented by
// the task scheduler; injected after construction to keep the dependency
// one-directional.
type Enqueuer interface {
	EnqueueCollection(jobID, sourceID string) error
}

// Service orchestrates the collection job lifecycle: source resolution,
// adapter dispatch, and the normalization/dedup/quality pipeline over the
// fetched events.
type Service struct {
	sources  *catalog.Cache
	registry *adapter.Registry
	dataRepo database.DataRepository
	jobRepo  database.JobRepository
	actx     *adapter.Context
	checker  *quality.Checker

	expectedKeywords []string
	minContentLength int

	enqueuer Enqueuer
}

func NewService(sources *catalog.Cache, registry *adapter.Registry,
	dataRepo database.DataRepository, jobRepo database.JobRepository,
	actx *adapter.Context, checker *quality.Checker,
	expectedKeywords []string, minContentLength int) *Service {
	return &Service{
		sources:          sources,
		registry:         registry,
		dataRepo:         dataRepo,
		jobRepo:          jobRepo,
		actx:             actx,
		checker:          checker,
		expectedKeywords: expectedKeywords,
		minContentLength: minContentLength,
	}
}

// SetEnqueuer wires the task scheduler in once it exists.
func (s *Service) SetEnqueuer(e Enqueuer) {
	s.enqueuer = e
}

// StartCollection creates a queued job per requested source and schedules
// asynchronous execution, returning the created jobs immediately. With no
// ids given, all enabled sources are collected. Unknown ids still get a job;
// it fails at run time with a descriptive message.
func (s *Service) StartCollection(sourceIDs []string) ([]database.CollectionJob, error) {
	if len(sourceIDs) == 0 {
		for id := range s.sources.GetEnabledSources() {
			sourceIDs = append(sourceIDs, id)
		}
	}

	jobs := make([]database.CollectionJob, 0, len(sourceIDs))
	for _, sourceID := range sourceIDs {
		job := database.CollectionJob{
			ID:        uuid.NewString(),
			SourceID:  sourceID,
			Status:    database.JobStatusQueued,
			CreatedAt: time.Now().UTC(),
		}

		if err := s.jobRepo.CreateJob(job); err != nil {
			return jobs, fmt.Errorf("failed to create job for source %s: %w", sourceID, err)
		}
		jobs = append(jobs, job)

		if s.enqueuer == nil {
			continue
		}
		if err := s.enqueuer.EnqueueCollection(job.ID, sourceID); err != nil {
			slog.Warn("Failed to enqueue collection job", "job_id", job.ID, "source", sourceID, "error", err)
		}
	}

	return jobs, nil
}

// RunJob executes one collection job to completion or failure. Structural
// problems (unknown source, unregistered adapter, unrecovered fetch error)
// fail the job with a descriptive message; they never crash the service.
func (s *Service) RunJob(ctx context.Context, jobID, sourceID string) error {
	return s.runJob(ctx, jobID, sourceID, nil)
}

// IngestWebhook binds the webhook adapter to an already-received envelope and
// runs a job for it synchronously; the push already represents admitted work
// and the payload is in hand.
func (s *Service) IngestWebhook(ctx context.Context, sourceID string, envelope *adapter.Envelope) (*database.CollectionJob, error) {
	if _, err := s.sources.GetSource(sourceID); err != nil {
		return nil, err
	}

	job := database.CollectionJob{
		ID:        uuid.NewString(),
		SourceID:  sourceID,
		Status:    database.JobStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.jobRepo.CreateJob(job); err != nil {
		return nil, fmt.Errorf("failed to create webhook job: %w", err)
	}

	if err := s.runJob(ctx, job.ID, sourceID, adapter.NewWebhookAdapter(envelope)); err != nil {
		return nil, err
	}

	return s.jobRepo.GetJob(job.ID)
}

func (s *Service) runJob(ctx context.Context, jobID, sourceID string, bound adapter.Adapter) (err error) {
	defer func() {
		// A panicking adapter fails its job, not the process.
		if r := recover(); r != nil {
			slog.Error("Collection job panicked", "job_id", jobID, "source", sourceID, "panic", r)
			s.failJob(jobID, fmt.Sprintf("internal error: %v", r))
			err = fmt.Errorf("collection job panicked: %v", r)
		}
	}()

	if err := s.jobRepo.MarkRunning(jobID); err != nil {
		return fmt.Errorf("failed to start job %s: %w", jobID, err)
	}

	source, err := s.sources.GetSource(sourceID)
	if err != nil {
		s.failJob(jobID, fmt.Sprintf("source not found: %s", sourceID))
		return nil
	}

	a := bound
	if a == nil {
		factory, ok := s.registry.Resolve(source.Type)
		if !ok {
			s.failJob(jobID, fmt.Sprintf("no adapter registered for source type: %s", source.Type))
			return nil
		}
		a = factory()
	}

	started := time.Now()

	events, err := a.Fetch(ctx, source, s.actx)
	if err != nil {
		s.failJob(jobID, fmt.Sprintf("fetch failed: %v", err))
		return nil
	}

	stored, err := s.storeBatch(ctx, events)
	if err != nil {
		s.failJob(jobID, fmt.Sprintf("failed to store collected data: %v", err))
		return nil
	}

	if err := s.jobRepo.MarkCompleted(jobID, stored); err != nil {
		return fmt.Errorf("failed to complete job %s: %w", jobID, err)
	}

	slog.Info("Collection job completed",
		"job_id", jobID,
		"source", sourceID,
		"adapter", a.Name(),
		"duration", time.Since(started).Round(time.Millisecond).String(),
		"fetched", len(events),
		"stored", stored)

	return nil
}

func (s *Service) failJob(jobID, message string) {
	if err := s.jobRepo.MarkFailed(jobID, message); err != nil {
		slog.Error("Failed to record job failure", "job_id", jobID, "error", err)
	}
	slog.Warn("Collection job failed", "job_id", jobID, "reason", message)
}

// Stats is the aggregate view exposed over the API.
type Stats struct {
	Sources        int
	EnabledSources int
	Jobs           database.JobStats
	Data           database.DataStats
}

func (s *Service) GetStats() (Stats, error) {
	jobStats, err := s.jobRepo.GetJobStats()
	if err != nil {
		return Stats{}, err
	}

	dataStats, err := s.dataRepo.GetStats()
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Sources:        s.sources.GetSourceCount(),
		EnabledSources: len(s.sources.GetEnabledSources()),
		Jobs:           jobStats,
		Data:           dataStats,
	}, nil
}
