package tasks

import (
	"context"

	"github.com/mediawatch-io/collector/app/collector"
)

// CollectSourceTask runs one collection job through the collection service.
// Jobs are the unit of user-visible failure and are never retried at the
// task level; a failed job must be resubmitted.
type CollectSourceTask struct {
	Task
	JobID   string
	service *collector.Service
}

func NewCollectSourceTask(jobID, sourceID string, service *collector.Service) *CollectSourceTask {
	return &CollectSourceTask{
		Task:    NewTask(TaskTypeCollectSource, sourceID),
		JobID:   jobID,
		service: service,
	}
}

func (t *CollectSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	return t.service.RunJob(ctx, t.JobID, t.SourceID)
}
