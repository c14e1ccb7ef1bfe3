package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mediawatch-io/collector/app/cfg"
	"github.com/mediawatch-io/collector/app/collector"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs collection tasks on a bounded worker pool and triggers a
// periodic collection round for all enabled sources.
type Scheduler struct {
	service     *collector.Service
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(service *collector.Service) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		service:     service,
		interval:    time.Duration(cfg.CollectionInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.scheduleCollectionRound()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.scheduleCollectionRound()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueCollection implements collector.Enqueuer.
func (s *Scheduler) EnqueueCollection(jobID, sourceID string) error {
	return s.EnqueueTask(NewCollectSourceTask(jobID, sourceID, s.service))
}

// scheduleCollectionRound creates queued jobs for all enabled sources; the
// service enqueues each one back onto this scheduler.
func (s *Scheduler) scheduleCollectionRound() {
	jobs, err := s.service.StartCollection(nil)
	if err != nil {
		slog.Warn("Failed to schedule collection round", "error", err)
		return
	}
	if len(jobs) == 0 {
		slog.Debug("No enabled sources to collect")
		return
	}

	slog.Debug("Collection round scheduled", "jobs", len(jobs))
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed",
			"worker_id", workerID,
			"type", string(task.GetType()),
			"id", task.GetID(),
			"source", task.GetSourceID(),
			"duration", task.GetDuration().Round(time.Millisecond).String(),
			"error", err)
	}
}
