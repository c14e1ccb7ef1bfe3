package tasks

// TaskSchedulerInterface is the surface the main application and the API
// layer use to manage background task processing.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueCollection(jobID, sourceID string) error
}
