package database

// DataRepository owns all access to the collected data store. Deduplication
// is enforced here: InsertIfAbsent is atomic with respect to the unique
// content hash index, so concurrent jobs racing on the same content cannot
// both store it.
type DataRepository interface {
	InsertIfAbsent(item CollectedData) (int64, bool, error)
	HashExists(contentHash string) (bool, error)

	GetData(sourceID string, limit, offset int) ([]CollectedData, error)
	GetDataCount() (int, error)
	GetDataCountBySource(sourceID string) (int, error)
	GetStats() (DataStats, error)

	MarkProcessed(id int64) error
}

// JobRepository persists collection job lifecycle. Status transitions are
// guarded: an update only applies when the job is in the expected prior state.
type JobRepository interface {
	CreateJob(job CollectionJob) error
	GetJob(id string) (*CollectionJob, error)
	GetJobs(limit int) ([]CollectionJob, error)
	GetJobStats() (JobStats, error)

	MarkRunning(id string) error
	MarkCompleted(id string, itemsCollected int) error
	MarkFailed(id string, errorMessage string) error
}
