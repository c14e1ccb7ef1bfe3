package database

import (
	"time"
)

// Job statuses form a one-directional state machine:
// queued -> running -> {completed, failed}.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// CollectedData is the durable, deduplicated, quality-scored record derived
// from a raw event. Quality fields are fixed at storage time for the batch
// they were scored in; only the Processed flag mutates afterwards.
type CollectedData struct {
	ID            int64
	SourceID      string
	Title         string
	Content       string
	URL           string
	PublishedDate *time.Time
	CollectedAt   time.Time
	ContentHash   string // unique across the whole store
	MetadataJSON  string
	Processed     bool

	// Quality fields
	HTTPOk              *bool // nil = unknown (probe not attempted)
	HasContent          bool
	Duplicate           bool
	Normalized          bool
	SemanticConsistency float64
	OutlierScore        float64
	TrustScore          float64
	QualityScore        float64

	CreatedAt time.Time
}

// CollectionJob tracks one collection run for one source.
type CollectionJob struct {
	ID             string
	SourceID       string
	Status         string
	StartedAt      *time.Time
	CompletedAt    *time.Time
	ItemsCollected int
	ErrorMessage   string
	CreatedAt      time.Time
}

type DataStats struct {
	Total      int
	Processed  int
	AvgQuality float64
}

type JobStats struct {
	Total     int
	Queued    int
	Running   int
	Completed int
	Failed    int
}
