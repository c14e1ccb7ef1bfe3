package adapter

import (
	"time"
)

// SchemaVersion tags every raw event with the payload schema it was produced
// under, so downstream consumers can evolve independently.
const SchemaVersion = "1.0"

// RawEventPayload is the normalized content of a single ingested item.
// Value object, no identity of its own.
type RawEventPayload struct {
	Title       string
	Summary     string
	URL         string
	PublishedAt *time.Time
	Body        string         // normalized plain text
	Metadata    map[string]any // opaque per-adapter extras (tags, raw record)
}

// RawEvent is the adapter-produced, not-yet-deduplicated unit of ingested
// data. Created exclusively by adapters, immutable once produced, consumed
// exactly once by the normalization pipeline.
type RawEvent struct {
	ID          string
	SourceID    string
	SourceName  string
	CollectedAt time.Time // UTC, set at fetch time
	Payload     RawEventPayload
	ContentHash string
	Adapter     string
	Version     string
}
