package collector

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mediawatch-io/collector/app/adapter"
	"github.com/mediawatch-io/collector/app/database"
	"github.com/mediawatch-io/collector/app/quality"
)

// storeBatch runs the normalization/dedup/quality pipeline over one job's
// events and appends the survivors to the store as a batch. Returns the
// number of records actually stored.
//
// Events are processed in adapter order. An event is dropped when its
// normalized body is shorter than the configured minimum, when its hash
// already exists in the store, or when the same hash appeared earlier in this
// batch. Outlier statistics are computed once over the surviving candidates,
// never across jobs.
func (s *Service) storeBatch(ctx context.Context, events []adapter.RawEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	seen := make(map[string]bool)
	tooShort := 0
	duplicates := 0

	var candidates []adapter.RawEvent
	for _, event := range events {
		if len(event.Payload.Body) < s.minContentLength {
			tooShort++
			continue
		}

		if seen[event.ContentHash] {
			duplicates++
			continue
		}

		exists, err := s.dataRepo.HashExists(event.ContentHash)
		if err != nil {
			return 0, err
		}
		if exists {
			duplicates++
			continue
		}

		seen[event.ContentHash] = true
		candidates = append(candidates, event)
	}

	lengths := make([]int, len(candidates))
	for i, event := range candidates {
		lengths[i] = len(event.Payload.Body)
	}
	outlierScores := quality.OutlierScores(lengths)

	stored := 0
	for i, event := range candidates {
		record := s.scoreEvent(ctx, event, outlierScores[i])

		_, inserted, err := s.dataRepo.InsertIfAbsent(record)
		if err != nil {
			return stored, err
		}
		if inserted {
			stored++
		} else {
			// A concurrent job won the insert race for this hash.
			duplicates++
		}
	}

	slog.Debug("Batch stored",
		"total", len(events),
		"stored", stored,
		"duplicates", duplicates,
		"too_short", tooShort)

	return stored, nil
}

func (s *Service) scoreEvent(ctx context.Context, event adapter.RawEvent, outlierScore float64) database.CollectedData {
	payload := event.Payload

	var httpOK *bool
	if payload.URL != "" {
		ok := s.checker.CheckURL(ctx, payload.URL)
		httpOK = &ok
	}

	hasContent := payload.Body != ""
	semantic := quality.SemanticConsistency(payload.Body, s.expectedKeywords)

	metadataJSON := "{}"
	if len(payload.Metadata) > 0 {
		if data, err := json.Marshal(payload.Metadata); err == nil {
			metadataJSON = string(data)
		}
	}

	return database.CollectedData{
		SourceID:      event.SourceID,
		Title:         payload.Title,
		Content:       payload.Body,
		URL:           payload.URL,
		PublishedDate: payload.PublishedAt,
		CollectedAt:   event.CollectedAt,
		ContentHash:   event.ContentHash,
		MetadataJSON:  metadataJSON,

		HTTPOk:              httpOK,
		HasContent:          hasContent,
		Duplicate:           false,
		Normalized:          true,
		SemanticConsistency: semantic,
		OutlierScore:        outlierScore,
		TrustScore:          s.checker.TrustScore(payload.URL, httpOK),
		QualityScore:        quality.Score(httpOK, hasContent, false, semantic, outlierScore),

		CreatedAt: time.Now().UTC(),
	}
}
