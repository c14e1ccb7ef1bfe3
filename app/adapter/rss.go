package adapter

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/mediawatch-io/collector/app/catalog"
	"github.com/mediawatch-io/collector/app/quality"
)

// RSSAdapter pulls an RSS/Atom feed and emits one raw event per entry.
type RSSAdapter struct {
	parser *gofeed.Parser
}

func NewRSSAdapter() *RSSAdapter {
	return &RSSAdapter{
		parser: gofeed.NewParser(),
	}
}

func (a *RSSAdapter) Name() string {
	return "rss"
}

func (a *RSSAdapter) Fetch(ctx context.Context, source *catalog.Source, actx *Context) ([]RawEvent, error) {
	if !actx.Limiter.TryAcquire(source.ID, 1) {
		slog.Debug("Rate limited, skipping fetch", "adapter", a.Name(), "source", source.ID)
		return nil, nil
	}

	cfg := LoadSourceConfig(source)

	data, err := actx.fetchURL(ctx, source.URL, cfg, source.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := a.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	collectedAt := time.Now().UTC()

	events := make([]RawEvent, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		body := quality.NormalizeText(cmp.Or(item.Content, item.Description))

		metadata := map[string]any{}
		if len(item.Categories) > 0 {
			metadata["categories"] = item.Categories
		}

		events = append(events, RawEvent{
			ID:          cmp.Or(item.GUID, item.Link, uuid.NewString()),
			SourceID:    source.ID,
			SourceName:  source.Name,
			CollectedAt: collectedAt,
			Payload: RawEventPayload{
				Title:       item.Title,
				Summary:     quality.NormalizeText(item.Description),
				URL:         item.Link,
				PublishedAt: item.PublishedParsed,
				Body:        body,
				Metadata:    metadata,
			},
			ContentHash: quality.ContentHash(item.Link, item.Title, body),
			Adapter:     a.Name(),
			Version:     SchemaVersion,
		})
	}

	return events, nil
}
