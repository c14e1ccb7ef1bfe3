package adapter

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/mediawatch-io/collector/app/catalog"
	"github.com/mediawatch-io/collector/app/quality"
)

// RESTAdapter polls a JSON API. The location of the item list and the item
// field names are configurable per source, so one adapter covers most
// list-shaped REST endpoints. Malformed items are skipped, never fatal.
type RESTAdapter struct{}

func NewRESTAdapter() *RESTAdapter {
	return &RESTAdapter{}
}

func (a *RESTAdapter) Name() string {
	return "api"
}

func (a *RESTAdapter) Fetch(ctx context.Context, source *catalog.Source, actx *Context) ([]RawEvent, error) {
	if !actx.Limiter.TryAcquire(source.ID, 1) {
		slog.Debug("Rate limited, skipping fetch", "adapter", a.Name(), "source", source.ID)
		return nil, nil
	}

	cfg := LoadSourceConfig(source)

	body, err := actx.fetchURL(ctx, source.URL, cfg, source.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch API response: %w", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON in API response")
	}

	items := a.locateItems(body, cfg.Str(keyItemsPath))

	collectedAt := time.Now().UTC()

	events := make([]RawEvent, 0, len(items))
	skipped := 0
	for _, item := range items {
		if !item.IsObject() {
			skipped++
			continue
		}

		event, ok := a.mapItem(item, cfg, source, collectedAt)
		if !ok {
			skipped++
			continue
		}

		events = append(events, event)
	}

	if skipped > 0 {
		slog.Debug("Skipped malformed API items", "source", source.ID, "skipped", skipped)
	}

	return events, nil
}

// locateItems walks the configured items path into the decoded response.
// A missing path or non-array value yields an empty list, matching the
// silent-failure contract for mis-shaped upstream data.
func (a *RESTAdapter) locateItems(body []byte, itemsPath string) []gjson.Result {
	if itemsPath == "" {
		parsed := gjson.ParseBytes(body)
		if parsed.IsArray() {
			return parsed.Array()
		}
		return nil
	}

	located := gjson.GetBytes(body, itemsPath)
	if !located.Exists() || !located.IsArray() {
		return nil
	}
	return located.Array()
}

func (a *RESTAdapter) mapItem(item gjson.Result, cfg Config, source *catalog.Source, collectedAt time.Time) (RawEvent, bool) {
	title := item.Get(cfg.Str(keyTitleField)).String()
	rawBody := item.Get(cfg.Str(keyBodyField)).String()
	itemURL := item.Get(cfg.Str(keyURLField)).String()

	if title == "" && rawBody == "" {
		return RawEvent{}, false
	}

	var publishedAt *time.Time
	if published := item.Get(cfg.Str(keyPublishedField)).String(); published != "" {
		if parsed, err := dateparse.ParseAny(published); err == nil {
			parsed = parsed.UTC()
			publishedAt = &parsed
		}
	}

	normalizedBody := quality.NormalizeText(rawBody)

	metadata := map[string]any{}
	if raw, ok := item.Value().(map[string]any); ok {
		metadata["raw"] = raw
	}

	return RawEvent{
		ID:          cmp.Or(item.Get(cfg.Str(keyIDField)).String(), uuid.NewString()),
		SourceID:    source.ID,
		SourceName:  source.Name,
		CollectedAt: collectedAt,
		Payload: RawEventPayload{
			Title:       title,
			Summary:     quality.NormalizeText(item.Get(cfg.Str(keySummaryField)).String()),
			URL:         itemURL,
			PublishedAt: publishedAt,
			Body:        normalizedBody,
			Metadata:    metadata,
		},
		ContentHash: quality.ContentHash(itemURL, title, normalizedBody),
		Adapter:     a.Name(),
		Version:     SchemaVersion,
	}, true
}
