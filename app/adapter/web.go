package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/mediawatch-io/collector/app/catalog"
	"github.com/mediawatch-io/collector/app/quality"
)

// Tag stripping is deliberately pattern-based. Turning arbitrary HTML into
// structured articles is a separate extraction concern; this adapter only
// needs readable plain text for scoring and hashing.
var (
	scriptRe = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]+>`)
)

// WebPageAdapter fetches a single page and emits exactly one raw event for
// its whole text content.
type WebPageAdapter struct{}

func NewWebPageAdapter() *WebPageAdapter {
	return &WebPageAdapter{}
}

func (a *WebPageAdapter) Name() string {
	return "web"
}

func (a *WebPageAdapter) Fetch(ctx context.Context, source *catalog.Source, actx *Context) ([]RawEvent, error) {
	if !actx.Limiter.TryAcquire(source.ID, 1) {
		slog.Debug("Rate limited, skipping fetch", "adapter", a.Name(), "source", source.ID)
		return nil, nil
	}

	cfg := LoadSourceConfig(source)

	data, err := actx.fetchURL(ctx, source.URL, cfg, source.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	body := quality.NormalizeText(StripHTML(string(data)))

	event := RawEvent{
		ID:          source.ID + ":" + source.URL,
		SourceID:    source.ID,
		SourceName:  source.Name,
		CollectedAt: time.Now().UTC(),
		Payload: RawEventPayload{
			Title:    source.Name,
			Summary:  cfg.Str(keySummary),
			URL:      source.URL,
			Body:     body,
			Metadata: map[string]any{},
		},
		ContentHash: quality.ContentHash(source.URL, source.Name, body),
		Adapter:     a.Name(),
		Version:     SchemaVersion,
	}

	return []RawEvent{event}, nil
}

// StripHTML removes script and style blocks, then all remaining markup tags.
func StripHTML(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	return text
}
