package adapter

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"github.com/mediawatch-io/collector/app/catalog"
	"github.com/mediawatch-io/collector/app/quality"
)

// Envelope is the inbound webhook payload accepted by the ingestion endpoint.
type Envelope struct {
	SourceName string         `json:"source_name"`
	Events     []InboundEvent `json:"events"`
}

// InboundEvent is one pushed item inside a webhook envelope. All fields are
// optional; completely empty events are dropped during mapping.
type InboundEvent struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Summary     string         `json:"summary"`
	URL         string         `json:"url"`
	Body        string         `json:"body"`
	PublishedAt string         `json:"published_at"`
	Metadata    map[string]any `json:"metadata"`
}

// Validate checks the envelope against the expected event shape.
func (e *Envelope) Validate() error {
	if e.SourceName == "" {
		return fmt.Errorf("source_name is required")
	}
	if e.Events == nil {
		return fmt.Errorf("events list is required")
	}
	return nil
}

// WebhookAdapter maps an already-received push payload to raw events. It is
// bound to its envelope at construction, performs no outbound calls, and is
// exempt from the rate limiter: the push already represents admitted work.
// An unbound instance (as produced by the registry) fetches nothing.
type WebhookAdapter struct {
	envelope *Envelope
}

func NewWebhookAdapter(envelope *Envelope) *WebhookAdapter {
	return &WebhookAdapter{envelope: envelope}
}

func (a *WebhookAdapter) Name() string {
	return "webhook"
}

func (a *WebhookAdapter) Fetch(ctx context.Context, source *catalog.Source, actx *Context) ([]RawEvent, error) {
	if a.envelope == nil {
		return nil, nil
	}

	if err := a.envelope.Validate(); err != nil {
		return nil, fmt.Errorf("invalid webhook envelope: %w", err)
	}

	collectedAt := time.Now().UTC()

	events := make([]RawEvent, 0, len(a.envelope.Events))
	for _, inbound := range a.envelope.Events {
		body := quality.NormalizeText(inbound.Body)
		title := inbound.Title

		if title == "" && body == "" {
			continue
		}

		var publishedAt *time.Time
		if inbound.PublishedAt != "" {
			if parsed, err := dateparse.ParseAny(inbound.PublishedAt); err == nil {
				parsed = parsed.UTC()
				publishedAt = &parsed
			}
		}

		metadata := inbound.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}

		events = append(events, RawEvent{
			ID:          cmp.Or(inbound.ID, uuid.NewString()),
			SourceID:    source.ID,
			SourceName:  source.Name,
			CollectedAt: collectedAt,
			Payload: RawEventPayload{
				Title:       title,
				Summary:     quality.NormalizeText(inbound.Summary),
				URL:         inbound.URL,
				PublishedAt: publishedAt,
				Body:        body,
				Metadata:    metadata,
			},
			ContentHash: quality.ContentHash(inbound.URL, title, body),
			Adapter:     a.Name(),
			Version:     SchemaVersion,
		})
	}

	return events, nil
}
