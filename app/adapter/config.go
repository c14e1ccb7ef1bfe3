package adapter

import (
	"github.com/mediawatch-io/collector/app/catalog"
)

// Config is the merged adapter configuration for one source: adapter defaults
// overlaid with the source's free-form metadata.
type Config map[string]any

// Recognized configuration keys.
const (
	keyItemsPath      = "items_path"
	keyTitleField     = "title_field"
	keySummaryField   = "summary_field"
	keyBodyField      = "body_field"
	keyPublishedField = "published_field"
	keyURLField       = "url_field"
	keyIDField        = "id_field"
	keyHeaderSecrets  = "header_secrets"
	keySummary        = "summary"
)

var adapterDefaults = map[string]Config{
	catalog.TypeAPI: {
		keyItemsPath:      "",
		keyTitleField:     "title",
		keySummaryField:   "summary",
		keyBodyField:      "content",
		keyPublishedField: "published_at",
		keyURLField:       "url",
		keyIDField:        "id",
	},
	catalog.TypeRSS:     {},
	catalog.TypeWeb:     {},
	catalog.TypeWebhook: {},
}

// LoadSourceConfig merges the defaults for the source's adapter type with the
// source's stored metadata. Metadata keys win over defaults.
func LoadSourceConfig(source *catalog.Source) Config {
	merged := Config{}

	for k, v := range adapterDefaults[source.Type] {
		merged[k] = v
	}
	for k, v := range source.Metadata {
		merged[k] = v
	}

	return merged
}

// Str returns the string value for key, or empty when absent or mistyped.
func (c Config) Str(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

// HeaderSecrets returns the header name to secret name mapping, tolerating
// the map shapes the YAML decoder produces.
func (c Config) HeaderSecrets() map[string]string {
	result := make(map[string]string)

	switch m := c[keyHeaderSecrets].(type) {
	case map[string]string:
		for header, secret := range m {
			result[header] = secret
		}
	case map[string]any:
		for header, secret := range m {
			if s, ok := secret.(string); ok {
				result[header] = s
			}
		}
	}

	return result
}
