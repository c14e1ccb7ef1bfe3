package catalog

// Source type identifiers understood by the adapter registry.
const (
	TypeRSS     = "rss"
	TypeAPI     = "api"
	TypeWeb     = "web"
	TypeWebhook = "webhook"
)

// Source is a single entry of the source catalog. The catalog is owned
// externally; the collection core only reads it.
type Source struct {
	ID       string         // Derived from filename (without .yml extension) unless set explicitly
	Name     string         `yaml:"name"`
	URL      string         `yaml:"url"`
	Type     string         `yaml:"type"`
	Enabled  bool           `yaml:"enabled"`
	Metadata map[string]any `yaml:"metadata"`
}

// Metadata keys recognized by the adapters, merged over adapter defaults
// by the source config loader:
//
//	items_path      dot/array-index path into a REST response locating the item list
//	title_field     field name overrides for REST items
//	summary_field
//	body_field
//	published_field
//	url_field
//	id_field
//	header_secrets  map of outbound header name -> secret name
//	summary         static summary used by the web adapter
