package adapter

// Factory constructs a fresh adapter instance for one fetch.
type Factory func() Adapter

// Registry maps a source type string to the adapter that handles it.
// Populated once at startup; lookups of unregistered types are a job-level
// configuration error, not a crash.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with the four built-in adapters registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}

	r.Register("rss", func() Adapter { return NewRSSAdapter() })
	r.Register("api", func() Adapter { return NewRESTAdapter() })
	r.Register("web", func() Adapter { return NewWebPageAdapter() })
	r.Register("webhook", func() Adapter { return NewWebhookAdapter(nil) })

	return r
}

func (r *Registry) Register(sourceType string, factory Factory) {
	r.factories[sourceType] = factory
}

func (r *Registry) Resolve(sourceType string) (Factory, bool) {
	factory, ok := r.factories[sourceType]
	return factory, ok
}

// Types returns the registered source type names.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}
