package secrets

import (
	"net/http"
	"os"
)

// Resolver looks up named secrets from process configuration. Secret values
// are never logged or persisted.
type Resolver struct {
	overrides map[string]string
}

func NewResolver() *Resolver {
	return &Resolver{}
}

// NewStaticResolver resolves only from the given map. Intended for tests.
func NewStaticResolver(values map[string]string) *Resolver {
	return &Resolver{overrides: values}
}

func (r *Resolver) Resolve(name string) (string, bool) {
	if r.overrides != nil {
		value, ok := r.overrides[name]
		return value, ok
	}
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// InjectHeaders resolves each (header, secret name) pair and sets the header
// when the secret is present. Unresolved secrets are skipped silently; a
// missing credential shows up as an upstream auth failure, not a crash here.
func (r *Resolver) InjectHeaders(headerSecrets map[string]string, h http.Header) {
	for header, secretName := range headerSecrets {
		if value, ok := r.Resolve(secretName); ok {
			h.Set(header, value)
		}
	}
}
