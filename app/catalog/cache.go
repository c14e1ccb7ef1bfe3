package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var validTypes = map[string]bool{
	TypeRSS:     true,
	TypeAPI:     true,
	TypeWeb:     true,
	TypeWebhook: true,
}

// Cache holds the source catalog loaded from a directory of YAML files,
// one file per source.
type Cache struct {
	sourcesDir string
	cache      map[string]*Source
	mu         sync.RWMutex
}

func NewCache(sourcesDir string) *Cache {
	return &Cache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*Source),
	}
}

func (c *Cache) Run() error {
	if _, err := os.Stat(c.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		sourceID := strings.TrimSuffix(fileName, ".yml")

		source, err := c.LoadSource(sourceID)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source loaded", "source", sourceID, "type", source.Type, "enabled", source.Enabled)
	}

	return nil
}

func (c *Cache) LoadSource(sourceID string) (*Source, error) {
	sourceFile := filepath.Join(c.sourcesDir, sourceID+".yml")

	data, err := os.ReadFile(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var source Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	source.ID = sourceID
	if source.Name == "" {
		source.Name = sourceID
	}

	if err := c.validateSource(&source); err != nil {
		return nil, fmt.Errorf("invalid source %s: %w", sourceFile, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[source.ID] = &source

	return &source, nil
}

func (c *Cache) GetSource(sourceID string) (*Source, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	source, ok := c.cache[sourceID]
	if !ok {
		return nil, fmt.Errorf("source with id '%s' not found", sourceID)
	}
	return source, nil
}

func (c *Cache) GetSources() map[string]*Source {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sourcesCopy := make(map[string]*Source, len(c.cache))
	for k, v := range c.cache {
		sourcesCopy[k] = v
	}
	return sourcesCopy
}

func (c *Cache) GetEnabledSources() map[string]*Source {
	c.mu.RLock()
	defer c.mu.RUnlock()

	enabled := make(map[string]*Source)
	for k, v := range c.cache {
		if v.Enabled {
			enabled[k] = v
		}
	}
	return enabled
}

func (c *Cache) GetSourceCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *Cache) validateSource(source *Source) error {
	if source.Type == "" {
		return fmt.Errorf("source type is required")
	}
	if !validTypes[source.Type] {
		return fmt.Errorf("unknown source type: %s", source.Type)
	}
	// Webhook sources receive pushed payloads; every other type needs a URL to pull from.
	if source.URL == "" && source.Type != TypeWebhook {
		return fmt.Errorf("source URL is required")
	}
	return nil
}
