package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSourceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}
}

func TestRun_LoadsSources(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "reuters.yml", `
name: Reuters World
url: https://feeds.example/world
type: rss
enabled: true
`)
	writeSourceFile(t, dir, "newsapi.yml", `
name: News API
url: https://api.example/v2/articles
type: api
enabled: false
metadata:
  items_path: data.items
  title_field: headline
`)

	cache := NewCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if cache.GetSourceCount() != 2 {
		t.Errorf("Expected 2 sources, got %d", cache.GetSourceCount())
	}

	source, err := cache.GetSource("reuters")
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if source.ID != "reuters" {
		t.Errorf("Source ID should derive from filename, got '%s'", source.ID)
	}
	if source.Name != "Reuters World" || source.Type != "rss" || !source.Enabled {
		t.Errorf("Source fields not loaded: %+v", source)
	}

	api, err := cache.GetSource("newsapi")
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if api.Metadata["items_path"] != "data.items" {
		t.Errorf("Metadata should survive loading, got %v", api.Metadata)
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	cache := NewCache("/nonexistent/sources")

	if err := cache.Run(); err != nil {
		t.Errorf("Missing sources directory should not be fatal: %v", err)
	}
	if cache.GetSourceCount() != 0 {
		t.Errorf("Expected empty catalog, got %d sources", cache.GetSourceCount())
	}
}

func TestLoadSource_DefaultsNameToID(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "unnamed.yml", `
url: https://feeds.example/rss
type: rss
enabled: true
`)

	cache := NewCache(dir)
	source, err := cache.LoadSource("unnamed")
	if err != nil {
		t.Fatalf("LoadSource failed: %v", err)
	}
	if source.Name != "unnamed" {
		t.Errorf("Missing name should default to the source ID, got '%s'", source.Name)
	}
}

func TestLoadSource_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"missing type", "url: https://x.example\nenabled: true\n", true},
		{"unknown type", "url: https://x.example\ntype: carrier-pigeon\n", true},
		{"missing url for rss", "type: rss\nenabled: true\n", true},
		{"webhook without url", "type: webhook\nenabled: true\n", false},
		{"bad yaml", "type: [unclosed\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSourceFile(t, dir, "source.yml", tt.content)

			cache := NewCache(dir)
			_, err := cache.LoadSource("source")
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadSource error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnabledSources(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "on.yml", "url: https://a.example\ntype: rss\nenabled: true\n")
	writeSourceFile(t, dir, "off.yml", "url: https://b.example\ntype: rss\nenabled: false\n")

	cache := NewCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	enabled := cache.GetEnabledSources()
	if len(enabled) != 1 {
		t.Fatalf("Expected 1 enabled source, got %d", len(enabled))
	}
	if _, ok := enabled["on"]; !ok {
		t.Error("Expected source 'on' in enabled set")
	}
}

func TestGetSource_NotFound(t *testing.T) {
	cache := NewCache(t.TempDir())

	if _, err := cache.GetSource("ghost"); err == nil {
		t.Error("Unknown source ID should return an error")
	}
}
