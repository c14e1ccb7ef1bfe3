package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediawatch-io/collector/app/adapter"
	"github.com/mediawatch-io/collector/app/backoff"
	"github.com/mediawatch-io/collector/app/catalog"
	"github.com/mediawatch-io/collector/app/collector"
	"github.com/mediawatch-io/collector/app/database"
	"github.com/mediawatch-io/collector/app/quality"
	"github.com/mediawatch-io/collector/app/ratelimit"
	"github.com/mediawatch-io/collector/app/secrets"
)

type stubDataRepository struct {
	mu      sync.Mutex
	records []database.CollectedData
	hashes  map[string]bool
	nextID  int64
}

func newStubDataRepository() *stubDataRepository {
	return &stubDataRepository{hashes: make(map[string]bool)}
}

func (s *stubDataRepository) InsertIfAbsent(item database.CollectedData) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hashes[item.ContentHash] {
		return 0, false, nil
	}
	s.hashes[item.ContentHash] = true
	s.nextID++
	item.ID = s.nextID
	s.records = append(s.records, item)
	return item.ID, true, nil
}

func (s *stubDataRepository) HashExists(contentHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hashes[contentHash], nil
}

func (s *stubDataRepository) GetData(sourceID string, limit, offset int) ([]database.CollectedData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []database.CollectedData
	for _, r := range s.records {
		if sourceID == "" || r.SourceID == sourceID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *stubDataRepository) GetDataCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

func (s *stubDataRepository) GetDataCountBySource(sourceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, r := range s.records {
		if r.SourceID == sourceID {
			count++
		}
	}
	return count, nil
}

func (s *stubDataRepository) GetStats() (database.DataStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return database.DataStats{Total: len(s.records)}, nil
}

func (s *stubDataRepository) MarkProcessed(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Processed = true
			return nil
		}
	}
	return fmt.Errorf("record %d not found", id)
}

type stubJobRepository struct {
	mu   sync.Mutex
	jobs map[string]*database.CollectionJob
}

func newStubJobRepository() *stubJobRepository {
	return &stubJobRepository{jobs: make(map[string]*database.CollectionJob)}
}

func (s *stubJobRepository) CreateJob(job database.CollectionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = &job
	return nil
}

func (s *stubJobRepository) GetJob(id string) (*database.CollectionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (s *stubJobRepository) GetJobs(limit int) ([]database.CollectionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []database.CollectionJob
	for _, job := range s.jobs {
		result = append(result, *job)
	}
	return result, nil
}

func (s *stubJobRepository) GetJobStats() (database.JobStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return database.JobStats{Total: len(s.jobs)}, nil
}

func (s *stubJobRepository) MarkRunning(id string) error {
	return s.setStatus(id, database.JobStatusRunning, 0, "")
}

func (s *stubJobRepository) MarkCompleted(id string, itemsCollected int) error {
	return s.setStatus(id, database.JobStatusCompleted, itemsCollected, "")
}

func (s *stubJobRepository) MarkFailed(id string, errorMessage string) error {
	return s.setStatus(id, database.JobStatusFailed, 0, errorMessage)
}

func (s *stubJobRepository) setStatus(id, status string, items int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	now := time.Now().UTC()
	job.Status = status
	job.ItemsCollected = items
	job.ErrorMessage = message
	if status == database.JobStatusRunning {
		job.StartedAt = &now
	} else {
		job.CompletedAt = &now
	}
	return nil
}

type apiHarness struct {
	router   *gin.Engine
	dataRepo *stubDataRepository
	jobRepo  *stubJobRepository
}

func newAPIHarness(t *testing.T, sourceFiles map[string]string, apiAccessKey string) *apiHarness {
	t.Helper()

	dir := t.TempDir()
	for name, content := range sourceFiles {
		if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write source file: %v", err)
		}
	}

	sources := catalog.NewCache(dir)
	if err := sources.Run(); err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	dataRepo := newStubDataRepository()
	jobRepo := newStubJobRepository()

	actx := &adapter.Context{
		HTTPClient: http.DefaultClient,
		Limiter:    ratelimit.NewLimiter(100, 100),
		Backoff:    backoff.NewPolicy(time.Millisecond, 5*time.Millisecond, 2),
		Secrets:    secrets.NewStaticResolver(nil),
		UserAgent:  "collector-test/1.0",
	}
	checker := quality.NewChecker(nil, http.DefaultClient, "collector-test/1.0")

	service := collector.NewService(sources, adapter.NewRegistry(), dataRepo, jobRepo,
		actx, checker, nil, 0)

	handler := NewHandler(sources, dataRepo, jobRepo, service)
	router := NewServer(handler, apiAccessKey)

	return &apiHarness{router: router, dataRepo: dataRepo, jobRepo: jobRepo}
}

func (h *apiHarness) do(method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, req)
	return recorder
}

func TestGetHealth(t *testing.T) {
	h := newAPIHarness(t, map[string]string{
		"feed": "url: https://a.example\ntype: rss\nenabled: true\n",
	}, "")

	resp := h.do(http.MethodGet, "/health", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if body["sources"] != float64(1) {
		t.Errorf("Expected 1 source in health response, got %v", body["sources"])
	}
}

func TestGetStats(t *testing.T) {
	h := newAPIHarness(t, nil, "")

	resp := h.do(http.MethodGet, "/stats", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	for _, section := range []string{"sources", "jobs", "data"} {
		if _, ok := body[section]; !ok {
			t.Errorf("Stats response missing '%s' section", section)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := newAPIHarness(t, nil, "secret-key")

	tests := []struct {
		name     string
		headers  map[string]string
		path     string
		wantCode int
	}{
		{"missing key", nil, "/api/jobs", http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, "/api/jobs", http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "secret-key"}, "/api/jobs", http.StatusOK},
		{"query key", nil, "/api/jobs?api_key=secret-key", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.do(http.MethodGet, tt.path, nil, tt.headers)
			if resp.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAPIDisabledWithoutKey(t *testing.T) {
	h := newAPIHarness(t, nil, "")

	resp := h.do(http.MethodGet, "/api/jobs", nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("API routes should not exist without an access key, got %d", resp.Code)
	}
}

func TestStartCollectionEndpoint(t *testing.T) {
	h := newAPIHarness(t, map[string]string{
		"feed": "url: https://a.example\ntype: rss\nenabled: true\n",
	}, "secret-key")

	body := []byte(`{"source_ids": ["feed"]}`)
	resp := h.do(http.MethodPost, "/api/collect", body, map[string]string{"X-API-Key": "secret-key"})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", resp.Code)
	}

	var parsed struct {
		Jobs []map[string]interface{} `json:"jobs"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if len(parsed.Jobs) != 1 {
		t.Fatalf("Expected 1 created job, got %d", len(parsed.Jobs))
	}
	if parsed.Jobs[0]["status"] != database.JobStatusQueued {
		t.Errorf("New job should be queued, got %v", parsed.Jobs[0]["status"])
	}
}

func TestGetJobEndpoint_NotFound(t *testing.T) {
	h := newAPIHarness(t, nil, "secret-key")

	resp := h.do(http.MethodGet, "/api/jobs/ghost", nil, map[string]string{"X-API-Key": "secret-key"})
	if resp.Code != http.StatusNotFound {
		t.Errorf("Unknown job should return 404, got %d", resp.Code)
	}
}

func TestIngestWebhookEndpoint(t *testing.T) {
	h := newAPIHarness(t, map[string]string{
		"hook": "name: Partner Push\ntype: webhook\nenabled: true\n",
		"feed": "url: https://a.example\ntype: rss\nenabled: true\n",
	}, "")

	envelope := []byte(`{"source_name": "partner", "events": [{"id": "evt-1", "title": "Pushed", "body": "pushed body text"}]}`)

	resp := h.do(http.MethodPost, "/webhooks/hook", envelope, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var job map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &job); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if job["status"] != database.JobStatusCompleted {
		t.Errorf("Expected completed job, got %v (error: %v)", job["status"], job["error_message"])
	}
	if job["items_collected"] != float64(1) {
		t.Errorf("Expected 1 item collected, got %v", job["items_collected"])
	}
}

func TestIngestWebhookEndpoint_Errors(t *testing.T) {
	h := newAPIHarness(t, map[string]string{
		"hook": "type: webhook\nenabled: true\n",
		"feed": "url: https://a.example\ntype: rss\nenabled: true\n",
	}, "")

	valid := `{"source_name": "partner", "events": []}`

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{"unknown source", "/webhooks/ghost", valid, http.StatusNotFound},
		{"non-webhook source", "/webhooks/feed", valid, http.StatusBadRequest},
		{"invalid json", "/webhooks/hook", `{"broken`, http.StatusBadRequest},
		{"missing source name", "/webhooks/hook", `{"events": []}`, http.StatusBadRequest},
		{"missing events", "/webhooks/hook", `{"source_name": "partner"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.do(http.MethodPost, tt.path, []byte(tt.body), nil)
			if resp.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d: %s", tt.wantCode, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestListSourcesEndpoint(t *testing.T) {
	h := newAPIHarness(t, map[string]string{
		"feed": "name: Feed One\nurl: https://a.example\ntype: rss\nenabled: true\n",
	}, "secret-key")

	resp := h.do(http.MethodGet, "/api/sources", nil, map[string]string{"X-API-Key": "secret-key"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.Code)
	}

	var parsed struct {
		Sources []map[string]interface{} `json:"sources"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if len(parsed.Sources) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(parsed.Sources))
	}
	if parsed.Sources[0]["name"] != "Feed One" {
		t.Errorf("Unexpected source name: %v", parsed.Sources[0]["name"])
	}
	if _, ok := parsed.Sources[0]["collected_items"]; !ok {
		t.Error("Source listing should include collected_items")
	}
}

func TestGetDataEndpoint(t *testing.T) {
	h := newAPIHarness(t, nil, "secret-key")

	h.dataRepo.InsertIfAbsent(database.CollectedData{SourceID: "feed", Title: "Item", ContentHash: "hash-1"})
	h.dataRepo.InsertIfAbsent(database.CollectedData{SourceID: "other", Title: "Other", ContentHash: "hash-2"})

	resp := h.do(http.MethodGet, "/api/data?source_id=feed", nil, map[string]string{"X-API-Key": "secret-key"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.Code)
	}

	var parsed struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if len(parsed.Data) != 1 {
		t.Fatalf("Expected 1 filtered record, got %d", len(parsed.Data))
	}
	if parsed.Data[0]["title"] != "Item" {
		t.Errorf("Unexpected record: %v", parsed.Data[0])
	}
}

func TestMarkProcessedEndpoint(t *testing.T) {
	h := newAPIHarness(t, nil, "secret-key")

	id, _, _ := h.dataRepo.InsertIfAbsent(database.CollectedData{SourceID: "feed", ContentHash: "hash-1"})

	resp := h.do(http.MethodPost, fmt.Sprintf("/api/data/%d/processed", id), nil, map[string]string{"X-API-Key": "secret-key"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.Code)
	}

	records, _ := h.dataRepo.GetData("feed", 0, 0)
	if !records[0].Processed {
		t.Error("Record should be marked processed")
	}

	if resp := h.do(http.MethodPost, "/api/data/abc/processed", nil, map[string]string{"X-API-Key": "secret-key"}); resp.Code != http.StatusBadRequest {
		t.Errorf("Non-numeric id should return 400, got %d", resp.Code)
	}
	if resp := h.do(http.MethodPost, "/api/data/999/processed", nil, map[string]string{"X-API-Key": "secret-key"}); resp.Code != http.StatusNotFound {
		t.Errorf("Unknown id should return 404, got %d", resp.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newAPIHarness(t, nil, "")

	resp := h.do(http.MethodOptions, "/health", nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Errorf("Preflight should return 204, got %d", resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Preflight response should carry CORS headers")
	}
}
