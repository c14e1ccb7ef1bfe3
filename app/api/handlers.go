package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediawatch-io/collector/app/adapter"
	"github.com/mediawatch-io/collector/app/catalog"
	"github.com/mediawatch-io/collector/app/collector"
	"github.com/mediawatch-io/collector/app/database"
)

func NewHandler(sources *catalog.Cache, dataRepo database.DataRepository,
	jobRepo database.JobRepository, service *collector.Service) *Handler {
	return &Handler{
		sources:  sources,
		dataRepo: dataRepo,
		jobRepo:  jobRepo,
		service:  service,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sources":   h.sources.GetSourceCount(),
	}

	if count, err := h.dataRepo.GetDataCount(); err == nil {
		health["collected_items"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats()
	if err != nil {
		slog.Error("Failed to compute stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": map[string]interface{}{
			"total":   stats.Sources,
			"enabled": stats.EnabledSources,
		},
		"jobs": map[string]interface{}{
			"total":     stats.Jobs.Total,
			"queued":    stats.Jobs.Queued,
			"running":   stats.Jobs.Running,
			"completed": stats.Jobs.Completed,
			"failed":    stats.Jobs.Failed,
		},
		"data": map[string]interface{}{
			"total":           stats.Data.Total,
			"processed":       stats.Data.Processed,
			"average_quality": stats.Data.AvgQuality,
		},
	})
}

// IngestWebhook accepts a pushed event envelope for a webhook source and
// runs a collection job over it synchronously.
func (h *Handler) IngestWebhook(c *gin.Context) {
	sourceID := c.Param("id")

	source, err := h.sources.GetSource(sourceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
		return
	}
	if source.Type != catalog.TypeWebhook {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source does not accept webhooks"})
		return
	}

	var envelope adapter.Envelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if err := envelope.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.service.IngestWebhook(c.Request.Context(), sourceID, &envelope)
	if err != nil {
		slog.Error("Webhook ingestion failed", "source", sourceID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, jobResponse(*job))
}

// StartCollection creates queued jobs for the requested sources (or all
// enabled sources) and returns them without waiting for execution.
func (h *Handler) StartCollection(c *gin.Context) {
	var req collectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
	}

	jobs, err := h.service.StartCollection(req.SourceIDs)
	if err != nil {
		slog.Error("Failed to start collection", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]map[string]interface{}, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, jobResponse(job))
	}

	c.JSON(http.StatusAccepted, gin.H{"jobs": responses})
}

func (h *Handler) ListJobs(c *gin.Context) {
	limit := intQuery(c, "limit", 50)

	jobs, err := h.jobRepo.GetJobs(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_jobs", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]map[string]interface{}, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, jobResponse(job))
	}

	c.JSON(http.StatusOK, gin.H{"jobs": responses})
}

func (h *Handler) GetJob(c *gin.Context) {
	job, err := h.jobRepo.GetJob(c.Param("id"))
	if err != nil {
		slog.Error("Database error", "operation", "get_job", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, jobResponse(*job))
}

func (h *Handler) ListSources(c *gin.Context) {
	sources := h.sources.GetSources()

	responses := make([]map[string]interface{}, 0, len(sources))
	for _, source := range sources {
		info := map[string]interface{}{
			"id":      source.ID,
			"name":    source.Name,
			"url":     source.URL,
			"type":    source.Type,
			"enabled": source.Enabled,
		}

		if count, err := h.dataRepo.GetDataCountBySource(source.ID); err == nil {
			info["collected_items"] = count
		}

		responses = append(responses, info)
	}

	c.JSON(http.StatusOK, gin.H{"sources": responses})
}

func (h *Handler) GetData(c *gin.Context) {
	sourceID := c.Query("source_id")
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	items, err := h.dataRepo.GetData(sourceID, limit, offset)
	if err != nil {
		slog.Error("Database error", "operation", "get_data", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		responses = append(responses, dataResponse(item))
	}

	c.JSON(http.StatusOK, gin.H{"data": responses})
}

func (h *Handler) MarkProcessed(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	if err := h.dataRepo.MarkProcessed(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "processed": true})
}

func jobResponse(job database.CollectionJob) map[string]interface{} {
	return map[string]interface{}{
		"id":              job.ID,
		"source_id":       job.SourceID,
		"status":          job.Status,
		"started_at":      job.StartedAt,
		"completed_at":    job.CompletedAt,
		"items_collected": job.ItemsCollected,
		"error_message":   job.ErrorMessage,
		"created_at":      job.CreatedAt,
	}
}

func dataResponse(item database.CollectedData) map[string]interface{} {
	return map[string]interface{}{
		"id":                   item.ID,
		"source_id":            item.SourceID,
		"title":                item.Title,
		"content":              item.Content,
		"url":                  item.URL,
		"published_date":       item.PublishedDate,
		"collected_at":         item.CollectedAt,
		"content_hash":         item.ContentHash,
		"processed":            item.Processed,
		"http_ok":              item.HTTPOk,
		"has_content":          item.HasContent,
		"semantic_consistency": item.SemanticConsistency,
		"outlier_score":        item.OutlierScore,
		"trust_score":          item.TrustScore,
		"quality_score":        item.QualityScore,
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if value := c.Query(name); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}
