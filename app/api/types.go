package api

import (
	"github.com/mediawatch-io/collector/app/catalog"
	"github.com/mediawatch-io/collector/app/collector"
	"github.com/mediawatch-io/collector/app/database"
)

type Handler struct {
	sources  *catalog.Cache
	dataRepo database.DataRepository
	jobRepo  database.JobRepository
	service  *collector.Service
}

// collectRequest is the JSON body for POST /api/collect.
type collectRequest struct {
	SourceIDs []string `json:"source_ids"`
}
