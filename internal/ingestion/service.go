package ingestion

import (
	"github.com/aevon-lab/callstats/internal/core/storage"
	"github.com/gin-gonic/gin"
)

const defaultMaxBatch = 5000

// Service accepts call history into the local call log.
type Service struct {
	log              storage.CallLog
	maxBodySizeBytes int
	maxBatch         int
}

func NewService(log storage.CallLog, maxBodySizeMB, maxBatch int) *Service {
	if log == nil {
		panic("ingestion: call log must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	if maxBatch <= 0 {
		maxBatch = defaultMaxBatch
	}
	return &Service{
		log:              log,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
		maxBatch:         maxBatch,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/calls", s.IngestHandler)
}
