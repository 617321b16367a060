package ingestion

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/headcount-lab/headcount/internal/core/storage"
)

// Invalidator drops cached query responses after new data lands.
type Invalidator interface {
	InvalidateAll()
}

type Service struct {
	store            storage.RawEventStore
	invalidator      Invalidator
	maxBodySizeBytes int
	nowFn            func() time.Time
}

// NewService wires the ingestion endpoints. invalidator may be nil.
func NewService(repo storage.RawEventStore, invalidator Invalidator, maxBodySizeMB int) *Service {
	if repo == nil {
		panic("ingestion: store must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		store:            repo,
		invalidator:      invalidator,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
		nowFn:            time.Now,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/detections", s.IngestHandler)
	r.GET("/v1/detections", s.ListRecentHandler)
}
