package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homeyield/server/internal/models"
	"homeyield/server/internal/queue"
)

// IngestPusher enqueues catalog ingest batches for asynchronous upsert.
type IngestPusher interface {
	Push(queue.Batch) error
}

type ingestRequest struct {
	Properties []*models.Property             `json:"properties"`
	Valuations []*models.ValuationObservation `json:"valuations"`
}

// Ingest accepts listing rows and valuation observations and enqueues them
// for the batch processor. The payload is split into batches before
// enqueueing; the write itself happens asynchronously.
func (h *Handler) Ingest(c *gin.Context) {
	if h.ingest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ingest is not configured"})
		return
	}

	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse ingest request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ingest payload"})
		return
	}
	if len(req.Properties) == 0 && len(req.Valuations) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to ingest"})
		return
	}

	batches := splitBatches(req.Properties, req.Valuations, h.maxBatchSize)
	for _, batch := range batches {
		if err := h.ingest.Push(batch); err != nil {
			h.logger.WithError(err).Error("Failed to enqueue ingest batch")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ingest queue unavailable"})
			return
		}
	}

	c.JSON(http.StatusAccepted, gin.H{
		"properties": len(req.Properties),
		"valuations": len(req.Valuations),
		"batches":    len(batches),
	})
}

// splitBatches caps each batch at size properties and size valuations.
func splitBatches(properties []*models.Property, valuations []*models.ValuationObservation, size int) []queue.Batch {
	if size < 1 {
		size = 1
	}

	var batches []queue.Batch
	for len(properties) > 0 || len(valuations) > 0 {
		var batch queue.Batch
		if n := len(properties); n > 0 {
			if n > size {
				n = size
			}
			batch.Properties = properties[:n]
			properties = properties[n:]
		}
		if n := len(valuations); n > 0 {
			if n > size {
				n = size
			}
			batch.Valuations = valuations[:n]
			valuations = valuations[n:]
		}
		batches = append(batches, batch)
	}
	return batches
}
