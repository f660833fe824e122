package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeyield/server/config"
	"homeyield/server/internal/catalog"
	"homeyield/server/internal/finance"
	"homeyield/server/internal/models"
	"homeyield/server/internal/queue"
	"homeyield/server/internal/search"
)

type recordingPusher struct {
	batches []queue.Batch
	err     error
}

func (p *recordingPusher) Push(batch queue.Batch) error {
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, batch)
	return nil
}

func ingestRouter(t *testing.T, pusher IngestPusher, maxBatchSize int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := &staticProvider{snapshot: catalog.NewSnapshot(nil, nil)}
	regions := config.NewRegionMap(nil)
	calc := finance.NewCalculatorAt(func() time.Time {
		return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	})
	engine := search.NewEngine(calc, regions, nil)
	handler := NewHandler(provider, engine, &stubRiskProvider{}, nil, regions, pusher, maxBatchSize, nil)

	router := gin.New()
	SetupRoutes(router, handler)
	return router
}

func TestIngest_AcceptsBatch(t *testing.T) {
	pusher := &recordingPusher{}
	router := ingestRouter(t, pusher, 100)

	w := postJSON(t, router, "/api/ingest", map[string]any{
		"properties": []map[string]any{
			{"zpid": 1, "street_address": "12 Palm Ave", "purchase_price": 200000},
			{"zpid": 2, "street_address": "34 Oak St", "purchase_price": 300000},
		},
		"valuations": []map[string]any{
			{"zpid": 1, "date": "2024-01-01T00:00:00Z", "price": 190000},
		},
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, 2.0, body["properties"])
	assert.Equal(t, 1.0, body["valuations"])
	assert.Equal(t, 1.0, body["batches"])

	require.Len(t, pusher.batches, 1)
	require.Len(t, pusher.batches[0].Properties, 2)
	assert.Equal(t, int64(1), pusher.batches[0].Properties[0].ZPID)
	require.Len(t, pusher.batches[0].Valuations, 1)
	assert.Equal(t, 190000.0, pusher.batches[0].Valuations[0].Price)
}

func TestIngest_SplitsOversizedPayload(t *testing.T) {
	pusher := &recordingPusher{}
	router := ingestRouter(t, pusher, 2)

	properties := make([]map[string]any, 5)
	for i := range properties {
		properties[i] = map[string]any{"zpid": i + 1, "street_address": fmt.Sprintf("%d Palm Ave", i+1)}
	}

	w := postJSON(t, router, "/api/ingest", map[string]any{"properties": properties})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 3.0, decodeBody(t, w)["batches"])

	require.Len(t, pusher.batches, 3)
	assert.Len(t, pusher.batches[0].Properties, 2)
	assert.Len(t, pusher.batches[1].Properties, 2)
	assert.Len(t, pusher.batches[2].Properties, 1)
}

func TestIngest_EmptyPayloadRejected(t *testing.T) {
	pusher := &recordingPusher{}
	router := ingestRouter(t, pusher, 100)

	w := postJSON(t, router, "/api/ingest", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, pusher.batches)
}

func TestIngest_QueueFull(t *testing.T) {
	pusher := &recordingPusher{err: queue.ErrQueueFull}
	router := ingestRouter(t, pusher, 100)

	w := postJSON(t, router, "/api/ingest", map[string]any{
		"properties": []map[string]any{{"zpid": 1}},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSplitBatches(t *testing.T) {
	properties := []*models.Property{{ZPID: 1}, {ZPID: 2}, {ZPID: 3}}
	valuations := []*models.ValuationObservation{{ZPID: 1}, {ZPID: 1}, {ZPID: 2}, {ZPID: 3}, {ZPID: 3}}

	batches := splitBatches(properties, valuations, 2)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Properties, 2)
	assert.Len(t, batches[0].Valuations, 2)
	assert.Len(t, batches[1].Properties, 1)
	assert.Len(t, batches[1].Valuations, 2)
	assert.Empty(t, batches[2].Properties)
	assert.Len(t, batches[2].Valuations, 1)
}
