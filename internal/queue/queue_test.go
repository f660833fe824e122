package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"homeyield/server/internal/models"
)

func TestNewIngestQueue(t *testing.T) {
	logger := logrus.New()
	q := NewIngestQueue(10, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestIngestQueue_Push(t *testing.T) {
	logger := logrus.New()
	q := NewIngestQueue(2, logger)

	// Test successful push
	batch := Batch{Properties: []*models.Property{{ZPID: 1}}}
	err := q.Push(batch)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Test queue full
	for i := 0; i < 2; i++ {
		_ = q.Push(Batch{Properties: []*models.Property{{ZPID: int64(i)}}})
	}
	err = q.Push(batch)
	assert.Equal(t, ErrQueueFull, err)

	// Test closed queue
	q.Close()
	err = q.Push(batch)
	assert.Equal(t, ErrQueueClosed, err)
}

func TestIngestQueue_Subscribe(t *testing.T) {
	logger := logrus.New()
	q := NewIngestQueue(10, logger)

	var processed []*models.Property
	var mu sync.Mutex

	// Add handler
	q.Subscribe(func(batch Batch) error {
		mu.Lock()
		processed = append(processed, batch.Properties...)
		mu.Unlock()
		return nil
	})

	// Start queue
	q.Start()

	// Push items
	err := q.Push(Batch{Properties: []*models.Property{{ZPID: 1}, {ZPID: 2}}})
	assert.NoError(t, err)

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	// Verify processing
	mu.Lock()
	assert.Equal(t, 2, len(processed))
	assert.Equal(t, int64(1), processed[0].ZPID)
	assert.Equal(t, int64(2), processed[1].ZPID)
	mu.Unlock()
}

func TestIngestQueue_Close(t *testing.T) {
	logger := logrus.New()
	q := NewIngestQueue(10, logger)

	// Test first close
	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	// Test second close (should be no-op)
	err = q.Close()
	assert.NoError(t, err)
}

func TestIngestQueue_ProcessBatch(t *testing.T) {
	logger := logrus.New()
	q := NewIngestQueue(10, logger)

	var wg sync.WaitGroup
	processedBatches := 0
	var mu sync.Mutex

	// Add multiple handlers
	for i := 0; i < 3; i++ {
		wg.Add(1)
		q.Subscribe(func(batch Batch) error {
			mu.Lock()
			processedBatches++
			mu.Unlock()
			wg.Done()
			return nil
		})
	}

	// Start queue
	q.Start()

	// Push a batch
	err := q.Push(Batch{Valuations: []*models.ValuationObservation{{ZPID: 1}}})
	assert.NoError(t, err)

	// Wait for all handlers
	wg.Wait()

	// Verify all handlers processed the batch
	mu.Lock()
	assert.Equal(t, 3, processedBatches)
	mu.Unlock()
}
