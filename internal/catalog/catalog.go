// Package catalog holds the immutable in-memory property dataset. A
// Snapshot is built once from the database and never mutated; concurrent
// requests share it without locking. Refreshes build a new snapshot and
// swap the provider's pointer.
package catalog

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"homeyield/server/internal/database"
	"homeyield/server/internal/models"
	"homeyield/server/internal/riskseries"
)

// Snapshot is a read-only view of the property catalog and the historical
// valuation series.
type Snapshot struct {
	properties []models.Property
	byZPID     map[int64]int
	histories  map[int64]riskseries.Series
}

// Properties returns the catalog rows in natural (zpid) order. Callers
// must not mutate the returned slice.
func (s *Snapshot) Properties() []models.Property {
	return s.properties
}

// Get returns the property with the given id.
func (s *Snapshot) Get(zpid int64) (models.Property, bool) {
	i, ok := s.byZPID[zpid]
	if !ok {
		return models.Property{}, false
	}
	return s.properties[i], true
}

// Histories returns the valuation series keyed by property id. Not every
// property has one.
func (s *Snapshot) Histories() map[int64]riskseries.Series {
	return s.histories
}

// Len returns the number of catalog rows.
func (s *Snapshot) Len() int {
	return len(s.properties)
}

// NewSnapshot builds a snapshot directly from rows. Intended for tests.
func NewSnapshot(properties []models.Property, histories map[int64]riskseries.Series) *Snapshot {
	byZPID := make(map[int64]int, len(properties))
	for i, p := range properties {
		byZPID[p.ZPID] = i
	}
	if histories == nil {
		histories = make(map[int64]riskseries.Series)
	}
	return &Snapshot{properties: properties, byZPID: byZPID, histories: histories}
}

// Provider owns the current catalog snapshot and rebuilds it from the
// database on demand. Reads never block behind a reload; they get whichever
// snapshot was current when they started.
type Provider struct {
	db     *database.Database
	logger *logrus.Logger

	mu      sync.RWMutex
	current *Snapshot

	// onReload hooks run after a successful reload, e.g. risk-cache purges.
	onReload []func()
}

func NewProvider(db *database.Database, logger *logrus.Logger) *Provider {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Provider{db: db, logger: logger}
}

// OnReload registers a hook invoked after each successful reload.
func (p *Provider) OnReload(hook func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReload = append(p.onReload, hook)
}

// Snapshot returns the current catalog. Load or Reload must have succeeded
// at least once first.
func (p *Provider) Snapshot() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Reload rebuilds the snapshot from the database and swaps it in.
func (p *Provider) Reload() error {
	properties, err := p.db.GetAllProperties()
	if err != nil {
		return fmt.Errorf("failed to load properties: %w", err)
	}

	observations, err := p.db.GetValuationHistory()
	if err != nil {
		return fmt.Errorf("failed to load valuation history: %w", err)
	}

	histories := make(map[int64]riskseries.Series)
	for _, obs := range observations {
		series := histories[obs.ZPID]
		series.Dates = append(series.Dates, obs.Date)
		series.Values = append(series.Values, obs.Price)
		histories[obs.ZPID] = series
	}
	for zpid, series := range histories {
		series.Sort()
		histories[zpid] = series
	}

	snapshot := NewSnapshot(properties, histories)

	p.mu.Lock()
	p.current = snapshot
	hooks := p.onReload
	p.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}

	p.logger.WithFields(logrus.Fields{
		"properties": snapshot.Len(),
		"histories":  len(histories),
	}).Info("Catalog snapshot loaded")
	return nil
}
