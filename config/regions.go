package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// RegionMap maps a region name to its member zip codes. It is immutable
// after load; lookups need no locking.
type RegionMap struct {
	zipsByRegion map[string]map[string]struct{}
}

// LoadRegionMap reads the region-to-zipcodes mapping from the given JSON
// file. A missing file yields an empty map rather than an error, matching
// how the rest of the catalog treats optional data files.
func LoadRegionMap(path string) (*RegionMap, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %v", err)
	}

	m := &RegionMap{zipsByRegion: make(map[string]map[string]struct{})}

	data, err := os.ReadFile(absPath)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %v", err)
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse regions file: %v", err)
	}

	for region, zips := range raw {
		set := make(map[string]struct{}, len(zips))
		for _, z := range zips {
			set[z] = struct{}{}
		}
		m.zipsByRegion[region] = set
	}
	return m, nil
}

// NewRegionMap builds a region map directly from in-memory data. Intended
// for tests.
func NewRegionMap(raw map[string][]string) *RegionMap {
	m := &RegionMap{zipsByRegion: make(map[string]map[string]struct{}, len(raw))}
	for region, zips := range raw {
		set := make(map[string]struct{}, len(zips))
		for _, z := range zips {
			set[z] = struct{}{}
		}
		m.zipsByRegion[region] = set
	}
	return m
}

// Contains reports whether the zip code belongs to the named region. An
// unknown region matches nothing.
func (m *RegionMap) Contains(region, zipCode string) bool {
	set, ok := m.zipsByRegion[region]
	if !ok {
		return false
	}
	_, ok = set[zipCode]
	return ok
}

// Regions returns the region names in sorted order.
func (m *RegionMap) Regions() []string {
	names := make([]string, 0, len(m.zipsByRegion))
	for name := range m.zipsByRegion {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ZipCount returns the number of zip codes mapped to the region.
func (m *RegionMap) ZipCount(region string) int {
	return len(m.zipsByRegion[region])
}
