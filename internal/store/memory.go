package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is a map-backed store with the same record and export-log
// behavior as Store. Nothing survives the process.
//
// Thread-safety: safe for concurrent use via internal mutex.
type Memory struct {
	mu      sync.Mutex
	records map[string]string
	exports []ExportRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]string)}
}

// Load returns the value stored under key.
func (m *Memory) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.records[key]
	return v, ok, nil
}

// Save stores value under key.
func (m *Memory) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = value
	return nil
}

// Clear deletes the record under key.
func (m *Memory) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

// Keys lists all record keys in byte order.
func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// RecordExport appends rec to the export log.
func (m *Memory) RecordExport(_ context.Context, rec ExportRecord) (int64, error) {
	if rec.Format != "json" && rec.Format != "csv" {
		return 0, fmt.Errorf("record export: unsupported format %q", rec.Format)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Seq = int64(len(m.exports) + 1)
	m.exports = append(m.exports, rec)
	return rec.Seq, nil
}

// ListExports returns the export log for an experiment in insertion order.
func (m *Memory) ListExports(_ context.Context, experimentID string) ([]ExportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ExportRecord{}
	for _, rec := range m.exports {
		if rec.ExperimentID == experimentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Close is a no-op so Memory can stand in for Store.
func (m *Memory) Close() error {
	return nil
}
