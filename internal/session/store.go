package session

import (
	"context"
	"strings"
)

// Store persists one opaque text record per key.
//
// Load reports found=false for a missing key rather than an error.
type Store interface {
	Load(ctx context.Context, key string) (value string, found bool, err error)
	Save(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}

const storageSuffix = "::session"

// StorageKey returns the record key for an experiment.
func StorageKey(experimentID string) string {
	return experimentID + storageSuffix
}

// ExperimentFromKey is the inverse of StorageKey. ok is false for keys
// that do not hold a session record.
func ExperimentFromKey(key string) (experimentID string, ok bool) {
	id, ok := strings.CutSuffix(key, storageSuffix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
