package catalog

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/roach88/trustlab/internal/canon"
)

// Fingerprint returns a non-cryptographic content hash of the catalog:
// 32-bit FNV-1a over its canonical JSON, as lowercase hex without padding.
// It documents which content produced an export; it is not a security
// boundary.
func (c *Catalog) Fingerprint() (string, error) {
	data, err := canon.MarshalStruct(c)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := fnv.New32a()
	h.Write(data)
	return strconv.FormatUint(uint64(h.Sum32()), 16), nil
}
