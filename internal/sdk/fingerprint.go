package sdk

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/adreach/adsdk/internal/core/domain"
)

// Fingerprint derives a stable key summarizing a placement plus
// targeting context, used to correlate cache and telemetry entries.
// Keys are folded in sorted order so equal contexts always produce the
// same fingerprint.
func Fingerprint(placement domain.Placement, tc domain.TargetingContext) string {
	h := fnv.New64a()
	h.Write([]byte(placement))
	h.Write([]byte{0})

	keys := make([]string, 0, len(tc))
	for k := range tc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(tc[k]))
		h.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", h.Sum64())
}
