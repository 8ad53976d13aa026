package fingerprint

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Of returns a stable fingerprint for an operation vector, used to correlate
// the before/after log and trace records of the same vector within a dispatch.
func Of(op any) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%#v", op))
}
