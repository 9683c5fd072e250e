package assistant

import (
	"fmt"
	"strings"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/store"
)

// MemoryWindow is the number of turns kept verbatim; everything older
// is folded into the digest.
const MemoryWindow = 10

// MemorySummary carries the verbatim recent window plus a textual
// digest of everything older. Only raw turns are ever persisted, so
// recomputing this per request is free of drift.
type MemorySummary struct {
	Digest string
	Recent []store.Turn
}

// Compress partitions history into digest + recent window. Idempotent:
// the same turn list always yields the same boundary and digest text.
func Compress(turns []store.Turn) MemorySummary {
	if len(turns) <= MemoryWindow {
		return MemorySummary{Recent: turns}
	}

	boundary := len(turns) - MemoryWindow
	older := turns[:boundary]
	recent := turns[boundary:]

	crumbs := make([]string, 0, len(older))
	for _, t := range older {
		topic := topicOf(t.Content)
		crumbs = append(crumbs, fmt.Sprintf("%s/%s", t.Role, topic))
	}

	digest := fmt.Sprintf(
		"Earlier in this conversation (%d turns summarized): %s.",
		len(older), strings.Join(crumbs, ", "),
	)
	return MemorySummary{Digest: digest, Recent: recent}
}
