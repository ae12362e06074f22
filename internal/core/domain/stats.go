package domain

import (
	"time"

	"github.com/google/uuid"
)

// PercentileTableSize is the number of boundary entries in the age table.
const PercentileTableSize = 100

// StatsSnapshot is a derived, rebuildable artifact: the total domain count
// and the serialized percentile boundary table at a point in time.
type StatsSnapshot struct {
	ID             uuid.UUID
	TotalDomains   int
	PercentileData []int
	CreatedAt      time.Time
}
