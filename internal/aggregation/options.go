package aggregation

import (
	"time"

	"github.com/headcount-lab/headcount/internal/core/storage"
)

// BatchJobParameter controls how a rollup run writes to the store.
type BatchJobParameter struct {
	// MarkBatchSize is the number of raw event ids marked consumed per UPDATE.
	MarkBatchSize int
	// Location is the service time zone that calendar days are cut in.
	Location *time.Location
}

// DefaultBatchJobOptions returns safe defaults for scheduled runs.
func DefaultBatchJobOptions() BatchJobParameter {
	return BatchJobParameter{
		MarkBatchSize: storage.DefaultMarkBatchSize,
		Location:      time.Local,
	}
}

func (o BatchJobParameter) normalized() BatchJobParameter {
	n := o
	if n.MarkBatchSize <= 0 {
		n.MarkBatchSize = storage.DefaultMarkBatchSize
	}
	if n.Location == nil {
		n.Location = time.Local
	}
	return n
}
