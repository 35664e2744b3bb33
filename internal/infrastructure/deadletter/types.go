package deadletter

import (
	"time"

	"github.com/google/uuid"

	"github.com/bazarly/analytics/domain"
)

// Record captures an event that failed aggregation, together with where
// and why it failed, so operators can inspect or replay it.
type Record struct {
	ID        string       `json:"id"`
	Stage     string       `json:"stage"`
	Reason    string       `json:"reason"`
	Event     domain.Event `json:"event"`
	Timestamp time.Time    `json:"timestamp"`

	bucketKey []byte
}

func (r *Record) normalize() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
}
