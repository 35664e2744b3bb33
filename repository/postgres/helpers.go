package postgres

import (
	"encoding/json"

	"github.com/bazarly/analytics/domain"
)

func marshalActions(actions []domain.UserAction) []byte {
	if len(actions) == 0 {
		return []byte("[]")
	}
	b, err := json.Marshal(actions)
	if err != nil {
		return []byte("[]")
	}
	return b
}

// seedCounter clamps the insert-time seed at zero. A record created by a
// decrement starts at 0; only post-creation updates may go negative.
func seedCounter(delta int64) int64 {
	if delta < 0 {
		return 0
	}
	return delta
}
