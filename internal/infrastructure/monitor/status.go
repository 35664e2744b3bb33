package monitor

import "time"

type Status struct {
	PostgreSQL     bool      `json:"postgresql"`
	Redis          bool      `json:"redis"`
	QueueDepth     int       `json:"queue_depth"`
	DeadLetterSize int       `json:"dead_letter_size"`
	LastCheck      time.Time `json:"last_check"`
}
