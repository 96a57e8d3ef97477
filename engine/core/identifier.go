package core

import "github.com/google/uuid"

// NewTaskID returns a unique identifier for a unit of background work. Used
// for correlating log lines of asynchronous asset loads.
func NewTaskID() string {
	return uuid.NewString()
}
