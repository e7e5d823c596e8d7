// Package jobs defines the background tasks processed by the asynq
// worker.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDREWarmup pre-populates the DRE result cache.
	TaskDREWarmup = "dre:warmup"
)

// DREWarmupPayload scopes one warmup run.
type DREWarmupPayload struct {
	RunID    string   `json:"run_id"`
	Accounts []string `json:"contas,omitempty"`
	Projects []string `json:"projetos,omitempty"`
	FromYear int      `json:"de"`
	ToYear   int      `json:"ate"`
}

// NewDREWarmupTask constructs an Asynq task.
func NewDREWarmupTask(payload DREWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDREWarmup, data), nil
}
