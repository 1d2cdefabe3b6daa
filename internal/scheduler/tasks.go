package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskFollowUpTick = "followup.tick"

type FollowUpTickPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewFollowUpTickTask(payload FollowUpTickPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpTick, data), nil
}

func ParseFollowUpTickPayload(task *asynq.Task) (FollowUpTickPayload, error) {
	var payload FollowUpTickPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpTickPayload{}, err
	}
	return payload, nil
}
