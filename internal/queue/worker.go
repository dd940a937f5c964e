package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/contenthub/api/internal/service"
	"github.com/hibiken/asynq"
)

type Queue struct {
	publisher service.PublisherService
}

func NewQueue(publisher service.PublisherService) *Queue {
	return &Queue{publisher: publisher}
}

// HandlePublishPostTask is the asynq entry point for due scheduled posts. A
// policy rejection is not retried: it means the post already published (or
// is publishing) through another trigger.
func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	outcomes, err := q.publisher.Publish(ctx, payload.PostID)
	if err != nil {
		var policyErr *service.PolicyViolationError
		if errors.As(err, &policyErr) || errors.Is(err, service.ErrPostNotFound) {
			slog.Info("skipping publish task", "post_id", payload.PostID, "reason", err.Error())
			return nil
		}
		return err
	}

	slog.Info("publish task finished", "post_id", payload.PostID, "accounts", len(outcomes))
	return nil
}
