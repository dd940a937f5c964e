package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/contenthub/api/internal/service"
	"github.com/contenthub/api/internal/transfer"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	postIDs  []string
	outcomes []transfer.PublishOutcome
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, postID string) ([]transfer.PublishOutcome, error) {
	f.postIDs = append(f.postIDs, postID)
	return f.outcomes, f.err
}

func publishTask(t *testing.T, postID string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(PublishPostPayload{PostID: postID})
	require.NoError(t, err)
	return asynq.NewTask(TaskTypePublishPost, payload)
}

func TestHandlePublishPostTask(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes the post from the payload", func(t *testing.T) {
		publisher := &fakePublisher{outcomes: []transfer.PublishOutcome{{Success: true}}}
		q := NewQueue(publisher)

		err := q.HandlePublishPostTask(ctx, publishTask(t, "post_1"))
		require.NoError(t, err)
		assert.Equal(t, []string{"post_1"}, publisher.postIDs)
	})

	t.Run("policy rejection is not retried", func(t *testing.T) {
		publisher := &fakePublisher{err: &service.PolicyViolationError{Message: "post is already published"}}
		q := NewQueue(publisher)

		err := q.HandlePublishPostTask(ctx, publishTask(t, "post_1"))
		assert.NoError(t, err)
	})

	t.Run("missing post is not retried", func(t *testing.T) {
		publisher := &fakePublisher{err: service.ErrPostNotFound}
		q := NewQueue(publisher)

		err := q.HandlePublishPostTask(ctx, publishTask(t, "gone"))
		assert.NoError(t, err)
	})

	t.Run("transient failure is returned for retry", func(t *testing.T) {
		transient := errors.New("redis down")
		publisher := &fakePublisher{err: transient}
		q := NewQueue(publisher)

		err := q.HandlePublishPostTask(ctx, publishTask(t, "post_1"))
		assert.ErrorIs(t, err, transient)
	})

	t.Run("malformed payload errors out", func(t *testing.T) {
		q := NewQueue(&fakePublisher{})

		err := q.HandlePublishPostTask(ctx, asynq.NewTask(TaskTypePublishPost, []byte("{")))
		assert.Error(t, err)
	})
}
