package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/contenthub/api/internal/queue"
	"github.com/contenthub/api/internal/repository"
	"github.com/hibiken/asynq"
)

// ScheduledPostSweeper re-enqueues scheduled posts whose time has passed.
// The delayed task written at creation time normally fires first; the
// sweeper catches posts whose task was lost to a restart or a flushed
// queue. Double enqueues are harmless: the publisher's state guard rejects
// the second attempt.
type ScheduledPostSweeper struct {
	pr          repository.SocialPostRepository
	asynqClient *asynq.Client
}

func NewScheduledPostSweeper(pr repository.SocialPostRepository, asynqClient *asynq.Client) *ScheduledPostSweeper {
	return &ScheduledPostSweeper{pr: pr, asynqClient: asynqClient}
}

func (s *ScheduledPostSweeper) Sweep() {
	ctx := context.Background()

	posts, err := s.pr.ListDueScheduled(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, post := range posts {
		err := queue.EnqueuePost(s.asynqClient, queue.PublishPostPayload{PostID: post.ID}, 0)
		if err != nil {
			slog.Info("could not enqueue overdue post", "post_id", post.ID, "error", err.Error())
		}
	}
}
