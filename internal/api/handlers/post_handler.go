package handlers

import (
	"log/slog"
	"time"

	"github.com/contenthub/api/internal/models"
	"github.com/contenthub/api/internal/queue"
	"github.com/contenthub/api/internal/service"
	"github.com/contenthub/api/internal/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

type PostHandler struct {
	s           service.PostService
	publisher   service.PublisherService
	AsynqClient *asynq.Client
}

func NewPostHandler(s service.PostService, publisher service.PublisherService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: s, publisher: publisher, AsynqClient: asynqClient}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Create(c.Context(), userID, &pc)
	if err != nil {
		return respondError(c, err)
	}

	h.enqueueIfScheduled(post)

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	status := c.Query("status")
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	posts, total, err := h.s.List(c.Context(), userID, status, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts":  posts,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	post, media, targets, err := h.s.PostInfo(c.Context(), userID, postID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"post":            post,
		"media":           media,
		"target_accounts": targets,
	})
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	var pu transfer.PostUpdate
	if err := c.BodyParser(&pu); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Update(c.Context(), userID, postID, &pu)
	if err != nil {
		return respondError(c, err)
	}

	h.enqueueIfScheduled(post)

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	if err := h.s.Remove(c.Context(), userID, postID); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post deleted"})
}

func (h *PostHandler) DuplicatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	post, err := h.s.Duplicate(c.Context(), userID, postID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) ReschedulePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	var body struct {
		ScheduledAt string `json:"scheduled_at"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Reschedule(c.Context(), userID, postID, body.ScheduledAt)
	if err != nil {
		return respondError(c, err)
	}

	h.enqueueIfScheduled(post)

	return c.Status(fiber.StatusOK).JSON(post)
}

// PublishPost is the manual "publish now" trigger; it runs the fan-out
// synchronously and returns the per-account outcomes.
func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	// Ownership check before touching the publish pipeline.
	if _, _, _, err := h.s.PostInfo(c.Context(), userID, postID); err != nil {
		return respondError(c, err)
	}

	outcomes, err := h.publisher.Publish(c.Context(), postID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"outcomes": outcomes,
	})
}

func (h *PostHandler) enqueueIfScheduled(post *models.SocialPost) {
	if post == nil || post.Status != models.PostStatusScheduled || !post.ScheduledAt.Valid {
		return
	}

	delay := time.Until(post.ScheduledAt.Time)
	err := queue.EnqueuePost(h.AsynqClient, queue.PublishPostPayload{PostID: post.ID}, delay)
	if err != nil {
		slog.Error("error scheduling publish task", "post_id", post.ID, "error", err.Error())
	}
}
