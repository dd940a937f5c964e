package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/contenthub/api/configs"
	"github.com/contenthub/api/internal/api/handlers"
	"github.com/contenthub/api/internal/api/middleware"
	job "github.com/contenthub/api/internal/jobs"
	"github.com/contenthub/api/internal/queue"
	"github.com/contenthub/api/internal/repository"
	"github.com/contenthub/api/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewSocialPostRepository(db)
	targetAccountRepo := repository.NewTargetAccountRepository(db)
	mediaItemRepo := repository.NewMediaItemRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)

	graphClient := service.NewGraphClient(cfg.GraphAPIVersion)
	storageService := service.NewR2Service(*cfg)
	facebookService := service.NewFacebookService(*cfg, graphClient)
	instagramService := service.NewInstagramService(*cfg, graphClient)
	publisherService := service.NewPublisherService(postRepo, targetAccountRepo, mediaItemRepo, storageService, facebookService, instagramService)
	postService := service.NewPostService(db, postRepo, targetAccountRepo, mediaItemRepo, socialAccountRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api/v1")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, publisherService, client)
	api.Get("/social/posts", post.ListPosts)
	api.Post("/social/posts", post.CreatePost)
	api.Get("/social/posts/:id", post.GetPost)
	api.Put("/social/posts/:id", post.UpdatePost)
	api.Delete("/social/posts/:id", post.RemovePost)
	api.Post("/social/posts/:id/duplicate", post.DuplicatePost)
	api.Put("/social/posts/:id/reschedule", post.ReschedulePost)
	api.Post("/social/posts/:id/publish", post.PublishPost)

	account := handlers.NewAccountHandler(socialAccountRepo)
	api.Get("/social/accounts", account.ListAccounts)
	api.Delete("/social/accounts/:id", account.RemoveAccount)

	// sweeper for scheduled posts whose queue task was lost
	sweeper := job.NewScheduledPostSweeper(postRepo, client)

	queueW := queue.NewQueue(publisherService)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", sweeper.Sweep)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":4000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:4000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
