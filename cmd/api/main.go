package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/prasetyo-adi/jobportal_be/internal/config"
	"github.com/prasetyo-adi/jobportal_be/internal/db"
	"github.com/prasetyo-adi/jobportal_be/internal/handlers"
	"github.com/prasetyo-adi/jobportal_be/internal/middleware"
	"github.com/prasetyo-adi/jobportal_be/internal/realtime"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	hub := realtime.NewHub()
	go hub.Run()

	var notifier *realtime.Notifier
	if cfg.RedisAddr != "" {
		rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis not reachable: %v", err)
		}
		notifier = realtime.NewNotifier(hub, rdb)
		go notifier.Run(context.Background())
	} else {
		log.Info("REDIS_ADDR not set, running without cache and pub/sub")
		notifier = realtime.NewNotifier(hub, nil)
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Static("/uploads", cfg.UploadDir)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}

	jobH := handlers.NewJobHandler(gdb, notifier.RDB)
	appH := handlers.NewApplicationHandler(gdb, notifier, cfg.UploadDir, cfg.AppBaseURL)
	notifH := handlers.NewNotificationHandler(hub, cfg.JWTSecret)

	api := app.Group("/api/v1")

	// public
	api.Post("/user/register", authH.Register)
	api.Post("/user/login", authH.Login)
	api.Get("/user/logout", authH.Logout)
	api.Get("/user/google/start", googleH.GoogleStart)
	api.Get("/user/google/callback", googleH.GoogleCallback)
	api.Get("/job/getall", jobH.GetAll)

	// protected (JWT cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/user/getuser", authH.Me)

	job := protected.Group("/job")
	job.Post("/post", middleware.RequireRoles("employer"), jobH.Post)
	job.Get("/getmyjobs", middleware.RequireRoles("employer"), jobH.GetMyJobs)
	job.Put("/update/:id", middleware.RequireRoles("employer"), jobH.Update)
	job.Delete("/delete/:id", middleware.RequireRoles("employer"), jobH.Delete)
	job.Post("/apply/:id", middleware.RequireRoles("job_seeker"), appH.QuickApply)
	job.Get("/:id", jobH.GetSingle)

	application := protected.Group("/application")
	application.Post("/post", middleware.RequireRoles("job_seeker"), appH.Post)
	application.Get("/jobseeker/getall", middleware.RequireRoles("job_seeker"), appH.JobseekerGetAll)
	application.Get("/employer/getall", middleware.RequireRoles("employer"), appH.EmployerGetAll)
	application.Get("/job/:jobId", middleware.RequireRoles("employer"), appH.JobApplicants)
	application.Delete("/delete/:id", middleware.RequireRoles("job_seeker"), appH.Delete)
	application.Put("/status/:id", middleware.RequireRoles("employer"), appH.UpdateStatus)

	app.Get("/ws/notifications", websocket.New(notifH.Serve))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
