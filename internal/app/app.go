package app

import (
	"lifelink-backend/internal/auth"
	"lifelink-backend/internal/config"
	"lifelink-backend/internal/conversations"
	"lifelink-backend/internal/database"
	"lifelink-backend/internal/donors"
	"lifelink-backend/internal/health"
	"lifelink-backend/internal/matching"
	"lifelink-backend/internal/middleware"
	"lifelink-backend/internal/notify"
	"lifelink-backend/internal/requests"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration, returning the shared DB and Redis handles so main can wire
// the sweeper and verify connectivity.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/health/json", healthHandlers.JSON)

	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{DB: db, UserFinder: userFinder, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", authHandlers.Register)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)
	authGroup.Post("/register-push-token", middleware.RequireAuth(), authHandlers.RegisterPushToken)

	if db != nil {
		var pusher notify.Pusher = notify.Nop{}
		if cfg.PushURL != "" {
			pusher = &notify.HTTPPusher{DB: db, URL: cfg.PushURL}
		}

		donorService := &donors.Service{DB: db}
		donorHandlers := &donors.Handlers{Service: donorService}
		donorGroup := app.Group("/api/v1/donors", middleware.RequireAuth())
		donorGroup.Post("/upsert-profile", donorHandlers.UpsertProfile)
		donorGroup.Get("/my-profile", donorHandlers.MyProfile)
		donorGroup.Patch("/set-availability", donorHandlers.SetAvailability)

		pipeline := &matching.Pipeline{
			Matcher:    &matching.Matcher{DB: db},
			Dispatcher: &matching.Dispatcher{DB: db, Pusher: pusher},
		}
		requestService := &requests.Service{DB: db, Alerts: pipeline}
		requestHandlers := &requests.Handlers{Service: requestService}
		requestGroup := app.Group("/api/v1/requests", middleware.RequireAuth())
		requestGroup.Post("/create-request", requestHandlers.CreateRequest)
		requestGroup.Put("/update-request/:id", requestHandlers.UpdateRequest)
		requestGroup.Post("/publish-request/:id", requestHandlers.PublishRequest)
		requestGroup.Post("/transition-request/:id", requestHandlers.TransitionRequest)
		requestGroup.Get("/get-request/:id", requestHandlers.GetRequest)
		requestGroup.Get("/my-requests", requestHandlers.MyRequests)
		requestGroup.Get("/open-requests", requestHandlers.OpenRequests)

		alertHandlers := &matching.Handlers{DB: db}
		alertGroup := app.Group("/api/v1/alerts", middleware.RequireAuth())
		alertGroup.Get("/my-alerts", alertHandlers.MyAlerts)
		alertGroup.Post("/mark-alert-read", alertHandlers.MarkAlertRead)

		convService := &conversations.Service{DB: db}
		convHandlers := &conversations.Handlers{Service: convService}
		convGroup := app.Group("/api/v1/conversations", middleware.RequireAuth())
		convGroup.Post("/open", convHandlers.Open)
		convGroup.Get("/list", convHandlers.List)
		convGroup.Get("/get/:id", convHandlers.GetByID)
		convGroup.Post("/send-message", convHandlers.SendMessage)
		convGroup.Get("/messages/:id", convHandlers.Messages)
		convGroup.Post("/mark-read", convHandlers.MarkRead)
		convGroup.Get("/unread-count", convHandlers.UnreadCount)
	}

	return app, db, rdb, nil
}
