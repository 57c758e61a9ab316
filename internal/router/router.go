package router

import (
	"log"

	"github.com/arafat90/clientflow/backend/internal/aggregator"
	"github.com/arafat90/clientflow/backend/internal/chat"
	"github.com/arafat90/clientflow/backend/internal/handlers"
	"github.com/arafat90/clientflow/backend/internal/middleware"
	"github.com/arafat90/clientflow/backend/internal/models"
	"github.com/arafat90/clientflow/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, redisClient *redis.Client, uploadDir string) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Channel{},
		&models.ChannelMember{},
		&models.DirectMessageThread{},
		&models.MessageReceipt{},
		&models.Reaction{},
		&models.Notification{},
		&models.Reminder{},
		&models.LeadSchedule{},
		&models.Task{},
		&models.TaskMember{},
		&models.Project{},
		&models.CustomerAssignment{},
		&models.PaymentInstallment{},
		&models.RecurringPayment{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.Static("/uploads", uploadDir)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	channelRepo := repositories.NewPostgresChannelRepository(pgdb)
	threadRepo := repositories.NewPostgresThreadRepository(pgdb)
	messageRepo := repositories.NewMongoMessageRepository(mgClient.Database("clientflow"))
	receiptRepo := repositories.NewPostgresReceiptRepository(pgdb)
	reactionRepo := repositories.NewPostgresReactionRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	var presenceRepo repositories.PresenceRepository
	if redisClient != nil {
		presenceRepo = repositories.NewRedisPresenceRepository(redisClient)
		log.Println("Presence store: Redis.")
	} else {
		presenceRepo = repositories.NewMemoryPresenceRepository()
		log.Println("Presence store: in-memory (REDIS_ADDR not set).")
	}

	// --- Chat service (messages, delivery state, reactions, pins) ---
	chatService := chat.NewService(channelRepo, threadRepo, messageRepo, receiptRepo, reactionRepo, userRepo, notificationRepo)

	// --- Notification aggregation engine ---
	agg := aggregator.New(
		aggregator.NewReminderSource(pgdb),
		aggregator.NewScheduleSource(pgdb),
		aggregator.NewTaskAssignedSource(pgdb),
		aggregator.NewTaskDueSource(pgdb),
		aggregator.NewProjectAssignedSource(pgdb),
		aggregator.NewCustomerAssignedSource(pgdb),
		aggregator.NewPaymentDueSource(pgdb),
		aggregator.NewChatSource(receiptRepo, messageRepo, notificationRepo),
	)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User directory routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterRoutes(api)
	log.Println("User directory routes configured.")

	// Chat routes
	chatHandler := handlers.NewChatHandler(chatService, channelRepo, threadRepo, receiptRepo, presenceRepo, userRepo, uploadDir)
	chatHandler.RegisterChatRoutes(api)
	log.Println("Chat routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo, agg)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
