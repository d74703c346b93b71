package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/SkyeLoft/HTMLBattlepass/handlers"
	"github.com/SkyeLoft/HTMLBattlepass/middleware"
	"github.com/SkyeLoft/HTMLBattlepass/models"
	"github.com/SkyeLoft/HTMLBattlepass/services"
	"github.com/SkyeLoft/HTMLBattlepass/utils"
	"github.com/SkyeLoft/HTMLBattlepass/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // 50MB for admin image uploads
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.ContentItem{},
		&models.Season{},
		&models.Event{},
		&models.UserProgression{},
		&models.ViewedItem{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// --- CONFIGURE Unlock cost ---
	unlockCost := services.DefaultUnlockCost
	if raw := os.Getenv("UNLOCK_COST"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			log.Fatalf("UNLOCK_COST must be a non-negative integer, got %q", raw)
		}
		unlockCost = parsed
	}

	syncInterval := 1 * time.Minute
	if raw := os.Getenv("CATALOG_SYNC_INTERVAL_SECONDS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			log.Fatalf("CATALOG_SYNC_INTERVAL_SECONDS must be a positive integer, got %q", raw)
		}
		syncInterval = time.Duration(parsed) * time.Second
	}
	// --- END CONFIG ---

	eligibilityService := services.NewEligibilityService(db)
	feedService := services.NewFeedService(db, eligibilityService, unlockCost)
	lifecycleService := services.NewLifecycleService(db)
	catalogService := services.NewCatalogService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewCatalogSyncWorker(catalogService, syncInterval)
	syncWorker.Start(ctx)

	lifecycleService.StartExpiryScheduler()

	// ✅ Setup routes — enforced Gateway auth + user context on /s/
	handlers.SetupFeedRoutes(app, feedService)
	handlers.SetupAdminRoutes(app, lifecycleService, catalogService, eligibilityService)

	go func() {
		if err := app.Listen(":5200"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5200")
	log.Printf("✅ Catalog sync running (every %s)", syncInterval)
	log.Printf("✅ Unlock cost: %d token(s)", unlockCost)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
