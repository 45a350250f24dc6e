package main // Entry point package

import (
	"log"  // Logging library
	"time" // Timeout construction

	"github.com/joho/godotenv"    // Load .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/finovai/finovai-backend/internal/ai"         // OpenAI-backed responder
	"github.com/finovai/finovai-backend/internal/chat"       // conversation orchestration
	"github.com/finovai/finovai-backend/internal/config"     // Internal config loader
	"github.com/finovai/finovai-backend/internal/database"   // MySQL pool
	"github.com/finovai/finovai-backend/internal/handler"    // HTTP handlers
	"github.com/finovai/finovai-backend/internal/middleware" // rate limiting
	"github.com/finovai/finovai-backend/internal/queue"      // lead consumer
	"github.com/finovai/finovai-backend/internal/repository" // data access
	"github.com/finovai/finovai-backend/internal/router"     // route registration
	"github.com/finovai/finovai-backend/internal/whatsapp"   // OTP delivery
)

func main() {
	// .env is a development convenience; in production the variables come
	// from the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories over the shared pool.
	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	otps := repository.NewOTPRepo(db)
	convs := repository.NewConversationRepo(db)
	msgs := repository.NewMessageRepo(db)
	leads := repository.NewLeadRepo(db)

	// Reply generation. With no API key the client runs in dev mode and
	// returns a canned reply, so local stacks need no credentials.
	responder := ai.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	aiTimeout := time.Duration(cfg.AITimeoutSec) * time.Second
	bridge := chat.NewBridge(msgs, responder, aiTimeout)
	orchestrator := chat.NewOrchestrator(convs, msgs, bridge)

	sender := whatsapp.NewSender(cfg.KapsoAPIKey, cfg.KapsoPhoneID)

	// Redis-backed rate limiting; the API runs open if Redis is down.
	var rateLimit echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		rateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	} else {
		log.Println("redis unavailable; rate limiting disabled")
	}

	e := echo.New()
	router.Register(e, router.Deps{
		Auth:          handler.NewAuthHandler(cfg, users, sessions, otps, sender),
		Users:         handler.NewUserHandler(users),
		Conversations: handler.NewConversationHandler(convs, msgs, users, orchestrator),
		Legacy:        handler.NewLegacyHandler(responder, leads, aiTimeout),
		Sessions:      sessions,
		RateLimit:     rateLimit,
	})

	// Background consumer appends captured leads to logs/leads.log.  It
	// reconnects on its own; a broker outage never affects the API.
	go func() {
		if err := queue.StartLeadConsumer(); err != nil {
			log.Printf("lead consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
