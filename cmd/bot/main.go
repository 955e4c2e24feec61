package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/legendauc/auctionbot/docs"
	"github.com/legendauc/auctionbot/internal/bot"
	"github.com/legendauc/auctionbot/internal/config"
	"github.com/legendauc/auctionbot/internal/database"
	"github.com/legendauc/auctionbot/internal/handlers"
	mW "github.com/legendauc/auctionbot/internal/middleware"
	"github.com/legendauc/auctionbot/internal/services"
)

// @title Legend Auction Bot API
// @version 1.0
// @description Read-only auction API and admin bid retraction for the auction bot
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	docs.SwaggerInfo.Host = cfg.HTTPAddr

	marketDB := database.MustOpen(database.Marketplace, cfg.Marketplace)
	defer marketDB.Close()
	identityDB := database.MustOpen(database.Identity, cfg.Identity)
	defer identityDB.Close()

	redisClient, err := database.InitRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer redisClient.Close()

	var events services.EventPublisher = services.NopPublisher{}
	if cfg.NATSURL != "" {
		publisher, err := services.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			log.Printf("Warning: NATS unavailable, auction events disabled: %v", err)
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	// Initialize services
	ledger := services.NewAuctionLedger(marketDB, events)
	submissions := services.NewSubmissionService(marketDB, ledger)
	status := services.NewSystemStatusService(marketDB)
	verification := services.NewVerificationService(identityDB)
	links := services.NewDeepLinkService(cfg.BotUsername)

	telegram, err := bot.NewTelegram(cfg.BotToken)
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v", err)
	}
	if err := telegram.RegisterCommands(cfg.AdminIDs); err != nil {
		log.Printf("Warning: %v", err)
	}

	var tokens bot.TokenIssuer
	if cfg.JWTSecret != "" {
		tokens = func(userID int64) (string, error) {
			return mW.IssueAdminToken(cfg.JWTSecret, userID, cfg.JWTTTL)
		}
	}

	router := bot.NewRouter(bot.Config{
		Admins:            cfg.AdminIDs,
		ChannelID:         cfg.ChannelID,
		ChannelUsername:   cfg.ChannelUsername,
		RejectedRetention: cfg.RejectedRetention,
		RequestRetention:  cfg.RequestRetention,
	}, bot.Deps{
		Messenger:   telegram,
		Ledger:      ledger,
		Submissions: submissions,
		Status:      status,
		Verifier:    verification,
		Drafts:      services.NewWizardStore(redisClient, cfg.SessionTTL),
		Sessions:    services.NewBidSessionStore(redisClient, cfg.SessionTTL),
		Wizard:      services.NewWizard(cfg.SourceBot),
		Links:       links,
		Audit:       services.NewActivityLogger(verification),
		Tokens:      tokens,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	botDone := make(chan error, 1)
	go func() {
		botDone <- bot.NewRunner(telegram, router).Run(ctx)
	}()

	// Setup router
	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{"status": "healthy"}
		if err := marketDB.PingContext(r.Context()); err != nil {
			health["status"] = "degraded"
			health["marketplace"] = err.Error()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		handlers.Mount(r,
			handlers.NewAuctionHandler(ledger, router),
			handlers.NewQRHandler(links, ledger),
			mW.AdminAuth(cfg.JWTSecret, cfg.IsAdmin))
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	botStopped, botErr := awaitStop(ctx, botDone)
	if botStopped {
		log.Printf("Bot loop ended: %v", botErr)
		stop()
	}
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if !botStopped {
		select {
		case err := <-botDone:
			if err != nil {
				log.Printf("Bot loop ended with error: %v", err)
			}
		case <-shutdownCtx.Done():
			log.Println("Bot loop did not stop in time")
		}
	}

	log.Println("Server stopped")
}

// awaitStop blocks until a signal arrives or the bot loop exits on its own,
// reporting which one happened.
func awaitStop(ctx context.Context, botDone <-chan error) (bool, error) {
	select {
	case <-ctx.Done():
		return false, nil
	case err := <-botDone:
		return true, err
	}
}
