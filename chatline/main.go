package main

import (
	"chatline/chatline/auth"
	"chatline/chatline/config"
	"chatline/chatline/controllers"
	"chatline/chatline/middlewares"
	"chatline/chatline/routes"
	"chatline/chatline/sources/psql"
	"chatline/chatline/sources/psql/dao"
	"chatline/chatline/sources/storage"
	"chatline/chatline/utils/logging"
	"chatline/chatline/ws"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	registry, err := auth.LoadRegistry(cfg.AccountsFile)
	if err != nil {
		logging.ErrorLogger.Error("accounts file error", zap.Error(err))
		os.Exit(1)
	}

	// Content area for uploaded attachments
	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		logging.ErrorLogger.Error("minio connection error", zap.Error(err))
		os.Exit(1)
	}

	messageDAO := dao.NewMessageDAO(db.DB)
	hub := ws.NewHub()

	authCtrl := controllers.NewAuthController(registry, cfg)
	msgCtrl := controllers.NewMessageController(messageDAO, minioClient, hub, cfg.AllowedExtensions)
	msgCtrl.RegisterEvents(hub)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Request/response surface gets the usual timeout; the /chat mount is
	// excluded because it carries the long-lived WebSocket.
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Timeout(60 * time.Second))
		gr.Mount("/auth", routes.AuthRoutes(authCtrl, cfg))
		gr.Mount("/health", routes.HealthRoutes(healthCtrl))
		gr.With(middlewares.AuthMiddleware(cfg)).
			Post("/upload", routes.UploadHandler(msgCtrl, cfg.MaxUploadBytes))
		gr.Get("/uploads/{filename}", routes.AttachmentHandler(minioClient))
	})
	r.Mount("/chat", routes.ChatRoutes(msgCtrl, hub, cfg))

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
