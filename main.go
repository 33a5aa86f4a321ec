package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shophub/internal/auth"
	"shophub/internal/config"
	"shophub/internal/database"
	"shophub/internal/handlers"
	"shophub/internal/logger"
	"shophub/internal/store"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal(err)
	}
	cfg := config.AppEnv

	appLogger, err := logger.New(logger.Config{Development: cfg.IsDevelopment(), Level: cfg.LogLevel})
	if err != nil {
		log.Fatal(err)
	}
	defer appLogger.Sync()

	if cfg.UsingDevSecret() {
		appLogger.Warn("JWT_SECRET is not set, signing tokens with the development key")
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStore(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Fatal("could not open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	env := &handlers.Env{
		Store:  st,
		Tokens: auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Cookies: auth.CookieConfig{
			Secure: !cfg.IsDevelopment(),
			MaxAge: cfg.TokenTTL,
		},
		PlatformFee: cfg.PlatformFee,
		Log:         appLogger,
	}
	router := handlers.NewRouter(env, handlers.RouterConfig{
		TemplatesGlob:      cfg.TemplatesGlob,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("starting http server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("http shutdown", zap.Error(err))
	}
	if err := st.Close(ctx); err != nil {
		appLogger.Error("store close", zap.Error(err))
	}
	appLogger.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), nil
	}
	mongoStore, err := database.Open(ctx, cfg.MongoURI, cfg.DBName, log.Named("mongo"))
	if err != nil {
		return nil, err
	}
	return mongoStore, nil
}
