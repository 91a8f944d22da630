package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/app"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/bootstrap"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/middleware"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RateLimitByIP(50, 100))

	cleanup, err := app.BuildApp(r, logger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:         port,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		bootstrap.NewStdoutAuditLogger(),
		cleanup,
	)
}
