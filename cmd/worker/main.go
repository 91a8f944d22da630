package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/app"
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

	if err := app.RunWorker(logger); err != nil {
		logger.Fatal("run worker failed", zap.Error(err))
	}
}
