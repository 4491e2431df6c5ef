package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/MathBio-Lab/s3-output-manager/internal/app"
)

// @title           S3 Output Manager API
// @version         1.0
// @description     Веб-слой поверх одного S3-бакета: обзор, загрузка и
// @description     выдача результатов расчётов с изоляцией по префиксам.
// @BasePath        /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}
