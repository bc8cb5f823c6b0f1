package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/Quiz-Night-Club/quiz-engine/app"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}

	runErr := application.Run(ctx)

	if err := application.Close(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if runErr != nil {
		log.Fatalf("engine stopped: %v", runErr)
	}
}
