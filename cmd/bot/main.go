package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/litsalon/backend/internal/app"
	"github.com/litsalon/backend/internal/bot/matrix"
	"github.com/litsalon/backend/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if !cfg.Matrix.Enabled() {
		log.Fatal("matrix credentials missing: set MATRIX_HOMESERVER, MATRIX_USER_ID and MATRIX_ACCESS_TOKEN")
	}

	core, closeStore, err := app.BuildCore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build core: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("warning: closing correction store: %v", err)
		}
	}()

	client, err := matrix.NewClient(cfg.Matrix)
	if err != nil {
		log.Fatalf("failed to connect to homeserver: %v", err)
	}

	bot := matrix.NewBot(client, core, cfg.Matrix.ChunkLimit)
	if err := bot.Run(ctx); err != nil {
		log.Fatalf("bot error: %v", err)
	}
	log.Println("bot stopped")
}
