package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"adinsight/api"
	"adinsight/internal/config"
	"adinsight/internal/container"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.Server.GinMode)

	c, err := container.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.URL != "" {
		db, err := sqlx.Open("postgres", cfg.Database.URL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "database error:", err)
			os.Exit(1)
		}
		if err := c.InitWithDatabase(ctx, db); err != nil {
			fmt.Fprintln(os.Stderr, "database error:", err)
			os.Exit(1)
		}
	}

	server := api.NewServer(c.Orchestrator, c.ReportRepo, cfg.Data.FilePath, c.Sink)
	c.Logger.Info("listening on :%s", cfg.Server.Port)
	if err := api.Serve(ctx, ":"+cfg.Server.Port, server.Handler()); err != nil {
		fmt.Fprintln(os.Stderr, "server error:", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintln(os.Stderr, "shutdown error:", err)
		os.Exit(1)
	}
}
