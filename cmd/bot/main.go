package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"time-tracker-bot/internal/auth"
	"time-tracker-bot/internal/config"
	"time-tracker-bot/internal/sheets"
	"time-tracker-bot/internal/storage"
	"time-tracker-bot/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	authSvc := auth.New(cfg.AllowedUsers)

	goals, err := storage.NewFileMap[string](cfg.GoalsFilePath)
	if err != nil {
		log.Fatalf("failed to load goals: %v", err)
	}
	records, err := storage.NewFileMap[int](cfg.RecordFilePath)
	if err != nil {
		log.Fatalf("failed to load personal bests: %v", err)
	}
	intervals, err := storage.NewFileMap[int](cfg.IntervalFilePath)
	if err != nil {
		log.Fatalf("failed to load reminder intervals: %v", err)
	}

	ctx := context.Background()

	activityLog, err := sheets.NewClient(ctx, cfg.GoogleServiceAccountFile, cfg.SpreadsheetID, cfg.SheetName)
	if err != nil {
		log.Fatalf("failed to create sheets client: %v", err)
	}

	bot, err := telegram.New(cfg.TelegramBotToken, authSvc, goals, records, intervals, activityLog)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	bot.Start(ctx)
}
