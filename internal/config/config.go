package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN,required"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:","`

	// Google Sheets activity log
	GoogleServiceAccountFile string `env:"GOOGLE_SERVICE_ACCOUNT_FILE" envDefault:"service_account.json"`
	SpreadsheetID            string `env:"GOOGLE_SPREADSHEET_ID,required"`
	SheetName                string `env:"GOOGLE_SHEET_NAME" envDefault:"Sheet1"`

	// Storage
	GoalsFilePath    string `env:"GOALS_FILE" envDefault:"goals.json"`
	RecordFilePath   string `env:"RECORD_FILE" envDefault:"record.json"`
	IntervalFilePath string `env:"INTERVAL_FILE" envDefault:"user_intervals.json"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
