package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tazhate/complybot/internal/domain"
)

type Config struct {
	TelegramToken     string
	DatabasePath      string
	Timezone          *time.Location
	SweepTime         string // "HH:MM", daily sweep
	WebhookURL        string
	ServerPort        string
	DefaultNotifyDays int    // lead time for the first reminder
	PIIKey            string // hex, 32 bytes; empty disables encryption
}

func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/complybot.db"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "Europe/Moscow"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	sweepTime := os.Getenv("SWEEP_TIME")
	if sweepTime == "" {
		sweepTime = "09:00"
	}

	webhookURL := os.Getenv("WEBHOOK_URL")
	if webhookURL == "" {
		webhookURL = "https://comply.tazhate.com"
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	notifyDays := domain.DefaultNotificationDays
	if d := os.Getenv("DEFAULT_NOTIFY_DAYS"); d != "" {
		notifyDays, err = strconv.Atoi(d)
		if err != nil || notifyDays <= 0 {
			return nil, fmt.Errorf("DEFAULT_NOTIFY_DAYS must be a positive number")
		}
	}

	return &Config{
		TelegramToken:     token,
		DatabasePath:      dbPath,
		Timezone:          tz,
		SweepTime:         sweepTime,
		WebhookURL:        webhookURL,
		ServerPort:        serverPort,
		DefaultNotifyDays: notifyDays,
		PIIKey:            os.Getenv("PII_KEY"),
	}, nil
}
