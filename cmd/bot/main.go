package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tazhate/complybot/config"
	"github.com/tazhate/complybot/internal/bot"
	"github.com/tazhate/complybot/internal/crypto"
	"github.com/tazhate/complybot/internal/notify"
	"github.com/tazhate/complybot/internal/scheduler"
	"github.com/tazhate/complybot/internal/service"
	"github.com/tazhate/complybot/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	box, err := crypto.New(cfg.PIIKey)
	if err != nil {
		log.Fatalf("Failed to init PII crypto: %v", err)
	}
	if !box.Enabled() {
		log.Println("PII_KEY not set, employee data stored in plaintext")
	}

	employeeSvc := service.NewEmployeeService(store, box)
	eventSvc := service.NewEventService(store, box)

	tgBot, err := bot.New(cfg, store, employeeSvc, eventSvc)
	if err != nil {
		log.Fatalf("Failed to init bot: %v", err)
	}

	router := notify.NewRouter(eventSvc, tgBot)
	sweep := notify.NewSweep(eventSvc, tgBot, router, cfg.Timezone)
	tgBot.SetSweep(sweep)

	if err := tgBot.SetupWebhook(); err != nil {
		log.Fatalf("Failed to setup webhook: %v", err)
	}

	sched := scheduler.New(cfg, sweep)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			log.Printf("Scheduler error: %v", err)
		}
	}()

	go func() {
		if err := tgBot.Start(ctx); err != nil {
			log.Printf("Bot error: %v", err)
		}
	}()

	log.Println("ComplyBot started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := tgBot.Stop(shutdownCtx); err != nil {
		log.Printf("Error stopping bot: %v", err)
	}

	log.Println("ComplyBot stopped")
}
