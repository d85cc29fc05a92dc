package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"streamai/config"
	"streamai/handlers"
	"streamai/internal/database"
	"streamai/services/profiles"
	"streamai/services/remotestore"
	"streamai/services/session"
	"streamai/services/watchlist"
	"streamai/utils"
)

func main() {
	configPath := flag.String("config", "data/settings.json", "path to the settings file")
	accountID := flag.String("account", "default", "account whose profiles this instance serves")
	flag.Parse()

	manager := config.NewManager(*configPath)
	settings, err := manager.Load()
	if err != nil {
		log.Printf("[main] settings load failed, using defaults: %v", err)
	}

	if settings.Log.Path != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   settings.Log.Path,
			MaxSize:    settings.Log.MaxSizeMB,
			MaxBackups: settings.Log.MaxBackups,
			MaxAge:     settings.Log.MaxAgeDays,
		}))
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("[main] failed to open local store: %v", err)
	}
	defer db.Close()

	store := remotestore.New(settings.RemoteStore, db.Repository)
	syncer := watchlist.NewSynchronizer(store)
	active := session.NewActiveSession(syncer)
	repo := profiles.NewRepository(store, settings.Profiles.FallbackPIN)
	controller := session.NewController(
		repo,
		active,
		*accountID,
		settings.Profiles.MaxProfiles,
		time.Duration(settings.Profiles.PINSettleDelayMS)*time.Millisecond,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	controller.Refresh(ctx)

	router := utils.NewRouter()
	handlers.NewSessionHandler(controller, active).RegisterRoutes(router)
	handlers.NewWatchlistHandler(syncer).RegisterRoutes(router)

	server := &http.Server{
		Addr:         settings.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", settings.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[main] shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}

	// Let queued watchlist writes land before the process exits.
	syncer.Wait()
	log.Println("[main] stopped")
}
