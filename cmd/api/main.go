package main

import (
	"net/http"
	"os"
	"time"

	sqlitestore "rehab-client-registry/internal/adapters/storage/sqlite"
	"rehab-client-registry/internal/platform/logger"
	"rehab-client-registry/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // .env opcional, el env real gana

	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "reabilitacao.db"
	}

	db, err := sqlitestore.Open(dbPath)
	if err != nil {
		log.Error("open database", map[string]any{"path": dbPath, "err": err.Error()})
		os.Exit(1)
	}

	r := router.New(router.Options{DB: db, Log: log})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr, "db": dbPath})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
