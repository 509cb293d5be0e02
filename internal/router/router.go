package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	mem "rehab-client-registry/internal/adapters/storage/memory"
	sqlitestore "rehab-client-registry/internal/adapters/storage/sqlite"
	"rehab-client-registry/internal/domain/clients"
	"rehab-client-registry/internal/domain/episodes"
	"rehab-client-registry/internal/middleware"
	"rehab-client-registry/internal/platform/logger"
	"rehab-client-registry/internal/web"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	// Opcional: handle ya abierto (lo inyecta main). Si no viene, se intenta
	// DB_PATH; sin eso, repos in-memory (dev/tests).
	DB *sql.DB

	Log logger.Logger
}

func New(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	db := opts.DB
	if db == nil {
		if path := os.Getenv("DB_PATH"); path != "" {
			opened, err := sqlitestore.Open(path)
			if err == nil {
				db = opened
			} else {
				log.Warn("sqlite open failed, falling back to memory", map[string]any{"err": err.Error()})
			}
		}
	}

	var (
		clientsRepo  clients.Repository
		episodesRepo episodes.Repository
	)

	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sqlitestore.InitSchema(ctx, db); err != nil {
			log.Error("schema init failed, falling back to memory", map[string]any{"err": err.Error()})
			db = nil
		}
	}

	if db != nil {
		clientsRepo = sqlitestore.NewClientsRepo(db)
		episodesRepo = sqlitestore.NewEpisodesRepo(db)
	} else {
		store := mem.NewStore()
		clientsRepo = mem.NewClientsRepo(store)
		episodesRepo = mem.NewEpisodesRepo(store)
	}

	rn := web.NewRenderer()

	// Services por módulo
	clientsSvc := clients.NewService(clientsRepo)
	episodesSvc := episodes.NewService(episodesRepo)

	// Rutas por módulo
	clients.RegisterRoutes(r, clientsSvc, rn)
	episodes.RegisterRoutes(r, episodesSvc, rn)

	return r
}
