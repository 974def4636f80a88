package main

import (
	"context"
	"log"
	"time"

	"sondalog-backend/internal/audit"
	"sondalog-backend/internal/auth"
	"sondalog-backend/internal/catalog"
	"sondalog-backend/internal/config"
	"sondalog-backend/internal/dashboard"
	"sondalog-backend/internal/database"
	"sondalog-backend/internal/directory"
	"sondalog-backend/internal/export"
	"sondalog-backend/internal/lookup"
	"sondalog-backend/internal/requests"
	"sondalog-backend/internal/server"
	"sondalog-backend/internal/session"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("[FATAL] ", err)
	}
	if cfg.SeedDefaults {
		if err := database.Seed(db); err != nil {
			log.Fatal("[FATAL] Falha ao carregar dados iniciais: ", err)
		}
	}

	sessions := session.NewManager(cfg.JWTSecret, cfg.JWTTTL, newRevoker(cfg))
	reqs := requests.NewService(db)
	catalogSvc := catalog.NewService(db)

	app := server.New(server.Deps{
		DB:          db,
		CORSOrigins: cfg.CORSOrigins,
		Sessions:    sessions,
		Auth:        auth.NewService(db),
		Catalog:     catalogSvc,
		Directory:   directory.NewService(db),
		Requests:    reqs,
		Export:      export.NewService(db, reqs),
		Audit:       audit.NewService(db),
		Dashboard:   dashboard.NewService(db),
		Lookup:      lookup.NewAssistant(newLookupProvider(cfg), cfg.LookupTimeout),
	})

	log.Printf("[INFO] Servidor ouvindo na porta %s", cfg.HTTPPort)
	log.Fatal(app.Listen(":" + cfg.HTTPPort))
}

func newRevoker(cfg *config.Config) session.Revoker {
	if cfg.RedisAddr == "" {
		log.Println("[WARN] REDIS_ADDR não definido, revogação de sessões em memória.")
		return session.NewMemoryRevoker()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("[FATAL] Redis indisponível: ", err)
	}
	log.Printf("[INFO] Revogação de sessões via Redis (%s)", cfg.RedisAddr)
	return session.NewRedisRevoker(client)
}

func newLookupProvider(cfg *config.Config) lookup.Provider {
	switch cfg.LookupProvider {
	case "gemini":
		p, err := lookup.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("[WARN] Gemini indisponível (%v), usando busca local.", err)
			return lookup.Local{}
		}
		return p
	case "disabled":
		return lookup.Disabled{}
	case "local":
		return lookup.Local{}
	default:
		log.Printf("[WARN] LOOKUP_PROVIDER desconhecido (%q), usando busca local.", cfg.LookupProvider)
		return lookup.Local{}
	}
}
