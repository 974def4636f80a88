package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "file:sondalog?mode=memory&cache=shared"

type Config struct {
	HTTPPort       string
	DatabaseDriver string // sqlite | postgres
	DatabaseDSN    string
	JWTSecret      string
	JWTTTL         time.Duration
	CORSOrigins    string
	SeedDefaults   bool // Dados iniciais (sondas, colaboradores, materiais, admins)

	RedisAddr     string // Vazio: lista de revogação em memória
	RedisPassword string

	LookupProvider string // gemini | local | disabled
	GeminiAPIKey   string
	GeminiModel    string
	LookupTimeout  time.Duration
}

func Load() *Config {
	// .env é opcional; em produção as variáveis vêm do ambiente
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] .env carregado")
	}

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTTTL:         getDuration("JWT_TTL", 12*time.Hour),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		SeedDefaults:   getBool("SEED_DEFAULTS", true),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		LookupProvider: getEnv("LOOKUP_PROVIDER", "local"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		LookupTimeout:  getDuration("LOOKUP_TIMEOUT", 8*time.Second),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET não definido! Obrigatório para emitir sessões.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET deve ter pelo menos 32 caracteres.")
	}
	if cfg.DatabaseDriver == "sqlite" && cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] Banco em memória: os dados existem apenas enquanto o processo estiver rodando.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS com valor padrão, defina o domínio de produção.")
	}
	if cfg.LookupProvider == "gemini" && cfg.GeminiAPIKey == "" {
		log.Println("[WARN] LOOKUP_PROVIDER=gemini sem GEMINI_API_KEY, busca assistida desativada.")
		cfg.LookupProvider = "disabled"
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[WARN] %s inválido (%q), usando %v", key, v, def)
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[WARN] %s inválido (%q), usando %s", key, v, def)
		return def
	}
	return d
}
