package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StorePGX      = "pgx"
)

type StoreConfig struct {
	Kind        string
	SQLitePath  string
	DatabaseURL string
}

type AdvisorConfig struct {
	GeminiAPIKey string
	Model        string
	Timeout      time.Duration
}

type APIConfig struct {
	Addr    string
	Store   StoreConfig
	Advisor AdvisorConfig
	Seed    int64
}

type WorkerConfig struct {
	Store     StoreConfig
	Seed      int64
	Games     int
	MaxWeeks  int
	Policy    string
	RunEvery  time.Duration
	RunOnce   bool
	KeepGames bool
}

type CLIConfig struct {
	APIBaseURL string
	Seed       int64
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("BURNRATE_API_ADDR", ":8080")
	}

	store, err := loadStore()
	if err != nil {
		return APIConfig{}, err
	}
	return APIConfig{
		Addr:    addr,
		Store:   store,
		Advisor: loadAdvisor(),
		Seed:    envInt64Default("BURNRATE_SEED", 0),
	}, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	store, err := loadStore()
	if err != nil {
		return WorkerConfig{}, err
	}
	cfg := WorkerConfig{
		Store:     store,
		Seed:      envInt64Default("BURNRATE_SEED", 0),
		Games:     envIntDefault("BURNRATE_SIM_GAMES", 20),
		MaxWeeks:  envIntDefault("BURNRATE_SIM_MAX_WEEKS", 260),
		Policy:    envDefault("BURNRATE_SIM_POLICY", "balanced"),
		RunEvery:  envDurationDefault("BURNRATE_SIM_EVERY", 10*time.Minute),
		RunOnce:   envBoolDefault("BURNRATE_SIM_RUN_ONCE", false),
		KeepGames: envBoolDefault("BURNRATE_SIM_KEEP_GAMES", false),
	}
	if cfg.Games <= 0 {
		return cfg, fmt.Errorf("BURNRATE_SIM_GAMES must be positive")
	}
	if cfg.MaxWeeks <= 0 {
		return cfg, fmt.Errorf("BURNRATE_SIM_MAX_WEEKS must be positive")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("BURNRATE_API_BASE_URL", "http://localhost:8080"), "/"),
		Seed:       envInt64Default("BURNRATE_SEED", 0),
	}
}

func loadStore() (StoreConfig, error) {
	cfg := StoreConfig{
		Kind:        strings.ToLower(envDefault("BURNRATE_STORE", StoreMemory)),
		SQLitePath:  envDefault("BURNRATE_SQLITE_PATH", "burnrate.db"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}
	switch cfg.Kind {
	case StoreMemory, StoreSQLite:
	case StorePostgres, StorePGX:
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required for BURNRATE_STORE=%s", cfg.Kind)
		}
	default:
		return cfg, fmt.Errorf("unsupported BURNRATE_STORE %q", cfg.Kind)
	}
	return cfg, nil
}

func loadAdvisor() AdvisorConfig {
	return AdvisorConfig{
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Model:        envDefault("BURNRATE_ADVISOR_MODEL", "gemini-2.5-flash"),
		Timeout:      envDurationDefault("BURNRATE_ADVISOR_TIMEOUT", 20*time.Second),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
