package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cashflow/internal/catalog"
	"cashflow/internal/events"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Difficulty        catalog.Difficulty
	Store             string
	StateDir          string
	SQLitePath        string
	DatabaseURL       string
	CapitalGainsShare float64
	EventCount        events.Range
	OpportunityCount  events.Range
}

type APIConfig struct {
	Config
	Addr        string
	CORSOrigins []string
	// RateLimit is requests per second across all clients. Zero disables
	// limiting.
	RateLimit float64
	RateBurst int
}

// CLIConfig plays against a remote server when APIBaseURL is set and the
// local store otherwise.
type CLIConfig struct {
	Config
	APIBaseURL string
}

type SimConfig struct {
	Config
	Games int
	Turns int
}

// fileConfig mirrors config.toml. Every key is optional; environment
// variables win over the file.
type fileConfig struct {
	Difficulty        string     `toml:"difficulty"`
	Store             string     `toml:"store"`
	SQLitePath        string     `toml:"sqlite_path"`
	DatabaseURL       string     `toml:"database_url"`
	CapitalGainsShare float64    `toml:"capital_gains_share"`
	Events            fileRange  `toml:"events"`
	Opportunities     fileRange  `toml:"opportunities"`
	API               fileAPI    `toml:"api"`
	Sim               fileSim    `toml:"sim"`
	CLI               fileClient `toml:"cli"`
}

type fileRange struct {
	Min int `toml:"min"`
	Max int `toml:"max"`
}

type fileAPI struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
	RateLimit   float64  `toml:"rate_limit"`
	RateBurst   int      `toml:"rate_burst"`
}

type fileSim struct {
	Games int `toml:"games"`
	Turns int `toml:"turns"`
}

type fileClient struct {
	APIURL string `toml:"api_url"`
}

// LoadFromEnv reads a .env file when present, then the optional TOML file
// named by CASHFLOW_CONFIG (default <state dir>/config.toml), then the
// CASHFLOW_* variables.
func LoadFromEnv() (Config, error) {
	cfg, _, err := load()
	return cfg, err
}

func load() (Config, fileConfig, error) {
	_ = godotenv.Load()

	stateDir := envDefault("CASHFLOW_STATE_DIR", "")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fileConfig{}, fmt.Errorf("resolve home dir: %w", err)
		}
		stateDir = filepath.Join(home, ".cashflow")
	}
	file, err := readFile(envDefault("CASHFLOW_CONFIG", filepath.Join(stateDir, "config.toml")))
	if err != nil {
		return Config{}, fileConfig{}, err
	}

	difficulty, err := catalog.ParseDifficulty(envDefault("CASHFLOW_DIFFICULTY", orString(file.Difficulty, string(catalog.DifficultyNormal))))
	if err != nil {
		return Config{}, file, err
	}

	cfg := Config{
		Difficulty:        difficulty,
		Store:             strings.ToLower(envDefault("CASHFLOW_STORE", orString(file.Store, StoreFile))),
		StateDir:          stateDir,
		SQLitePath:        envDefault("CASHFLOW_SQLITE_PATH", orString(file.SQLitePath, filepath.Join(stateDir, "cashflow.db"))),
		DatabaseURL:       envDefault("DATABASE_URL", file.DatabaseURL),
		CapitalGainsShare: envFloatDefault("CASHFLOW_CAPITAL_GAINS_SHARE", orFloat(file.CapitalGainsShare, 0.30)),
		EventCount: events.Range{
			Min: envIntDefault("CASHFLOW_MIN_EVENTS", orInt(file.Events.Min, events.DefaultEventCount.Min)),
			Max: envIntDefault("CASHFLOW_MAX_EVENTS", orInt(file.Events.Max, events.DefaultEventCount.Max)),
		},
		OpportunityCount: events.Range{
			Min: envIntDefault("CASHFLOW_MIN_OPPORTUNITIES", orInt(file.Opportunities.Min, events.DefaultOpportunityCount.Min)),
			Max: envIntDefault("CASHFLOW_MAX_OPPORTUNITIES", orInt(file.Opportunities.Max, events.DefaultOpportunityCount.Max)),
		},
	}

	switch cfg.Store {
	case StoreFile, StoreSQLite:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, file, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return cfg, file, fmt.Errorf("unknown CASHFLOW_STORE %q", cfg.Store)
	}
	if cfg.CapitalGainsShare < 0 || cfg.CapitalGainsShare > 1 {
		return cfg, file, fmt.Errorf("CASHFLOW_CAPITAL_GAINS_SHARE must be within [0, 1], got %v", cfg.CapitalGainsShare)
	}
	return cfg, file, nil
}

func readFile(path string) (fileConfig, error) {
	var out fileConfig
	if _, err := toml.DecodeFile(path, &out); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return out, nil
}

func LoadAPIFromEnv() (APIConfig, error) {
	cfg, file, err := load()
	if err != nil {
		return APIConfig{}, err
	}
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("CASHFLOW_API_ADDR", orString(file.API.Addr, ":8080"))
	}
	origins := file.API.CORSOrigins
	if v := envDefault("CASHFLOW_CORS_ORIGINS", ""); v != "" {
		origins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	out := APIConfig{
		Config:      cfg,
		Addr:        addr,
		CORSOrigins: origins,
		RateLimit:   envFloatDefault("CASHFLOW_API_RATE_LIMIT", orFloat(file.API.RateLimit, 20)),
		RateBurst:   envIntDefault("CASHFLOW_API_RATE_BURST", orInt(file.API.RateBurst, 40)),
	}
	if out.RateLimit < 0 || out.RateBurst < 0 {
		return out, fmt.Errorf("rate limit and burst must not be negative")
	}
	return out, nil
}

func LoadCLIFromEnv() (CLIConfig, error) {
	cfg, file, err := load()
	if err != nil {
		return CLIConfig{}, err
	}
	return CLIConfig{
		Config:     cfg,
		APIBaseURL: strings.TrimRight(envDefault("CASHFLOW_API_URL", file.CLI.APIURL), "/"),
	}, nil
}

func LoadSimFromEnv() (SimConfig, error) {
	cfg, file, err := load()
	if err != nil {
		return SimConfig{}, err
	}
	return SimConfig{
		Config: cfg,
		Games:  envIntDefault("CASHFLOW_SIM_GAMES", orInt(file.Sim.Games, 200)),
		Turns:  envIntDefault("CASHFLOW_SIM_TURNS", orInt(file.Sim.Turns, 40)),
	}, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
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

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func orString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func orFloat(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
