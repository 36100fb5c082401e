package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Edit modes decide which input event sends a cell patch.
const (
	EditModeLive = "live" // every keystroke
	EditModeBlur = "blur" // on change/blur
)

type Config struct {
	Port          int
	APIBaseURL    string
	PageSize      string
	EditMode      string
	EditDebounce  time.Duration
	APITimeout    time.Duration
	RenderWait    time.Duration
	SessionSecret string
	SessionLimit  int
	LogLevel      string
	EnvFile       string
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("stat-grid", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.APIBaseURL, "api", "", "Stats service base URL")
	fs.DurationVar(&cfg.APITimeout, "api-timeout", 0, "Stats service request timeout (0 = none)")

	// Grid behaviour
	fs.StringVar(&cfg.PageSize, "page-size", "", "Initial page size")
	fs.StringVar(&cfg.EditMode, "edit-mode", "", "When cell edits are sent: live or blur")
	fs.DurationVar(&cfg.EditDebounce, "edit-debounce", 0, "Coalesce edits of one cell within this window (0 = off)")
	fs.DurationVar(&cfg.RenderWait, "render-wait", 0, "How long a request waits for a page read before rendering")

	// Sessions
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session cookie secret (prefer env)")
	fs.IntVar(&cfg.SessionLimit, "session-limit", 0, "Maximum grid views held in memory")

	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.EnvFile, "env-file", ".env", "Dotenv file loaded before reading the environment")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Values already in the environment win over the dotenv file
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", cfg.EnvFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 3000)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = envOr("STATS_API_URL", "http://localhost:5001")
	}
	if cfg.PageSize == "" {
		cfg.PageSize = envOr("PAGE_SIZE", "100")
	}
	if cfg.EditMode == "" {
		cfg.EditMode = envOr("EDIT_MODE", EditModeLive)
	}
	if cfg.EditMode != EditModeLive && cfg.EditMode != EditModeBlur {
		return Config{}, fmt.Errorf("invalid edit mode %q (want %s or %s)", cfg.EditMode, EditModeLive, EditModeBlur)
	}

	var err error
	if !set["edit-debounce"] {
		if cfg.EditDebounce, err = envDuration("EDIT_DEBOUNCE", 0); err != nil {
			return Config{}, err
		}
	}
	if !set["api-timeout"] {
		if cfg.APITimeout, err = envDuration("API_TIMEOUT", 0); err != nil {
			return Config{}, err
		}
	}
	if !set["render-wait"] {
		if cfg.RenderWait, err = envDuration("RENDER_WAIT", 5*time.Second); err != nil {
			return Config{}, err
		}
	}

	if cfg.EditDebounce < 0 || cfg.APITimeout < 0 || cfg.RenderWait < 0 {
		return Config{}, errors.New("durations must not be negative")
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionLimit == 0 {
		if cfg.SessionLimit, err = envInt("SESSION_LIMIT", 256); err != nil {
			return Config{}, err
		}
	}
	if cfg.SessionLimit < 1 {
		return Config{}, errors.New("session limit must be at least 1")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = envOr("LOG_LEVEL", "info")
	}

	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog level; unknown names mean info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
